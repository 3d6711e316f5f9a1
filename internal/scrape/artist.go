package scrape

import "fmt"

// ArtistPage is a parsed artist page: the display name in the site's
// casing plus the first page of the album listing.
type ArtistPage struct {
	Name    string
	Listing AlbumListing
}

// ParseArtistPage parses an artist page. The page heading is the
// mandatory landmark; a page without one is not an artist page.
func ParseArtistPage(page string) (*ArtistPage, error) {
	doc, err := newDoc(page)
	if err != nil {
		return nil, err
	}
	name := pageTitle(doc)
	if name == "" {
		return nil, fmt.Errorf("artist page: missing name heading")
	}
	return &ArtistPage{Name: name, Listing: *albumListing(doc)}, nil
}
