package scrape

import (
	"fmt"
	"strings"

	"github.com/gofandom/lyricwiki/internal/resolve"
)

// AlbumPage is a parsed album page. Artist and Name come from the
// "Artist:Name (Year)" page heading; Type is the portable-infobox type
// row when the page carries one, "" otherwise.
type AlbumPage struct {
	Artist  string
	Name    string
	Year    int
	Type    string
	Listing TrackListing
}

// ParseAlbumPage parses an album page. knownArtist, when non-empty,
// anchors the heading split so artist names containing a colon parse
// correctly. The page heading is the mandatory landmark.
func ParseAlbumPage(page, knownArtist string) (*AlbumPage, error) {
	doc, err := newDoc(page)
	if err != nil {
		return nil, err
	}
	title := pageTitle(doc)
	if title == "" {
		return nil, fmt.Errorf("album page: missing title heading")
	}
	artist, rest := resolve.SplitTitle(title, knownArtist)
	if artist == "" {
		artist = knownArtist
	}
	name, year := resolve.SplitHeading(rest)
	albumType := strings.TrimSpace(doc.Find(`aside.portable-infobox [data-source="type"] .pi-data-value`).First().Text())
	return &AlbumPage{
		Artist:  artist,
		Name:    name,
		Year:    year,
		Type:    albumType,
		Listing: *trackListing(doc, artist),
	}, nil
}
