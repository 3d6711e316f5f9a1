package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/gofandom/lyricwiki/internal/resolve"
)

// AlbumEntry is one album section from an artist's listing.
type AlbumEntry struct {
	Name     string // display name without the year parenthetical
	Year     int    // 0 when the heading carries none
	Href     string // album page link from the heading, "" for redlinks
	Released bool   // ordered track section; false marks compilations and appearances
}

// AlbumListing is the paginated album listing of an artist.
type AlbumListing struct {
	Albums  []AlbumEntry
	NextURL string
}

// TrackEntry is one song row from an album's track listing.
type TrackEntry struct {
	Artist string // credited artist from the anchor title, "" when not stated
	Name   string // display name
	Href   string // song page link, "" for redlinks
}

// TrackListing is the paginated track listing of an album.
type TrackListing struct {
	Tracks  []TrackEntry
	NextURL string
}

// sections that structure an artist page but do not name albums.
var nonAlbumSections = map[string]struct{}{
	"external links":         {},
	"additional information": {},
	"references":             {},
	"see also":               {},
}

// ParseAlbumListing extracts the album sections of an artist listing
// page. Albums appear as h2 headlines in document order; the list
// element that follows each heading tells released sections (ol) apart
// from compilation and appearance sections (ul).
func ParseAlbumListing(page string) (*AlbumListing, error) {
	doc, err := newDoc(page)
	if err != nil {
		return nil, err
	}
	return albumListing(doc), nil
}

func albumListing(doc *goquery.Document) *AlbumListing {
	listing := &AlbumListing{NextURL: nextLink(doc)}
	doc.Find("h2 span.mw-headline").Each(func(_ int, headline *goquery.Selection) {
		text := strings.TrimSpace(headline.Text())
		if _, skip := nonAlbumSections[strings.ToLower(text)]; skip || text == "" {
			return
		}
		name, year := resolve.SplitHeading(text)
		entry := AlbumEntry{
			Name:     name,
			Year:     year,
			Href:     anchorHref(headline.Find("a").First()),
			Released: sectionListKind(headline.Parent()) != "ul",
		}
		listing.Albums = append(listing.Albums, entry)
	})
	return listing
}

// sectionListKind returns the element name of the first list sibling
// following the heading, stopping at the next section boundary.
func sectionListKind(heading *goquery.Selection) string {
	if len(heading.Nodes) == 0 {
		return ""
	}
	for n := heading.Nodes[0].NextSibling; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.Data {
		case "h2":
			return ""
		case "ol", "ul":
			return n.Data
		}
	}
	return ""
}

// ParseTrackListing extracts the ordered song rows of an album listing
// page. The credited artist comes from each anchor's "Artist:Song"
// title attribute; artist is the page's own artist, used to anchor that
// split. Rows without an anchor are skipped.
func ParseTrackListing(page, artist string) (*TrackListing, error) {
	doc, err := newDoc(page)
	if err != nil {
		return nil, err
	}
	return trackListing(doc, artist), nil
}

func trackListing(doc *goquery.Document, artist string) *TrackListing {
	listing := &TrackListing{NextURL: nextLink(doc)}
	content(doc).Find("ol li").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		if a.Length() == 0 {
			return
		}
		owner, titleName := resolve.SplitTitle(anchorTitle(a), artist)
		name := strings.TrimSpace(a.Text())
		if name == "" {
			name = titleName
		}
		if name == "" {
			return
		}
		listing.Tracks = append(listing.Tracks, TrackEntry{
			Artist: owner,
			Name:   name,
			Href:   anchorHref(a),
		})
	})
	return listing
}
