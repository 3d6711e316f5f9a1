package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/gofandom/lyricwiki/internal/resolve"
)

// SongPage is a parsed song page. Lyrics keeps line breaks as single
// newlines; HasLyrics distinguishes a page without a lyrics container
// from one whose lyrics are empty. AlbumName and AlbumYear are the
// parent-album backlink when the page states one.
type SongPage struct {
	Artist    string
	Name      string
	Lyrics    string
	HasLyrics bool
	AlbumName string
	AlbumYear int
}

// ParseSongPage parses a song page. knownArtist, when non-empty,
// anchors the "Artist:Song" heading split. The page heading is the
// mandatory landmark; a missing lyrics container is not an error.
func ParseSongPage(page, knownArtist string) (*SongPage, error) {
	doc, err := newDoc(page)
	if err != nil {
		return nil, err
	}
	title := pageTitle(doc)
	if title == "" {
		return nil, fmt.Errorf("song page: missing title heading")
	}
	artist, name := resolve.SplitTitle(title, knownArtist)
	if artist == "" {
		artist = knownArtist
	}
	song := &SongPage{Artist: artist, Name: name}

	box := doc.Find("div.lyricbox").First()
	if box.Length() > 0 {
		song.HasLyrics = true
		song.Lyrics = lyricsText(box)
	}

	song.AlbumName, song.AlbumYear = albumBacklink(doc, artist)
	return song, nil
}

// albumBacklink finds the first content anchor whose title follows the
// "Artist:Album (Year)" convention, which is how song pages credit
// their parent album.
func albumBacklink(doc *goquery.Document, artist string) (string, int) {
	var name string
	var year int
	content(doc).Find("a[title]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		owner, rest := resolve.SplitTitle(anchorTitle(a), artist)
		if owner == "" {
			return true
		}
		n, y := resolve.SplitHeading(rest)
		if y == 0 {
			return true
		}
		name, year = n, y
		return false
	})
	return name, year
}

// lyricsText walks the lyrics container and renders its text. Source
// newlines are layout noise and dropped; br elements become newlines;
// the lyricsbreak marker ends the lyrics. Inline markup (italics,
// links) contributes its text only.
func lyricsText(box *goquery.Selection) string {
	if len(box.Nodes) == 0 {
		return ""
	}
	var b strings.Builder
	stopped := false
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil && !stopped; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				b.WriteString(strings.ReplaceAll(c.Data, "\n", ""))
			case c.Type != html.ElementNode:
			case c.Data == "br":
				b.WriteByte('\n')
			case c.Data == "div" && nodeHasClass(c, "lyricsbreak"):
				stopped = true
			default:
				walk(c)
			}
		}
	}
	walk(box.Nodes[0])

	text := strings.TrimSpace(b.String())
	if isInstrumental(text) {
		return ""
	}
	return text
}

func isInstrumental(text string) bool {
	return strings.EqualFold(strings.Trim(text, "() "), "instrumental")
}
