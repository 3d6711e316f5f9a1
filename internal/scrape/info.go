package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Info is the semi-structured information block of an artist page.
// Every field is best-effort: pages missing a section yield the zero
// value for it.
type Info struct {
	Description string              // intro paragraphs, markup stripped
	Details     map[string][]string // info-box rows: label to values
	Links       map[string]string   // external links: platform to URL
}

// linkPlatforms maps lowercased link labels to their canonical form.
// Labels outside this set are site chrome, not artist links.
var linkPlatforms = map[string]string{
	"amazon":           "Amazon",
	"itunes":           "iTunes",
	"allmusic":         "AllMusic",
	"discogs":          "Discogs",
	"musicbrainz":      "MusicBrainz",
	"spotify":          "Spotify",
	"last.fm":          "Last.fm",
	"wikipedia":        "Wikipedia",
	"facebook":         "Facebook",
	"twitter":          "Twitter",
	"instagram":        "Instagram",
	"youtube":          "YouTube",
	"myspace":          "Myspace",
	"official site":    "OfficialSite",
	"official website": "OfficialSite",
	"hoick":            "Hoick",
	"secondhandsongs":  "SecondHandSongs",
}

// ParseInfo extracts the description, info-box rows and external links
// of an artist page. Only a page without any content container is an
// error; missing sections are not.
func ParseInfo(page string) (*Info, error) {
	doc, err := newDoc(page)
	if err != nil {
		return nil, err
	}
	body := content(doc)
	if body.Length() == 0 {
		return nil, fmt.Errorf("artist page: missing content container")
	}
	return &Info{
		Description: description(body),
		Details:     details(body),
		Links:       externalLinks(doc),
	}, nil
}

// description joins the intro paragraphs that precede the first section
// heading.
func description(body *goquery.Selection) string {
	var parts []string
	body.Children().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Is("h2") {
			return false
		}
		if !s.Is("p") {
			return true
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
		return true
	})
	return strings.Join(parts, "\n\n")
}

// details parses the artist-info table: each cell holds a label
// paragraph followed by either a value paragraph or a list of values.
func details(body *goquery.Selection) map[string][]string {
	out := map[string][]string{}
	body.Find("div.artist-info div.css-table-cell").Each(func(_ int, cell *goquery.Selection) {
		label := strings.TrimSuffix(strings.TrimSpace(cell.ChildrenFiltered("p").First().Text()), ":")
		if label == "" {
			return
		}
		value := cell.ChildrenFiltered("div").First()
		if list := value.Find("ul").First(); list.Length() > 0 {
			var values []string
			list.Find("li").Each(func(_ int, li *goquery.Selection) {
				item := li.Find("a, b").First()
				text := strings.TrimSpace(item.Text())
				if text == "" {
					text = strings.TrimSpace(li.Text())
				}
				if text != "" {
					values = append(values, text)
				}
			})
			if len(values) > 0 {
				out[label] = values
			}
			return
		}
		if text := strings.TrimSpace(value.Text()); text != "" {
			out[label] = []string{text}
		}
	})
	return out
}

// externalLinks collects platform links from the External links
// section: sibling rows of "Label: <a>" shape until the next section.
// The first URL per platform wins.
func externalLinks(doc *goquery.Document) map[string]string {
	out := map[string]string{}
	section := doc.Find("h2 span.mw-headline").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(strings.TrimSpace(s.Text()), "external links")
	}).First()
	if section.Length() == 0 {
		return out
	}
	for row := section.Parent().Next(); row.Length() > 0 && !row.Is("h2"); row = row.Next() {
		a := row.Find("a.external").First()
		if a.Length() == 0 {
			continue
		}
		href, ok := a.Attr("href")
		if !ok {
			continue
		}
		rawLabel, _, found := strings.Cut(row.Text(), ":")
		if !found {
			continue
		}
		platform, known := linkPlatforms[strings.ToLower(strings.TrimSpace(rawLabel))]
		if !known {
			continue
		}
		if _, dup := out[platform]; !dup {
			out[platform] = href
		}
	}
	return out
}
