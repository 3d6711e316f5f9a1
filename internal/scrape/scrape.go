// Package scrape extracts typed fields from the wiki's HTML pages. It is
// best-effort structural matching against known landmarks (the page
// heading, listing sections, the lyrics container) rather than a full
// semantic parse. A parser returns an error only when the mandatory
// landmark for its page kind is missing; optional fields degrade to zero
// values.
package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// redlinkSuffix marks anchor titles pointing at pages the wiki does not
// have yet.
const redlinkSuffix = " (page does not exist)"

func newDoc(page string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, span.mw-editsection, sup.reference").Remove()
	return doc, nil
}

// pageTitle returns the page heading text, preferring the MediaWiki
// firstHeading element.
func pageTitle(doc *goquery.Document) string {
	h1 := doc.Find("h1#firstHeading").First()
	if h1.Length() == 0 {
		h1 = doc.Find("h1").First()
	}
	return strings.TrimSpace(h1.Text())
}

// content returns the page's main content container, or an empty
// selection when the page has none.
func content(doc *goquery.Document) *goquery.Selection {
	c := doc.Find("div.mw-parser-output").First()
	if c.Length() == 0 {
		c = doc.Find("#mw-content-text").First()
	}
	return c
}

// nextLink returns the listing's next-page href, following the
// MediaWiki pagination conventions. Empty when the listing ends here.
func nextLink(doc *goquery.Document) string {
	if href, ok := doc.Find(`a[rel="next"]`).First().Attr("href"); ok {
		return href
	}
	if href, ok := doc.Find("a.mw-nextlink").First().Attr("href"); ok {
		return href
	}
	return ""
}

// anchorHref returns the anchor's target, treating redlinks (pages that
// do not exist) as no target at all.
func anchorHref(a *goquery.Selection) string {
	href, ok := a.Attr("href")
	if !ok || a.HasClass("new") || strings.Contains(href, "redlink=1") {
		return ""
	}
	return href
}

// anchorTitle returns the anchor's title attribute with the redlink
// suffix stripped.
func anchorTitle(a *goquery.Selection) string {
	title, _ := a.Attr("title")
	return strings.TrimSpace(strings.TrimSuffix(title, redlinkSuffix))
}

func nodeHasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
