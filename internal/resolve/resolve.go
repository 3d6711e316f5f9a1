// Package resolve builds canonical wiki page URLs from artist, album and
// song names. It is pure string work, from display-form normalization
// down to the percent-encoded path. No I/O happens here.
package resolve

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// DefaultBaseURL is the wiki host all lookups target unless overridden.
const DefaultBaseURL = "https://lyrics.fandom.com"

var (
	// ErrEmptyName signals a blank name component in a lookup.
	ErrEmptyName = errors.New("empty name")
	// ErrMissingYear signals an album URL request without a release year.
	ErrMissingYear = errors.New("missing album year")
)

// Resolver derives page URLs for a single wiki host.
type Resolver struct {
	base string
}

// New returns a Resolver for the given base URL, defaulting to
// DefaultBaseURL when base is empty. A trailing slash is trimmed.
func New(base string) *Resolver {
	if strings.TrimSpace(base) == "" {
		base = DefaultBaseURL
	}
	return &Resolver{base: strings.TrimRight(base, "/")}
}

// Base returns the resolver's base URL without a trailing slash.
func (r *Resolver) Base() string { return r.base }

// ArtistURL builds the artist page URL: <base>/wiki/<ArtistSlug>.
func (r *Resolver) ArtistURL(artist string) (string, error) {
	if isBlank(artist) {
		return "", fmt.Errorf("artist name: %w", ErrEmptyName)
	}
	return r.base + "/wiki/" + Slug(artist), nil
}

// AlbumURL builds the album page URL:
// <base>/wiki/<ArtistSlug>:<AlbumSlug>_(<Year>). The site keys album
// pages by release year, so a zero year cannot be resolved.
func (r *Resolver) AlbumURL(artist, album string, year int) (string, error) {
	if isBlank(artist) {
		return "", fmt.Errorf("artist name: %w", ErrEmptyName)
	}
	if isBlank(album) {
		return "", fmt.Errorf("album name: %w", ErrEmptyName)
	}
	if year <= 0 {
		return "", fmt.Errorf("album %q: %w", album, ErrMissingYear)
	}
	return fmt.Sprintf("%s/wiki/%s:%s_(%d)", r.base, Slug(artist), Slug(album), year), nil
}

// SongURL builds the song page URL: <base>/wiki/<ArtistSlug>:<SongSlug>.
func (r *Resolver) SongURL(artist, song string) (string, error) {
	if isBlank(artist) {
		return "", fmt.Errorf("artist name: %w", ErrEmptyName)
	}
	if isBlank(song) {
		return "", fmt.Errorf("song name: %w", ErrEmptyName)
	}
	return r.base + "/wiki/" + Slug(artist) + ":" + Slug(song), nil
}

// Absolute resolves an href scraped from a page against the base URL.
// Absolute hrefs pass through; site-relative ones are prefixed verbatim
// to keep the path bytes exactly as the page published them.
func (r *Resolver) Absolute(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return r.base + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	b, err := url.Parse(r.base)
	if err != nil {
		return href
	}
	return b.ResolveReference(u).String()
}

// replacements applied to names before capitalization: straighten curly
// quotes, drop backticks and hashes the wiki strips from titles.
var nameReplacer = strings.NewReplacer(
	"`", "",
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"#", "",
)

// fixes applied after capitalization for terms the wiki keeps upper-case.
var postReplacer = strings.NewReplacer(
	"Ww1", "WW1",
	"Ww2", "WW2",
	"Ww3", "WW3",
)

// Normalize converts a free-form name into the wiki's display form: trim,
// collapse whitespace runs, title-case each word while preserving
// all-caps words, and apply the site's character replacements.
// "london grammar" becomes "London Grammar", "WW2" stays "WW2".
func Normalize(name string) string {
	name = nameReplacer.Replace(strings.TrimSpace(name))
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = capitalizeWord(w)
	}
	return postReplacer.Replace(strings.Join(words, " "))
}

// capitalizeWord title-cases one word. All-caps words pass through.
// A letter starts upper-case when it opens the word or follows a
// non-letter, except after an apostrophe or a digit ("don't" stays
// "Don't", "ac/dc" becomes "Ac/Dc", "49ers" stays "49ers").
func capitalizeWord(w string) string {
	if w == strings.ToUpper(w) {
		return w
	}
	var b strings.Builder
	b.Grow(len(w))
	prev := rune(0)
	for _, r := range strings.ToLower(w) {
		if unicode.IsLetter(r) && !unicode.IsLetter(prev) && !unicode.IsDigit(prev) && prev != '\'' {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// Slug converts a name into its URL path segment: normalized display
// form, spaces replaced by underscores, percent-encoded with the wiki's
// safe set (colon, slash, parentheses and a few punctuation marks stay
// raw so paths like AC/DC and Album_(2013) keep their published shape).
func Slug(name string) string {
	return percentEncode(strings.ReplaceAll(Normalize(name), " ", "_"))
}

// SameName reports whether two names resolve to the same wiki page,
// comparing slugs case-insensitively.
func SameName(a, b string) bool {
	return strings.EqualFold(Slug(a), Slug(b))
}

func percentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if safeByte(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteString(fmt.Sprintf("%%%02X", c))
	}
	return b.String()
}

func safeByte(c byte) bool {
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return true
	}
	return strings.IndexByte("_.-~:/()%,", c) >= 0
}

// SplitHeading splits an album heading of the form "Name (Year)" into
// the bare name and release year. The year is taken from the last
// parenthesized group and must be a 4-digit number; otherwise the whole
// heading is returned as the name with a zero year.
func SplitHeading(heading string) (string, int) {
	heading = strings.TrimSpace(heading)
	open := strings.LastIndex(heading, "(")
	if open < 0 || !strings.HasSuffix(heading, ")") {
		return heading, 0
	}
	inner := heading[open+1 : len(heading)-1]
	if len(inner) != 4 {
		return heading, 0
	}
	year, err := strconv.Atoi(inner)
	if err != nil || year < 1000 {
		return heading, 0
	}
	return strings.TrimSpace(heading[:open]), year
}

// SplitTitle splits a wiki page title of the form "Artist:Rest". When
// the artist is known it anchors the split on it case-insensitively, so
// artist names containing a colon still split correctly; otherwise the
// first colon wins. Titles without a colon return an empty artist.
func SplitTitle(title, artist string) (string, string) {
	title = strings.TrimSpace(title)
	if artist != "" && len(title) > len(artist)+1 {
		head := title[:len(artist)]
		if strings.EqualFold(head, artist) && title[len(artist)] == ':' {
			return head, strings.TrimSpace(title[len(artist)+1:])
		}
	}
	i := strings.Index(title, ":")
	if i < 0 {
		return "", title
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+1:])
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
