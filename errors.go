package lyricwiki

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for classifying lookup failures with errors.Is. The
// matching structured types below carry the failure details and are
// reachable with errors.As.
var (
	ErrNetwork     = errors.New("fetch failed")
	ErrParse       = errors.New("page not recognized")
	ErrNotFound    = errors.New("page not found")
	ErrInvalidName = errors.New("invalid name")
	ErrAmbiguous   = errors.New("ambiguous song")
)

// NetworkError reports a failed page fetch: a transport error or an
// unexpected HTTP status. The core never retries; the underlying cause
// is reachable through Unwrap.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ParseError reports a page that was fetched but is missing the
// mandatory landmark for its expected kind, such as a redirect or
// disambiguation page. It is never folded into NotFoundError.
type ParseError struct {
	Page string // page kind: artist, album, song
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s page: %v", e.Page, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// NotFoundError reports that the site has no page for the resolved
// name: the lookup was well-formed but its target does not exist.
type NotFoundError struct {
	Kind string // entity kind: artist, album, song
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidNameError reports a blank name component in a lookup.
type InvalidNameError struct {
	Field string // which component was blank: artist, album, song
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("%s name is blank", e.Field)
}

func (e *InvalidNameError) Is(target error) bool { return target == ErrInvalidName }

// AmbiguousError reports a song lookup without an album that matched
// more than one of the artist's albums.
type AmbiguousError struct {
	Song   string
	Albums []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("song %q appears on multiple albums: %s", e.Song, strings.Join(e.Albums, ", "))
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }
