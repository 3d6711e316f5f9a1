package lyricwiki

import "context"

// Page is one fetched document.
type Page struct {
	URL        string // final URL after redirects
	StatusCode int
	Body       string
}

// Fetcher retrieves pages for the client. An implementation returns a
// Page whenever an HTTP response arrived, whatever its status code, and
// an error only for transport failures. Implementations must be safe
// for concurrent use; the client itself fetches sequentially within one
// lookup. Timeout and cancellation policy belongs to the Fetcher and
// the caller's context, not to the core.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}
