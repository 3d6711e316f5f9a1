package lyricwiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/gofandom/lyricwiki/internal/metrics"
	"github.com/gofandom/lyricwiki/internal/resolve"
	"github.com/gofandom/lyricwiki/internal/scrape"
)

// page kinds used for logging and metrics labels.
const (
	pageArtist  = "artist"
	pageAlbum   = "album"
	pageSong    = "song"
	pageListing = "listing"
)

// Client looks up artists, albums and songs on the wiki and exposes
// them as navigable records. Lookups are synchronous and sequential;
// a Client may serve concurrent lookups because each call owns its own
// record tree, but the records themselves are not goroutine-safe.
type Client struct {
	fetcher  Fetcher
	resolver *resolve.Resolver
	logger   *zap.Logger
	metrics  *metrics.Recorder

	baseURL   string
	userAgent string
	timeout   time.Duration
	delay     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithFetcher supplies the page fetcher. Without it the client builds
// an HTTPFetcher from the other options.
func WithFetcher(f Fetcher) Option { return func(c *Client) { c.fetcher = f } }

// WithBaseURL overrides the wiki host, mainly for tests and mirrors.
func WithBaseURL(base string) Option { return func(c *Client) { c.baseURL = base } }

// WithLogger supplies the zap logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics registers the client's Prometheus collectors on reg and
// enables instrumentation.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = metrics.New(reg) }
}

// WithUserAgent sets the User-Agent of the default fetcher.
func WithUserAgent(ua string) Option { return func(c *Client) { c.userAgent = ua } }

// WithTimeout sets the per-request timeout of the default fetcher.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithDelay sets the minimum spacing between requests of the default
// fetcher.
func WithDelay(d time.Duration) Option { return func(c *Client) { c.delay = d } }

// New builds a Client.
func New(opts ...Option) *Client {
	c := &Client{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.resolver = resolve.New(c.baseURL)
	if c.fetcher == nil {
		c.fetcher = NewHTTPFetcher(HTTPFetcherConfig{
			UserAgent: c.userAgent,
			Timeout:   c.timeout,
			Delay:     c.delay,
		}, c.logger)
	}
	return c
}

// SearchArtist resolves an artist by name. The returned record carries
// the site's casing of the name, not the argument's.
func (c *Client) SearchArtist(ctx context.Context, artist string) (*Artist, error) {
	return c.searchArtist(ctx, c.opLogger("search_artist"), artist)
}

func (c *Client) searchArtist(ctx context.Context, log *zap.Logger, artist string) (*Artist, error) {
	url, err := c.resolver.ArtistURL(artist)
	if errors.Is(err, resolve.ErrEmptyName) {
		return nil, &InvalidNameError{Field: "artist"}
	}
	page, err := c.getPage(ctx, log, pageArtist, url)
	if errors.Is(err, ErrNotFound) {
		return nil, &NotFoundError{Kind: "artist", Name: artist}
	}
	if err != nil {
		return nil, err
	}
	parsed, err := scrape.ParseArtistPage(page.Body)
	if err != nil {
		c.metrics.ObserveParseFailure(pageArtist)
		return nil, &ParseError{Page: pageArtist, Err: err}
	}
	log.Debug("artist resolved", zap.String("artist", parsed.Name))
	return newArtist(c, parsed, url), nil
}

// SearchAlbum resolves an album by artist and album name, scanning the
// artist's album listing for a case-insensitive match.
func (c *Client) SearchAlbum(ctx context.Context, artist, album string) (*Album, error) {
	log := c.opLogger("search_album")
	if strings.TrimSpace(album) == "" {
		return nil, &InvalidNameError{Field: "album"}
	}
	a, err := c.searchArtist(ctx, log, artist)
	if err != nil {
		return nil, err
	}
	return c.findAlbum(ctx, log, a, album)
}

// SearchSong resolves a song. With an album name the lookup is scoped
// to that album's track listing. With album == "" the artist's whole
// listing is scanned; a title found on more than one album fails with
// AmbiguousError, since no single record can represent the match.
func (c *Client) SearchSong(ctx context.Context, artist, album, song string) (*Song, error) {
	log := c.opLogger("search_song")
	if strings.TrimSpace(song) == "" {
		return nil, &InvalidNameError{Field: "song"}
	}
	a, err := c.searchArtist(ctx, log, artist)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(album) != "" {
		al, err := c.findAlbum(ctx, log, a, album)
		if err != nil {
			return nil, err
		}
		songs, err := al.allSongs(ctx, log, nil)
		if err != nil {
			return nil, err
		}
		for _, s := range songs {
			if resolve.SameName(s.Name(), song) {
				return s, nil
			}
		}
		return nil, &NotFoundError{Kind: "song", Name: song}
	}
	return c.scanForSong(ctx, log, a, song)
}

func (c *Client) findAlbum(ctx context.Context, log *zap.Logger, a *Artist, album string) (*Album, error) {
	it := a.albumsIter(ctx, log, nil)
	for it.Next() {
		if resolve.SameName(it.Album().Name(), album) {
			return it.Album(), nil
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return nil, &NotFoundError{Kind: "album", Name: album}
}

// scanForSong is the album-less song lookup: it walks the artist's full
// album listing collecting title matches, so a title living on two
// albums is reported ambiguous instead of silently resolved to either.
// An album that cannot be fetched counts as "no match in this album"
// and never aborts the scan. When no album matched, the song's own page
// is tried directly before giving up; that rescues songs the album
// listing does not reach.
func (c *Client) scanForSong(ctx context.Context, log *zap.Logger, a *Artist, song string) (*Song, error) {
	var (
		matches []*Song
		albums  []string
	)
	it := a.albumsIter(ctx, log, nil)
	for it.Next() {
		al := it.Album()
		if al.URL() == "" {
			log.Debug("album has no page, skipped", zap.String("album", al.Name()))
			continue
		}
		songs, err := al.allSongs(ctx, log, nil)
		if err != nil {
			log.Debug("album skipped during scan",
				zap.String("album", al.Name()), zap.Error(err))
			continue
		}
		for _, s := range songs {
			if resolve.SameName(s.Name(), song) {
				matches = append(matches, s)
				albums = append(albums, al.Name())
				break
			}
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		if s, err := c.songByPage(ctx, log, a.Name(), song); err == nil {
			return s, nil
		}
		return nil, &NotFoundError{Kind: "song", Name: song}
	default:
		return nil, &AmbiguousError{Song: song, Albums: albums}
	}
}

// songByPage resolves a song straight from its own page, taking album
// context from the page's backlink when it states one. The lyrics are
// memoized immediately since the page was just parsed.
func (c *Client) songByPage(ctx context.Context, log *zap.Logger, artist, song string) (*Song, error) {
	url, err := c.resolver.SongURL(artist, song)
	if errors.Is(err, resolve.ErrEmptyName) {
		return nil, &InvalidNameError{Field: "song"}
	}
	page, err := c.getPage(ctx, log, pageSong, url)
	if errors.Is(err, ErrNotFound) {
		return nil, &NotFoundError{Kind: "song", Name: song}
	}
	if err != nil {
		return nil, err
	}
	parsed, err := scrape.ParseSongPage(page.Body, artist)
	if err != nil {
		c.metrics.ObserveParseFailure(pageSong)
		return nil, &ParseError{Page: pageSong, Err: err}
	}
	owner := parsed.Artist
	if owner == "" {
		owner = artist
	}
	s := &Song{
		ref:        EntityRef{Name: parsed.Name, URL: url},
		client:     c,
		artistName: owner,
		albumName:  parsed.AlbumName,
		albumType:  AlbumUnknown,
		albumYear:  parsed.AlbumYear,
	}
	s.lyrics = parsed.Lyrics
	s.lyricsFetched = true
	return s, nil
}

// getPage fetches a URL and classifies the outcome. Missing pages come
// back as a bare ErrNotFound for the caller to wrap with entity
// context; transport failures and unexpected statuses become
// NetworkError.
func (c *Client) getPage(ctx context.Context, log *zap.Logger, kind, url string) (Page, error) {
	start := time.Now()
	page, err := c.fetcher.Fetch(ctx, url)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveFetch(kind, "error", elapsed)
		log.Warn("fetch failed", zap.String("url", url), zap.Error(err))
		return Page{}, &NetworkError{URL: url, Err: err}
	}
	switch {
	case page.StatusCode == http.StatusNotFound || page.StatusCode == http.StatusGone:
		c.metrics.ObserveFetch(kind, "missing", elapsed)
		log.Debug("page missing", zap.String("url", url), zap.Int("status", page.StatusCode))
		return Page{}, ErrNotFound
	case page.StatusCode < 200 || page.StatusCode > 299:
		c.metrics.ObserveFetch(kind, "error", elapsed)
		log.Warn("unexpected status", zap.String("url", url), zap.Int("status", page.StatusCode))
		return Page{}, &NetworkError{URL: url, Err: fmt.Errorf("unexpected status %d", page.StatusCode)}
	}
	c.metrics.ObserveFetch(kind, "ok", elapsed)
	log.Debug("page fetched", zap.String("url", url), zap.Duration("elapsed", elapsed))
	return page, nil
}

// opLogger tags a lookup's log entries with the operation and a fresh
// lookup id.
func (c *Client) opLogger(op string) *zap.Logger {
	return c.logger.With(zap.String("op", op), zap.String("lookup_id", uuid.NewString()))
}
