package lyricwiki

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gofandom/lyricwiki/internal/scrape"
)

// Artist is a resolved artist record. It keeps the first page of the
// album listing from the lookup, so iterating the first albums costs no
// extra fetches. Records are not goroutine-safe.
type Artist struct {
	ref    EntityRef
	client *Client

	listing *scrape.AlbumListing // first listing page, parsed at lookup time
	albums  []*Album             // memo of a complete unfiltered walk
	info    *ArtistInfo
}

func newArtist(c *Client, page *scrape.ArtistPage, url string) *Artist {
	return &Artist{
		ref:     EntityRef{Name: page.Name, URL: url},
		client:  c,
		listing: &page.Listing,
	}
}

// Name returns the artist name as the site spells it.
func (a *Artist) Name() string { return a.ref.Name }

// URL returns the artist's page URL.
func (a *Artist) URL() string { return a.ref.URL }

// Albums returns a lazy iterator over the artist's albums in listing
// order. Continuation pages of the listing are fetched only as
// iteration reaches them.
func (a *Artist) Albums(ctx context.Context, opts ...ListOption) *AlbumIterator {
	return a.albumsIter(ctx, a.client.opLogger("albums"), opts)
}

// AllAlbums walks the complete listing eagerly.
func (a *Artist) AllAlbums(ctx context.Context, opts ...ListOption) ([]*Album, error) {
	it := a.Albums(ctx, opts...)
	var albums []*Album
	for it.Next() {
		albums = append(albums, it.Album())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return albums, nil
}

// Songs returns a lazy iterator over every song of the artist, album by
// album in listing order. Albums without a page are skipped.
func (a *Artist) Songs(ctx context.Context, opts ...ListOption) *SongIterator {
	return newArtistSongIterator(ctx, a, a.client.opLogger("songs"), opts)
}

// AllSongs walks every album eagerly and returns the flattened song
// list.
func (a *Artist) AllSongs(ctx context.Context, opts ...ListOption) ([]*Song, error) {
	return drainSongs(a.Songs(ctx, opts...))
}

// Info fetches the artist page's information block: the lead
// description, the details table and recognized external links. The
// result is memoized; failures are not.
func (a *Artist) Info(ctx context.Context) (*ArtistInfo, error) {
	if a.info != nil {
		return a.info, nil
	}
	log := a.client.opLogger("artist_info")
	page, err := a.client.getPage(ctx, log, pageArtist, a.ref.URL)
	if errors.Is(err, ErrNotFound) {
		return nil, &NotFoundError{Kind: "artist", Name: a.ref.Name}
	}
	if err != nil {
		return nil, err
	}
	parsed, err := scrape.ParseInfo(page.Body)
	if err != nil {
		a.client.metrics.ObserveParseFailure(pageArtist)
		return nil, &ParseError{Page: pageArtist, Err: err}
	}
	a.info = &ArtistInfo{
		Description: parsed.Description,
		Details:     parsed.Details,
		Links:       parsed.Links,
	}
	log.Debug("artist info parsed",
		zap.Int("details", len(parsed.Details)), zap.Int("links", len(parsed.Links)))
	return a.info, nil
}

func (a *Artist) albumsIter(ctx context.Context, log *zap.Logger, opts []ListOption) *AlbumIterator {
	return newAlbumIterator(ctx, a, log, opts)
}
