package lyricwiki

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/gofandom/lyricwiki/internal/resolve"
	"github.com/gofandom/lyricwiki/internal/scrape"
)

// ListOption filters lazy listings.
type ListOption func(*listOptions)

type listOptions struct {
	onlyReleased bool
	ownOnly      bool
}

// OnlyReleased keeps only albums from the released sections of the
// listing, dropping compilations and other appearances.
func OnlyReleased() ListOption { return func(o *listOptions) { o.onlyReleased = true } }

// OwnOnly keeps only songs credited to the album's own artist,
// dropping covers and guest tracks.
func OwnOnly() ListOption { return func(o *listOptions) { o.ownOnly = true } }

func newListOptions(opts []ListOption) listOptions {
	var o listOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// memoEligible reports whether a full walk under these options covers
// the complete listing and may therefore be memoized on the record.
func (o listOptions) memoEligible() bool { return !o.onlyReleased && !o.ownOnly }

// AlbumIterator streams an artist's albums in listing order, fetching
// continuation pages of the listing only as consumption reaches them.
// Use it like:
//
//	it := artist.Albums(ctx)
//	for it.Next() {
//		fmt.Println(it.Album().Name())
//	}
//	if err := it.Err(); err != nil {
//		// a listing page could not be fetched or parsed
//	}
//
// The context is captured at creation. Iterators are forward-only and
// not goroutine-safe; to iterate again, create a new one.
type AlbumIterator struct {
	ctx    context.Context
	artist *Artist
	log    *zap.Logger
	opts   listOptions

	cur      *Album
	buf      []*Album
	pos      int
	nextURL  string
	started  bool
	done     bool
	err      error
	fromMemo bool
	walked   []*Album
}

func newAlbumIterator(ctx context.Context, a *Artist, log *zap.Logger, opts []ListOption) *AlbumIterator {
	return &AlbumIterator{ctx: ctx, artist: a, log: log, opts: newListOptions(opts)}
}

// Next advances to the next album. It returns false when the listing
// is exhausted or a page failed; Err tells the two apart.
func (it *AlbumIterator) Next() bool {
	if it.err != nil || it.done {
		return false
	}
	for {
		if it.pos < len(it.buf) {
			it.cur = it.buf[it.pos]
			it.pos++
			it.walked = append(it.walked, it.cur)
			return true
		}
		if !it.started {
			it.started = true
			it.loadFirst()
			continue
		}
		if it.nextURL == "" {
			it.finish()
			return false
		}
		if !it.loadNext() {
			return false
		}
	}
}

// Album returns the current album. It is valid after Next reports
// true and until Next is called again.
func (it *AlbumIterator) Album() *Album { return it.cur }

// Err returns the error that stopped iteration, if any.
func (it *AlbumIterator) Err() error { return it.err }

// loadFirst seeds the buffer from the artist's memoized walk when one
// exists, otherwise from the listing page parsed at lookup time. Either
// way the first albums cost no fetch.
func (it *AlbumIterator) loadFirst() {
	if memo := it.artist.albums; memo != nil {
		it.fromMemo = true
		it.buf = it.filterAlbums(memo)
		it.pos = 0
		it.nextURL = ""
		return
	}
	it.buf = it.albumsFromEntries(it.artist.listing.Albums)
	it.pos = 0
	it.nextURL = it.artist.listing.NextURL
}

func (it *AlbumIterator) loadNext() bool {
	c := it.artist.client
	url := c.resolver.Absolute(it.nextURL)
	page, err := c.getPage(it.ctx, it.log, pageListing, url)
	if errors.Is(err, ErrNotFound) {
		it.err = &NotFoundError{Kind: "listing", Name: it.artist.Name()}
		return false
	}
	if err != nil {
		it.err = err
		return false
	}
	listing, err := scrape.ParseAlbumListing(page.Body)
	if err != nil {
		c.metrics.ObserveParseFailure(pageListing)
		it.err = &ParseError{Page: pageListing, Err: err}
		return false
	}
	it.buf = it.albumsFromEntries(listing.Albums)
	it.pos = 0
	it.nextURL = listing.NextURL
	return true
}

// finish marks the iterator exhausted and, after an unfiltered walk of
// a listing that had no memo yet, stores the walk on the artist so the
// next iteration costs no fetches.
func (it *AlbumIterator) finish() {
	it.done = true
	if it.fromMemo || !it.opts.memoEligible() || it.artist.albums != nil {
		return
	}
	if it.walked == nil {
		it.walked = []*Album{}
	}
	it.artist.albums = it.walked
}

func (it *AlbumIterator) filterAlbums(albums []*Album) []*Album {
	if !it.opts.onlyReleased {
		return albums
	}
	out := make([]*Album, 0, len(albums))
	for _, al := range albums {
		if al.released {
			out = append(out, al)
		}
	}
	return out
}

func (it *AlbumIterator) albumsFromEntries(entries []scrape.AlbumEntry) []*Album {
	c := it.artist.client
	out := make([]*Album, 0, len(entries))
	for _, e := range entries {
		if it.opts.onlyReleased && !e.Released {
			continue
		}
		out = append(out, newAlbumFromEntry(c, it.artist.Name(), e))
	}
	return out
}

// SongIterator streams songs in album-then-track order. Scoped to one
// album it walks that album's track listing and its continuation
// pages. Scoped to an artist it walks every album in listing order,
// skipping albums that have no page of their own. Duplicate track
// titles within one album are yielded once.
type SongIterator struct {
	ctx    context.Context
	log    *zap.Logger
	opts   listOptions
	client *Client

	albums *AlbumIterator // nil when scoped to a single album
	album  *Album         // album currently being walked

	cur       *Song
	buf       []*Song
	pos       int
	nextURL   string // continuation of the current album's track listing
	albumType AlbumType

	seen          map[string]struct{}
	albumWalked   []*Song
	albumFromMemo bool
	started       bool
	done          bool
	err           error
}

func newAlbumSongIterator(ctx context.Context, al *Album, log *zap.Logger, opts []ListOption) *SongIterator {
	return &SongIterator{
		ctx:    ctx,
		log:    log,
		opts:   newListOptions(opts),
		client: al.client,
		album:  al,
	}
}

func newArtistSongIterator(ctx context.Context, a *Artist, log *zap.Logger, opts []ListOption) *SongIterator {
	it := &SongIterator{
		ctx:    ctx,
		log:    log,
		opts:   newListOptions(opts),
		client: a.client,
	}
	it.albums = newAlbumIterator(ctx, a, log, opts)
	return it
}

// Next advances to the next song. It returns false when the listing is
// exhausted or a page failed; Err tells the two apart.
func (it *SongIterator) Next() bool {
	if it.err != nil || it.done {
		return false
	}
	for {
		if it.pos < len(it.buf) {
			it.cur = it.buf[it.pos]
			it.pos++
			it.albumWalked = append(it.albumWalked, it.cur)
			return true
		}
		if it.nextURL != "" {
			if !it.loadTrackPage() {
				return false
			}
			continue
		}
		if it.started && it.album != nil {
			it.finishAlbum()
		}
		if !it.nextAlbum() {
			return false
		}
	}
}

// Song returns the current song. It is valid after Next reports true
// and until Next is called again.
func (it *SongIterator) Song() *Song { return it.cur }

// Err returns the error that stopped iteration, if any.
func (it *SongIterator) Err() error { return it.err }

// nextAlbum moves the walk to the next album with a page, loading its
// first track page. In single-album mode the one album is loaded on
// the first call and the iterator ends on the second.
func (it *SongIterator) nextAlbum() bool {
	if it.albums == nil {
		if it.started {
			it.done = true
			return false
		}
		return it.loadAlbum(it.album)
	}
	for it.albums.Next() {
		al := it.albums.Album()
		if al.URL() == "" {
			it.log.Debug("album has no page, skipped", zap.String("album", al.Name()))
			continue
		}
		it.album = al
		return it.loadAlbum(al)
	}
	if err := it.albums.Err(); err != nil {
		it.err = err
		return false
	}
	it.done = true
	return false
}

// loadAlbum seeds the buffer for one album, from its memoized walk
// when present, otherwise from its page.
func (it *SongIterator) loadAlbum(al *Album) bool {
	it.started = true
	it.seen = make(map[string]struct{})
	it.albumWalked = nil
	it.albumFromMemo = false
	if memo := al.songs; memo != nil {
		it.albumFromMemo = true
		it.buf = it.filterSongs(al, memo)
		it.pos = 0
		it.nextURL = ""
		return true
	}
	if al.URL() == "" {
		it.err = &NotFoundError{Kind: "album", Name: al.Name()}
		return false
	}
	page, err := it.client.getPage(it.ctx, it.log, pageAlbum, al.URL())
	if errors.Is(err, ErrNotFound) {
		it.err = &NotFoundError{Kind: "album", Name: al.Name()}
		return false
	}
	if err != nil {
		it.err = err
		return false
	}
	parsed, err := scrape.ParseAlbumPage(page.Body, al.artistName)
	if err != nil {
		it.client.metrics.ObserveParseFailure(pageAlbum)
		it.err = &ParseError{Page: pageAlbum, Err: err}
		return false
	}
	it.albumType = albumTypeOf(parsed.Type, al.released, len(parsed.Listing.Tracks))
	it.buf = it.songsFromTracks(al, parsed.Listing.Tracks)
	it.pos = 0
	it.nextURL = parsed.Listing.NextURL
	return true
}

func (it *SongIterator) loadTrackPage() bool {
	al := it.album
	url := it.client.resolver.Absolute(it.nextURL)
	page, err := it.client.getPage(it.ctx, it.log, pageListing, url)
	if errors.Is(err, ErrNotFound) {
		it.err = &NotFoundError{Kind: "listing", Name: al.Name()}
		return false
	}
	if err != nil {
		it.err = err
		return false
	}
	listing, err := scrape.ParseTrackListing(page.Body, al.artistName)
	if err != nil {
		it.client.metrics.ObserveParseFailure(pageListing)
		it.err = &ParseError{Page: pageListing, Err: err}
		return false
	}
	it.buf = it.songsFromTracks(al, listing.Tracks)
	it.pos = 0
	it.nextURL = listing.NextURL
	return true
}

// finishAlbum memoizes a completed unfiltered walk on the album.
func (it *SongIterator) finishAlbum() {
	al := it.album
	if al == nil {
		return
	}
	if !it.albumFromMemo && it.opts.memoEligible() && al.songs == nil {
		songs := it.albumWalked
		if songs == nil {
			songs = []*Song{}
		}
		al.songs = songs
	}
	it.albumWalked = nil
	it.albumFromMemo = false
	it.seen = nil
}

func (it *SongIterator) songsFromTracks(al *Album, tracks []scrape.TrackEntry) []*Song {
	out := make([]*Song, 0, len(tracks))
	for _, tr := range tracks {
		owner := tr.Artist
		if owner == "" {
			owner = al.artistName
		}
		if it.opts.ownOnly && !resolve.SameName(owner, al.artistName) {
			continue
		}
		key := strings.ToLower(resolve.Slug(tr.Name))
		if _, dup := it.seen[key]; dup {
			continue
		}
		it.seen[key] = struct{}{}
		out = append(out, newSongFromTrack(it.client, al, owner, tr, it.albumType))
	}
	return out
}

func (it *SongIterator) filterSongs(al *Album, songs []*Song) []*Song {
	if !it.opts.ownOnly {
		return songs
	}
	out := make([]*Song, 0, len(songs))
	for _, s := range songs {
		if resolve.SameName(s.artistName, al.artistName) {
			out = append(out, s)
		}
	}
	return out
}

func drainSongs(it *SongIterator) ([]*Song, error) {
	var songs []*Song
	for it.Next() {
		songs = append(songs, it.Song())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return songs, nil
}
