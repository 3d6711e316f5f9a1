package lyricwiki

import (
	"context"

	"go.uber.org/zap"

	"github.com/gofandom/lyricwiki/internal/scrape"
)

// Album is an album record, usually born from an artist's listing.
// Fields reflect what the listing stated; the track list is fetched
// lazily from the album's own page.
type Album struct {
	ref        EntityRef
	client     *Client
	artistName string
	albumType  AlbumType
	year       int
	released   bool

	songs []*Song // memo of a complete unfiltered walk
}

// newAlbumFromEntry builds an album record from one listing entry.
// Entries whose link is red get no URL; such albums still appear in
// iteration but cannot be expanded into songs.
func newAlbumFromEntry(c *Client, artistName string, e scrape.AlbumEntry) *Album {
	url := ""
	switch {
	case e.Href != "":
		url = c.resolver.Absolute(e.Href)
	case e.Year > 0:
		if u, err := c.resolver.AlbumURL(artistName, e.Name, e.Year); err == nil {
			url = u
		}
	}
	typ := AlbumUnknown
	if !e.Released {
		typ = AlbumCompilation
	}
	return &Album{
		ref:        EntityRef{Name: e.Name, URL: url},
		client:     c,
		artistName: artistName,
		albumType:  typ,
		year:       e.Year,
		released:   e.Released,
	}
}

// Name returns the album title.
func (al *Album) Name() string { return al.ref.Name }

// URL returns the album's page URL, or "" when the listing links it in
// red.
func (al *Album) URL() string { return al.ref.URL }

// ArtistName returns the owning artist's name.
func (al *Album) ArtistName() string { return al.artistName }

// Year returns the release year stated in the listing, 0 if absent.
func (al *Album) Year() int { return al.year }

// Type classifies the album as far as the listing alone can tell.
// Songs resolved through this album carry a refined type once the
// album page has been read.
func (al *Album) Type() AlbumType { return al.albumType }

// Released reports whether the album sits in a released section of the
// listing rather than among compilations and other appearances.
func (al *Album) Released() bool { return al.released }

// Songs returns a lazy iterator over the album's tracks in page order.
func (al *Album) Songs(ctx context.Context, opts ...ListOption) *SongIterator {
	return newAlbumSongIterator(ctx, al, al.client.opLogger("album_songs"), opts)
}

// AllSongs fetches the whole track listing eagerly.
func (al *Album) AllSongs(ctx context.Context, opts ...ListOption) ([]*Song, error) {
	return drainSongs(al.Songs(ctx, opts...))
}

func (al *Album) allSongs(ctx context.Context, log *zap.Logger, opts []ListOption) ([]*Song, error) {
	return drainSongs(newAlbumSongIterator(ctx, al, log, opts))
}

// Artist resolves the owning artist with a fresh lookup. The album
// keeps no pointer back, so this reflects the wiki's current state.
func (al *Album) Artist(ctx context.Context) (*Artist, error) {
	return al.client.SearchArtist(ctx, al.artistName)
}
