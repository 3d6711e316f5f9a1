package lyricwiki

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gofandom/lyricwiki/internal/scrape"
)

// Song is a song record. It knows which artist and album it came from
// by name only; the parents are re-resolved on demand.
type Song struct {
	ref        EntityRef
	client     *Client
	artistName string
	albumName  string
	albumType  AlbumType
	albumYear  int

	lyrics        string
	lyricsFetched bool
}

// newSongFromTrack builds a song record from one track entry. owner is
// the artist credited for the track, which differs from the album's
// artist on covers and guest appearances.
func newSongFromTrack(c *Client, al *Album, owner string, tr scrape.TrackEntry, typ AlbumType) *Song {
	url := ""
	if tr.Href != "" {
		url = c.resolver.Absolute(tr.Href)
	} else if u, err := c.resolver.SongURL(owner, tr.Name); err == nil {
		url = u
	}
	return &Song{
		ref:        EntityRef{Name: tr.Name, URL: url},
		client:     c,
		artistName: owner,
		albumName:  al.ref.Name,
		albumType:  typ,
		albumYear:  al.year,
	}
}

// Name returns the song title.
func (s *Song) Name() string { return s.ref.Name }

// URL returns the song's page URL.
func (s *Song) URL() string { return s.ref.URL }

// ArtistName returns the name of the artist credited for the song.
func (s *Song) ArtistName() string { return s.artistName }

// AlbumName returns the name of the album the song was resolved
// through, "" when it was resolved straight from its page without
// album context.
func (s *Song) AlbumName() string { return s.albumName }

// AlbumType returns the classification of the song's album.
func (s *Song) AlbumType() AlbumType { return s.albumType }

// AlbumYear returns the release year of the song's album, 0 if
// unknown.
func (s *Song) AlbumYear() int { return s.albumYear }

// Lyrics fetches the song's page and returns its lyrics text. Lines
// are joined with \n as the page renders them. The result is memoized
// on first success, so repeated calls cost no further fetches; that
// includes songs whose page has no lyrics, which yield "". Instrumental
// markers also yield "".
func (s *Song) Lyrics(ctx context.Context) (string, error) {
	if s.lyricsFetched {
		s.client.metrics.ObserveLyricsCacheHit()
		return s.lyrics, nil
	}
	log := s.client.opLogger("lyrics")
	url := s.ref.URL
	if url == "" {
		var err error
		url, err = s.client.resolver.SongURL(s.artistName, s.ref.Name)
		if err != nil {
			return "", &InvalidNameError{Field: "song"}
		}
	}
	page, err := s.client.getPage(ctx, log, pageSong, url)
	if errors.Is(err, ErrNotFound) {
		return "", &NotFoundError{Kind: "song", Name: s.ref.Name}
	}
	if err != nil {
		return "", err
	}
	parsed, err := scrape.ParseSongPage(page.Body, s.artistName)
	if err != nil {
		s.client.metrics.ObserveParseFailure(pageSong)
		return "", &ParseError{Page: pageSong, Err: err}
	}
	if !parsed.HasLyrics {
		log.Debug("song page has no lyrics box", zap.String("song", s.ref.Name))
	}
	s.lyrics = parsed.Lyrics
	s.lyricsFetched = true
	return s.lyrics, nil
}

// Album resolves the song's album with a fresh lookup.
func (s *Song) Album(ctx context.Context) (*Album, error) {
	if s.albumName == "" {
		return nil, &NotFoundError{Kind: "album", Name: s.ref.Name}
	}
	return s.client.SearchAlbum(ctx, s.artistName, s.albumName)
}

// Artist resolves the song's artist with a fresh lookup.
func (s *Song) Artist(ctx context.Context) (*Artist, error) {
	return s.client.SearchArtist(ctx, s.artistName)
}
