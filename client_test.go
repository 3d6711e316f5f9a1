package lyricwiki

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	codes map[string]int
	errs  map[string]error
	hits  map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[string]string{},
		codes: map[string]int{},
		errs:  map[string]error{},
		hits:  map[string]int{},
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[url]++
	if err, ok := f.errs[url]; ok {
		return Page{}, err
	}
	if code, ok := f.codes[url]; ok {
		return Page{URL: url, StatusCode: code}, nil
	}
	if body, ok := f.pages[url]; ok {
		return Page{URL: url, StatusCode: http.StatusOK, Body: body}, nil
	}
	return Page{URL: url, StatusCode: http.StatusNotFound}, nil
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[url]
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.hits {
		n += c
	}
	return n
}

// Fixture URLs follow the wiki's naming scheme, so they double as a
// check that lookups build the same URLs the site uses.
const (
	urlLondonGrammar = "https://lyrics.fandom.com/wiki/London_Grammar"
	urlIfYouWait     = "https://lyrics.fandom.com/wiki/London_Grammar:If_You_Wait_(2013)"
	urlTruth         = "https://lyrics.fandom.com/wiki/London_Grammar:Truth_Is_A_Beautiful_Thing_(2017)"
	urlStrong        = "https://lyrics.fandom.com/wiki/London_Grammar:Strong"
	urlHeyNow        = "https://lyrics.fandom.com/wiki/London_Grammar:Hey_Now"
	urlInterlude     = "https://lyrics.fandom.com/wiki/London_Grammar:Interlude"
	urlWildEyed      = "https://lyrics.fandom.com/wiki/London_Grammar:Wild_Eyed"
	urlHighLife      = "https://lyrics.fandom.com/wiki/London_Grammar:High_Life"
)

const londonGrammarArtistHTML = `<html><body>
<h1 id="firstHeading">London Grammar</h1>
<div class="mw-parser-output">
<p>London Grammar are an English indie pop act formed in Nottingham in 2009.</p>
<div class="artist-info">
<div class="css-table-cell"><p>Years Active:</p><div>2009-present</div></div>
<div class="css-table-cell"><p>Band Members:</p><div><ul>
<li><a>Hannah Reid</a></li>
<li><a>Dan Rothman</a></li>
<li><a>Dominic Major</a></li>
</ul></div></div>
</div>
<h2><span class="mw-headline"><a href="/wiki/London_Grammar:If_You_Wait_(2013)" title="London Grammar:If You Wait (2013)">If You Wait (2013)</a></span></h2>
<ol>
<li><a href="/wiki/London_Grammar:Hey_Now" title="London Grammar:Hey Now">Hey Now</a></li>
<li><a href="/wiki/London_Grammar:Strong" title="London Grammar:Strong">Strong</a></li>
</ol>
<h2><span class="mw-headline"><a href="/wiki/London_Grammar:Truth_Is_A_Beautiful_Thing_(2017)" title="London Grammar:Truth Is A Beautiful Thing (2017)">Truth Is a Beautiful Thing (2017)</a></span></h2>
<ol>
<li><a href="/wiki/London_Grammar:Rooting_For_You" title="London Grammar:Rooting For You">Rooting for You</a></li>
</ol>
<h2><span class="mw-headline">Songs on Compilations</span></h2>
<ul>
<li><a href="/wiki/London_Grammar:Nightcall" title="London Grammar:Nightcall">Nightcall</a></li>
</ul>
<h2><span class="mw-headline">External links</span></h2>
<p><a class="external" href="https://en.wikipedia.org/wiki/London_Grammar">Wikipedia</a></p>
</div></body></html>`

const ifYouWaitAlbumHTML = `<html><body>
<h1 id="firstHeading">London Grammar:If You Wait (2013)</h1>
<div class="mw-parser-output">
<aside class="portable-infobox"><div data-source="type"><div class="pi-data-value">Studio</div></div></aside>
<ol>
<li><a href="/wiki/London_Grammar:Hey_Now" title="London Grammar:Hey Now">Hey Now</a></li>
<li><a href="/wiki/London_Grammar:Stay_Awake" title="London Grammar:Stay Awake">Stay Awake</a></li>
<li><a href="/wiki/London_Grammar:Strong" title="London Grammar:Strong">Strong</a></li>
<li><a href="/wiki/London_Grammar:Nightcall" title="London Grammar:Nightcall">Nightcall</a></li>
<li><a href="/wiki/Kavinsky:Odd_Look" title="Kavinsky:Odd Look">Odd Look</a></li>
</ol>
</div></body></html>`

const truthAlbumHTML = `<html><body>
<h1 id="firstHeading">London Grammar:Truth Is A Beautiful Thing (2017)</h1>
<div class="mw-parser-output">
<aside class="portable-infobox"><div data-source="type"><div class="pi-data-value">Studio</div></div></aside>
<ol>
<li><a href="/wiki/London_Grammar:Rooting_For_You" title="London Grammar:Rooting For You">Rooting for You</a></li>
<li><a href="/wiki/London_Grammar:Big_Picture" title="London Grammar:Big Picture">Big Picture</a></li>
<li><a href="/wiki/London_Grammar:Nightcall" title="London Grammar:Nightcall">Nightcall</a></li>
<li><a href="/wiki/London_Grammar:Interlude" title="London Grammar:Interlude">Interlude</a></li>
</ol>
</div></body></html>`

const strongSongHTML = `<html><body>
<h1 id="firstHeading">London Grammar:Strong</h1>
<div class="mw-parser-output">
<p>This song is performed by <a href="/wiki/London_Grammar" title="London Grammar">London Grammar</a> and appears on the album <a href="/wiki/London_Grammar:If_You_Wait_(2013)" title="London Grammar:If You Wait (2013)">If You Wait (2013)</a>.</p>
<div class="lyricbox">Excuse me for a while<br/>While I&#39;m wide-eyed<br/><br/>And I&#39;m so down caught in the middle</div>
</div></body></html>`

// Hey Now's page exists but carries no lyrics container.
const heyNowSongHTML = `<html><body>
<h1 id="firstHeading">London Grammar:Hey Now</h1>
<div class="mw-parser-output">
<p>This page is a stub.</p>
</div></body></html>`

const interludeSongHTML = `<html><body>
<h1 id="firstHeading">London Grammar:Interlude</h1>
<div class="mw-parser-output">
<div class="lyricbox">(Instrumental)</div>
</div></body></html>`

// Wild Eyed has a page of its own but sits on no album listing.
const wildEyedSongHTML = `<html><body>
<h1 id="firstHeading">London Grammar:Wild Eyed</h1>
<div class="mw-parser-output">
<div class="lyricbox">Keep your wild eyes wide<br/>For me</div>
</div></body></html>`

// High Life is also absent from every listing but its page links back
// to the album it belongs to.
const highLifeSongHTML = `<html><body>
<h1 id="firstHeading">London Grammar:High Life</h1>
<div class="mw-parser-output">
<p>This song appears on the album <a href="/wiki/London_Grammar:If_You_Wait_(2013)" title="London Grammar:If You Wait (2013)">If You Wait (2013)</a>.</p>
<div class="lyricbox">High life<br/>Carry me home</div>
</div></body></html>`

func newLondonGrammarFetcher() *fakeFetcher {
	f := newFakeFetcher()
	f.pages[urlLondonGrammar] = londonGrammarArtistHTML
	f.pages[urlIfYouWait] = ifYouWaitAlbumHTML
	f.pages[urlTruth] = truthAlbumHTML
	f.pages[urlStrong] = strongSongHTML
	f.pages[urlHeyNow] = heyNowSongHTML
	f.pages[urlInterlude] = interludeSongHTML
	f.pages[urlWildEyed] = wildEyedSongHTML
	f.pages[urlHighLife] = highLifeSongHTML
	return f
}

func TestSearchArtist(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves by lowercase name", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		c := New(WithFetcher(f))

		artist, err := c.SearchArtist(ctx, "london grammar")
		require.NoError(t, err)
		require.Equal(t, "London Grammar", artist.Name())
		require.Equal(t, urlLondonGrammar, artist.URL())
		require.Equal(t, 1, f.count(urlLondonGrammar))
	})

	t.Run("odd casing hits the same page", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		c := New(WithFetcher(f))

		a1, err := c.SearchArtist(ctx, "LONDON GRAMMAR")
		require.NoError(t, err)
		a2, err := c.SearchArtist(ctx, "london GRAMMAR")
		require.NoError(t, err)
		require.Equal(t, a1.URL(), a2.URL())
	})

	t.Run("unknown artist", func(t *testing.T) {
		c := New(WithFetcher(newLondonGrammarFetcher()))

		_, err := c.SearchArtist(ctx, "No Such Band")
		require.ErrorIs(t, err, ErrNotFound)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		require.Equal(t, "artist", nf.Kind)
		require.Equal(t, "No Such Band", nf.Name)
	})

	t.Run("blank name", func(t *testing.T) {
		c := New(WithFetcher(newLondonGrammarFetcher()))

		_, err := c.SearchArtist(ctx, "   ")
		require.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("transport error", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		f.errs[urlLondonGrammar] = errors.New("connection refused")
		c := New(WithFetcher(f))

		_, err := c.SearchArtist(ctx, "London Grammar")
		require.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("server error status", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		f.codes[urlLondonGrammar] = http.StatusInternalServerError
		c := New(WithFetcher(f))

		_, err := c.SearchArtist(ctx, "London Grammar")
		require.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("unrecognized page layout", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		f.pages[urlLondonGrammar] = "<html><body><p>maintenance</p></body></html>"
		c := New(WithFetcher(f))

		_, err := c.SearchArtist(ctx, "London Grammar")
		require.ErrorIs(t, err, ErrParse)
	})
}

func TestSearchAlbum(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves from the listing without an album fetch", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		c := New(WithFetcher(f))

		album, err := c.SearchAlbum(ctx, "london grammar", "if you wait")
		require.NoError(t, err)
		require.Equal(t, "If You Wait", album.Name())
		require.Equal(t, 2013, album.Year())
		require.Equal(t, "London Grammar", album.ArtistName())
		require.True(t, album.Released())
		require.Equal(t, urlIfYouWait, album.URL())
		require.Equal(t, AlbumUnknown, album.Type())
		require.Equal(t, 0, f.count(urlIfYouWait))
	})

	t.Run("compilation section entry", func(t *testing.T) {
		c := New(WithFetcher(newLondonGrammarFetcher()))

		album, err := c.SearchAlbum(ctx, "London Grammar", "Songs on Compilations")
		require.NoError(t, err)
		require.False(t, album.Released())
		require.Equal(t, AlbumCompilation, album.Type())
		require.Equal(t, "", album.URL())
	})

	t.Run("unknown album", func(t *testing.T) {
		c := New(WithFetcher(newLondonGrammarFetcher()))

		_, err := c.SearchAlbum(ctx, "London Grammar", "Greatest Hits")
		require.ErrorIs(t, err, ErrNotFound)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		require.Equal(t, "album", nf.Kind)
	})

	t.Run("blank album name", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		c := New(WithFetcher(f))

		_, err := c.SearchAlbum(ctx, "London Grammar", "  ")
		require.ErrorIs(t, err, ErrInvalidName)
		require.Equal(t, 0, f.total())
	})
}

func TestSearchSongWithAlbum(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves through the album listing", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		c := New(WithFetcher(f))

		song, err := c.SearchSong(ctx, "london grammar", "if you wait", "strong")
		require.NoError(t, err)
		require.Equal(t, "Strong", song.Name())
		require.Equal(t, urlStrong, song.URL())
		require.Equal(t, "London Grammar", song.ArtistName())
		require.Equal(t, "If You Wait", song.AlbumName())
		require.Equal(t, 2013, song.AlbumYear())
		require.Equal(t, AlbumStudio, song.AlbumType())
		require.Equal(t, 1, f.count(urlIfYouWait))
		require.Equal(t, 0, f.count(urlStrong))
	})

	t.Run("not on that album", func(t *testing.T) {
		c := New(WithFetcher(newLondonGrammarFetcher()))

		_, err := c.SearchSong(ctx, "London Grammar", "If You Wait", "Big Picture")
		require.ErrorIs(t, err, ErrNotFound)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		require.Equal(t, "song", nf.Kind)
	})

	t.Run("blank song name", func(t *testing.T) {
		c := New(WithFetcher(newLondonGrammarFetcher()))

		_, err := c.SearchSong(ctx, "London Grammar", "If You Wait", "")
		require.ErrorIs(t, err, ErrInvalidName)
	})
}

func TestSearchSongScan(t *testing.T) {
	ctx := context.Background()

	t.Run("unique match across albums", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		c := New(WithFetcher(f))

		song, err := c.SearchSong(ctx, "london grammar", "", "strong")
		require.NoError(t, err)
		require.Equal(t, "Strong", song.Name())
		require.Equal(t, "If You Wait", song.AlbumName())
		// the scan still visits every album to rule out a second match
		require.Equal(t, 1, f.count(urlIfYouWait))
		require.Equal(t, 1, f.count(urlTruth))
	})

	t.Run("title on two albums is ambiguous", func(t *testing.T) {
		c := New(WithFetcher(newLondonGrammarFetcher()))

		_, err := c.SearchSong(ctx, "London Grammar", "", "Nightcall")
		require.ErrorIs(t, err, ErrAmbiguous)
		var amb *AmbiguousError
		require.ErrorAs(t, err, &amb)
		require.Equal(t, "Nightcall", amb.Song)
		require.Equal(t, []string{"If You Wait", "Truth Is a Beautiful Thing"}, amb.Albums)
	})

	t.Run("failing album counts as no match", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		f.codes[urlTruth] = http.StatusInternalServerError
		c := New(WithFetcher(f))

		song, err := c.SearchSong(ctx, "London Grammar", "", "Nightcall")
		require.NoError(t, err)
		require.Equal(t, "If You Wait", song.AlbumName())
	})

	t.Run("repeated scans reuse drained albums", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		c := New(WithFetcher(f))

		artist, err := c.SearchArtist(ctx, "London Grammar")
		require.NoError(t, err)

		_, err = c.scanForSong(ctx, c.opLogger("test"), artist, "Strong")
		require.NoError(t, err)
		before := f.total()

		_, err = c.scanForSong(ctx, c.opLogger("test"), artist, "Big Picture")
		require.NoError(t, err)
		require.Equal(t, before, f.total())
	})

	t.Run("falls back to the song page", func(t *testing.T) {
		f := newLondonGrammarFetcher()
		c := New(WithFetcher(f))

		song, err := c.SearchSong(ctx, "London Grammar", "", "wild eyed")
		require.NoError(t, err)
		require.Equal(t, "Wild Eyed", song.Name())
		require.Equal(t, urlWildEyed, song.URL())
		require.Equal(t, "", song.AlbumName())
		require.Equal(t, 1, f.count(urlWildEyed))

		// the page was just parsed, so lyrics are already in hand
		lyrics, err := song.Lyrics(ctx)
		require.NoError(t, err)
		require.Equal(t, "Keep your wild eyes wide\nFor me", lyrics)
		require.Equal(t, 1, f.count(urlWildEyed))
	})

	t.Run("song page backlink supplies the album", func(t *testing.T) {
		c := New(WithFetcher(newLondonGrammarFetcher()))

		song, err := c.SearchSong(ctx, "London Grammar", "", "High Life")
		require.NoError(t, err)
		require.Equal(t, "If You Wait", song.AlbumName())
		require.Equal(t, 2013, song.AlbumYear())
	})

	t.Run("nowhere to be found", func(t *testing.T) {
		c := New(WithFetcher(newLondonGrammarFetcher()))

		_, err := c.SearchSong(ctx, "London Grammar", "", "Missing Song")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestArtistInfo(t *testing.T) {
	ctx := context.Background()
	f := newLondonGrammarFetcher()
	c := New(WithFetcher(f))

	artist, err := c.SearchArtist(ctx, "London Grammar")
	require.NoError(t, err)

	info, err := artist.Info(ctx)
	require.NoError(t, err)
	require.Contains(t, info.Description, "indie pop act")
	require.Equal(t, []string{"2009-present"}, info.Details["Years Active"])
	require.Equal(t, []string{"Hannah Reid", "Dan Rothman", "Dominic Major"}, info.Details["Band Members"])
	require.Equal(t, "https://en.wikipedia.org/wiki/London_Grammar", info.Links["Wikipedia"])
	require.Equal(t, 2, f.count(urlLondonGrammar))

	again, err := artist.Info(ctx)
	require.NoError(t, err)
	require.Same(t, info, again)
	require.Equal(t, 2, f.count(urlLondonGrammar))
}
