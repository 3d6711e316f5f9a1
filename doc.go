// Package lyricwiki navigates the lyrics.fandom.com song wiki through
// its public pages, from artist lookup down to individual lyrics. The
// wiki has no API for this, so the package builds the page URLs the way
// the site does and scrapes the HTML it gets back.
//
// Lookups return records that expand lazily:
//
//	c := lyricwiki.New()
//	artist, err := c.SearchArtist(ctx, "london grammar")
//	if err != nil {
//		// handle
//	}
//	it := artist.Albums(ctx)
//	for it.Next() {
//		fmt.Println(it.Album().Name())
//	}
//	if err := it.Err(); err != nil {
//		// handle
//	}
//
// Nothing is fetched before it is asked for: continuation pages of a
// listing load as iteration reaches them, lyrics load on the first
// Lyrics call, and navigating from a song back to its album or artist
// performs a fresh lookup.
package lyricwiki
