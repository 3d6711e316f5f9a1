package lyricwiki

import "strings"

// EntityRef identifies one wiki entity: the display name in the site's
// casing plus the page URL used to refetch it. Every record kind
// carries one.
type EntityRef struct {
	Name string
	URL  string
}

// AlbumType classifies an album.
type AlbumType string

const (
	AlbumStudio      AlbumType = "Studio"
	AlbumEP          AlbumType = "EP"
	AlbumSingle      AlbumType = "Single"
	AlbumCompilation AlbumType = "Compilation"
	AlbumUnknown     AlbumType = "Unknown"
)

// albumTypeOf derives an album's type. Compilation and appearance
// sections are compilations outright. Released albums use the page's
// stated type when it has one, and otherwise fall back to the track
// count: one track is a single, up to five an EP.
func albumTypeOf(stated string, released bool, trackCount int) AlbumType {
	if !released {
		return AlbumCompilation
	}
	switch strings.ToLower(strings.TrimSpace(stated)) {
	case "studio", "studio album", "album", "lp":
		return AlbumStudio
	case "ep":
		return AlbumEP
	case "single":
		return AlbumSingle
	case "compilation", "soundtrack":
		return AlbumCompilation
	}
	switch {
	case trackCount <= 0:
		return AlbumUnknown
	case trackCount == 1:
		return AlbumSingle
	case trackCount < 6:
		return AlbumEP
	default:
		return AlbumStudio
	}
}
