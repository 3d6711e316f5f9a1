package lyricwiki

// ArtistInfo is the semi-structured information block of an artist
// page. All fields are best effort: a page lacking a section leaves
// the corresponding field empty.
type ArtistInfo struct {
	// Description is the lead paragraphs before the first section
	// heading, joined with blank lines.
	Description string

	// Details maps labels of the artist details table, such as "Years
	// Active" or "Band Members", to their values.
	Details map[string][]string

	// Links maps recognized external platforms, such as "Wikipedia" or
	// "AllMusic", to the first URL the page lists for them.
	Links map[string]string
}
