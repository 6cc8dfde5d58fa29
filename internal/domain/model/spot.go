package model

// SunsetSpot is a curated viewpoint from the public site. Spots are not
// bookable themselves; a spot target narrows attribution to listings in
// the spot's area.
type SunsetSpot struct {
	ID   string
	Slug string
	Name string
	Area string
}
