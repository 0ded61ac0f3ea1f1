package navigator

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ziadkadry99/timemachine/internal/wayback"
)

// Query parameter names of the shareable address.
const (
	ParamSite = "site"
	ParamYear = "year"
)

// Fallbacks used when the address carries no usable selection.
const (
	DefaultSite = "google.com"
	DefaultYear = 1999
)

// Selection is what the visitor is looking at. Host is canonical and never
// empty; Year is always inside [wayback.MinYear, wayback.MaxYear].
type Selection struct {
	Host string `json:"site"`
	Year int    `json:"year"`
}

// ArchiveURL is the snapshot URL for the selection.
func (s Selection) ArchiveURL() string {
	return wayback.BuildArchiveURL(s.Host, s.Year)
}

// Query returns the shareable query parameters mirroring s.
func (s Selection) Query() url.Values {
	return url.Values{
		ParamSite: {s.Host},
		ParamYear: {strconv.Itoa(s.Year)},
	}
}

// Defaults seeds a selection when the address is empty or invalid.
type Defaults struct {
	Site string
	Year int
}

func (d Defaults) orBuiltin() Defaults {
	if wayback.Normalize(d.Site) == "" {
		d.Site = DefaultSite
	}
	if !wayback.InRange(d.Year) {
		d.Year = DefaultYear
	}
	return d
}

// ParseSelection reads the initial selection from the site and year query
// parameters. A year that is missing, non-numeric or out of range falls back
// to the default year; a site that normalizes to nothing falls back to the
// default site.
func ParseSelection(q url.Values, d Defaults) Selection {
	d = d.orBuiltin()
	sel := Selection{Host: wayback.Normalize(d.Site), Year: d.Year}

	if site := wayback.Normalize(q.Get(ParamSite)); site != "" {
		sel.Host = site
	}
	if y, err := strconv.Atoi(strings.TrimSpace(q.Get(ParamYear))); err == nil && wayback.InRange(y) {
		sel.Year = y
	}
	return sel
}

// withFloor raises year to floor, then clamps into the supported range.
func withFloor(year, floor int) int {
	if year < floor {
		year = floor
	}
	return wayback.ClampYear(year)
}
