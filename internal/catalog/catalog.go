// Package catalog holds the read-only list of sites offered as quick picks
// and as candidates for a random trip.
package catalog

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ziadkadry99/timemachine/internal/wayback"
)

// Site is a catalog entry. Host is canonical (see wayback.Normalize) and
// StartYear is the first year the archive holds something worth seeing.
type Site struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Host      string `json:"host"`
	Icon      string `json:"icon"`
	StartYear int    `json:"start_year"`
}

// popularSites are the quick picks shown above the address bar.
var popularSites = []Site{
	{ID: "google", Name: "Google", Host: "google.com", Icon: "🔍", StartYear: 1998},
	{ID: "apple", Name: "Apple", Host: "apple.com", Icon: "🍎", StartYear: 1996},
	{ID: "amazon", Name: "Amazon", Host: "amazon.com", Icon: "📦", StartYear: 1995},
	{ID: "facebook", Name: "Facebook", Host: "facebook.com", Icon: "💙", StartYear: 2004},
	{ID: "youtube", Name: "YouTube", Host: "youtube.com", Icon: "📺", StartYear: 2005},
	{ID: "nyt", Name: "NY Times", Host: "nytimes.com", Icon: "📰", StartYear: 1996},
	{ID: "netflix", Name: "Netflix", Host: "netflix.com", Icon: "🍿", StartYear: 1997},
	{ID: "yahoo", Name: "Yahoo", Host: "yahoo.com", Icon: "🟣", StartYear: 1995},
	{ID: "wikipedia", Name: "Wikipedia", Host: "wikipedia.org", Icon: "🌐", StartYear: 2001},
	{ID: "ebay", Name: "eBay", Host: "ebay.com", Icon: "💰", StartYear: 1995},
}

// Catalog is the immutable set of known sites.
type Catalog struct {
	popular []Site
	all     []Site
	byID    map[string]Site
}

// New builds a catalog from the built-in popular sites plus extra entries.
// Extra entries are normalized and validated; the first invalid one aborts.
func New(extra []Site) (*Catalog, error) {
	c := &Catalog{
		popular: append([]Site(nil), popularSites...),
		byID:    make(map[string]Site, len(popularSites)+len(extra)),
	}
	for _, s := range c.popular {
		c.byID[s.ID] = s
	}
	c.all = append([]Site(nil), c.popular...)

	for i, s := range extra {
		s.ID = strings.TrimSpace(s.ID)
		s.Name = strings.TrimSpace(s.Name)
		s.Host = wayback.Normalize(s.Host)
		if err := validate(s); err != nil {
			return nil, fmt.Errorf("extra site %d: %w", i, err)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("extra site %d: duplicate id %q", i, s.ID)
		}
		c.byID[s.ID] = s
		c.all = append(c.all, s)
	}
	return c, nil
}

// Default returns the catalog with only the built-in sites.
func Default() *Catalog {
	c, err := New(nil)
	if err != nil {
		panic(err)
	}
	return c
}

func validate(s Site) error {
	if s.ID == "" {
		return fmt.Errorf("id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required for %q", s.ID)
	}
	if s.Host == "" {
		return fmt.Errorf("host is required for %q", s.ID)
	}
	if _, err := wayback.RootDomain(s.Host); err != nil {
		return fmt.Errorf("invalid host for %q: %w", s.ID, err)
	}
	if !wayback.InRange(s.StartYear) {
		return fmt.Errorf("start_year %d for %q outside %d-%d", s.StartYear, s.ID, wayback.MinYear, wayback.MaxYear)
	}
	return nil
}

// Popular returns the quick-pick sites in display order.
func (c *Catalog) Popular() []Site { return append([]Site(nil), c.popular...) }

// All returns every site eligible for a random trip.
func (c *Catalog) All() []Site { return append([]Site(nil), c.all...) }

// Len returns the number of sites in the full catalog.
func (c *Catalog) Len() int { return len(c.all) }

// Lookup finds a site by its id.
func (c *Catalog) Lookup(id string) (Site, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Random picks a site uniformly from the full catalog.
func (c *Catalog) Random(r *rand.Rand) Site {
	return c.all[r.IntN(len(c.all))]
}

// IsActive reports whether site should be highlighted for the current host.
// Matching is case-insensitive containment, so "maps.google.com/x" keeps
// the Google pick lit.
func IsActive(site Site, currentHost string) bool {
	return strings.Contains(strings.ToLower(currentHost), strings.ToLower(site.Host))
}
