// Package trips keeps a log of every snapshot the time machine travelled to.
package trips

import (
	"time"

	"github.com/ziadkadry99/timemachine/internal/wayback"
)

// Cause mirrors the intent that led to the trip.
type Cause string

const (
	CauseInitial Cause = "initial"
	CauseSite    Cause = "site"
	CauseYear    Cause = "year"
	CauseSearch  Cause = "search"
	CauseRandom  Cause = "random"
)

// Entry is a single published archive URL.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	VisitorID  string    `json:"-"`
	Host       string    `json:"host"`
	RootDomain string    `json:"root_domain"`
	Year       int       `json:"year"`
	ArchiveURL string    `json:"archive_url"`
	Cause      Cause     `json:"cause"`
}

// NewEntry builds an entry for host at year. RootDomain is left empty for
// hosts without a registrable domain (typos, bare names, IPs).
func NewEntry(visitorID, host string, year int, cause Cause) Entry {
	root, _ := wayback.RootDomain(host)
	return Entry{
		VisitorID:  visitorID,
		Host:       host,
		RootDomain: root,
		Year:       year,
		ArchiveURL: wayback.BuildArchiveURL(host, year),
		Cause:      cause,
	}
}

// DomainCount is one row of the most-visited ranking.
type DomainCount struct {
	RootDomain string `json:"root_domain"`
	Trips      int    `json:"trips"`
}
