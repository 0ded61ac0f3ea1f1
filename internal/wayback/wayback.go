// Package wayback builds Wayback Machine snapshot URLs from user-entered sites.
package wayback

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const (
	// MinYear is the earliest year the time machine will travel to.
	MinYear = 1995
	// MaxYear is the latest supported year.
	MaxYear = 2026

	// ArchiveBase is the snapshot endpoint of the archive service.
	ArchiveBase = "https://web.archive.org/web/"
)

// schemes are matched case-insensitively by stripScheme.
var schemes = []string{"https://", "http://"}

// Normalize turns arbitrary user input into a canonical host: trimmed,
// lower-cased, with any leading scheme and "www." removed. Nothing is
// validated; malformed input comes back cleaned as far as possible.
//
// Prefixes are stripped until the value no longer changes, which keeps
// Normalize(Normalize(x)) == Normalize(x) for every x.
func Normalize(input string) string {
	s := input
	for {
		next := strings.ToLower(strings.TrimSpace(s))
		next = stripScheme(next)
		next = strings.TrimPrefix(next, "www.")
		if next == s {
			return s
		}
		s = next
	}
}

// stripScheme removes one leading http:// or https:// (case-insensitive).
func stripScheme(s string) string {
	for _, scheme := range schemes {
		if len(s) >= len(scheme) && strings.EqualFold(s[:len(scheme)], scheme) {
			return s[len(scheme):]
		}
	}
	return s
}

// Timestamp returns the archive timestamp for midnight, January 1st of year.
func Timestamp(year int) string {
	return strconv.Itoa(year) + "0101000000"
}

// BuildArchiveURL returns the snapshot URL of host as archived at the start
// of year. The host is re-qualified with http:// since the archive expects
// a full target URL. The result is always a syntactically valid URL, even
// when the archive has no capture for that combination.
func BuildArchiveURL(host string, year int) string {
	target := stripScheme(strings.TrimSpace(host))
	return ArchiveBase + Timestamp(year) + "/http://" + target
}

// ClampYear forces year into [MinYear, MaxYear].
func ClampYear(year int) int {
	if year < MinYear {
		return MinYear
	}
	if year > MaxYear {
		return MaxYear
	}
	return year
}

// InRange reports whether year lies inside the supported range.
func InRange(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// RootDomain extracts the registrable domain (eTLD+1) from a canonical host.
// Any path, port or trailing dot is ignored.
//   - "news.bbc.co.uk"      -> "bbc.co.uk"
//   - "google.com/search"   -> "google.com"
func RootDomain(host string) (string, error) {
	h := Normalize(host)
	if i := strings.IndexAny(h, "/?#"); i >= 0 {
		h = h[:i]
	}
	if i := strings.LastIndex(h, ":"); i >= 0 {
		h = h[:i]
	}
	h = strings.TrimSuffix(h, ".")
	if h == "" {
		return "", fmt.Errorf("empty host")
	}

	root, err := publicsuffix.EffectiveTLDPlusOne(h)
	if err != nil {
		return "", fmt.Errorf("extracting root domain of %q: %w", host, err)
	}
	return root, nil
}
