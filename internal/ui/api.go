package ui

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ziadkadry99/timemachine/internal/catalog"
	"github.com/ziadkadry99/timemachine/internal/navigator"
	"github.com/ziadkadry99/timemachine/internal/prefs"
	"github.com/ziadkadry99/timemachine/internal/wayback"
)

type siteResponse struct {
	catalog.Site
	Active bool `json:"active"`
}

type sitesResponse struct {
	Popular []siteResponse `json:"popular"`
	All     []siteResponse `json:"all"`
}

type archiveURLResponse struct {
	Site       string `json:"site"`
	Year       int    `json:"year"`
	Timestamp  string `json:"timestamp"`
	ArchiveURL string `json:"archive_url"`
	Query      string `json:"query"`
}

type themeResponse struct {
	Theme prefs.Theme `json:"theme"`
}

func withActive(sites []catalog.Site, host string) []siteResponse {
	out := make([]siteResponse, len(sites))
	for i, s := range sites {
		out[i] = siteResponse{Site: s, Active: host != "" && catalog.IsActive(s, host)}
	}
	return out
}

// handleSites lists the quick picks and the full random-trip catalog. An
// optional ?site= marks the entries that count as active for that host.
func (u *UI) handleSites(w http.ResponseWriter, r *http.Request) {
	host := wayback.Normalize(r.URL.Query().Get("site"))
	writeJSON(w, http.StatusOK, sitesResponse{
		Popular: withActive(u.opts.Catalog.Popular(), host),
		All:     withActive(u.opts.Catalog.All(), host),
	})
}

// handleArchiveURL resolves a site and year to a snapshot URL without
// touching any session. Years outside the supported range are clamped;
// a missing or unparseable year uses the default.
func (u *UI) handleArchiveURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := navigator.ParseSelection(q, u.opts.Defaults)
	if y, err := strconv.Atoi(strings.TrimSpace(q.Get(navigator.ParamYear))); err == nil {
		sel.Year = wayback.ClampYear(y)
	}

	writeJSON(w, http.StatusOK, archiveURLResponse{
		Site:       sel.Host,
		Year:       sel.Year,
		Timestamp:  wayback.Timestamp(sel.Year),
		ArchiveURL: sel.ArchiveURL(),
		Query:      sel.Query().Encode(),
	})
}

func (u *UI) handleTheme(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(w.Header(), r)
	theme, err := u.opts.Prefs.Theme(r.Context(), visitor)
	if err != nil {
		u.logger.Error("reading theme", "visitor", visitor, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read theme")
		return
	}
	writeJSON(w, http.StatusOK, themeResponse{Theme: theme})
}

func (u *UI) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(w.Header(), r)
	theme, err := u.opts.Prefs.ToggleTheme(r.Context(), visitor)
	if err != nil {
		u.logger.Error("toggling theme", "visitor", visitor, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save theme")
		return
	}
	writeJSON(w, http.StatusOK, themeResponse{Theme: theme})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
