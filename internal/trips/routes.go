package trips

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ziadkadry99/timemachine/internal/wayback"
)

// VisitorFunc identifies the visitor making a request, or returns "" when
// the request carries no identity.
type VisitorFunc func(r *http.Request) string

// RegisterRoutes mounts trip endpoints under /api/trips on the given router.
// Every endpoint only sees the trips of the visitor returned by visitorOf.
func RegisterRoutes(r chi.Router, store *Store, visitorOf VisitorFunc) {
	r.Route("/api/trips", func(r chi.Router) {
		r.Get("/", handleQuery(store, visitorOf))
		r.Get("/top", handleTop(store, visitorOf))
		r.Get("/{id}", handleGetByID(store, visitorOf))
	})
}

func handleQuery(store *Store, visitorOf VisitorFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor := visitorOf(r)
		if visitor == "" {
			writeJSON(w, http.StatusOK, []Entry{})
			return
		}
		q := r.URL.Query()

		filter := Filter{
			VisitorID:  visitor,
			Host:       wayback.Normalize(q.Get("site")),
			RootDomain: q.Get("domain"),
			Limit:      50,
		}
		if v := q.Get("year"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Year = n
			}
		}
		if v := q.Get("since"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				filter.Since = &t
			}
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				filter.Limit = n
			}
		}
		if v := q.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Offset = n
			}
		}

		entries, err := store.Query(r.Context(), filter)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func handleTop(store *Store, visitorOf VisitorFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor := visitorOf(r)
		if visitor == "" {
			writeJSON(w, http.StatusOK, []DomainCount{})
			return
		}
		limit := 10
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		top, err := store.TopDomains(r.Context(), visitor, limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if top == nil {
			top = []DomainCount{}
		}
		writeJSON(w, http.StatusOK, top)
	}
}

func handleGetByID(store *Store, visitorOf VisitorFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		entry, err := store.GetByID(r.Context(), id)
		// Another visitor's trip is reported as missing.
		if errors.Is(err, sql.ErrNoRows) || (err == nil && entry.VisitorID != visitorOf(r)) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
