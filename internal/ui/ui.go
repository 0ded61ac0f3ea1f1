// Package ui serves the time machine page and hosts one navigation
// controller per connected browser.
package ui

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ziadkadry99/timemachine/internal/catalog"
	"github.com/ziadkadry99/timemachine/internal/navigator"
	"github.com/ziadkadry99/timemachine/internal/prefs"
	"github.com/ziadkadry99/timemachine/internal/trips"
)

// visitorCookie identifies a browser for its stored preferences.
const visitorCookie = "tm_visitor"

// Options configures the UI.
type Options struct {
	Catalog  *catalog.Catalog
	Prefs    *prefs.Store
	Trips    *trips.Store // nil disables the trip log
	Defaults navigator.Defaults

	SettleDelay     time.Duration
	LoadTimeout     time.Duration
	MessageInterval time.Duration

	Logger *log.Logger
}

// UI provides the page, its JSON API and the websocket session endpoint.
type UI struct {
	opts   Options
	logger *log.Logger
	page   *template.Template
	about  *template.Template
	// aboutHTML is the rendered markdown body of the about page.
	aboutHTML template.HTML
}

// New parses the embedded templates and renders the about page.
func New(opts Options) (*UI, error) {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Prefs == nil {
		return nil, fmt.Errorf("preference store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	page, err := template.New("index").Funcs(templateFuncs).Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	about, err := template.New("about").Parse(aboutTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing about template: %w", err)
	}
	body, err := renderMarkdown(aboutMarkdown)
	if err != nil {
		return nil, fmt.Errorf("rendering about page: %w", err)
	}

	return &UI{
		opts:      opts,
		logger:    logger.WithPrefix("ui"),
		page:      page,
		about:     about,
		aboutHTML: body,
	}, nil
}

// RegisterRoutes mounts all UI routes onto the given router.
func (u *UI) RegisterRoutes(r chi.Router) {
	r.Get("/", u.ServeIndex)
	r.Get("/about", u.ServeAbout)
	r.Get("/api/sites", u.handleSites)
	r.Get("/api/archive-url", u.handleArchiveURL)
	r.Get("/api/theme", u.handleTheme)
	r.Post("/api/theme/toggle", u.handleToggleTheme)
	r.Get("/ws/session", u.handleWebSocket)
}

// VisitorFromRequest returns the visitor id carried by the request's
// cookie, or "" when it is missing or malformed. It never issues one.
func VisitorFromRequest(r *http.Request) string {
	c, err := r.Cookie(visitorCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// visitorID returns the visitor cookie, issuing a fresh one when it is
// missing or malformed. The cookie is written to header so the same
// helper serves plain responses and websocket upgrades.
func visitorID(header http.Header, r *http.Request) string {
	if id := VisitorFromRequest(r); id != "" {
		return id
	}

	id := uuid.New().String()
	cookie := &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	header.Add("Set-Cookie", cookie.String())
	return id
}
