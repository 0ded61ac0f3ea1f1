package ui

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/ziadkadry99/timemachine/internal/catalog"
	"github.com/ziadkadry99/timemachine/internal/navigator"
	"github.com/ziadkadry99/timemachine/internal/prefs"
	"github.com/ziadkadry99/timemachine/internal/wayback"
)

//go:embed assets/index.html.tmpl
var indexTemplate string

//go:embed assets/about.html.tmpl
var aboutTemplate string

//go:embed assets/about.md
var aboutMarkdown []byte

var templateFuncs = template.FuncMap{
	"timestamp": wayback.Timestamp,
}

// siteButton is a quick pick as rendered on the page.
type siteButton struct {
	catalog.Site
	Active bool
}

// pageData holds the data passed to the page template.
type pageData struct {
	Theme     prefs.Theme
	Selection navigator.Selection
	Sites     []siteButton
	MinYear   int
	MaxYear   int
}

func siteButtons(cat *catalog.Catalog, host string) []siteButton {
	popular := cat.Popular()
	out := make([]siteButton, len(popular))
	for i, s := range popular {
		out[i] = siteButton{Site: s, Active: catalog.IsActive(s, host)}
	}
	return out
}

// ServeIndex renders the time machine page for the selection in the
// request's query string. The frame itself is filled in over the session
// websocket.
func (u *UI) ServeIndex(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(w.Header(), r)

	theme, err := u.opts.Prefs.Theme(r.Context(), visitor)
	if err != nil {
		u.logger.Error("reading theme", "visitor", visitor, "err", err)
		theme = prefs.DefaultTheme
	}

	sel := navigator.ParseSelection(r.URL.Query(), u.opts.Defaults)
	data := pageData{
		Theme:     theme,
		Selection: sel,
		Sites:     siteButtons(u.opts.Catalog, sel.Host),
		MinYear:   wayback.MinYear,
		MaxYear:   wayback.MaxYear,
	}

	var buf bytes.Buffer
	if err := u.page.Execute(&buf, data); err != nil {
		u.logger.Error("rendering page", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// ServeAbout renders the about page.
func (u *UI) ServeAbout(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(w.Header(), r)
	theme, err := u.opts.Prefs.Theme(r.Context(), visitor)
	if err != nil {
		theme = prefs.DefaultTheme
	}

	var buf bytes.Buffer
	err = u.about.Execute(&buf, struct {
		Theme prefs.Theme
		Body  template.HTML
	}{theme, u.aboutHTML})
	if err != nil {
		u.logger.Error("rendering about page", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// renderMarkdown converts trusted, embedded markdown to HTML.
func renderMarkdown(src []byte) (template.HTML, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
