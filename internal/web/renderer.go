// Package web renders the site's HTML pages and carries flash messages
// between requests.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/inkwell/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is the payload every template receives. The layout reads Title,
// Flash, and User; the page block reads Data.
type PageData struct {
	Title string
	Flash string
	User  *model.User
	Year  int
	Data  any
}

// Renderer holds the parsed template sets.
//
// ONE SET PER PAGE:
// Each page is parsed together with the layout into its own template set,
// and rendering executes the "layout" template of that set. Parsing all
// pages into a single set would make same-named blocks ("content") clobber
// each other — with one set per page, each page's content block stays its own.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// funcs are helpers available inside templates.
//
// "raw" bypasses html/template's contextual escaping. It is used ONLY for
// post bodies, which were sanitized through an allow-list before they were
// stored — every other field keeps escaping-by-default.
var funcs = template.FuncMap{
	"raw": func(s string) template.HTML { return template.HTML(s) },
}

// NewRenderer parses all embedded templates at startup.
//
// WHY PARSE AT STARTUP?
// A syntax error in any template crashes the server at boot instead of
// producing a 500 for the first visitor who happens to hit that page. The
// binary embeds the templates, so there is no file path to misconfigure.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	entries, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: globbing templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, entry := range entries {
		name := entry[len("templates/"):]
		if name == "layout.html" {
			continue
		}

		tmpl, err := template.New(name).Funcs(funcs).ParseFS(
			templateFS, "templates/layout.html", entry)
		if err != nil {
			return nil, fmt.Errorf("web: parsing template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render writes the given page wrapped in the layout.
//
// The page is executed into a buffer first: if execution fails halfway, the
// visitor gets a clean error page instead of half a page followed by garbage.
// The pending flash message (if any) is popped here so no handler has to
// remember to do it.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data *PageData) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.logger.Error("unknown template requested", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	if data.Flash == "" {
		if msg, ok := PopFlash(w, r); ok {
			data.Flash = msg
		}
	}
	data.Year = time.Now().Year()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rn.logger.Error("rendering template", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
