package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/inkwell/internal/web"
)

// PageHandler serves the static pages.
type PageHandler struct {
	renderer *web.Renderer
	logger   *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(renderer *web.Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{renderer: renderer, logger: logger}
}

// HandleAbout renders the about page.
//
// HTTP: GET /about
func (h *PageHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "about.html", page(r, "About", nil))
}

// HandleContact renders the contact page.
//
// HTTP: GET /contact
func (h *PageHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "contact.html", page(r, "Contact", nil))
}

// HandleNotFound is the router's fallback for unknown paths, so even a typo
// in the address bar gets the site's own 404 page instead of the default
// plain-text one.
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusNotFound, "error.html",
		page(r, "Not Found", errorPage{
			Status:  http.StatusNotFound,
			Heading: "Not Found",
			Message: "The page you are looking for does not exist.",
		}))
}
