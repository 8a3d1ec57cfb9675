package handler

// RESPONSE HELPERS:
// This is an HTML site, so "responding with an error" means rendering the
// error page, and most non-error outcomes are redirects (POST-redirect-GET).
//
// ERROR MAPPING:
// The service layer returns apperror sentinels (ErrNotFound, ErrConflict...).
// This file is where those get translated to HTTP statuses and pages.
//
// WHY HERE AND NOT IN THE SERVICE?
// The service layer should not know about HTTP status codes. errors.Is()
// walks the whole wrap chain, so a service error like
//
//	fmt.Errorf("service/post: getting post %s: %w", id, apperror.NotFound(...))
//
// still matches apperror.ErrNotFound here.

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/web"
)

// errorPage is the payload for templates/error.html.
type errorPage struct {
	Status  int
	Heading string
	Message string
}

// renderError maps a domain error onto the error page.
//
// Unknown errors become a generic 500 — the raw message might contain SQL
// fragments or file paths and must never reach the visitor. It is logged
// instead.
func renderError(rn *web.Renderer, logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	heading := "Something Went Wrong"
	message := "An unexpected error occurred. Please try again."

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			heading = "Not Found"
			message = "The page you are looking for does not exist."
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusUnprocessableEntity
			heading = "Invalid Input"
			message = appErr.Message
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			heading = "Conflict"
			message = appErr.Message
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			heading = "Forbidden"
			message = "You do not have permission to do that."
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			heading = "Not Logged In"
			message = "Please log in and try again."
		}
	}

	if status >= 500 {
		logger.Error("request failed", slog.String("error", err.Error()))
	}

	user, _ := auth.UserFromContext(r.Context())
	rn.Render(w, r, status, "error.html", &web.PageData{
		Title: heading,
		User:  user,
		Data:  errorPage{Status: status, Heading: heading, Message: message},
	})
}

// redirectWithFlash is the POST-redirect-GET helper: store the one-shot
// message, then send the browser elsewhere. 303 See Other forces the next
// request to be a GET even after a POST.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, url, message string) {
	web.SetFlash(w, message)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// page builds a PageData with the current user filled in from the request
// context. Every handler renders through this so no page forgets who is
// logged in.
func page(r *http.Request, title string, data any) *web.PageData {
	user, _ := auth.UserFromContext(r.Context())
	return &web.PageData{Title: title, User: user, Data: data}
}

// pageWithFlash is for re-rendering a form in the SAME response, e.g. after
// a validation failure. A flash cookie would only show up on the NEXT
// request, so here the message goes straight into the page instead.
func pageWithFlash(r *http.Request, title, flash string, data any) *web.PageData {
	pd := page(r, title, data)
	pd.Flash = flash
	return pd
}
