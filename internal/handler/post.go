// Package handler contains the HTTP handlers — the translation layer between
// the web and the service layer. Handlers decode forms, call exactly one
// service method, and turn the result into a page or a redirect. No business
// rules live here.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/service"
	"github.com/sakif/inkwell/internal/web"
)

// PostHandler serves the front page, the post page, the admin post forms,
// and comment submission.
type PostHandler struct {
	posts    *service.PostService
	comments *service.CommentService
	renderer *web.Renderer
	logger   *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(
	posts *service.PostService,
	comments *service.CommentService,
	renderer *web.Renderer,
	logger *slog.Logger,
) *PostHandler {
	return &PostHandler{
		posts:    posts,
		comments: comments,
		renderer: renderer,
		logger:   logger,
	}
}

// postFormPage is the payload for templates/make-post.html — shared between
// the new-post and edit-post forms, which differ only in heading, action,
// and pre-filled values.
type postFormPage struct {
	Heading  string
	Action   string
	Title    string
	Subtitle string
	ImageURL string
	Body     string
}

// HandleIndex renders the front page with every post, newest first.
//
// HTTP: GET /
func (h *PostHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		renderError(h.renderer, h.logger, w, r, err)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "index.html", page(r, "", posts))
}

// HandleShow renders a single post with its comments.
//
// HTTP: GET /post/{id}
func (h *PostHandler) HandleShow(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(h.renderer, h.logger, w, r, err)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "post.html", page(r, post.Title, post))
}

// HandleComment accepts a comment on a post.
//
// HTTP: POST /post/{id}
//
// Anonymous visitors are bounced to the login page with a flash and nothing
// is written. A successful comment redirects BACK TO THE SAME POST, so the
// reader lands on the conversation they just joined.
func (h *PostHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		redirectWithFlash(w, r, "/login", "Please log in or register to comment.")
		return
	}

	form := commentForm{Body: formValue(r, "body")}
	if err := validate.Struct(form); err != nil {
		redirectWithFlash(w, r, "/post/"+postID, "Your comment must not be empty.")
		return
	}

	if _, err := h.comments.Create(r.Context(), user.ID, postID, form.Body); err != nil {
		renderError(h.renderer, h.logger, w, r, err)
		return
	}

	http.Redirect(w, r, "/post/"+postID, http.StatusSeeOther)
}

// HandleNewForm renders the empty post form.
//
// HTTP: GET /new-post (admin only, enforced by middleware)
func (h *PostHandler) HandleNewForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "make-post.html",
		page(r, "New Post", postFormPage{Heading: "New Post", Action: "/new-post"}))
}

// HandleCreate publishes a new post.
//
// HTTP: POST /new-post (admin only)
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	form, formPage, ok := h.decodePostForm(w, r, "New Post", "/new-post")
	if !ok {
		return
	}

	user, _ := auth.UserFromContext(r.Context())

	_, err := h.posts.Create(r.Context(), user.ID, &model.Post{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		ImageURL: form.ImageURL,
		Body:     form.Body,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			h.renderer.Render(w, r, http.StatusConflict, "make-post.html",
				pageWithFlash(r, "New Post", "A post with that title already exists.", formPage))
			return
		}
		renderError(h.renderer, h.logger, w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleEditForm renders the post form pre-populated with the current values.
//
// HTTP: GET /edit-post/{id} (admin only)
func (h *PostHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.posts.GetForEdit(r.Context(), id)
	if err != nil {
		renderError(h.renderer, h.logger, w, r, err)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "make-post.html",
		page(r, "Edit Post", postFormPage{
			Heading:  "Edit Post",
			Action:   "/edit-post/" + id,
			Title:    post.Title,
			Subtitle: post.Subtitle,
			ImageURL: post.ImageURL,
			Body:     post.Body,
		}))
}

// HandleUpdate overwrites a post's mutable fields and returns to the post.
//
// HTTP: POST /edit-post/{id} (admin only)
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	form, formPage, ok := h.decodePostForm(w, r, "Edit Post", "/edit-post/"+id)
	if !ok {
		return
	}

	_, err := h.posts.Update(r.Context(), id, &model.Post{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		ImageURL: form.ImageURL,
		Body:     form.Body,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			h.renderer.Render(w, r, http.StatusConflict, "make-post.html",
				pageWithFlash(r, "Edit Post", "A post with that title already exists.", formPage))
			return
		}
		renderError(h.renderer, h.logger, w, r, err)
		return
	}

	http.Redirect(w, r, "/post/"+id, http.StatusSeeOther)
}

// HandleDelete removes a post (and, via the schema, its comments).
//
// HTTP: GET /delete/{id} (admin only)
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		renderError(h.renderer, h.logger, w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// decodePostForm parses and validates the shared post form. On a validation
// failure it re-renders the form with a flash and the submitted values, and
// returns ok=false.
func (h *PostHandler) decodePostForm(w http.ResponseWriter, r *http.Request, heading, action string) (postForm, postFormPage, bool) {
	form := postForm{
		Title:    formValue(r, "title"),
		Subtitle: formValue(r, "subtitle"),
		ImageURL: formValue(r, "image_url"),
		Body:     r.PostFormValue("body"),
	}
	formPage := postFormPage{
		Heading:  heading,
		Action:   action,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		ImageURL: form.ImageURL,
		Body:     form.Body,
	}

	if err := validate.Struct(form); err != nil {
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "make-post.html",
			pageWithFlash(r, heading, validationMessage(err), formPage))
		return form, formPage, false
	}

	return form, formPage, true
}
