package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/metrics"
	"github.com/sakif/inkwell/internal/service"
	"github.com/sakif/inkwell/internal/web"
)

// AuthHandler serves the register, login, and logout pages.
//
// THREE DISTINCT LOGIN FAILURES:
// The site tells visitors exactly what went wrong and where to go:
//   - registering an email that exists  → sent to /login
//   - logging in with an unknown email  → sent to /register
//   - logging in with a wrong password  → back to /login
//
// Each is a flash + redirect, never an error page.
type AuthHandler struct {
	svc       *service.AuthService
	tokens    *auth.TokenService
	renderer  *web.Renderer
	collector *metrics.Collector
	logger    *slog.Logger

	// githubEnabled toggles the "sign in with GitHub" link on the login page.
	githubEnabled bool
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(
	svc *service.AuthService,
	tokens *auth.TokenService,
	renderer *web.Renderer,
	collector *metrics.Collector,
	logger *slog.Logger,
	githubEnabled bool,
) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		tokens:        tokens,
		renderer:      renderer,
		collector:     collector,
		logger:        logger,
		githubEnabled: githubEnabled,
	}
}

// registerPage is the payload for templates/register.html: the values to
// re-populate after a failed submit.
type registerPage struct {
	Name  string
	Email string
}

// loginPage is the payload for templates/login.html.
type loginPage struct {
	Email         string
	GitHubEnabled bool
}

// ShowRegister renders the registration form.
//
// HTTP: GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "register.html",
		page(r, "Register", registerPage{}))
}

// HandleRegister creates the account and logs it straight in.
//
// HTTP: POST /register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	form := registerForm{
		Name:     formValue(r, "name"),
		Email:    formValue(r, "email"),
		Password: r.PostFormValue("password"), // passwords keep their whitespace
	}

	if err := validate.Struct(form); err != nil {
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "register.html",
			pageWithFlash(r, "Register", validationMessage(err),
				registerPage{Name: form.Name, Email: form.Email}))
		return
	}

	result, err := h.svc.Register(r.Context(), form.Name, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			redirectWithFlash(w, r, "/login",
				"You already have an account, please log in.")
			return
		}
		renderError(h.renderer, h.logger, w, r, err)
		return
	}

	auth.SetSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowLogin renders the login form.
//
// HTTP: GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "login.html",
		page(r, "Log In", loginPage{GitHubEnabled: h.githubEnabled}))
}

// HandleLogin authenticates and opens a session.
//
// HTTP: POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	form := loginForm{
		Email:    formValue(r, "email"),
		Password: r.PostFormValue("password"),
	}

	if err := validate.Struct(form); err != nil {
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "login.html",
			pageWithFlash(r, "Log In", validationMessage(err),
				loginPage{Email: form.Email, GitHubEnabled: h.githubEnabled}))
		return
	}

	result, err := h.svc.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		h.collector.RecordLogin("failure")
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			redirectWithFlash(w, r, "/register",
				"No account with that email. Please register first.")
		case errors.Is(err, apperror.ErrUnauthorized):
			redirectWithFlash(w, r, "/login",
				"Incorrect email or password.")
		default:
			renderError(h.renderer, h.logger, w, r, err)
		}
		return
	}

	h.collector.RecordLogin("success")
	auth.SetSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout deletes the session row and clears the cookie.
//
// HTTP: GET /logout
//
// Logout works even with a broken or expired cookie: the session row may be
// long gone, but the cookie is cleared regardless so the browser stops
// sending it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		if sessionID, err := h.tokens.Validate(cookie.Value); err == nil {
			if err := h.svc.Logout(r.Context(), sessionID); err != nil {
				h.logger.Error("logout: deleting session", slog.String("error", err.Error()))
			}
		}
	}

	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
