package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"
	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/service"
)

// OAuthHandler runs the GitHub sign-in flow. It is only mounted when GitHub
// credentials are configured; a plain email/password deployment never routes
// here.
type OAuthHandler struct {
	github *auth.GitHubProvider
	svc    *service.AuthService
	logger *slog.Logger
}

// NewOAuthHandler creates an OAuthHandler.
func NewOAuthHandler(github *auth.GitHubProvider, svc *service.AuthService, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{github: github, svc: svc, logger: logger}
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// We generate a random state string and store it in a short-lived cookie.
// When GitHub calls back, HandleGitHubCallback verifies the state matches.
// This proves the callback was initiated by this server, not a CSRF attacker.
func (h *OAuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes: enough to approve, short enough to limit risk
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub user profile
//  3. Upsert the user and open a session (service layer)
//  4. Set the session cookie and redirect home
func (h *OAuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("oauth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Clear the state cookie — it's single-use
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// The user may have denied the authorization request on GitHub.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: authorization denied",
			slog.String("error", errParam))
		redirectWithFlash(w, r, "/login", "GitHub sign-in was cancelled.")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: GitHub exchange failed",
			slog.String("error", err.Error()))
		redirectWithFlash(w, r, "/login", "GitHub sign-in failed. Please try again.")
		return
	}

	result, err := h.svc.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("oauth callback: sign-in failed",
			slog.Int64("github_id", ghUser.ID),
			slog.String("error", err.Error()))
		redirectWithFlash(w, r, "/login", "GitHub sign-in failed. Please try again.")
		return
	}

	auth.SetSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
