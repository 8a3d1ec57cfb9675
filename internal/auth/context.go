package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/web"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. With a plain string key like
// "user", ANY package that knows the string can read or shadow the value.
// A package-private type prevents collisions: only this package can create
// a key of type contextKey, so only this package can attach or read the
// current user.
type contextKey string

const userKey contextKey = "user"

// SessionStore is the slice of the session repository the middleware needs.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (*model.Session, error)
}

// UserStore is the slice of the user repository the middleware needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Middleware resolves the session cookie into a *model.User and enforces
// route-level authorization.
type Middleware struct {
	tokens   *TokenService
	sessions SessionStore
	users    UserStore
	logger   *slog.Logger
}

// NewMiddleware wires the identity middleware.
func NewMiddleware(tokens *TokenService, sessions SessionStore, users UserStore, logger *slog.Logger) *Middleware {
	return &Middleware{
		tokens:   tokens,
		sessions: sessions,
		users:    users,
		logger:   logger,
	}
}

// CurrentUser resolves the session cookie on EVERY request and, when it is
// valid, stores the user in the request context. It never blocks a request:
// a missing, expired, or tampered cookie simply leaves the request anonymous
// (and clears the dead cookie so the browser stops sending it).
//
// Route protection is a separate concern — see RequireUser / RequireAdmin.
func (m *Middleware) CurrentUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sessionID, err := m.tokens.Validate(cookie.Value)
		if err != nil {
			ClearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.sessions.GetByID(r.Context(), sessionID)
		if err != nil {
			// Unknown or expired server-side — the cookie is dead weight.
			ClearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.GetByID(r.Context(), session.UserID)
		if err != nil {
			m.logger.Warn("session points at missing user",
				"session_id", session.ID, "user_id", session.UserID)
			ClearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser blocks anonymous requests.
//
// GUARDS, NOT ERROR PAGES:
// A visitor who follows a link to an admin page shouldn't hit a wall of
// "403 Forbidden" — they get sent somewhere useful with a message explaining
// what to do. The guard runs before the handler and has no side effects
// beyond the redirect and the flash.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			web.SetFlash(w, "You need to log in to do that.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin blocks everyone except admins. Anonymous visitors go to the
// front page; logged-in members go to the login page so they can switch to
// an administrator account.
//
// Stack it AFTER CurrentUser (and optionally RequireUser) in the chain.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			web.SetFlash(w, "You must be an administrator to do that.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		if !user.IsAdmin() {
			web.SetFlash(w, "Please log in with an administrator account.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext retrieves the authenticated user from the request context.
//
// Returns (nil, false) for anonymous requests. Handlers on public routes use
// this to vary what they render (e.g. show the comment form only when ok).
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// WithUser returns a context carrying the given user. Exported for handler
// tests, which need to simulate an authenticated request without running the
// whole middleware chain.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
