// Package service — authentication business logic.
//
// AuthService is the business logic layer for accounts and sessions. It sits
// between the HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt) / TokenService (cookie signing)
//
// KEY RESPONSIBILITIES:
//   - Registration, login, logout, and the GitHub OAuth callback
//   - The first-account-becomes-admin rule
//   - Encapsulate all auth rules in one place, away from HTTP concerns
//
// WHAT THIS LAYER DOES NOT DO:
//   - It does NOT set cookies (that's the handler's job — HTTP concern)
//   - It does NOT read HTTP requests
//   - It is NOT tied to chi or any routing framework
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

// AuthService handles the authentication business logic.
type AuthService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	tx        repository.Transactor
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tx repository.Transactor,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		tx:        tx,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// AuthResult is returned by authentication operations. It bundles the user,
// the opened session, and the signed cookie value so the handler can set the
// cookie and redirect in one step.
type AuthResult struct {
	User    *model.User
	Session *model.Session
	Token   string
}

// Register creates an account and logs it in.
//
// Outcomes:
//   - duplicate email → apperror.ErrConflict, nothing written. The handler
//     turns this into "you already have an account, log in instead".
//   - fresh email → user row + session row are created in ONE transaction,
//     so a crash between the two can never leave a registered user without
//     a session or vice versa.
//
// FIRST ACCOUNT IS THE ADMIN:
// The very first registered account gets the admin role; everyone after is
// a member. The count check and the insert run inside the same transaction —
// two users racing to be first cannot both see count 0 and both become admin.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleMember,
	}
	session := &model.Session{}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := s.users.Count(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			user.Role = model.RoleAdmin
		}

		if err := s.users.Create(ctx, user); err != nil {
			return err
		}

		session.UserID = user.ID
		session.ExpiresAt = time.Now().Add(auth.SessionLifetime)
		return s.sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, fmt.Errorf("service/auth: registering %s: %w", email, err)
	}

	token, err := s.tokens.Generate(session.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: signing session for user %s: %w", user.ID, err)
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &AuthResult{User: user, Session: session, Token: token}, nil
}

// Login authenticates an email/password pair and opens a session.
//
// The two failure modes are DISTINCT on purpose:
//   - unknown email → apperror.ErrNotFound ("no account, go register")
//   - wrong password → apperror.ErrUnauthorized ("incorrect email or password")
//
// The site tells the visitor which one happened. That leaks whether an email
// is registered — a deliberate usability-over-secrecy trade-off for a small
// blog, kept as designed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: logging in %s: %w", email, err)
	}

	if user.PasswordHash == "" {
		// GitHub-only account: there is no password to check.
		return nil, apperror.Unauthorized("this account signs in with GitHub")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("incorrect email or password")
	}

	session, token, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return &AuthResult{User: user, Session: session, Token: token}, nil
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback.
//
// After the handler exchanges the GitHub code for a profile, this method
// upserts the user (INSERT on first sign-in, refresh name/email after) and
// opens a regular session — from here on a GitHub login is indistinguishable
// from a password login.
//
// The first-account rule applies here too: if GitHub sign-in creates the
// very first account on the site, that account is the admin.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		GitHubID: ghUser.ID,
		Name:     ghUser.DisplayName(),
		Email:    ghUser.Email,
		Role:     model.RoleMember,
	}

	session := &model.Session{}
	var token string

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := s.users.Count(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			user.Role = model.RoleAdmin
		}

		if err := s.users.UpsertByGitHubID(ctx, user); err != nil {
			return err
		}

		session.UserID = user.ID
		session.ExpiresAt = time.Now().Add(auth.SessionLifetime)
		return s.sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, fmt.Errorf("service/auth: GitHub sign-in (githubID=%d): %w", ghUser.ID, err)
	}

	token, err = s.tokens.Generate(session.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: signing session for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("user_id", user.ID),
		slog.Int64("github_id", user.GitHubID),
	)

	return &AuthResult{User: user, Session: session, Token: token}, nil
}

// Logout deletes the session row, revoking the cookie server-side.
// Idempotent: logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("service/auth: logging out session %s: %w", sessionID, err)
	}
	return nil
}

// openSession creates a session row and signs its cookie value.
func (s *AuthService) openSession(ctx context.Context, user *model.User) (*model.Session, string, error) {
	session := &model.Session{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(auth.SessionLifetime),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("service/auth: opening session for user %s: %w", user.ID, err)
	}

	token, err := s.tokens.Generate(session.ID)
	if err != nil {
		return nil, "", fmt.Errorf("service/auth: signing session for user %s: %w", user.ID, err)
	}

	return session, token, nil
}
