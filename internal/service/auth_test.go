package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// newTestAuthService returns an AuthService wired with fake repositories.
func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeSessionRepo) {
	t.Helper()

	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()

	svc := NewAuthService(
		users,
		sessions,
		fakeTx{},
		auth.NewPasswordServiceForTest(bcrypt.MinCost), // cost 4: fast tests
		newTestTokenService(t),
		testLogger(),
	)
	return svc, users, sessions
}

func TestRegister_FirstAccountIsAdmin(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, "Ada", "ada@example.com", "password-123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if first.User.Role != model.RoleAdmin {
		t.Errorf("first account Role = %q, want admin", first.User.Role)
	}
	if first.Token == "" {
		t.Error("Register() returned no session token")
	}
	if first.Session == nil || first.Session.UserID != first.User.ID {
		t.Errorf("session not opened for the new user: %+v", first.Session)
	}

	second, err := svc.Register(ctx, "Grace", "grace@example.com", "password-456")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if second.User.Role != model.RoleMember {
		t.Errorf("second account Role = %q, want member", second.User.Role)
	}
}

func TestRegister_DuplicateEmailIsConflict(t *testing.T) {
	svc, users, sessions := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "password-123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Register(ctx, "Imposter", "ada@example.com", "other-password")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}

	// No second account and no extra session.
	if len(users.users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users.users))
	}
	if len(sessions.sessions) != 1 {
		t.Errorf("len(sessions) = %d, want 1", len(sessions.sessions))
	}
}

func TestRegister_StoresHashNotPassword(t *testing.T) {
	svc, users, _ := newTestAuthService(t)

	result, err := svc.Register(context.Background(), "Ada", "ada@example.com", "password-123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	stored := users.users[result.User.ID]
	if stored.PasswordHash == "password-123" {
		t.Fatal("the plaintext password was stored")
	}
	if stored.PasswordHash == "" {
		t.Fatal("no password hash was stored")
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "password-123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.Login(ctx, "ada@example.com", "password-123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.Email != "ada@example.com" {
		t.Errorf("User.Email = %q", result.User.Email)
	}
	if result.Token == "" {
		t.Error("Login() returned no session token")
	}
}

func TestLogin_UnknownEmailIsNotFound(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound (distinct from wrong password)", err)
	}
}

func TestLogin_WrongPasswordIsUnauthorized(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "password-123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Login(ctx, "ada@example.com", "not-the-password")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized (distinct from unknown email)", err)
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	svc, _, sessions := newTestAuthService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, "Ada", "ada@example.com", "password-123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.Logout(ctx, result.Session.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok := sessions.sessions[result.Session.ID]; ok {
		t.Error("session row survived logout")
	}

	// Idempotent.
	if err := svc.Logout(ctx, result.Session.ID); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
}

func TestLoginOrRegisterGitHub_FirstAccountIsAdmin(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	ghUser := &auth.GitHubUser{ID: 42, Login: "octocat", Email: "octocat@github.com"}

	result, err := svc.LoginOrRegisterGitHub(ctx, ghUser)
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	if result.User.Role != model.RoleAdmin {
		t.Errorf("first GitHub account Role = %q, want admin", result.User.Role)
	}
	if result.User.Name != "octocat" {
		t.Errorf("Name = %q, want login fallback", result.User.Name)
	}
	if result.Token == "" {
		t.Error("no session token issued")
	}
}

func TestLoginOrRegisterGitHub_SecondSignInReusesAccount(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	ctx := context.Background()

	ghUser := &auth.GitHubUser{ID: 42, Login: "octocat", Name: "The Octocat", Email: "octocat@github.com"}

	first, err := svc.LoginOrRegisterGitHub(ctx, ghUser)
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	second, err := svc.LoginOrRegisterGitHub(ctx, ghUser)
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}

	if second.User.ID != first.User.ID {
		t.Errorf("second sign-in created a new account: %q vs %q", second.User.ID, first.User.ID)
	}
	if len(users.users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users.users))
	}
}
