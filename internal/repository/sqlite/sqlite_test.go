package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
)

// The per-entity repositories all wrap the same *DB, so methods called with
// a context from InTx must run inside that one transaction — across repos.
func TestInTx_SpansRepositories(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	sessions := NewSessionRepo(db)
	ctx := context.Background()

	var userID string
	err := db.InTx(ctx, func(ctx context.Context) error {
		user := &model.User{Name: "Ada", Email: "ada@example.com", Role: model.RoleAdmin}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		userID = user.ID

		session := &model.Session{UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
		return sessions.Create(ctx, session)
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}

	if _, err := users.GetByID(ctx, userID); err != nil {
		t.Errorf("user not visible after commit: %v", err)
	}
}

func TestInTx_RollbackDiscardsAllRepoWrites(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	sessions := NewSessionRepo(db)
	ctx := context.Background()

	boom := errors.New("boom")
	var userID, sessionID string

	err := db.InTx(ctx, func(ctx context.Context) error {
		user := &model.User{Name: "Ada", Email: "ada@example.com", Role: model.RoleAdmin}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		userID = user.ID

		session := &model.Session{UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
		if err := sessions.Create(ctx, session); err != nil {
			return err
		}
		sessionID = session.ID

		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx() error = %v, want the callback's error", err)
	}

	// Both writes — made through different repositories — must be gone.
	if _, err := users.GetByID(ctx, userID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("user visible after rollback, err = %v", err)
	}
	if _, err := sessions.GetByID(ctx, sessionID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("session visible after rollback, err = %v", err)
	}
}
