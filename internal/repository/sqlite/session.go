package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

// compile-time check that *SessionRepo implements repository.SessionRepository
var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo stores login sessions.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a SessionRepo on top of the shared connection pool.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a new session row. The ID is a random UUID — it is the
// opaque value the signed cookie refers to, so it must be unguessable.
func (r *SessionRepo) Create(ctx context.Context, session *model.Session) error {
	session.ID = uuid.New().String()
	session.CreatedAt = time.Now()

	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating session: %w", err)
	}

	return nil
}

// GetByID returns the session only while it is unexpired. An expired or
// unknown session is NotFound either way — callers treat both as "not
// logged in" and must not be able to tell them apart.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session

	err := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT id, user_id, expires_at, created_at
		 FROM sessions
		 WHERE id = ? AND expires_at > ?`,
		id, time.Now(),
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session: %w", err)
	}

	return &s, nil
}

// Delete removes a session by its ID. Deleting an already-absent session is
// not an error — logout must be idempotent.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.q(ctx).ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting session: %w", err)
	}
	return nil
}

// DeleteByUser removes every session belonging to a user.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.q(ctx).ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting user sessions: %w", err)
	}
	return nil
}
