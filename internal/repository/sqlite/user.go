package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo stores users. It wraps the shared *DB so its queries join any
// transaction carried by the context.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a UserRepo on top of the shared connection pool.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, email, password_hash, github_id, role, created_at, updated_at`

// Create inserts a new user. The caller is expected to have checked for a
// duplicate email already (the registration flow does so inside the same
// transaction); the UNIQUE constraint is the backstop, surfaced as a
// Conflict error rather than a raw driver error.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.GitHubID,
		string(user.Role),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(
		r.db.q(ctx).QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = ?`, id),
		"user", id,
	)
}

// GetByEmail retrieves a user by email address.
// Returns apperror.ErrNotFound if no account uses that email — the login
// flow relies on this to distinguish "unknown email" from "wrong password".
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(
		r.db.q(ctx).QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = ?`, email),
		"user", email,
	)
}

// UpsertByGitHubID inserts a user on first GitHub sign-in, or refreshes the
// name/email on subsequent sign-ins. The GitHub numeric id is stable and
// unique, so it is the natural upsert key; the internal ID is kept across
// updates so posts and comments stay attached.
func (r *UserRepo) UpsertByGitHubID(ctx context.Context, user *model.User) error {
	var existingID string
	err := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		existing, err := r.GetByID(ctx, existingID)
		if err != nil {
			return err
		}
		user.ID = existing.ID
		user.Role = existing.Role
		user.PasswordHash = existing.PasswordHash
		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = time.Now()
		_, err = r.db.q(ctx).ExecContext(ctx,
			`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
			user.Name,
			user.Email,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	return r.Create(ctx, user)
}

// Count returns the total number of user rows. The registration flow uses
// it (inside a transaction) to grant the very first account the admin role.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}

// scanUser reads one user row, translating sql.ErrNoRows into NotFound.
func scanUser(row *sql.Row, resource, key string) (*model.User, error) {
	var u model.User
	var role string

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.GitHubID,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound(resource, key)
		}
		return nil, fmt.Errorf("sqlite: getting %s %s: %w", resource, key, err)
	}

	u.Role = model.Role(role)
	return &u, nil
}
