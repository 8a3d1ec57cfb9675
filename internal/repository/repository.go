// Package repository defines the storage interfaces the rest of the
// application programs against. The sqlite subpackage implements them; the
// service layer never imports sqlite directly.
package repository

import (
	"context"

	"github.com/sakif/inkwell/internal/model"
)

// Transactor groups multiple repository writes into one database
// transaction. The callback receives a context carrying the transaction;
// repository methods called with that context join it. If the callback
// returns an error the transaction is rolled back and nothing is visible
// to other requests.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertByGitHubID inserts a user on first GitHub sign-in and refreshes
	// profile fields on subsequent sign-ins, keyed by the GitHub numeric id.
	UpsertByGitHubID(ctx context.Context, user *model.User) error
	Count(ctx context.Context) (int, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// GetByIDWithComments eagerly loads the post together with its comments
	// and each comment's author in a single read — the post page needs all
	// three and must not fall back to per-comment lookups.
	GetByIDWithComments(ctx context.Context, id string) (*model.Post, error)
	// List returns every post, newest first. The listing page shows all
	// rows unconditionally; there is no pagination in this application.
	List(ctx context.Context) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
	TitleExists(ctx context.Context, title, excludeID string) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	// GetByID returns the session only while it is unexpired.
	GetByID(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}
