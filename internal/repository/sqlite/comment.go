package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

// compile-time check that *CommentRepo implements repository.CommentRepository
var _ repository.CommentRepository = (*CommentRepo)(nil)

// CommentRepo stores comments.
type CommentRepo struct {
	db *DB
}

// NewCommentRepo creates a CommentRepo on top of the shared connection pool.
func NewCommentRepo(db *DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// Create inserts a new comment.
//
// Both foreign keys are enforced by the schema: a comment whose post or
// author no longer exists is rejected by SQLite, so a stale form submission
// cannot create an orphan row.
func (r *CommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author_id, body, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PostID,
		comment.AuthorID,
		comment.Body,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

// ListByPost returns a post's comments oldest first, each with its author
// populated. One JOIN query — never a lookup per comment.
func (r *CommentRepo) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	return listCommentsByPost(ctx, r.db.q(ctx), postID)
}

// listCommentsByPost is the comment listing shared with PostRepo, which
// needs the same rows when it assembles a post page in one read.
func listCommentsByPost(ctx context.Context, q querier, postID string) ([]model.Comment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.id, c.post_id, c.author_id, c.body, c.created_at,
		        u.id, u.name, u.email, u.role
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.post_id = ?
		 ORDER BY c.created_at ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var author model.User
		var role string
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.CreatedAt,
			&author.ID, &author.Name, &author.Email, &role,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		author.Role = model.Role(role)
		c.Author = &author
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}
