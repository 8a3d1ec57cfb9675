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

// compile-time check that *PostRepo implements repository.PostRepository
var _ repository.PostRepository = (*PostRepo)(nil)

// PostRepo stores posts.
type PostRepo struct {
	db *DB
}

// NewPostRepo creates a PostRepo on top of the shared connection pool.
func NewPostRepo(db *DB) *PostRepo {
	return &PostRepo{db: db}
}

const postColumns = `id, author_id, title, subtitle, date, body, image_url, created_at, updated_at`

// Create inserts a new post.
//
// The title is UNIQUE across all posts. The service layer checks for a
// duplicate proactively (inside the same transaction), so a constraint
// violation here means a concurrent insert raced us — it is still surfaced
// as a Conflict, never as a raw driver error.
func (r *PostRepo) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.Title,
		post.Subtitle,
		post.Date,
		post.Body,
		post.ImageURL,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("post", post.Title)
		}
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetByID retrieves a single post without its relationships.
// Returns apperror.ErrNotFound if the post doesn't exist.
func (r *PostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}
	return post, nil
}

// GetByIDWithComments retrieves a post together with its author, its
// comments, and each comment's author.
//
// EAGER LOADING:
// The post page needs all of this at once. Loading comments lazily would
// mean one query per comment author (the classic N+1 problem), so instead
// we run exactly two queries: one for the post + author, one JOIN for the
// comments + their authors.
func (r *PostRepo) GetByIDWithComments(ctx context.Context, id string) (*model.Post, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.image_url,
		        p.created_at, p.updated_at,
		        u.id, u.name, u.email, u.role
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.id = ?`,
		id,
	)

	var p model.Post
	var author model.User
	var role string
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt,
		&author.ID, &author.Name, &author.Email, &role,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}
	author.Role = model.Role(role)
	p.Author = &author

	comments, err := listCommentsByPost(ctx, r.db.q(ctx), id)
	if err != nil {
		return nil, err
	}
	p.Comments = comments

	return &p, nil
}

// List returns all posts, newest first, each with its author populated.
// One JOIN query for the whole front page — never a lookup per post.
//
// There is deliberately no LIMIT here: the front page shows every post
// unconditionally, matching the application's behavior contract.
func (r *PostRepo) List(ctx context.Context) ([]model.Post, error) {
	rows, err := r.db.q(ctx).QueryContext(ctx,
		`SELECT p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.image_url,
		        p.created_at, p.updated_at,
		        u.id, u.name, u.email, u.role
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		var author model.User
		var role string
		if err := rows.Scan(
			&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body,
			&p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
			&author.ID, &author.Name, &author.Email, &role,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		author.Role = model.Role(role)
		p.Author = &author
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

// Update overwrites the mutable fields of an existing post.
// Returns apperror.ErrNotFound if the post doesn't exist.
func (r *PostRepo) Update(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now()

	result, err := r.db.q(ctx).ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, subtitle = ?, body = ?, image_url = ?, updated_at = ?
		 WHERE id = ?`,
		post.Title,
		post.Subtitle,
		post.Body,
		post.ImageURL,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("post", post.Title)
		}
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// Delete removes a post by its ID. Comments go with it via the schema's
// ON DELETE CASCADE policy.
func (r *PostRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.q(ctx).ExecContext(ctx,
		`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}

// TitleExists reports whether another post already uses the given title.
// excludeID lets the edit flow ignore the post being edited.
func (r *PostRepo) TitleExists(ctx context.Context, title, excludeID string) (bool, error) {
	var n int
	err := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE title = ? AND id != ?`,
		title, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking title %q: %w", title, err)
	}
	return n > 0, nil
}

// scanPost reads the plain post columns from a single row.
// Callers translate sql.ErrNoRows themselves so the resource id appears in
// the NotFound message.
func scanPost(row *sql.Row) (*model.Post, error) {
	var p model.Post
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body,
		&p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
