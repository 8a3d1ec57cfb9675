package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
	"github.com/sakif/inkwell/internal/security"
)

// dateLayout is the human-readable publication date stamped on a post when
// it is created, e.g. "August 31, 2026". It is display text, frozen at
// creation — editing a post later does not move its date.
const dateLayout = "January 02, 2006"

// PostService is the business logic for posts.
type PostService struct {
	posts     repository.PostRepository
	tx        repository.Transactor
	sanitizer *security.Sanitizer
	logger    *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(
	posts repository.PostRepository,
	tx repository.Transactor,
	sanitizer *security.Sanitizer,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:     posts,
		tx:        tx,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// List returns every post for the front page, newest first, authors
// populated.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}
	return posts, nil
}

// Get returns one post with its author, comments, and comment authors —
// everything the post page renders, loaded eagerly.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetByIDWithComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/post: getting post %s: %w", id, err)
	}
	return post, nil
}

// GetForEdit returns the bare post row for pre-populating the edit form.
// No comments are loaded — the form doesn't show them.
func (s *PostService) GetForEdit(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/post: getting post %s: %w", id, err)
	}
	return post, nil
}

// Create publishes a new post by the given author.
//
// The body is sanitized through the allow-list policy BEFORE it is stored —
// what's in the database is what's safe to render. The publication date is
// stamped once, here, in the site's display format.
//
// Titles are unique site-wide. The proactive check and the insert share a
// transaction; the schema's UNIQUE constraint backstops any race, and both
// paths surface as apperror.ErrConflict.
func (s *PostService) Create(ctx context.Context, authorID string, post *model.Post) (*model.Post, error) {
	if err := s.validate(post); err != nil {
		return nil, err
	}

	post.AuthorID = authorID
	post.Date = time.Now().Format(dateLayout)
	post.Body = s.sanitizer.SanitizePost(post.Body)

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		taken, err := s.posts.TitleExists(ctx, post.Title, "")
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("post", post.Title)
		}
		return s.posts.Create(ctx, post)
	})
	if err != nil {
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("title", post.Title),
	)

	return post, nil
}

// Update overwrites the mutable fields of an existing post: title, subtitle,
// body, image URL. The publication date and the author never change.
func (s *PostService) Update(ctx context.Context, id string, updated *model.Post) (*model.Post, error) {
	if err := s.validate(updated); err != nil {
		return nil, err
	}

	updated.ID = id
	updated.Body = s.sanitizer.SanitizePost(updated.Body)

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		taken, err := s.posts.TitleExists(ctx, updated.Title, id)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("post", updated.Title)
		}
		return s.posts.Update(ctx, updated)
	})
	if err != nil {
		return nil, fmt.Errorf("service/post: updating post %s: %w", id, err)
	}

	s.logger.Info("post updated", slog.String("post_id", id))

	return updated, nil
}

// Delete removes a post. Its comments go with it — the schema cascades the
// delete, so no orphan comments survive.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/post: deleting post %s: %w", id, err)
	}

	s.logger.Info("post deleted", slog.String("post_id", id))
	return nil
}

// validate enforces the field rules shared by Create and Update.
func (s *PostService) validate(post *model.Post) error {
	if strings.TrimSpace(post.Title) == "" {
		return apperror.ValidationFailed("title", "title must not be empty")
	}
	if strings.TrimSpace(post.Subtitle) == "" {
		return apperror.ValidationFailed("subtitle", "subtitle must not be empty")
	}
	if strings.TrimSpace(post.Body) == "" {
		return apperror.ValidationFailed("body", "body must not be empty")
	}
	return nil
}
