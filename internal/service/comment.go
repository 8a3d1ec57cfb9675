package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/metrics"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
	"github.com/sakif/inkwell/internal/security"
)

// CommentService is the business logic for comments.
type CommentService struct {
	comments  repository.CommentRepository
	posts     repository.PostRepository
	sanitizer *security.Sanitizer
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	sanitizer *security.Sanitizer,
	collector *metrics.Collector,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments:  comments,
		posts:     posts,
		sanitizer: sanitizer,
		collector: collector,
		logger:    logger,
	}
}

// Create attaches a comment by the given author to a post.
//
// Rules enforced here, not in the handler:
//   - the author must be a logged-in user (the handler guarantees a user is
//     present; this layer still refuses an empty author id)
//   - the body must be non-empty after trimming
//   - the post must exist — commenting on a deleted post is NotFound, not
//     a silent orphan row
//
// The body is sanitized down to basic text markup before storage.
func (s *CommentService) Create(ctx context.Context, authorID, postID, body string) (*model.Comment, error) {
	if authorID == "" {
		return nil, apperror.Unauthorized("you must be logged in to comment")
	}
	if strings.TrimSpace(body) == "" {
		return nil, apperror.ValidationFailed("body", "comment must not be empty")
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("service/comment: checking post %s: %w", postID, err)
	}

	comment := &model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Body:     s.sanitizer.SanitizeComment(body),
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/comment: creating comment on post %s: %w", postID, err)
	}

	s.collector.RecordComment()
	s.logger.Info("comment created",
		slog.String("comment_id", comment.ID),
		slog.String("post_id", postID),
		slog.String("author_id", authorID),
	)

	return comment, nil
}
