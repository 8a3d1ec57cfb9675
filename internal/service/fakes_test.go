package service

// In-memory fakes for the repository interfaces. Using fakes (not a mock
// framework) keeps tests dependency-free and easy to read — you can see
// exactly what each fake does.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/model"
)

// fakeTx runs the callback directly — transactionality itself is exercised
// by the sqlite package's own tests.
type fakeTx struct{}

func (fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) UpsertByGitHubID(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.GitHubID == user.GitHubID {
			u.Name = user.Name
			u.Email = user.Email
			*user = *u
			return nil
		}
	}
	return f.Create(ctx, user)
}

func (f *fakeUserRepo) Count(context.Context) (int, error) {
	return len(f.users), nil
}

type fakeSessionRepo struct {
	sessions map[string]*model.Session
	nextID   int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *model.Session) error {
	f.nextID++
	session.ID = fmt.Sprintf("sess-%d", f.nextID)
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	return s, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

type fakePostRepo struct {
	posts  map[string]*model.Post
	nextID int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*model.Post)}
}

func (f *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	for _, p := range f.posts {
		if p.Title == post.Title {
			return apperror.Conflict("post", post.Title)
		}
	}
	f.nextID++
	post.ID = fmt.Sprintf("post-%d", f.nextID)
	copied := *post
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	return p, nil
}

func (f *fakePostRepo) GetByIDWithComments(ctx context.Context, id string) (*model.Post, error) {
	return f.GetByID(ctx, id)
}

func (f *fakePostRepo) List(context.Context) ([]model.Post, error) {
	out := []model.Post{}
	for _, p := range f.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePostRepo) Update(_ context.Context, post *model.Post) error {
	p, ok := f.posts[post.ID]
	if !ok {
		return apperror.NotFound("post", post.ID)
	}
	p.Title = post.Title
	p.Subtitle = post.Subtitle
	p.Body = post.Body
	p.ImageURL = post.ImageURL
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) TitleExists(_ context.Context, title, excludeID string) (bool, error) {
	for id, p := range f.posts {
		if p.Title == title && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type fakeCommentRepo struct {
	comments []*model.Comment
	nextID   int
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	f.nextID++
	comment.ID = fmt.Sprintf("comment-%d", f.nextID)
	copied := *comment
	f.comments = append(f.comments, &copied)
	return nil
}

func (f *fakeCommentRepo) ListByPost(_ context.Context, postID string) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestTokenService builds a TokenService with a test-only secret.
func newTestTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}
