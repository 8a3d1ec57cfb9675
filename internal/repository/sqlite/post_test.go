package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
)

// createTestPost creates a post by the given author and fails the test on error.
func createTestPost(t *testing.T, db *DB, authorID, title string) *model.Post {
	t.Helper()
	post := &model.Post{
		AuthorID: authorID,
		Title:    title,
		Subtitle: "a subtitle",
		Date:     "August 31, 2026",
		Body:     "<p>body</p>",
	}
	if err := NewPostRepo(db).Create(context.Background(), post); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

func TestPostCreate_DuplicateTitleIsConflict(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Ada", "ada@example.com", model.RoleAdmin)
	createTestPost(t, db, author.ID, "First Light")

	dup := &model.Post{
		AuthorID: author.ID,
		Title:    "First Light",
		Subtitle: "again",
		Date:     "August 31, 2026",
		Body:     "<p>other</p>",
	}

	err := NewPostRepo(db).Create(context.Background(), dup)
	if err == nil {
		t.Fatal("Create() with duplicate title should fail")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestPostGetByIDWithComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := createTestUser(t, db, "Ada", "ada@example.com", model.RoleAdmin)
	commenter := createTestUser(t, db, "Grace", "grace@example.com", model.RoleMember)
	post := createTestPost(t, db, author.ID, "First Light")

	comments := NewCommentRepo(db)
	for _, body := range []string{"first!", "second!"} {
		c := &model.Comment{PostID: post.ID, AuthorID: commenter.ID, Body: body}
		if err := comments.Create(ctx, c); err != nil {
			t.Fatalf("creating comment: %v", err)
		}
	}

	found, err := NewPostRepo(db).GetByIDWithComments(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetByIDWithComments() error = %v", err)
	}

	if found.Author == nil || found.Author.Name != "Ada" {
		t.Errorf("Author not populated, got %+v", found.Author)
	}
	if len(found.Comments) != 2 {
		t.Fatalf("len(Comments) = %d, want 2", len(found.Comments))
	}
	// Oldest first
	if found.Comments[0].Body != "first!" {
		t.Errorf("Comments[0].Body = %q, want %q", found.Comments[0].Body, "first!")
	}
	if found.Comments[0].Author == nil || found.Comments[0].Author.Name != "Grace" {
		t.Errorf("comment author not populated, got %+v", found.Comments[0].Author)
	}
}

func TestPostList_NewestFirstWithAuthors(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := createTestUser(t, db, "Ada", "ada@example.com", model.RoleAdmin)
	createTestPost(t, db, author.ID, "Older")
	createTestPost(t, db, author.ID, "Newer")

	posts, err := NewPostRepo(db).List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(posts))
	}
	if posts[0].Title != "Newer" {
		t.Errorf("posts[0].Title = %q, want the newest post first", posts[0].Title)
	}
	if posts[0].Author == nil {
		t.Fatal("List() did not populate authors")
	}
	if posts[0].Author.Name != "Ada" {
		t.Errorf("Author.Name = %q, want %q", posts[0].Author.Name, "Ada")
	}
}

func TestPostList_EmptyIsNotNil(t *testing.T) {
	posts, err := NewPostRepo(newTestDB(t)).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if posts == nil {
		t.Error("List() on empty db returned nil, want empty slice")
	}
	if len(posts) != 0 {
		t.Errorf("len(posts) = %d, want 0", len(posts))
	}
}

func TestPostUpdate(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepo(db)
	ctx := context.Background()

	author := createTestUser(t, db, "Ada", "ada@example.com", model.RoleAdmin)
	post := createTestPost(t, db, author.ID, "Draft")

	post.Title = "Final"
	post.Body = "<p>rewritten</p>"
	if err := posts.Update(ctx, post); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := posts.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != "Final" {
		t.Errorf("Title = %q, want %q", found.Title, "Final")
	}
	// The publication date is immutable through Update.
	if found.Date != "August 31, 2026" {
		t.Errorf("Date = %q, want unchanged", found.Date)
	}
}

func TestPostUpdate_NotFound(t *testing.T) {
	err := NewPostRepo(newTestDB(t)).Update(context.Background(), &model.Post{
		ID: "missing", Title: "x", Subtitle: "y", Body: "z",
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPostDelete_CascadesComments(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepo(db)
	ctx := context.Background()

	author := createTestUser(t, db, "Ada", "ada@example.com", model.RoleAdmin)
	post := createTestPost(t, db, author.ID, "Doomed")

	c := &model.Comment{PostID: post.ID, AuthorID: author.ID, Body: "soon gone"}
	if err := NewCommentRepo(db).Create(ctx, c); err != nil {
		t.Fatalf("creating comment: %v", err)
	}

	if err := posts.Delete(ctx, post.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := posts.GetByID(ctx, post.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("post still readable after delete, err = %v", err)
	}

	// ON DELETE CASCADE: the comment rows must be gone too.
	comments, err := NewCommentRepo(db).ListByPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("len(comments) = %d after post delete, want 0", len(comments))
	}
}

func TestPostTitleExists(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepo(db)
	ctx := context.Background()

	author := createTestUser(t, db, "Ada", "ada@example.com", model.RoleAdmin)
	post := createTestPost(t, db, author.ID, "Taken")

	taken, err := posts.TitleExists(ctx, "Taken", "")
	if err != nil {
		t.Fatalf("TitleExists() error = %v", err)
	}
	if !taken {
		t.Error("TitleExists() = false, want true")
	}

	// The edit flow must be able to keep its own title.
	taken, err = posts.TitleExists(ctx, "Taken", post.ID)
	if err != nil {
		t.Fatalf("TitleExists() error = %v", err)
	}
	if taken {
		t.Error("TitleExists() excluding the post itself = true, want false")
	}
}
