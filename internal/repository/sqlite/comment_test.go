package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/inkwell/internal/model"
)

func TestCommentCreate_RequiresExistingPost(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "Grace", "grace@example.com", model.RoleMember)

	// Foreign keys are ON: a comment pointing at a missing post is rejected
	// by the schema, not silently stored as an orphan.
	c := &model.Comment{PostID: "no-such-post", AuthorID: author.ID, Body: "hello?"}
	if err := NewCommentRepo(db).Create(context.Background(), c); err == nil {
		t.Fatal("Create() with missing post should fail via FK constraint")
	}
}

func TestCommentListByPost_OldestFirst(t *testing.T) {
	db := newTestDB(t)
	comments := NewCommentRepo(db)
	ctx := context.Background()

	author := createTestUser(t, db, "Ada", "ada@example.com", model.RoleAdmin)
	commenter := createTestUser(t, db, "Grace", "grace@example.com", model.RoleMember)
	post := createTestPost(t, db, author.ID, "Discussed")
	other := createTestPost(t, db, author.ID, "Quiet")

	for _, body := range []string{"one", "two", "three"} {
		c := &model.Comment{PostID: post.ID, AuthorID: commenter.ID, Body: body}
		if err := comments.Create(ctx, c); err != nil {
			t.Fatalf("creating comment: %v", err)
		}
	}

	listed, err := comments.ListByPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}

	if len(listed) != 3 {
		t.Fatalf("len(comments) = %d, want 3", len(listed))
	}
	if listed[0].Body != "one" || listed[2].Body != "three" {
		t.Errorf("comments out of order: %q ... %q", listed[0].Body, listed[2].Body)
	}
	for _, c := range listed {
		if c.Author == nil || c.Author.Name != "Grace" {
			t.Errorf("comment %s author not populated", c.ID)
		}
	}

	// The quiet post has no comments — and gets an empty slice, not nil.
	quiet, err := comments.ListByPost(ctx, other.ID)
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}
	if quiet == nil || len(quiet) != 0 {
		t.Errorf("ListByPost() on uncommented post = %v, want empty slice", quiet)
	}
}
