package model

import "time"

// Comment is a reader's comment on a post.
//
// Comments are write-once: there is no edit or delete operation anywhere in
// the application. They disappear only when their parent post is deleted
// (ON DELETE CASCADE in the schema).
type Comment struct {
	ID        string    `json:"id"        db:"id"`
	PostID    string    `json:"postId"    db:"post_id"`
	AuthorID  string    `json:"authorId"  db:"author_id"`
	Body      string    `json:"body"      db:"body"` // sanitized HTML
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Author *User `json:"author,omitempty" db:"-"`
}
