package model

import "time"

// Post represents a published blog post.
//
// Date is a human-formatted string ("January 02, 2006") stamped when the
// post is created, separate from the machine timestamps. The listing and
// post pages display it verbatim, so it lives in the database as text.
//
// Author and Comments are relationship fields: they are populated only by
// the eager-loading read path (GetByIDWithComments) and are nil/empty on
// plain fetches. The `db:"-"` tag marks them as non-column fields.
type Post struct {
	ID        string    `json:"id"        db:"id"`
	AuthorID  string    `json:"authorId"  db:"author_id"`
	Title     string    `json:"title"     db:"title"` // unique across all posts
	Subtitle  string    `json:"subtitle"  db:"subtitle"`
	Date      string    `json:"date"      db:"date"`
	Body      string    `json:"body"      db:"body"` // sanitized HTML
	ImageURL  string    `json:"imageUrl"  db:"image_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Author   *User     `json:"author,omitempty"   db:"-"`
	Comments []Comment `json:"comments,omitempty" db:"-"`
}
