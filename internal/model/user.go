// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Role determines what a user account is allowed to do.
//
// WHY AN EXPLICIT ROLE COLUMN?
// A common shortcut in small blogs is "the user with id 1 is the admin".
// That ties authorization to insertion order, which breaks the moment rows
// are deleted or ids change. An explicit role field makes the privilege a
// stored fact about the account, not an accident of history.
type Role string

const (
	// RoleAdmin may create, edit, and delete posts.
	RoleAdmin Role = "admin"
	// RoleMember may read posts and write comments.
	RoleMember Role = "member"
)

// User represents a registered account.
//
// Identity is email + bcrypt password hash for accounts created through the
// registration form. Accounts created through GitHub sign-in have GitHubID
// set and an empty PasswordHash — they can never log in with a password.
//
// WHY PasswordHash HAS json:"-"?
// The hash must never leave the server, not even accidentally through a
// handler that encodes a User. The "-" tag excludes the field from JSON.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	GitHubID     int64     `json:"githubId"  db:"github_id"` // 0 when the account has no GitHub identity
	Role         Role      `json:"role"      db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user may mutate posts.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
