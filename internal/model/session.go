package model

import "time"

// Session is a server-side login session.
//
// The browser never sees this record — it holds a signed token whose subject
// is the session ID. Keeping the session in the database (rather than a
// purely stateless token) means logout can actually revoke access: deleting
// the row invalidates the cookie immediately.
type Session struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Expired reports whether the session is past its expiry time.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
