package sqlite

import "strings"

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The pure-Go driver does not export a stable error type for
// constraint violations, so we match the canonical message text, which is
// part of SQLite's documented error format.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
