package models

import "time"

// Session is the server-side record behind a bearer token. Deleting the row
// revokes the token. ExpiresAt is nil when tokens do not expire.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Expired reports whether the session has an expiry that lies before now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
