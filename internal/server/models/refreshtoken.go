package models

import "time"

// RefreshToken is an opaque, single-use token handed to the client in an
// HTTP-only cookie.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
