// Package models defines client-side data models shared by the session
// components.
package models

// UserSummary is the cached profile shown by the UI without a round trip.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
