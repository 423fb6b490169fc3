package domain

import "time"

// SessionToken maps a browser session id to the raw token it holds.
type SessionToken struct {
	ID        string
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
