package domain

import "time"

// User is the local mirror of an identity server user, refreshed from the
// token payload after each successful validation.
type User struct {
	URIUser   string
	Name      string
	Email     string
	Metadata  []Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Metadata is a key/value pair owned by a scope, usually an application id.
type Metadata struct {
	Key   string
	Value string
	Scope string
}
