package jwtx

import "time"

// IsFresh reports whether the token is inside its validity window at now.
// The window is [nbf, exp] with both ends inclusive and no leeway. A token
// without "exp" is never fresh, and neither is one issued in the future.
// An unfresh token is not an error: it is the signal to exchange it.
func IsFresh(t *Token, now time.Time) bool {
	if t == nil || t.Claims == nil {
		return false
	}
	c := t.Claims
	now = now.UTC()

	if c.ExpiresAt == nil || now.After(c.ExpiresAt.Time) {
		return false
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return false
	}

	if c.IssuedAt != nil && now.Before(c.IssuedAt.Time) {
		return false
	}

	return true
}
