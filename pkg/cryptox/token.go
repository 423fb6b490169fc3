package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// SessionIDLength is the length of the identifiers stored in the session
// cookie.
const SessionIDLength = 20

const alphanumeric = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// RandomString returns a cryptographically random string of n characters
// drawn from [0-9A-Za-z].
func RandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("string length must be positive, got %d", n)
	}

	limit := big.NewInt(int64(len(alphanumeric)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		buf[i] = alphanumeric[idx.Int64()]
	}

	return string(buf), nil
}

// NewSessionID returns a fresh SessionIDLength character identifier.
func NewSessionID() (string, error) {
	return RandomString(SessionIDLength)
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token.
// Fingerprints are safe to log and to use as keys; the token itself is not.
//
// The fingerprint is returned as a base64url-encoded string (43 chars).
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
