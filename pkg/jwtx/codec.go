package jwtx

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Token is a parsed but not yet trusted Caronte token.
type Token struct {
	Raw       string
	Header    map[string]any
	Claims    *Claims
	Signature []byte

	method       jwt.SigningMethod
	signingInput string
}

// Alg returns the algorithm named in the token header, or "" if none.
func (t *Token) Alg() string {
	if t.method == nil {
		return ""
	}
	return t.method.Alg()
}

// User decodes the user payload carried by the token.
func (t *Token) User() (*UserPayload, error) {
	return t.Claims.User.Decode()
}

// Decode splits and parses a raw token without checking its signature.
// Structural problems are reported before any cryptographic work is done:
// ErrMissing for empty input, ErrMalformed when the input is not three
// non-empty segments and ErrInvalidClaim when the segments do not decode
// into a claim set carrying a user.
func Decode(raw string) (*Token, error) {
	if raw == "" {
		return nil, ErrMissing
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, ErrMalformed
	}
	for _, p := range parts {
		if p == "" {
			return nil, ErrMalformed
		}
	}

	parser := jwt.NewParser()
	claims := &Claims{}

	parsed, _, err := parser.ParseUnverified(raw, claims)
	if err != nil {
		// Header, claims or alg could not be decoded.
		return nil, fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}

	sig, err := parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature segment: %w", ErrInvalidClaim, err)
	}

	if claims.User.IsZero() {
		return nil, fmt.Errorf("%w: missing user claim", ErrInvalidClaim)
	}

	return &Token{
		Raw:          raw,
		Header:       parsed.Header,
		Claims:       claims,
		Signature:    sig,
		method:       parsed.Method,
		signingInput: parts[0] + "." + parts[1],
	}, nil
}
