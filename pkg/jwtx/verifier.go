package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest HMAC key the verifier will use. Shorter keys
// are padded with NUL bytes, which is what the identity server does when it
// signs.
const MinKeyLength = 32

// Verifier checks that a decoded token was issued by someone we trust.
type Verifier interface {
	Verify(t *Token) error
}

// VerifyOptions captures the trust expectations of a verifier.
type VerifyOptions struct {
	// Issuer the token must carry in "iss" when EnforceIssuer is set.
	Issuer string

	// EnforceIssuer turns the issuer check on.
	EnforceIssuer bool
}

var (
	ErrMissing      = errors.New("jwtx: token not provided")
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidClaim = errors.New("jwtx: invalid token")
	ErrAlgMismatch  = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
)

// PadKey right-pads key with NUL bytes up to MinKeyLength. Keys that are
// already long enough are returned unchanged.
func PadKey(key []byte) []byte {
	if len(key) >= MinKeyLength {
		return key
	}
	padded := make([]byte, MinKeyLength)
	copy(padded, key)
	return padded
}

// HS256Verifier validates tokens signed with HMAC-SHA256 and a shared secret.
type HS256Verifier struct {
	key  []byte
	opts VerifyOptions
}

// NewVerifierHS256 creates a verifier for the given secret. The secret is
// normalised with PadKey.
func NewVerifierHS256(secret []byte, opts VerifyOptions) *HS256Verifier {
	key := PadKey(append([]byte(nil), secret...))
	return &HS256Verifier{key: key, opts: opts}
}

// Verify checks the signature first and the issuer second. Freshness is not
// looked at here.
func (v *HS256Verifier) Verify(t *Token) error {
	if t == nil {
		return ErrMissing
	}

	if t.method != jwt.SigningMethodHS256 {
		return fmt.Errorf("%w: %w: got %q", ErrInvalidSig, ErrAlgMismatch, t.Alg())
	}

	if err := jwt.SigningMethodHS256.Verify(t.signingInput, t.Signature, v.key); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	}

	if v.opts.EnforceIssuer {
		if err := t.Claims.ValidateIssuer(v.opts.Issuer); err != nil {
			return err
		}
	}

	return nil
}

// ValidateIssuer checks if the issuer matches the expected value exactly.
func (c *Claims) ValidateIssuer(expected string) error {
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}
