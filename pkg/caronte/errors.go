package caronte

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/caronte/pkg/jwtx"
)

// Validation and authorization failures. Errors returned by this package
// wrap one of these together with the underlying cause, so both
// errors.Is(err, ErrTokenInvalid) and errors.Is(err, jwtx.ErrInvalidClaim)
// hold for the same failure.
var (
	ErrTokenMissing     = errors.New("caronte: token not provided")
	ErrTokenMalformed   = errors.New("caronte: malformed token")
	ErrTokenInvalid     = errors.New("caronte: invalid token")
	ErrSignatureInvalid = errors.New("caronte: invalid token signature")
	ErrIssuerInvalid    = errors.New("caronte: invalid token issuer")
	ErrExchangeFailed   = errors.New("caronte: cannot exchange token")
	ErrUserMissing      = errors.New("caronte: user not provided")
	ErrForbidden        = errors.New("caronte: user has no access")
)

var authenticationErrors = []error{
	ErrTokenMissing,
	ErrTokenMalformed,
	ErrTokenInvalid,
	ErrSignatureInvalid,
	ErrIssuerInvalid,
	ErrExchangeFailed,
}

// IsAuthentication reports whether err means the caller could not be
// authenticated, as opposed to authenticated but not allowed.
func IsAuthentication(err error) bool {
	for _, target := range authenticationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StatusCode maps err to the HTTP status a request boundary should answer
// with. Unknown errors map to 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsAuthentication(err), errors.Is(err, ErrUserMissing):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// classify wraps a jwtx error with the matching caronte sentinel.
func classify(err error) error {
	var kind error
	switch {
	case errors.Is(err, jwtx.ErrMissing):
		kind = ErrTokenMissing
	case errors.Is(err, jwtx.ErrMalformed):
		kind = ErrTokenMalformed
	case errors.Is(err, jwtx.ErrInvalidSig):
		kind = ErrSignatureInvalid
	case errors.Is(err, jwtx.ErrIssuer):
		kind = ErrIssuerInvalid
	default:
		kind = ErrTokenInvalid
	}
	return fmt.Errorf("%w: %w", kind, err)
}
