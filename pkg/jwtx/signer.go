package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignHS256 signs claims with the padded secret. Tokens are minted by the
// identity server; this exists for test fixtures and local stubs of it.
func SignHS256(claims Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(PadKey(append([]byte(nil), secret...)))
}

// NewUserClaims builds a claim set for user valid from now for ttl.
func NewUserClaims(user UserPayload, issuer string, ttl time.Duration, now time.Time) (Claims, error) {
	uc, err := NewUserClaim(user)
	if err != nil {
		return Claims{}, err
	}

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.URIUser,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		User: uc,
	}, nil
}
