package jwtx

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the claims carried by a Caronte token. Only the registered
// claims and the "user" payload are interpreted; anything else the identity
// server adds is ignored.
type Claims struct {
	jwt.RegisteredClaims

	// User is the serialized user payload. Caronte emits it as a string
	// holding JSON, older servers as a plain object.
	User UserClaim `json:"user,omitempty"`
}

// UserClaim keeps the raw JSON of the "user" claim so it can be decoded
// lazily, once the token has been verified.
type UserClaim struct {
	raw json.RawMessage
}

// NewUserClaim builds a UserClaim from a payload, encoded the way the
// identity server does it (a JSON string).
func NewUserClaim(u UserPayload) (UserClaim, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return UserClaim{}, err
	}
	s, err := json.Marshal(string(b))
	if err != nil {
		return UserClaim{}, err
	}
	return UserClaim{raw: s}, nil
}

// IsZero reports whether the claim was absent or empty.
func (c UserClaim) IsZero() bool {
	t := bytes.TrimSpace(c.raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte(`""`))
}

// Decode unpacks the claim into a UserPayload.
func (c UserClaim) Decode() (*UserPayload, error) {
	if c.IsZero() {
		return nil, ErrInvalidClaim
	}

	data := []byte(c.raw)

	// String form: the payload is JSON inside a JSON string.
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, errors.Join(ErrInvalidClaim, err)
		}
		data = []byte(inner)
	}

	var u UserPayload
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, errors.Join(ErrInvalidClaim, err)
	}
	return &u, nil
}

func (c UserClaim) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

func (c *UserClaim) UnmarshalJSON(b []byte) error {
	c.raw = append(c.raw[:0], b...)
	return nil
}

// UserPayload is the user described by a token.
type UserPayload struct {
	URIUser  string     `json:"uri_user"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Roles    []Role     `json:"roles"`
	Metadata []Metadata `json:"metadata,omitempty"`
}

// Role grants access to one application.
type Role struct {
	Name           string `json:"name"`
	URIApplication string `json:"uri_application,omitempty"`

	// AppID is the legacy name of URIApplication.
	AppID string `json:"app_id,omitempty"`
}

// Application returns the application the role is scoped to.
func (r Role) Application() string {
	if r.URIApplication != "" {
		return r.URIApplication
	}
	return r.AppID
}

// Metadata is a key/value pair attached to a user, optionally scoped to an
// application.
type Metadata struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Scope string `json:"scope,omitempty"`
}
