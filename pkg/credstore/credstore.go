package credstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/aussiebroadwan/caronte/pkg/cryptox"
	"github.com/aussiebroadwan/caronte/pkg/slogx"
)

const (
	// CookieName holds the session id of browser callers.
	CookieName = "caronte_token"

	// CookieMaxAge is how long the session cookie lives. The token behind
	// it is exchanged as needed, so the cookie itself never needs to expire.
	CookieMaxAge = 5 * 365 * 24 * time.Hour
)

// ErrNotFound is returned by a Backend when no record exists for an id.
var ErrNotFound = errors.New("credstore: record not found")

var validID = regexp.MustCompile(`^[0-9A-Za-z]{1,64}$`)

// ValidID reports whether id can name a session record. Ids come from
// cookies and end up in file names and keys, so anything else is rejected.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// Backend stores raw tokens by session id. Implementations must allow
// concurrent use; concurrent writes to one id are last-writer-wins.
type Backend interface {
	Get(ctx context.Context, id string) (string, error)
	Put(ctx context.Context, id, raw string) error

	// Delete succeeds when the record does not exist.
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tune the session cookie and request classification.
type Options struct {
	// Secure marks the cookie HTTPS only.
	Secure bool

	// Path of the cookie, "/" when empty.
	Path string

	// IsAPI reports whether a request comes from a machine caller that
	// sends its token in the Authorization header. Defaults to checking
	// for a bearer header.
	IsAPI func(r *http.Request) bool
}

// CredentialStore finds the raw token of a request. Machine callers send it
// as a bearer token; browser callers hold an opaque id in a cookie that
// points at the token in a Backend. The store never looks inside tokens.
type CredentialStore struct {
	backend Backend
	opts    Options
}

// New creates a CredentialStore on top of backend.
func New(backend Backend, opts Options) *CredentialStore {
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.IsAPI == nil {
		opts.IsAPI = func(r *http.Request) bool { return BearerToken(r) != "" }
	}
	return &CredentialStore{backend: backend, opts: opts}
}

// Backend returns the storage behind the store.
func (s *CredentialStore) Backend() Backend {
	return s.backend
}

// Load returns the raw token of r, or "" when the request has no session.
// A missing header, cookie or record is not an error.
func (s *CredentialStore) Load(r *http.Request) (string, error) {
	if s.opts.IsAPI(r) {
		return BearerToken(r), nil
	}

	id := sessionID(r)
	if id == "" {
		return "", nil
	}

	raw, err := s.backend.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return raw, nil
}

// Save stores raw for the browser session of r, creating a session id when
// the request has none, and (re)sets the cookie. It returns the id used.
func (s *CredentialStore) Save(w http.ResponseWriter, r *http.Request, raw string) (string, error) {
	id := sessionID(r)
	if id == "" {
		var err error
		id, err = cryptox.NewSessionID()
		if err != nil {
			return "", fmt.Errorf("new session id: %w", err)
		}
	}

	if err := s.backend.Put(r.Context(), id, raw); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     s.opts.Path,
		MaxAge:   int(CookieMaxAge.Seconds()),
		Expires:  time.Now().Add(CookieMaxAge),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	slogx.FromContext(r.Context()).Debug("session saved", slogx.Token(raw))
	return id, nil
}

// Clear deletes the stored token of r, if any, and expires the cookie.
func (s *CredentialStore) Clear(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     s.opts.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	id := sessionID(r)
	if id == "" {
		return nil
	}
	if err := s.backend.Delete(r.Context(), id); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Ping checks the backend when it supports it.
func (s *CredentialStore) Ping(ctx context.Context) error {
	if p, ok := s.backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if len(authz) < 7 || !strings.EqualFold(authz[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[7:])
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil || !ValidID(c.Value) {
		return ""
	}
	return c.Value
}
