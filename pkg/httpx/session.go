package httpx

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/caronte/pkg/caronte"
	"github.com/aussiebroadwan/caronte/pkg/credstore"
	"github.com/aussiebroadwan/caronte/pkg/jwtx"
	"github.com/aussiebroadwan/caronte/pkg/slogx"
)

// NewTokenHeader carries an exchanged token back to machine callers.
const NewTokenHeader = "new_token"

const (
	msgNoApplication = "User does not have access to this application"
	msgNoRole        = "User does not have access to this feature"
)

// TokenValidator is implemented by *caronte.Validator.
type TokenValidator interface {
	Validate(ctx context.Context, raw string) (*caronte.Result, error)
}

// SessionAuth holds what the session middlewares need. Build it once and
// share it between routes.
type SessionAuth struct {
	Validator   TokenValidator
	Permissions *caronte.PermissionEvaluator
	Store       *credstore.CredentialStore

	// LoginURL is where browsers without a valid session are sent.
	LoginURL string
}

// ValidateSession loads and validates the caller's token, persists an
// exchanged replacement, checks that the user belongs to the application and
// attaches the result to the request context.
func (a *SessionAuth) ValidateSession() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, err := a.Store.Load(r)
			if err != nil {
				log.Error("failed to load session", "err", err)
				WriteError(w, http.StatusInternalServerError, "could not load session")
				return
			}
			if raw == "" {
				a.Fail(w, r, caronte.ErrTokenMissing)
				return
			}

			res, err := a.Validator.Validate(ctx, raw)
			if err != nil {
				if ctx.Err() != nil {
					log.Info("request ended during validation", "err", err)
					WriteError(w, http.StatusServiceUnavailable, "Request cancelled")
					return
				}
				if errors.Is(err, caronte.ErrExchangeFailed) {
					if cerr := a.Store.Clear(w, r); cerr != nil {
						log.Error("failed to clear session", "err", cerr)
					}
				}
				log.Info("session rejected", "err", err)
				a.Fail(w, r, err)
				return
			}

			if res.Exchanged {
				if IsAPI(r) {
					w.Header().Set(NewTokenHeader, res.Raw)
				} else if _, err := a.Store.Save(w, r, res.Raw); err != nil {
					log.Error("failed to persist exchanged token", "err", err)
				}
			}

			ok, err := a.Permissions.HasApplication(res.User)
			if err != nil {
				a.Fail(w, r, err)
				return
			}
			if !ok {
				a.Fail(w, r, forbidden(msgNoApplication))
				return
			}

			ctx = caronte.WithResult(ctx, res)
			ctx = slogx.WithContext(ctx, log.With("uri_user", res.User.URIUser))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireApplication rejects users without a role in the application. It
// expects ValidateSession to have run.
func (a *SessionAuth) RequireApplication() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := a.Permissions.HasApplication(caronte.UserFromContext(r.Context()))
			if err != nil {
				a.Fail(w, r, err)
				return
			}
			if !ok {
				a.Fail(w, r, forbidden(msgNoApplication))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles rejects users holding none of roles. Entries may be
// comma-separated lists. The route subject for caronte.RoleSelf is the
// "uri_user" path value. It expects ValidateSession to have run.
func (a *SessionAuth) RequireRoles(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := caronte.UserFromContext(r.Context())

			ok, err := a.Permissions.HasRoles(user, roles, r.PathValue("uri_user"))
			if err != nil {
				a.Fail(w, r, err)
				return
			}
			if !ok {
				a.Fail(w, r, forbidden(msgNoRole))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Fail answers an authentication or authorization failure. Machine callers
// get a JSON error; browsers without a valid session are redirected to the
// login page with the current URL as callback.
func (a *SessionAuth) Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := caronte.StatusCode(err)
	msg := errorMessage(err)

	if IsAPI(r) {
		if status == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		}
		WriteError(w, status, msg)
		return
	}

	if status == http.StatusUnauthorized {
		http.Redirect(w, r, LoginRedirectURL(a.LoginURL, r.URL.RequestURI()), http.StatusFound)
		return
	}

	WriteText(w, status, msg)
}

// LoginRedirectURL appends the base64 encoded callback to loginURL.
func LoginRedirectURL(loginURL, callback string) string {
	if loginURL == "" {
		loginURL = "/login"
	}
	u, err := url.Parse(loginURL)
	if err != nil {
		return loginURL
	}
	q := u.Query()
	q.Set("callback_url", base64.StdEncoding.EncodeToString([]byte(callback)))
	u.RawQuery = q.Encode()
	return u.String()
}

// CallbackURL decodes a base64 callback_url parameter. It falls back to
// fallback when the value is empty, undecodable, a lone backslash, or points
// outside this application: only local paths and URLs under appURL are
// followed.
func CallbackURL(encoded, fallback, appURL string) string {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fallback
	}
	cb := string(decoded)
	switch {
	case cb == "" || cb == `\`:
		return fallback
	case strings.HasPrefix(cb, "/") && !strings.HasPrefix(cb, "//") && !strings.HasPrefix(cb, `/\`):
		return cb
	case appURL != "" && (cb == appURL || strings.HasPrefix(cb, strings.TrimSuffix(appURL, "/")+"/")):
		return cb
	default:
		return fallback
	}
}

// UserFromRequest returns the user attached by ValidateSession.
func UserFromRequest(r *http.Request) *jwtx.UserPayload {
	return caronte.UserFromContext(r.Context())
}

type forbiddenError struct{ msg string }

func (e forbiddenError) Error() string { return e.msg }
func (e forbiddenError) Unwrap() error { return caronte.ErrForbidden }

func forbidden(msg string) error { return forbiddenError{msg: msg} }

func errorMessage(err error) string {
	var fe forbiddenError
	if errors.As(err, &fe) {
		return fe.msg
	}

	switch {
	case errors.Is(err, caronte.ErrTokenMissing):
		return "Token not provided"
	case errors.Is(err, caronte.ErrExchangeFailed):
		return "Cannot exchange token"
	case errors.Is(err, caronte.ErrSignatureInvalid), errors.Is(err, caronte.ErrIssuerInvalid):
		return "Token is not trusted"
	case errors.Is(err, caronte.ErrUserMissing):
		return "User not provided"
	case errors.Is(err, caronte.ErrForbidden):
		return msgNoRole
	case caronte.IsAuthentication(err):
		return "Invalid token"
	default:
		return "Request failed"
	}
}
