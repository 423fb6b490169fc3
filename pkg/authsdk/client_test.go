package authsdk

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *SDKClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewSDKClient(srv.URL+"/", opts...)
}

func TestNewSDKClient(t *testing.T) {
	t.Parallel()

	c := NewSDKClient("https://caronte.example.com/")
	require.Equal(t, "https://caronte.example.com", c.BaseURL)
	require.Equal(t, DefaultVersion, c.Version)
	require.Equal(t, DefaultTimeout, c.HTTPClient.Timeout)

	c = NewSDKClient("https://caronte.example.com",
		WithVersion("v1"),
		WithTimeout(time.Second),
		WithApplication("app", "secret"),
		WithInsecureTLS(true),
	)
	require.Equal(t, "v1", c.Version)
	require.Equal(t, time.Second, c.HTTPClient.Timeout)
	require.Equal(t, "app", c.AppID)
	require.NotNil(t, c.HTTPClient.Transport)
}

func TestExchangeToken(t *testing.T) {
	t.Parallel()

	t.Run("returns new token", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/api/v2/tokens/exchange", r.URL.Path)
			require.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte("fresh.token.value\n"))
		})

		fresh, err := c.ExchangeToken(context.Background(), "stale")
		require.NoError(t, err)
		require.Equal(t, "fresh.token.value", fresh)
	})

	t.Run("quoted token", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`"a.b.c"`))
		})

		fresh, err := c.ExchangeToken(context.Background(), "stale")
		require.NoError(t, err)
		require.Equal(t, "a.b.c", fresh)
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.ExchangeToken(context.Background(), "stale")
		require.Error(t, err)
		require.True(t, IsStatus(err, http.StatusInternalServerError))
	})

	t.Run("empty body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := c.ExchangeToken(context.Background(), "stale")
		require.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}, WithTimeout(50*time.Millisecond))
		defer close(release)

		_, err := c.ExchangeToken(context.Background(), "stale")
		require.Error(t, err)

		var apiErr *APIError
		require.False(t, errors.As(err, &apiErr))
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("posts credentials with app id", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v1/login", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, LoginRequest{Email: "ada@example.com", Password: "pw", AppID: "app"}, req)

			_, _ = w.Write([]byte("x.y.z"))
		}, WithVersion("v1"), WithApplication("app", "secret"))

		raw, err := c.Login(context.Background(), "ada@example.com", "pw")
		require.NoError(t, err)
		require.Equal(t, "x.y.z", raw)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Invalid credentials"}`))
		})

		_, err := c.Login(context.Background(), "ada@example.com", "bad")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "unauthorized", apiErr.Code)
		require.Equal(t, "Invalid credentials", apiErr.Message)
	})
}

func TestTwoFactor(t *testing.T) {
	t.Parallel()

	t.Run("request fills app id", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v2/2fa", r.URL.Path)

			var req TwoFactorRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "app", req.AppID)
			require.Equal(t, "https://app.example.com", req.ApplicationURL)
			require.Equal(t, "ada@example.com", req.Email)

			_, _ = w.Write([]byte("Authentication email sent"))
		}, WithApplication("app", ""))

		msg, err := c.RequestTwoFactor(context.Background(), TwoFactorRequest{
			ApplicationURL: "https://app.example.com",
			Email:          "ada@example.com",
		})
		require.NoError(t, err)
		require.Equal(t, "Authentication email sent", msg)
	})

	t.Run("login with link token", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/api/v2/2fa/link-token", r.URL.Path)
			_, _ = w.Write([]byte("a.b.c"))
		})

		raw, err := c.TwoFactorLogin(context.Background(), "link-token")
		require.NoError(t, err)
		require.Equal(t, "a.b.c", raw)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	for name, all := range map[string]bool{"/api/v2/logout": false, "/api/v2/logoutAll": true} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, name, r.URL.Path)
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		})
		require.NoError(t, c.Logout(context.Background(), "tok", all))
	}
}

func TestPasswordRecovery(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/password/recover":
			var req PasswordRecoveryRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "app", req.AppID)
			_, _ = w.Write([]byte("mail sent"))
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/password/recover/tok":
			_, _ = w.Write([]byte("valid"))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/password/recover/tok":
			var req RecoverPasswordRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Password != req.PasswordConfirmation {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"message":"passwords do not match"}`))
				return
			}
			_, _ = w.Write([]byte("password updated"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, WithApplication("app", ""))

	ctx := context.Background()

	msg, err := c.RequestPasswordRecovery(ctx, PasswordRecoveryRequest{Email: "ada@example.com"})
	require.NoError(t, err)
	require.Equal(t, "mail sent", msg)

	msg, err = c.ValidateRecoveryToken(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, "valid", msg)

	msg, err = c.RecoverPassword(ctx, "tok", RecoverPasswordRequest{Password: "a", PasswordConfirmation: "a"})
	require.NoError(t, err)
	require.Equal(t, "password updated", msg)

	_, err = c.RecoverPassword(ctx, "tok", RecoverPasswordRequest{Password: "a", PasswordConfirmation: "b"})
	require.True(t, IsStatus(err, http.StatusUnprocessableEntity))
	require.Contains(t, err.Error(), "passwords do not match")
}

func TestPasswordRecoverURL(t *testing.T) {
	t.Parallel()

	c := NewSDKClient("https://caronte.example.com")
	raw := c.PasswordRecoverURL("https://app.example.com/login", "My App")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/password/recover", u.Path)

	cb, err := base64.StdEncoding.DecodeString(u.Query().Get("callback_url"))
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/login", string(cb))

	app, err := base64.StdEncoding.DecodeString(u.Query().Get("application"))
	require.NoError(t, err)
	require.Equal(t, "My App", string(app))
}

func TestNotifyClientConfiguration(t *testing.T) {
	t.Parallel()

	t.Run("sends service credential and roles", func(t *testing.T) {
		sum := sha1.Sum([]byte("app"))
		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(sum[:])+":secret"))

		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/A3/v2/client-configuration", r.URL.Path)
			require.Equal(t, wantAuth, r.Header.Get("Authorization"))

			var cfg ClientConfiguration
			require.NoError(t, json.NewDecoder(r.Body).Decode(&cfg))
			require.Equal(t, "https://app.example.com", cfg.ApplicationURL)
			require.Len(t, cfg.Roles, 1)
			require.Equal(t, "editor", cfg.Roles[0].Name)

			_, _ = w.Write([]byte("Configuration updated"))
		}, WithApplication("app", "secret"))

		msg, err := c.NotifyClientConfiguration(context.Background(), ClientConfiguration{
			ApplicationURL: "https://app.example.com",
			Roles:          []RoleDefinition{{Name: "editor", Description: "Edits"}},
		})
		require.NoError(t, err)
		require.Equal(t, "Configuration updated", msg)
	})

	t.Run("requires credentials", func(t *testing.T) {
		c := NewSDKClient("https://caronte.example.com")
		_, err := c.NotifyClientConfiguration(context.Background(), ClientConfiguration{})
		require.ErrorIs(t, err, ErrMissingCredentials)
	})
}

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
	}{
		{"message body", 400, `{"error":"bad_request","message":"nope"}`, "bad_request", "nope"},
		{"description body", 401, `{"error":"invalid_token","error_description":"expired"}`, "invalid_token", "expired"},
		{"code only", 403, `{"error":"forbidden"}`, "forbidden", "Forbidden"},
		{"plain text", 400, "Token expired", "", "Token expired"},
		{"html", 502, "<html>bad gateway</html>", "", "Bad Gateway"},
		{"empty", 500, "", "", "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErrorResponse(&http.Response{StatusCode: tt.status}, []byte(tt.body))

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, tt.code, apiErr.Code)
			require.Equal(t, tt.message, apiErr.Message)
		})
	}

	t.Run("long text cut on a rune boundary", func(t *testing.T) {
		body := "a" + strings.Repeat("é", maxMessageLen)
		err := parseErrorResponse(&http.Response{StatusCode: 400}, []byte(body))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.True(t, utf8.ValidString(apiErr.Message))
		require.LessOrEqual(t, len(apiErr.Message), maxMessageLen)
		require.Equal(t, maxMessageLen-1, len(apiErr.Message))
	})

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: 204}, nil))
	require.True(t, strings.HasPrefix((&APIError{StatusCode: 500, Message: "x"}).Error(), "caronte: HTTP 500"))
}
