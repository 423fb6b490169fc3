package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/caronte/pkg/caronte"
	"github.com/aussiebroadwan/caronte/pkg/httpx"
	"github.com/aussiebroadwan/caronte/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "app-secret"
	testAppID  = "app_X"
	testIssuer = "caronte"
)

func mint(t *testing.T, user jwtx.UserPayload, issuedAt time.Time, ttl time.Duration) string {
	t.Helper()
	claims, err := jwtx.NewUserClaims(user, testIssuer, ttl, issuedAt)
	require.NoError(t, err)
	raw, err := jwtx.SignHS256(claims, []byte(testSecret))
	require.NoError(t, err)
	return raw
}

func testUser() jwtx.UserPayload {
	return jwtx.UserPayload{
		URIUser: "usr-1",
		Name:    "Ada",
		Email:   "ada@example.com",
		Roles:   []jwtx.Role{{Name: "user", URIApplication: caronte.ApplicationHash(testAppID)}},
		Metadata: []jwtx.Metadata{
			{Key: "theme", Value: "dark"},
		},
	}
}

func testConfig(t *testing.T, identityURL string) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		URL:                  identityURL,
		Version:              "v2",
		AppID:                testAppID,
		AppSecret:            testSecret,
		IssuerID:             testIssuer,
		EnforceIssuer:        true,
		AdminRole:            "admin",
		ExchangeTimeout:      time.Second,
		SessionDriver:        DriverFile,
		SessionPath:          filepath.Join(dir, "sessions"),
		DatabaseFile:         filepath.Join(dir, "caronte.db"),
		SessionMaxAge:        time.Hour,
		AppURL:               "https://app.example.com",
		LogLevel:             "error",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func newIdentityStub(t *testing.T, fresh *string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var exchanges atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/tokens/exchange" {
			http.NotFound(w, r)
			return
		}
		exchanges.Add(1)
		_, _ = w.Write([]byte(*fresh))
	}))
	t.Cleanup(srv.Close)
	return srv, &exchanges
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{SessionDriver: DriverFile})
	require.Error(t, err)
	require.Contains(t, err.Error(), "CARONTE_URL")
}

func TestApplicationSQLiteSessions(t *testing.T) {
	now := time.Now()
	fresh := mint(t, testUser(), now.Add(-time.Minute), time.Hour)
	srv, exchanges := newIdentityStub(t, &fresh)

	cfg := testConfig(t, srv.URL)
	cfg.SessionDriver = DriverSQLite
	cfg.UpdateLocalUser = true

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.close() })

	require.NotNil(t, app.db)
	require.NotNil(t, app.housekeepingService)
	require.NotNil(t, app.userSync)

	h := app.Handler()

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("stale bearer token is exchanged and the user mirrored", func(t *testing.T) {
		stale := mint(t, testUser(), now.Add(-2*time.Hour), time.Hour)

		req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
		req.Header.Set("Authorization", "Bearer "+stale)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, fresh, rec.Header().Get(httpx.NewTokenHeader))
		require.Equal(t, int32(1), exchanges.Load())

		var got jwtx.UserPayload
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Equal(t, "usr-1", got.URIUser)

		ctx := context.Background()
		require.Equal(t, "Ada", app.userSync.UserName(ctx, "usr-1"))
		theme, ok := app.userSync.UserMetadata(ctx, "usr-1", "theme")
		require.True(t, ok)
		require.Equal(t, "dark", theme)
	})

	t.Run("housekeeping sweeps the sqlite sessions", func(t *testing.T) {
		require.Equal(t, int64(0), app.housekeepingService.Sweep(context.Background()))
	})
}

func TestApplicationFileSessions(t *testing.T) {
	fresh := ""
	srv, _ := newIdentityStub(t, &fresh)

	cfg := testConfig(t, srv.URL)

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.close() })

	require.Nil(t, app.db)
	require.Nil(t, app.housekeepingService)
	require.Nil(t, app.userSync)

	info, err := os.Stat(cfg.SessionPath)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	rec := httptest.NewRecorder()
	h := app.Handler()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get-token", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "/login?callback_url=")
}

func TestApplicationRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	fresh := ""
	srv, _ := newIdentityStub(t, &fresh)

	cfg := testConfig(t, srv.URL)
	cfg.SessionDriver = DriverRedis
	cfg.RedisURL = "redis://" + mr.Addr()

	app, err := New(cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, app.close())
}

func TestNotifyClientConfiguration(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/A3/v2/client-configuration", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte("Configuration updated"))
	}))
	t.Cleanup(srv.Close)

	rolesFile := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(rolesFile, []byte("roles:\n  - name: admin\n    description: Full access\n"), 0o600))

	cfg := testConfig(t, srv.URL)
	cfg.RolesFile = rolesFile

	msg, err := NotifyClientConfiguration(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, "Configuration updated", msg)
	require.Equal(t, "https://app.example.com", body["application_url"])
	require.Len(t, body["roles"], 1)

	cfg.RolesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NotifyClientConfiguration(context.Background(), cfg)
	require.Error(t, err)
}
