package redis_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/caronte/internal/app"
	"github.com/aussiebroadwan/caronte/pkg/credstore"
	"github.com/aussiebroadwan/caronte/pkg/credstore/credstoretest"
	"github.com/aussiebroadwan/caronte/pkg/credstore/redisstore"
	"github.com/stretchr/testify/require"
)

func TestRedisBackendConformance(t *testing.T) {
	redisURL := setupRedisContainer(t)

	credstoretest.RunBackendTests(t, func(t *testing.T) credstore.Backend {
		s, err := redisstore.NewFromURL(redisURL, time.Hour)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestBrowserSessionInRedis(t *testing.T) {
	redisURL := setupRedisContainer(t)

	stale := mint(t, member("usr-1", "user"), time.Now().Add(-2*time.Hour), time.Hour)
	identity := setupIdentityServer(t, stale)

	application, err := app.New(app.Config{
		URL:                  identity.URL,
		Version:              "v2",
		AppID:                testAppID,
		AppSecret:            testSecret,
		IssuerID:             testIssuer,
		EnforceIssuer:        true,
		ExchangeTimeout:      5 * time.Second,
		SessionDriver:        app.DriverRedis,
		RedisURL:             redisURL,
		SessionMaxAge:        time.Hour,
		DatabaseFile:         filepath.Join(t.TempDir(), "caronte.db"),
		AppURL:               "http://app.example.com",
		LogLevel:             "error",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	})
	require.NoError(t, err)
	h := application.Handler()

	// A login hands out a stale token: it is exchanged before being stored
	form := url.Values{"email": {"ada@example.com"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == credstore.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.False(t, cookie.Secure)

	req = httptest.NewRequest(http.MethodGet, "/get-token", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEqual(t, stale, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)

	require.NoError(t, application.Shutdown())
}
