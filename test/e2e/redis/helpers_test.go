package redis_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/caronte/pkg/caronte"
	"github.com/aussiebroadwan/caronte/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Helpers for the Redis session end-to-end tests: a real Redis container
 * and an identity server stub issuing tokens for testAppID.
 */

const (
	redisImage = "redis:7-alpine"

	testSecret = "e2e-app-secret"
	testAppID  = "app_e2e"
	testIssuer = "caronte-e2e"
)

// setupRedisContainer starts Redis and returns its redis:// URL. The test is
// skipped when no container provider is available.
func setupRedisContainer(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForListeningPort("6379/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, mappedPort.Port())
}

// mint signs a token for user valid from issuedAt for ttl.
func mint(t *testing.T, user jwtx.UserPayload, issuedAt time.Time, ttl time.Duration) string {
	t.Helper()
	claims, err := jwtx.NewUserClaims(user, testIssuer, ttl, issuedAt)
	require.NoError(t, err)
	raw, err := jwtx.SignHS256(claims, []byte(testSecret))
	require.NoError(t, err)
	return raw
}

func member(id string, roles ...string) jwtx.UserPayload {
	u := jwtx.UserPayload{URIUser: id, Name: "User " + id, Email: id + "@example.com"}
	for _, r := range roles {
		u.Roles = append(u.Roles, jwtx.Role{Name: r, URIApplication: caronte.ApplicationHash(testAppID)})
	}
	return u
}

// setupIdentityServer answers logins with token and exchanges with a fresh
// token for the same user.
func setupIdentityServer(t *testing.T, token string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v2/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(token))
	})
	mux.HandleFunc("GET /api/v2/tokens/exchange", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mint(t, member("usr-1", "user"), time.Now(), time.Hour)))
	})
	mux.HandleFunc("GET /api/v2/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
