package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/caronte/internal/domain"
	"github.com/aussiebroadwan/caronte/internal/store"
	"github.com/aussiebroadwan/caronte/internal/store/drivers/sqlite"
	"github.com/aussiebroadwan/caronte/pkg/credstore"
	"github.com/aussiebroadwan/caronte/pkg/credstore/credstoretest"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "caronte.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestApplyMigrationsTwice(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestSessionBackend(t *testing.T) {
	credstoretest.RunBackendTests(t, func(t *testing.T) credstore.Backend {
		return store.NewSessionBackend(newStore(t))
	})
}

func TestSessionTokens(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	repo := st.SessionTokens()

	_, err := repo.GetSessionToken(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, repo.PutSessionToken(ctx, "sess1", "a.b.c"))
	rec, err := repo.GetSessionToken(ctx, "sess1")
	require.NoError(t, err)
	require.Equal(t, "a.b.c", rec.Token)
	require.WithinDuration(t, time.Now(), rec.UpdatedAt, 5*time.Second)

	n, err := repo.DeleteSessionTokensBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = repo.DeleteSessionTokensBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = repo.GetSessionToken(ctx, "sess1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionBackendTouchesOnRead(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	repo := st.SessionTokens()

	sqlite.SetClock(st, func() time.Time { return time.Now().Add(-2 * time.Hour) })
	require.NoError(t, repo.PutSessionToken(ctx, "sess1", "a.b.c"))
	sqlite.SetClock(st, time.Now)

	touched, err := repo.TouchSessionToken(ctx, "sess1", time.Now().Add(-3*time.Hour))
	require.NoError(t, err)
	require.False(t, touched, "written after the cutoff")

	raw, err := store.NewSessionBackend(st).Get(ctx, "sess1")
	require.NoError(t, err)
	require.Equal(t, "a.b.c", raw)

	rec, err := repo.GetSessionToken(ctx, "sess1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), rec.UpdatedAt, 5*time.Second)

	n, err := repo.DeleteSessionTokensBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, n, "a used session survives the sweep")
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	users := st.Users()

	_, err := users.GetUser(ctx, "usr-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, users.UpsertUser(ctx, domain.User{URIUser: "usr-1", Name: "Ada", Email: "ada@example.com"}))
	require.NoError(t, users.UpsertUser(ctx, domain.User{URIUser: "usr-1", Name: "Ada L", Email: "ada@example.com"}))

	require.NoError(t, users.UpsertMetadata(ctx, "usr-1", []domain.Metadata{
		{Key: "theme", Value: "dark", Scope: "app"},
		{Key: "lang", Value: "en", Scope: "app"},
		{Key: "x", Value: "1", Scope: "other"},
	}))
	require.NoError(t, users.UpsertMetadata(ctx, "usr-1", []domain.Metadata{{Key: "theme", Value: "light", Scope: "app"}}))

	u, err := users.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	require.Equal(t, "Ada L", u.Name)
	require.Equal(t, []domain.Metadata{
		{Key: "lang", Value: "en", Scope: "app"},
		{Key: "theme", Value: "light", Scope: "app"},
		{Key: "x", Value: "1", Scope: "other"},
	}, u.Metadata)

	md, err := users.ListMetadata(ctx, "usr-1", "other")
	require.NoError(t, err)
	require.Equal(t, []domain.Metadata{{Key: "x", Value: "1", Scope: "other"}}, md)

	md, err = users.ListMetadata(ctx, "usr-1", "missing")
	require.NoError(t, err)
	require.Empty(t, md)
}

func TestMetadataRequiresUser(t *testing.T) {
	st := newStore(t)
	err := st.Users().UpsertMetadata(context.Background(), "ghost", []domain.Metadata{{Key: "k", Value: "v", Scope: "app"}})
	require.Error(t, err, "foreign keys are enforced")
}

func TestWithTxRollback(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().UpsertUser(ctx, domain.User{URIUser: "usr-2"}))
		require.ErrorIs(t, tx.WithTx(ctx, func(store.Tx) error { return nil }), sql.ErrTxDone, "nested")
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Users().GetUser(ctx, "usr-2")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().UpsertUser(ctx, domain.User{URIUser: "usr-2"})
	}))
	_, err = st.Users().GetUser(ctx, "usr-2")
	require.NoError(t, err)
}
