package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/caronte/internal/store"
	"github.com/aussiebroadwan/caronte/internal/store/drivers/sqlite/gen"
)

type txStore struct {
	tx  *sql.Tx
	q   *gen.Queries
	now func() time.Time
}

func newTx(tx *sql.Tx, now func() time.Time) *txStore {
	return &txStore{
		tx:  tx,
		q:   gen.New(tx),
		now: now,
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the outer DB stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) SessionTokens() store.SessionTokens {
	return &sessionTokensRepo{q: t.q, now: t.now}
}

func (t *txStore) Users() store.Users { return &usersRepo{q: t.q, now: t.now} }

// Migrations run before any transaction is opened.
func (t *txStore) ApplyMigrations() error { return nil }
