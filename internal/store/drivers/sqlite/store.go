package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/caronte/internal/domain"
	"github.com/aussiebroadwan/caronte/internal/store"
	"github.com/aussiebroadwan/caronte/internal/store/drivers/sqlite/gen"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
	now func() time.Time
}

// NewStore opens the database at dsn. SQLite allows one writer at a time,
// so the pool is limited to a single connection and callers queue on it.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
		now: time.Now,
	}, nil
}

// DSN builds a modernc.org/sqlite connection string for a database file.
func DSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, s.now), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) SessionTokens() store.SessionTokens {
	return &sessionTokensRepo{q: s.q, now: s.now}
}

func (s *Store) Users() store.Users { return &usersRepo{q: s.q, now: s.now} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func mapSessionToken(row gen.SessionToken) domain.SessionToken {
	return domain.SessionToken{
		ID:        row.ID,
		Token:     row.Token,
		CreatedAt: fromUnix(row.CreatedAt),
		UpdatedAt: fromUnix(row.UpdatedAt),
	}
}

func mapUser(row gen.User) domain.User {
	return domain.User{
		URIUser:   row.UriUser,
		Name:      row.Name,
		Email:     row.Email,
		CreatedAt: fromUnix(row.CreatedAt),
		UpdatedAt: fromUnix(row.UpdatedAt),
	}
}

func mapMetadata(rows []gen.UserMetadatum) []domain.Metadata {
	if len(rows) == 0 {
		return nil
	}
	out := make([]domain.Metadata, len(rows))
	for i, row := range rows {
		out[i] = domain.Metadata{Key: row.Key, Value: row.Value, Scope: row.Scope}
	}
	return out
}
