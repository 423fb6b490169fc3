package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/caronte/internal/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface, implemented by the drivers under
// drivers/. Sub-repositories are reached through methods so a transaction can
// hand out the same repositories bound to itself.
type Store interface {
	SessionTokens() SessionTokens
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type SessionTokens interface {
	GetSessionToken(ctx context.Context, id string) (domain.SessionToken, error)

	// PutSessionToken inserts or overwrites the token stored under id.
	PutSessionToken(ctx context.Context, id, token string) error

	DeleteSessionToken(ctx context.Context, id string) error

	// TouchSessionToken bumps the write time of id to now when it was last
	// written before the given time, and reports whether it did.
	TouchSessionToken(ctx context.Context, id string, before time.Time) (bool, error)

	// DeleteSessionTokensBefore removes sessions not written since cutoff and
	// reports how many were removed.
	DeleteSessionTokensBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Users interface {
	// GetUser returns the user with its metadata in every scope.
	GetUser(ctx context.Context, uriUser string) (domain.User, error)

	// UpsertUser inserts the user or refreshes name and email.
	UpsertUser(ctx context.Context, u domain.User) error

	// UpsertMetadata inserts or updates each entry under its own scope.
	// Keys missing from md are left alone.
	UpsertMetadata(ctx context.Context, uriUser string, md []domain.Metadata) error

	ListMetadata(ctx context.Context, uriUser, scope string) ([]domain.Metadata, error)
}
