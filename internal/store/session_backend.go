package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/caronte/pkg/credstore"
)

// SessionBackend adapts a Store to credstore.Backend so the sqlite database
// can hold browser sessions next to the user mirror.
//
// Reading a session older than TouchAfter moves its write time forward, so
// the housekeeping sweep only removes sessions nobody has used.
type SessionBackend struct {
	store Store

	TouchAfter time.Duration
}

var (
	_ credstore.Backend = (*SessionBackend)(nil)
	_ credstore.Pinger  = (*SessionBackend)(nil)
)

func NewSessionBackend(store Store) *SessionBackend {
	return &SessionBackend{store: store, TouchAfter: time.Hour}
}

func (b *SessionBackend) Get(ctx context.Context, id string) (string, error) {
	rec, err := b.store.SessionTokens().GetSessionToken(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return "", credstore.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	if time.Since(rec.UpdatedAt) >= b.TouchAfter {
		// A failed touch only shortens the session's life.
		_, _ = b.store.SessionTokens().TouchSessionToken(ctx, id, time.Now().Add(-b.TouchAfter))
	}
	return rec.Token, nil
}

func (b *SessionBackend) Put(ctx context.Context, id, raw string) error {
	return b.store.SessionTokens().PutSessionToken(ctx, id, raw)
}

func (b *SessionBackend) Delete(ctx context.Context, id string) error {
	return b.store.SessionTokens().DeleteSessionToken(ctx, id)
}

func (b *SessionBackend) Ping(ctx context.Context) error {
	return b.store.Ping(ctx)
}
