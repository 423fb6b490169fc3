package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/caronte/internal/domain"
	"github.com/aussiebroadwan/caronte/internal/store"
	"github.com/aussiebroadwan/caronte/pkg/caronte"
	"github.com/aussiebroadwan/caronte/pkg/jwtx"
	"github.com/aussiebroadwan/caronte/pkg/slogx"
)

// UserNotFound is what the name and email lookups return for unknown users.
const UserNotFound = "User not found"

var _ caronte.UserObserver = (*UserSyncService)(nil)

// UserSyncService keeps a local copy of the users seen in validated tokens,
// so the application can show names and metadata without calling the
// identity server.
type UserSyncService struct {
	Store store.Store

	// Scope is given to metadata entries that carry none, normally the
	// application id.
	Scope string
}

// ObserveUser upserts u and its metadata. A user whose stored copy already
// matches is left alone, so repeat requests only read. Failures are logged
// and never reach the request.
func (s *UserSyncService) ObserveUser(ctx context.Context, u *jwtx.UserPayload) {
	if u == nil || u.URIUser == "" {
		return
	}

	md := make([]domain.Metadata, 0, len(u.Metadata))
	for _, m := range u.Metadata {
		scope := m.Scope
		if scope == "" {
			scope = s.Scope
		}
		md = append(md, domain.Metadata{Key: m.Key, Value: m.Value, Scope: scope})
	}

	if stored, err := s.Store.Users().GetUser(ctx, u.URIUser); err == nil && mirrors(stored, u, md) {
		return
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.Users().UpsertUser(ctx, domain.User{
			URIUser: u.URIUser,
			Name:    u.Name,
			Email:   u.Email,
		})
		if err != nil {
			return err
		}
		return tx.Users().UpsertMetadata(ctx, u.URIUser, md)
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to update local user", "uri_user", u.URIUser, "err", err)
	}
}

// mirrors reports whether stored already holds everything in u. Metadata is
// only ever added or overwritten, so extra stored entries do not count.
func mirrors(stored domain.User, u *jwtx.UserPayload, md []domain.Metadata) bool {
	if stored.Name != u.Name || stored.Email != u.Email {
		return false
	}

	have := make(map[[2]string]string, len(stored.Metadata))
	for _, m := range stored.Metadata {
		have[[2]string{m.Scope, m.Key}] = m.Value
	}
	for _, m := range md {
		if v, ok := have[[2]string{m.Scope, m.Key}]; !ok || v != m.Value {
			return false
		}
	}
	return true
}

// UserName returns the stored name, or UserNotFound.
func (s *UserSyncService) UserName(ctx context.Context, uriUser string) string {
	u, err := s.user(ctx, uriUser)
	if err != nil {
		return UserNotFound
	}
	return u.Name
}

// UserEmail returns the stored email, or UserNotFound.
func (s *UserSyncService) UserEmail(ctx context.Context, uriUser string) string {
	u, err := s.user(ctx, uriUser)
	if err != nil {
		return UserNotFound
	}
	return u.Email
}

// UserMetadata returns the value stored under key, preferring the entry in
// the service scope. ok is false when the user or key is unknown.
func (s *UserSyncService) UserMetadata(ctx context.Context, uriUser, key string) (value string, ok bool) {
	u, err := s.user(ctx, uriUser)
	if err != nil {
		return "", false
	}

	for _, m := range u.Metadata {
		if m.Key != key {
			continue
		}
		if m.Scope == s.Scope {
			return m.Value, true
		}
		if !ok {
			value, ok = m.Value, true
		}
	}
	return value, ok
}

func (s *UserSyncService) user(ctx context.Context, uriUser string) (domain.User, error) {
	u, err := s.Store.Users().GetUser(ctx, uriUser)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Error("failed to read local user", "uri_user", uriUser, "err", err)
	}
	return u, err
}
