package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/caronte/internal/domain"
	"github.com/aussiebroadwan/caronte/internal/store/drivers/sqlite/gen"
)

type sessionTokensRepo struct {
	q   *gen.Queries
	now func() time.Time
}

func (r *sessionTokensRepo) GetSessionToken(ctx context.Context, id string) (domain.SessionToken, error) {
	row, err := r.q.GetSessionToken(ctx, id)
	if err != nil {
		return domain.SessionToken{}, mapNotFound(err)
	}
	return mapSessionToken(row), nil
}

func (r *sessionTokensRepo) PutSessionToken(ctx context.Context, id, token string) error {
	now := r.now().Unix()
	return r.q.PutSessionToken(ctx, gen.PutSessionTokenParams{
		ID:        id,
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (r *sessionTokensRepo) DeleteSessionToken(ctx context.Context, id string) error {
	return r.q.DeleteSessionToken(ctx, id)
}

func (r *sessionTokensRepo) TouchSessionToken(ctx context.Context, id string, before time.Time) (bool, error) {
	n, err := r.q.TouchSessionToken(ctx, gen.TouchSessionTokenParams{
		UpdatedAt:   r.now().Unix(),
		ID:          id,
		UpdatedAt_2: before.Unix(),
	})
	return n > 0, err
}

func (r *sessionTokensRepo) DeleteSessionTokensBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.q.DeleteSessionTokensBefore(ctx, cutoff.Unix())
}
