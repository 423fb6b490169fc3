package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/caronte/internal/domain"
	"github.com/aussiebroadwan/caronte/internal/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q   *gen.Queries
	now func() time.Time
}

func (r *usersRepo) GetUser(ctx context.Context, uriUser string) (domain.User, error) {
	row, err := r.q.GetUser(ctx, uriUser)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	md, err := r.q.ListUserMetadata(ctx, uriUser)
	if err != nil {
		return domain.User{}, err
	}

	u := mapUser(row)
	u.Metadata = mapMetadata(md)
	return u, nil
}

func (r *usersRepo) UpsertUser(ctx context.Context, u domain.User) error {
	now := r.now().Unix()
	return r.q.UpsertUser(ctx, gen.UpsertUserParams{
		UriUser:   u.URIUser,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// UpsertMetadata is not atomic on its own; run it inside WithTx.
func (r *usersRepo) UpsertMetadata(ctx context.Context, uriUser string, md []domain.Metadata) error {
	for _, m := range md {
		err := r.q.InsertUserMetadata(ctx, gen.InsertUserMetadataParams{
			UriUser: uriUser,
			Scope:   m.Scope,
			Key:     m.Key,
			Value:   m.Value,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *usersRepo) ListMetadata(ctx context.Context, uriUser, scope string) ([]domain.Metadata, error) {
	rows, err := r.q.ListUserMetadataByScope(ctx, gen.ListUserMetadataByScopeParams{
		UriUser: uriUser,
		Scope:   scope,
	})
	if err != nil {
		return nil, err
	}
	return mapMetadata(rows), nil
}
