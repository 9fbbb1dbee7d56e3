package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/carecrest/hospital-cms/platform/go/persistence"
)

// Repository exposes persistence operations required by the hero service.
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]persistence.HeroContent, error)
	Create(ctx context.Context, params persistence.HeroParams) (persistence.HeroContent, error)
	Get(ctx context.Context, id uuid.UUID) (persistence.HeroContent, error)
	Update(ctx context.Context, id uuid.UUID, params persistence.HeroParams) (persistence.HeroContent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	store *persistence.HeroStore
}

func NewPostgresRepository(store *persistence.HeroStore) Repository {
	if store == nil {
		panic("hero store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) List(ctx context.Context, activeOnly bool) ([]persistence.HeroContent, error) {
	return r.store.ListHeroes(ctx, activeOnly)
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.HeroParams) (persistence.HeroContent, error) {
	return r.store.CreateHero(ctx, params)
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (persistence.HeroContent, error) {
	return r.store.GetHero(ctx, id)
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, params persistence.HeroParams) (persistence.HeroContent, error) {
	return r.store.UpdateHero(ctx, id, params)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.DeleteHero(ctx, id)
}
