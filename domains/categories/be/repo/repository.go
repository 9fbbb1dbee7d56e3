package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/carecrest/hospital-cms/platform/go/persistence"
)

// Repository exposes persistence operations required by the categories service.
type Repository interface {
	List(ctx context.Context, includeInactive bool) ([]persistence.Category, error)
	Create(ctx context.Context, params persistence.CategoryParams) (persistence.Category, error)
	Get(ctx context.Context, id uuid.UUID) (persistence.Category, error)
	GetBySlug(ctx context.Context, slug string) (persistence.Category, error)
	Update(ctx context.Context, id uuid.UUID, params persistence.CategoryParams) (persistence.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	store *persistence.CategoryStore
}

// NewPostgresRepository builds a Repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.CategoryStore) Repository {
	if store == nil {
		panic("category store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) List(ctx context.Context, includeInactive bool) ([]persistence.Category, error) {
	return r.store.ListCategories(ctx, includeInactive)
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.CategoryParams) (persistence.Category, error) {
	return r.store.CreateCategory(ctx, params)
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (persistence.Category, error) {
	return r.store.GetCategory(ctx, id)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (persistence.Category, error) {
	return r.store.GetCategoryBySlug(ctx, slug)
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, params persistence.CategoryParams) (persistence.Category, error) {
	return r.store.UpdateCategory(ctx, id, params)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.SoftDeleteCategory(ctx, id)
}
