package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/carecrest/hospital-cms/platform/go/persistence"
)

// Repository exposes persistence operations required by the subcategories service.
type Repository interface {
	List(ctx context.Context, filter persistence.SubcategoryFilter) ([]persistence.Subcategory, error)
	Create(ctx context.Context, params persistence.SubcategoryParams) (persistence.Subcategory, error)
	Get(ctx context.Context, id uuid.UUID) (persistence.Subcategory, error)
	GetBySlug(ctx context.Context, slug string) (persistence.Subcategory, error)
	Update(ctx context.Context, id uuid.UUID, params persistence.SubcategoryParams) (persistence.Subcategory, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// CategoryExists reports whether a live category with id exists.
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type postgresRepository struct {
	store      *persistence.SubcategoryStore
	categories *persistence.CategoryStore
}

func NewPostgresRepository(store *persistence.SubcategoryStore, categories *persistence.CategoryStore) Repository {
	if store == nil {
		panic("subcategory store is required")
	}
	if categories == nil {
		panic("category store is required")
	}
	return &postgresRepository{store: store, categories: categories}
}

func (r *postgresRepository) List(ctx context.Context, filter persistence.SubcategoryFilter) ([]persistence.Subcategory, error) {
	return r.store.ListSubcategories(ctx, filter)
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.SubcategoryParams) (persistence.Subcategory, error) {
	return r.store.CreateSubcategory(ctx, params)
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (persistence.Subcategory, error) {
	return r.store.GetSubcategory(ctx, id)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (persistence.Subcategory, error) {
	return r.store.GetSubcategoryBySlug(ctx, slug)
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, params persistence.SubcategoryParams) (persistence.Subcategory, error) {
	return r.store.UpdateSubcategory(ctx, id, params)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.SoftDeleteSubcategory(ctx, id)
}

func (r *postgresRepository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := r.categories.GetCategory(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, persistence.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
