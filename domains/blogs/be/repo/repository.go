package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/carecrest/hospital-cms/platform/go/persistence"
)

// Repository exposes persistence operations required by the blogs service.
type Repository interface {
	List(ctx context.Context, filter persistence.BlogFilter) (persistence.ListBlogsResult, error)
	Create(ctx context.Context, params persistence.BlogParams) (persistence.Blog, error)
	Get(ctx context.Context, id uuid.UUID) (persistence.Blog, error)
	GetBySlug(ctx context.Context, slug string) (persistence.Blog, error)
	Update(ctx context.Context, id uuid.UUID, params persistence.BlogParams) (persistence.Blog, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	store *persistence.BlogStore
}

func NewPostgresRepository(store *persistence.BlogStore) Repository {
	if store == nil {
		panic("blog store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) List(ctx context.Context, filter persistence.BlogFilter) (persistence.ListBlogsResult, error) {
	return r.store.ListBlogs(ctx, filter)
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.BlogParams) (persistence.Blog, error) {
	return r.store.CreateBlog(ctx, params)
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (persistence.Blog, error) {
	return r.store.GetBlog(ctx, id)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (persistence.Blog, error) {
	return r.store.GetBlogBySlug(ctx, slug)
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, params persistence.BlogParams) (persistence.Blog, error) {
	return r.store.UpdateBlog(ctx, id, params)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.SoftDeleteBlog(ctx, id)
}
