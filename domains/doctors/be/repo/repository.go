package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/carecrest/hospital-cms/platform/go/persistence"
)

// Repository exposes persistence operations required by the doctors service.
type Repository interface {
	List(ctx context.Context, filter persistence.DoctorFilter) (persistence.ListDoctorsResult, error)
	Create(ctx context.Context, params persistence.DoctorParams) (persistence.Doctor, error)
	Get(ctx context.Context, id uuid.UUID) (persistence.Doctor, error)
	GetBySlug(ctx context.Context, slug string) (persistence.Doctor, error)
	Update(ctx context.Context, id uuid.UUID, params persistence.DoctorParams) (persistence.Doctor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	store *persistence.DoctorStore
}

func NewPostgresRepository(store *persistence.DoctorStore) Repository {
	if store == nil {
		panic("doctor store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) List(ctx context.Context, filter persistence.DoctorFilter) (persistence.ListDoctorsResult, error) {
	return r.store.ListDoctors(ctx, filter)
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.DoctorParams) (persistence.Doctor, error) {
	return r.store.CreateDoctor(ctx, params)
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (persistence.Doctor, error) {
	return r.store.GetDoctor(ctx, id)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (persistence.Doctor, error) {
	return r.store.GetDoctorBySlug(ctx, slug)
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, params persistence.DoctorParams) (persistence.Doctor, error) {
	return r.store.UpdateDoctor(ctx, id, params)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.SoftDeleteDoctor(ctx, id)
}
