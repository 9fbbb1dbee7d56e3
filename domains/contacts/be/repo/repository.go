package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/carecrest/hospital-cms/platform/go/persistence"
)

// Repository exposes persistence operations required by the contacts service.
type Repository interface {
	Create(ctx context.Context, params persistence.CreateContactParams) (persistence.ContactMessage, error)
	Get(ctx context.Context, id uuid.UUID) (persistence.ContactMessage, error)
	List(ctx context.Context, filter persistence.ContactFilter) (persistence.ListContactsResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (persistence.ContactMessage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	store *persistence.ContactStore
}

func NewPostgresRepository(store *persistence.ContactStore) Repository {
	if store == nil {
		panic("contact store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.CreateContactParams) (persistence.ContactMessage, error) {
	return r.store.CreateContact(ctx, params)
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (persistence.ContactMessage, error) {
	return r.store.GetContact(ctx, id)
}

func (r *postgresRepository) List(ctx context.Context, filter persistence.ContactFilter) (persistence.ListContactsResult, error) {
	return r.store.ListContacts(ctx, filter)
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (persistence.ContactMessage, error) {
	return r.store.UpdateContactStatus(ctx, id, status)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.DeleteContact(ctx, id)
}
