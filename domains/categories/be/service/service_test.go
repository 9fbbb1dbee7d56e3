package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/auth"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/slug"
)

type mockRepository struct {
	listFn      func(ctx context.Context, includeInactive bool) ([]persistence.Category, error)
	createFn    func(ctx context.Context, params persistence.CategoryParams) (persistence.Category, error)
	getFn       func(ctx context.Context, id uuid.UUID) (persistence.Category, error)
	getBySlugFn func(ctx context.Context, slug string) (persistence.Category, error)
	updateFn    func(ctx context.Context, id uuid.UUID, params persistence.CategoryParams) (persistence.Category, error)
	deleteFn    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockRepository) List(ctx context.Context, includeInactive bool) ([]persistence.Category, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, includeInactive)
}

func (m *mockRepository) Create(ctx context.Context, params persistence.CategoryParams) (persistence.Category, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, params)
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (persistence.Category, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, id)
}

func (m *mockRepository) GetBySlug(ctx context.Context, slug string) (persistence.Category, error) {
	if m.getBySlugFn == nil {
		panic("getBySlugFn not configured")
	}
	return m.getBySlugFn(ctx, slug)
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, params persistence.CategoryParams) (persistence.Category, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, id, params)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, id)
}

func resolverWith(taken ...string) *slug.Resolver {
	set := map[string]bool{}
	for _, s := range taken {
		set[s] = true
	}
	return slug.NewResolver(func(_ context.Context, candidate string, _ *uuid.UUID) (bool, error) {
		return set[candidate], nil
	})
}

var (
	anonymous = requesttrace.Anonymous("test")
	editor    = requesttrace.AuditInfo{ActorKind: requesttrace.ActorKindUser, Roles: []string{auth.RoleEditor}}
)

func TestServiceCreateGeneratesUniqueSlug(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	repo := &mockRepository{}
	repo.createFn = func(_ context.Context, params persistence.CategoryParams) (persistence.Category, error) {
		require.Equal(t, "Cardiology", params.Name)
		require.Equal(t, "cardiology-2", params.Slug)
		require.True(t, params.IsActive)
		return persistence.Category{ID: uuid.New(), Name: params.Name, Slug: params.Slug, IsActive: true, CreatedAt: now, UpdatedAt: now}, nil
	}

	svc := New(repo, resolverWith("cardiology"))
	got, err := svc.Create(context.Background(), editor, CreateInput{Name: "  Cardiology "})
	require.NoError(t, err)
	require.Equal(t, "cardiology-2", got.Slug)
	require.Equal(t, now, got.CreatedAt)
}

func TestServiceCreateExplicitSlugTaken(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{}, resolverWith("cardiology"))
	explicit := "Cardiology"
	_, err := svc.Create(context.Background(), editor, CreateInput{Name: "Heart", Slug: &explicit})
	require.ErrorIs(t, err, slug.ErrTaken)
}

func TestServiceCreateValidationError(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{}, resolverWith())
	negative := -1
	_, err := svc.Create(context.Background(), editor, CreateInput{Name: " ", SortOrder: &negative})

	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "name")
	require.Contains(t, validationErr.Fields, "sortOrder")
}

func TestServiceUpdateRegeneratesSlugOnRename(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	repo := &mockRepository{}
	repo.getFn = func(context.Context, uuid.UUID) (persistence.Category, error) {
		return persistence.Category{ID: id, Name: "Cardiology", Slug: "cardiology", SortOrder: 3, IsActive: true}, nil
	}
	repo.updateFn = func(_ context.Context, gotID uuid.UUID, params persistence.CategoryParams) (persistence.Category, error) {
		require.Equal(t, id, gotID)
		require.Equal(t, "heart-vascular", params.Slug)
		require.Equal(t, 3, params.SortOrder)
		return persistence.Category{ID: id, Name: params.Name, Slug: params.Slug, SortOrder: params.SortOrder, IsActive: params.IsActive}, nil
	}

	name := "Heart & Vascular"
	got, err := New(repo, resolverWith()).Update(context.Background(), editor, id, UpdateInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "heart-vascular", got.Slug)
}

func TestServiceUpdateKeepsSlugWhenNameUnchanged(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	repo := &mockRepository{}
	repo.getFn = func(context.Context, uuid.UUID) (persistence.Category, error) {
		return persistence.Category{ID: id, Name: "Cardiology", Slug: "cardio", IsActive: true}, nil
	}
	repo.updateFn = func(_ context.Context, _ uuid.UUID, params persistence.CategoryParams) (persistence.Category, error) {
		require.Equal(t, "cardio", params.Slug)
		require.False(t, params.IsActive)
		return persistence.Category{ID: id, Name: params.Name, Slug: params.Slug}, nil
	}

	inactive := false
	_, err := New(repo, resolverWith("cardiology")).Update(context.Background(), editor, id, UpdateInput{IsActive: &inactive})
	require.NoError(t, err)
}

func TestServiceUpdateRequiresAField(t *testing.T) {
	t.Parallel()

	_, err := New(&mockRepository{}, resolverWith()).Update(context.Background(), editor, uuid.New(), UpdateInput{})
	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestServiceGetHidesInactiveFromPublic(t *testing.T) {
	t.Parallel()

	repo := &mockRepository{}
	repo.getBySlugFn = func(_ context.Context, value string) (persistence.Category, error) {
		require.Equal(t, "oncology", value)
		return persistence.Category{ID: uuid.New(), Name: "Oncology", Slug: value, IsActive: false}, nil
	}
	svc := New(repo, resolverWith())

	_, err := svc.GetBySlug(context.Background(), anonymous, " Oncology ")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := svc.GetBySlug(context.Background(), editor, "oncology")
	require.NoError(t, err)
	require.Equal(t, "Oncology", got.Name)
}

func TestServiceListIncludeInactiveIsStaffOnly(t *testing.T) {
	t.Parallel()

	var seen []bool
	repo := &mockRepository{}
	repo.listFn = func(_ context.Context, includeInactive bool) ([]persistence.Category, error) {
		seen = append(seen, includeInactive)
		return nil, nil
	}
	svc := New(repo, resolverWith())

	_, err := svc.List(context.Background(), anonymous, true)
	require.NoError(t, err)
	_, err = svc.List(context.Background(), editor, true)
	require.NoError(t, err)

	require.Equal(t, []bool{false, true}, seen)
}

func TestServiceDeleteMapsNotFound(t *testing.T) {
	t.Parallel()

	repo := &mockRepository{}
	repo.deleteFn = func(context.Context, uuid.UUID) error { return persistence.ErrNotFound }

	err := New(repo, resolverWith()).Delete(context.Background(), editor, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceStorageFailureOnSlugCheck(t *testing.T) {
	t.Parallel()

	failing := slug.NewResolver(func(context.Context, string, *uuid.UUID) (bool, error) {
		return false, errors.New("connection refused")
	})
	_, err := New(&mockRepository{}, failing).Create(context.Background(), editor, CreateInput{Name: "Radiology"})
	require.ErrorIs(t, err, slug.ErrStorageUnavailable)
}
