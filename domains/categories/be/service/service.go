package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domainrepo "github.com/carecrest/hospital-cms/domains/categories/be/repo"
	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/slug"
)

// Domain-level error sentinel values.
var (
	ErrNotFound = fmt.Errorf("category %w", apperr.ErrNotFound)
	ErrConflict = fmt.Errorf("category %w", apperr.ErrConflict)
)

const maxNameLength = 200

// Category is a hospital department.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput defines the payload required to create a category.
type CreateInput struct {
	Name        string
	Slug        *string
	Description *string
	Icon        *string
	SortOrder   *int
	IsActive    *bool
}

// UpdateInput lists the fields that can change. Nil fields are left untouched.
type UpdateInput struct {
	Name        *string
	Slug        *string
	Description *string
	Icon        *string
	SortOrder   *int
	IsActive    *bool
}

func (in UpdateInput) empty() bool {
	return in.Name == nil && in.Slug == nil && in.Description == nil && in.Icon == nil &&
		in.SortOrder == nil && in.IsActive == nil
}

// Service exposes the categories domain operations.
type Service interface {
	List(ctx context.Context, audit requesttrace.AuditInfo, includeInactive bool) ([]Category, error)
	Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Category, error)
	GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, slug string) (Category, error)
	Create(ctx context.Context, audit requesttrace.AuditInfo, input CreateInput) (Category, error)
	Update(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, input UpdateInput) (Category, error)
	Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error
}

type service struct {
	repo  domainrepo.Repository
	slugs *slug.Resolver
}

// New builds a categories Service. slugs must check the categories kind.
func New(repo domainrepo.Repository, slugs *slug.Resolver) Service {
	if repo == nil {
		panic("categories repository is required")
	}
	if slugs == nil {
		panic("slug resolver is required")
	}
	return &service{repo: repo, slugs: slugs}
}

// List hides inactive categories unless the caller is staff and asked for them.
func (s *service) List(ctx context.Context, audit requesttrace.AuditInfo, includeInactive bool) ([]Category, error) {
	records, err := s.repo.List(ctx, includeInactive && audit.CanSeeDrafts())
	if err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(records))
	for _, record := range records {
		categories = append(categories, mapCategory(record))
	}
	return categories, nil
}

func (s *service) Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Category, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return Category{}, mapStoreError(err)
	}
	return s.visible(audit, record)
}

func (s *service) GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, value string) (Category, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return Category{}, ErrNotFound
	}
	record, err := s.repo.GetBySlug(ctx, value)
	if err != nil {
		return Category{}, mapStoreError(err)
	}
	return s.visible(audit, record)
}

func (s *service) Create(ctx context.Context, audit requesttrace.AuditInfo, input CreateInput) (Category, error) { //nolint:revive
	fields := apperr.FieldErrors{}
	name := validateName(fields, input.Name)
	if input.SortOrder != nil && *input.SortOrder < 0 {
		fields.Add("sortOrder", "sortOrder must not be negative")
	}
	if err := fields.Err(); err != nil {
		return Category{}, err
	}

	slugValue, err := s.slugs.ForCreate(ctx, input.Slug, name)
	if err != nil {
		return Category{}, err
	}

	params := persistence.CategoryParams{
		Name:        name,
		Slug:        slugValue,
		Description: trimmed(input.Description),
		Icon:        trimmed(input.Icon),
		IsActive:    true,
	}
	if input.SortOrder != nil {
		params.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		params.IsActive = *input.IsActive
	}

	record, err := s.repo.Create(ctx, params)
	if err != nil {
		return Category{}, mapStoreError(err)
	}
	return mapCategory(record), nil
}

func (s *service) Update(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, input UpdateInput) (Category, error) { //nolint:revive
	if input.empty() {
		return Category{}, apperr.Invalid("body", "at least one field must be provided")
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Category{}, mapStoreError(err)
	}

	fields := apperr.FieldErrors{}
	params := persistence.CategoryParams{
		Name:        current.Name,
		Description: current.Description,
		Icon:        current.Icon,
		SortOrder:   current.SortOrder,
		IsActive:    current.IsActive,
	}
	if input.Name != nil {
		params.Name = validateName(fields, *input.Name)
	}
	if input.Description != nil {
		params.Description = trimmed(input.Description)
	}
	if input.Icon != nil {
		params.Icon = trimmed(input.Icon)
	}
	if input.SortOrder != nil {
		if *input.SortOrder < 0 {
			fields.Add("sortOrder", "sortOrder must not be negative")
		}
		params.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		params.IsActive = *input.IsActive
	}
	if err := fields.Err(); err != nil {
		return Category{}, err
	}

	params.Slug, err = s.slugs.ForUpdate(ctx, id, input.Slug, current.Slug, current.Name, params.Name)
	if err != nil {
		return Category{}, err
	}

	record, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Category{}, mapStoreError(err)
	}
	return mapCategory(record), nil
}

func (s *service) Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error { //nolint:revive
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (s *service) visible(audit requesttrace.AuditInfo, record persistence.Category) (Category, error) {
	if !record.IsActive && !audit.CanSeeDrafts() {
		return Category{}, ErrNotFound
	}
	return mapCategory(record), nil
}

func validateName(fields apperr.FieldErrors, raw string) string {
	name := strings.TrimSpace(raw)
	switch {
	case name == "":
		fields.Add("name", "name is required")
	case len([]rune(name)) > maxNameLength:
		fields.Add("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	return name
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}

func mapCategory(record persistence.Category) Category {
	return Category{
		ID:          record.ID,
		Name:        record.Name,
		Slug:        record.Slug,
		Description: record.Description,
		Icon:        record.Icon,
		SortOrder:   record.SortOrder,
		IsActive:    record.IsActive,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
