package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domainrepo "github.com/carecrest/hospital-cms/domains/subcategories/be/repo"
	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/slug"
)

var (
	ErrNotFound = fmt.Errorf("subcategory %w", apperr.ErrNotFound)
	ErrConflict = fmt.Errorf("subcategory %w", apperr.ErrConflict)
)

const maxNameLength = 200

// Subcategory is a specialty within a department.
type Subcategory struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"categoryId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	Image       *string   `json:"image,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateInput struct {
	CategoryID  uuid.UUID
	Name        string
	Slug        *string
	Description *string
	Image       *string
	SortOrder   *int
	IsActive    *bool
}

type UpdateInput struct {
	CategoryID  *uuid.UUID
	Name        *string
	Slug        *string
	Description *string
	Image       *string
	SortOrder   *int
	IsActive    *bool
}

func (in UpdateInput) empty() bool {
	return in.CategoryID == nil && in.Name == nil && in.Slug == nil && in.Description == nil &&
		in.Image == nil && in.SortOrder == nil && in.IsActive == nil
}

// ListFilter narrows List. IncludeInactive only applies to staff.
type ListFilter struct {
	CategoryID      *uuid.UUID
	IncludeInactive bool
}

type Service interface {
	List(ctx context.Context, audit requesttrace.AuditInfo, filter ListFilter) ([]Subcategory, error)
	Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Subcategory, error)
	GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, slug string) (Subcategory, error)
	Create(ctx context.Context, audit requesttrace.AuditInfo, input CreateInput) (Subcategory, error)
	Update(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, input UpdateInput) (Subcategory, error)
	Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error
}

type service struct {
	repo  domainrepo.Repository
	slugs *slug.Resolver
}

func New(repo domainrepo.Repository, slugs *slug.Resolver) Service {
	if repo == nil {
		panic("subcategories repository is required")
	}
	if slugs == nil {
		panic("slug resolver is required")
	}
	return &service{repo: repo, slugs: slugs}
}

func (s *service) List(ctx context.Context, audit requesttrace.AuditInfo, filter ListFilter) ([]Subcategory, error) {
	records, err := s.repo.List(ctx, persistence.SubcategoryFilter{
		CategoryID:      filter.CategoryID,
		IncludeInactive: filter.IncludeInactive && audit.CanSeeDrafts(),
	})
	if err != nil {
		return nil, err
	}

	out := make([]Subcategory, 0, len(records))
	for _, record := range records {
		out = append(out, mapSubcategory(record))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Subcategory, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return Subcategory{}, mapStoreError(err)
	}
	return visible(audit, record)
}

func (s *service) GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, value string) (Subcategory, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return Subcategory{}, ErrNotFound
	}
	record, err := s.repo.GetBySlug(ctx, value)
	if err != nil {
		return Subcategory{}, mapStoreError(err)
	}
	return visible(audit, record)
}

func (s *service) Create(ctx context.Context, audit requesttrace.AuditInfo, input CreateInput) (Subcategory, error) { //nolint:revive
	fields := apperr.FieldErrors{}
	name := validateName(fields, input.Name)
	if input.CategoryID == uuid.Nil {
		fields.Add("categoryId", "categoryId is required")
	}
	if input.SortOrder != nil && *input.SortOrder < 0 {
		fields.Add("sortOrder", "sortOrder must not be negative")
	}
	if err := fields.Err(); err != nil {
		return Subcategory{}, err
	}
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return Subcategory{}, err
	}

	slugValue, err := s.slugs.ForCreate(ctx, input.Slug, name)
	if err != nil {
		return Subcategory{}, err
	}

	params := persistence.SubcategoryParams{
		CategoryID:  input.CategoryID,
		Name:        name,
		Slug:        slugValue,
		Description: trimmed(input.Description),
		Image:       trimmed(input.Image),
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
		return Subcategory{}, mapStoreError(err)
	}
	return mapSubcategory(record), nil
}

func (s *service) Update(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, input UpdateInput) (Subcategory, error) { //nolint:revive
	if input.empty() {
		return Subcategory{}, apperr.Invalid("body", "at least one field must be provided")
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Subcategory{}, mapStoreError(err)
	}

	fields := apperr.FieldErrors{}
	params := persistence.SubcategoryParams{
		CategoryID:  current.CategoryID,
		Name:        current.Name,
		Description: current.Description,
		Image:       current.Image,
		SortOrder:   current.SortOrder,
		IsActive:    current.IsActive,
	}
	if input.Name != nil {
		params.Name = validateName(fields, *input.Name)
	}
	if input.CategoryID != nil {
		if *input.CategoryID == uuid.Nil {
			fields.Add("categoryId", "categoryId must be a valid UUID")
		}
		params.CategoryID = *input.CategoryID
	}
	if input.Description != nil {
		params.Description = trimmed(input.Description)
	}
	if input.Image != nil {
		params.Image = trimmed(input.Image)
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
		return Subcategory{}, err
	}
	if params.CategoryID != current.CategoryID {
		if err := s.ensureCategory(ctx, params.CategoryID); err != nil {
			return Subcategory{}, err
		}
	}

	params.Slug, err = s.slugs.ForUpdate(ctx, id, input.Slug, current.Slug, current.Name, params.Name)
	if err != nil {
		return Subcategory{}, err
	}

	record, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Subcategory{}, mapStoreError(err)
	}
	return mapSubcategory(record), nil
}

func (s *service) Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error { //nolint:revive
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (s *service) ensureCategory(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Invalid("categoryId", "category not found")
	}
	return nil
}

func visible(audit requesttrace.AuditInfo, record persistence.Subcategory) (Subcategory, error) {
	if !record.IsActive && !audit.CanSeeDrafts() {
		return Subcategory{}, ErrNotFound
	}
	return mapSubcategory(record), nil
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
	case errors.Is(err, persistence.ErrInvalidReference):
		return apperr.Invalid("categoryId", "category not found")
	default:
		return err
	}
}

func mapSubcategory(record persistence.Subcategory) Subcategory {
	return Subcategory{
		ID:          record.ID,
		CategoryID:  record.CategoryID,
		Name:        record.Name,
		Slug:        record.Slug,
		Description: record.Description,
		Image:       record.Image,
		SortOrder:   record.SortOrder,
		IsActive:    record.IsActive,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
