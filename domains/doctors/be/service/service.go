package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainrepo "github.com/carecrest/hospital-cms/domains/doctors/be/repo"
	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/cache"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/sanitizer"
	"github.com/carecrest/hospital-cms/platform/go/schemavalidator"
	"github.com/carecrest/hospital-cms/platform/go/slug"
)

var (
	ErrNotFound = fmt.Errorf("doctor %w", apperr.ErrNotFound)
	ErrConflict = fmt.Errorf("doctor %w", apperr.ErrConflict)
)

const (
	availabilitySchema = "doctor-availability"
	maxNameLength      = 200
	maxExperienceYears = 80
)

//go:embed availability.schema.json
var availabilitySchemaJSON []byte

// Doctor is a practitioner profile as served to clients.
type Doctor struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Designation     *string         `json:"designation,omitempty"`
	Specialization  *string         `json:"specialization,omitempty"`
	Qualifications  *string         `json:"qualifications,omitempty"`
	ExperienceYears int             `json:"experienceYears"`
	Bio             *string         `json:"bio,omitempty"`
	Image           *string         `json:"image,omitempty"`
	Email           *string         `json:"email,omitempty"`
	Phone           *string         `json:"phone,omitempty"`
	CategoryID      *uuid.UUID      `json:"categoryId,omitempty"`
	Availability    json.RawMessage `json:"availability,omitempty"`
	IsActive        bool            `json:"isActive"`
	SortOrder       int             `json:"sortOrder"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type CreateInput struct {
	Name            string
	Slug            *string
	Designation     *string
	Specialization  *string
	Qualifications  *string
	ExperienceYears *int
	Bio             *string
	Image           *string
	Email           *string
	Phone           *string
	CategoryID      *uuid.UUID
	Availability    json.RawMessage
	IsActive        *bool
	SortOrder       *int
}

// UpdateInput is a partial update. A JSON null Availability clears the schedule.
type UpdateInput struct {
	Name            *string
	Slug            *string
	Designation     *string
	Specialization  *string
	Qualifications  *string
	ExperienceYears *int
	Bio             *string
	Image           *string
	Email           *string
	Phone           *string
	CategoryID      *uuid.UUID
	Availability    json.RawMessage
	IsActive        *bool
	SortOrder       *int
}

func (in UpdateInput) empty() bool {
	return in.Name == nil && in.Slug == nil && in.Designation == nil && in.Specialization == nil &&
		in.Qualifications == nil && in.ExperienceYears == nil && in.Bio == nil && in.Image == nil &&
		in.Email == nil && in.Phone == nil && in.CategoryID == nil && in.Availability == nil &&
		in.IsActive == nil && in.SortOrder == nil
}

type ListFilter struct {
	CategoryID      *uuid.UUID
	Specialization  *string
	Search          *string
	IncludeInactive bool
	Page            int
	PageSize        int
}

type ListResult struct {
	Items      []Doctor `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalItems int      `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
}

type Service interface {
	List(ctx context.Context, audit requesttrace.AuditInfo, filter ListFilter) (ListResult, error)
	Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Doctor, error)
	GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, slug string) (Doctor, error)
	Create(ctx context.Context, audit requesttrace.AuditInfo, input CreateInput) (Doctor, error)
	Update(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, input UpdateInput) (Doctor, error)
	Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error
}

type service struct {
	repo      domainrepo.Repository
	slugs     *slug.Resolver
	validator *schemavalidator.Validator
	cache     cache.Cache[Doctor]
	logger    *zap.Logger
}

type Option func(*service)

// WithCache serves slug lookups through c.
func WithCache(c cache.Cache[Doctor]) Option {
	return func(s *service) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(repo domainrepo.Repository, slugs *slug.Resolver, opts ...Option) Service {
	if repo == nil {
		panic("doctors repository is required")
	}
	if slugs == nil {
		panic("slug resolver is required")
	}
	s := &service{
		repo:      repo,
		slugs:     slugs,
		validator: schemavalidator.New().MustRegister(availabilitySchema, availabilitySchemaJSON),
		cache:     cache.Noop[Doctor]{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context, audit requesttrace.AuditInfo, filter ListFilter) (ListResult, error) {
	page := persistence.PageParams{Page: filter.Page, PageSize: filter.PageSize}.Normalize()

	result, err := s.repo.List(ctx, persistence.DoctorFilter{
		IncludeInactive: filter.IncludeInactive && audit.CanSeeDrafts(),
		CategoryID:      filter.CategoryID,
		Specialization:  filter.Specialization,
		Search:          filter.Search,
		Page:            page,
	})
	if err != nil {
		return ListResult{}, err
	}

	items := make([]Doctor, 0, len(result.Doctors))
	for _, record := range result.Doctors {
		items = append(items, mapDoctor(record))
	}
	return ListResult{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: (result.TotalItems + page.PageSize - 1) / page.PageSize,
	}, nil
}

func (s *service) Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Doctor, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return Doctor{}, mapStoreError(err)
	}
	return visible(audit, mapDoctor(record))
}

func (s *service) GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, value string) (Doctor, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return Doctor{}, ErrNotFound
	}

	doctor, err := cache.GetOrLoad(ctx, s.cache, s.logger, value, func(ctx context.Context) (Doctor, error) {
		record, err := s.repo.GetBySlug(ctx, value)
		if err != nil {
			return Doctor{}, mapStoreError(err)
		}
		return mapDoctor(record), nil
	})
	if err != nil {
		return Doctor{}, err
	}
	return visible(audit, doctor)
}

func (s *service) Create(ctx context.Context, audit requesttrace.AuditInfo, input CreateInput) (Doctor, error) { //nolint:revive
	fields := apperr.FieldErrors{}
	params := persistence.DoctorParams{
		Name:           validateName(fields, input.Name),
		Designation:    plain(input.Designation),
		Specialization: plain(input.Specialization),
		Qualifications: plain(input.Qualifications),
		Bio:            plain(input.Bio),
		Image:          trimmed(input.Image),
		Email:          validateEmail(fields, input.Email),
		Phone:          trimmed(input.Phone),
		CategoryID:     input.CategoryID,
		Availability:   s.validateAvailability(fields, input.Availability),
		IsActive:       true,
	}
	if input.ExperienceYears != nil {
		params.ExperienceYears = validateExperience(fields, *input.ExperienceYears)
	}
	if input.SortOrder != nil {
		params.SortOrder = validateSortOrder(fields, *input.SortOrder)
	}
	if input.IsActive != nil {
		params.IsActive = *input.IsActive
	}
	if err := fields.Err(); err != nil {
		return Doctor{}, err
	}

	var err error
	params.Slug, err = s.slugs.ForCreate(ctx, input.Slug, params.Name)
	if err != nil {
		return Doctor{}, err
	}

	record, err := s.repo.Create(ctx, params)
	if err != nil {
		return Doctor{}, mapStoreError(err)
	}
	return mapDoctor(record), nil
}

func (s *service) Update(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, input UpdateInput) (Doctor, error) { //nolint:revive
	if input.empty() {
		return Doctor{}, apperr.Invalid("body", "at least one field must be provided")
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Doctor{}, mapStoreError(err)
	}

	fields := apperr.FieldErrors{}
	params := persistence.DoctorParams{
		Name:            current.Name,
		Designation:     current.Designation,
		Specialization:  current.Specialization,
		Qualifications:  current.Qualifications,
		ExperienceYears: current.ExperienceYears,
		Bio:             current.Bio,
		Image:           current.Image,
		Email:           current.Email,
		Phone:           current.Phone,
		CategoryID:      current.CategoryID,
		Availability:    current.Availability,
		IsActive:        current.IsActive,
		SortOrder:       current.SortOrder,
	}
	if input.Name != nil {
		params.Name = validateName(fields, *input.Name)
	}
	if input.Designation != nil {
		params.Designation = plain(input.Designation)
	}
	if input.Specialization != nil {
		params.Specialization = plain(input.Specialization)
	}
	if input.Qualifications != nil {
		params.Qualifications = plain(input.Qualifications)
	}
	if input.ExperienceYears != nil {
		params.ExperienceYears = validateExperience(fields, *input.ExperienceYears)
	}
	if input.Bio != nil {
		params.Bio = plain(input.Bio)
	}
	if input.Image != nil {
		params.Image = trimmed(input.Image)
	}
	if input.Email != nil {
		params.Email = validateEmail(fields, input.Email)
	}
	if input.Phone != nil {
		params.Phone = trimmed(input.Phone)
	}
	if input.CategoryID != nil {
		params.CategoryID = input.CategoryID
		if *input.CategoryID == uuid.Nil {
			params.CategoryID = nil
		}
	}
	if input.Availability != nil {
		params.Availability = s.validateAvailability(fields, input.Availability)
	}
	if input.IsActive != nil {
		params.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		params.SortOrder = validateSortOrder(fields, *input.SortOrder)
	}
	if err := fields.Err(); err != nil {
		return Doctor{}, err
	}

	params.Slug, err = s.slugs.ForUpdate(ctx, id, input.Slug, current.Slug, current.Name, params.Name)
	if err != nil {
		return Doctor{}, err
	}

	record, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Doctor{}, mapStoreError(err)
	}

	cache.Invalidate(ctx, s.cache, s.logger, distinct(current.Slug, record.Slug)...)
	return mapDoctor(record), nil
}

func (s *service) Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error { //nolint:revive
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}

	cache.Invalidate(ctx, s.cache, s.logger, distinct(current.Slug)...)
	return nil
}

// validateAvailability returns nil for an absent or null document.
func (s *service) validateAvailability(fields apperr.FieldErrors, raw json.RawMessage) json.RawMessage {
	trimmedRaw := bytes.TrimSpace(raw)
	if len(trimmedRaw) == 0 || bytes.Equal(trimmedRaw, []byte("null")) {
		return nil
	}

	err := s.validator.Validate(availabilitySchema, trimmedRaw)
	if err == nil {
		return trimmedRaw
	}

	var docErr *schemavalidator.DocumentError
	if errors.As(err, &docErr) {
		locations := make([]string, 0, len(docErr.Violations))
		for loc := range docErr.Violations {
			locations = append(locations, loc)
		}
		sort.Strings(locations)
		for _, loc := range locations {
			for _, msg := range docErr.Violations[loc] {
				fields.Add("availability", fmt.Sprintf("%s: %s", loc, msg))
			}
		}
		return nil
	}
	fields.Add("availability", err.Error())
	return nil
}

func visible(audit requesttrace.AuditInfo, doctor Doctor) (Doctor, error) {
	if !doctor.IsActive && !audit.CanSeeDrafts() {
		return Doctor{}, ErrNotFound
	}
	return doctor, nil
}

func distinct(slugs ...string) []string {
	out := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" && (len(out) == 0 || out[len(out)-1] != s) {
			out = append(out, s)
		}
	}
	return out
}

func validateName(fields apperr.FieldErrors, raw string) string {
	name := sanitizer.PlainText(raw)
	switch {
	case name == "":
		fields.Add("name", "name is required")
	case len([]rune(name)) > maxNameLength:
		fields.Add("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	return name
}

func validateEmail(fields apperr.FieldErrors, raw *string) *string {
	v := trimmed(raw)
	if v == nil {
		return nil
	}
	addr, err := mail.ParseAddress(*v)
	if err != nil || addr.Address != *v {
		fields.Add("email", "email must be a valid address")
		return nil
	}
	return v
}

func validateExperience(fields apperr.FieldErrors, years int) int {
	if years < 0 || years > maxExperienceYears {
		fields.Add("experienceYears", fmt.Sprintf("experienceYears must be between 0 and %d", maxExperienceYears))
	}
	return years
}

func validateSortOrder(fields apperr.FieldErrors, order int) int {
	if order < 0 {
		fields.Add("sortOrder", "sortOrder must not be negative")
	}
	return order
}

func plain(v *string) *string {
	if v == nil {
		return nil
	}
	t := sanitizer.PlainText(*v)
	if t == "" {
		return nil
	}
	return &t
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

func mapDoctor(record persistence.Doctor) Doctor {
	return Doctor{
		ID:              record.ID,
		Name:            record.Name,
		Slug:            record.Slug,
		Designation:     record.Designation,
		Specialization:  record.Specialization,
		Qualifications:  record.Qualifications,
		ExperienceYears: record.ExperienceYears,
		Bio:             record.Bio,
		Image:           record.Image,
		Email:           record.Email,
		Phone:           record.Phone,
		CategoryID:      record.CategoryID,
		Availability:    record.Availability,
		IsActive:        record.IsActive,
		SortOrder:       record.SortOrder,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
