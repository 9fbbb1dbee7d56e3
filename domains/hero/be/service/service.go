package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	domainrepo "github.com/carecrest/hospital-cms/domains/hero/be/repo"
	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/sanitizer"
)

var ErrNotFound = fmt.Errorf("hero content %w", apperr.ErrNotFound)

const maxTitleLength = 200

// Hero is a homepage banner slide.
type Hero struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Subtitle    *string   `json:"subtitle,omitempty"`
	Description *string   `json:"description,omitempty"`
	Image       *string   `json:"image,omitempty"`
	CTAText     *string   `json:"ctaText,omitempty"`
	CTALink     *string   `json:"ctaLink,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Title       string
	Subtitle    *string
	Description *string
	Image       *string
	CTAText     *string
	CTALink     *string
	SortOrder   *int
	IsActive    *bool
}

type UpdateInput struct {
	Title       *string
	Subtitle    *string
	Description *string
	Image       *string
	CTAText     *string
	CTALink     *string
	SortOrder   *int
	IsActive    *bool
}

func (in UpdateInput) empty() bool {
	return in.Title == nil && in.Subtitle == nil && in.Description == nil && in.Image == nil &&
		in.CTAText == nil && in.CTALink == nil && in.SortOrder == nil && in.IsActive == nil
}

type Service interface {
	List(ctx context.Context, audit requesttrace.AuditInfo, includeInactive bool) ([]Hero, error)
	Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Hero, error)
	Create(ctx context.Context, audit requesttrace.AuditInfo, input CreateInput) (Hero, error)
	Update(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, input UpdateInput) (Hero, error)
	Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error
}

type service struct {
	repo domainrepo.Repository
}

func New(repo domainrepo.Repository) Service {
	if repo == nil {
		panic("hero repository is required")
	}
	return &service{repo: repo}
}

// List returns slides ordered by sortOrder. Inactive slides are only listed for staff.
func (s *service) List(ctx context.Context, audit requesttrace.AuditInfo, includeInactive bool) ([]Hero, error) {
	records, err := s.repo.List(ctx, !(includeInactive && audit.CanSeeDrafts()))
	if err != nil {
		return nil, err
	}

	items := make([]Hero, 0, len(records))
	for _, record := range records {
		items = append(items, mapHero(record))
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Hero, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return Hero{}, mapStoreError(err)
	}
	if !record.IsActive && !audit.CanSeeDrafts() {
		return Hero{}, ErrNotFound
	}
	return mapHero(record), nil
}

func (s *service) Create(ctx context.Context, audit requesttrace.AuditInfo, input CreateInput) (Hero, error) { //nolint:revive
	fields := apperr.FieldErrors{}
	params := persistence.HeroParams{
		Title:       validateTitle(fields, input.Title),
		Subtitle:    plain(input.Subtitle),
		Description: plain(input.Description),
		Image:       trimmed(input.Image),
		CTAText:     plain(input.CTAText),
		CTALink:     validateLink(fields, input.CTALink),
		IsActive:    true,
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
		return Hero{}, err
	}

	record, err := s.repo.Create(ctx, params)
	if err != nil {
		return Hero{}, mapStoreError(err)
	}
	return mapHero(record), nil
}

func (s *service) Update(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, input UpdateInput) (Hero, error) { //nolint:revive
	if input.empty() {
		return Hero{}, apperr.Invalid("body", "at least one field must be provided")
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Hero{}, mapStoreError(err)
	}

	fields := apperr.FieldErrors{}
	params := persistence.HeroParams{
		Title:       current.Title,
		Subtitle:    current.Subtitle,
		Description: current.Description,
		Image:       current.Image,
		CTAText:     current.CTAText,
		CTALink:     current.CTALink,
		SortOrder:   current.SortOrder,
		IsActive:    current.IsActive,
	}
	if input.Title != nil {
		params.Title = validateTitle(fields, *input.Title)
	}
	if input.Subtitle != nil {
		params.Subtitle = plain(input.Subtitle)
	}
	if input.Description != nil {
		params.Description = plain(input.Description)
	}
	if input.Image != nil {
		params.Image = trimmed(input.Image)
	}
	if input.CTAText != nil {
		params.CTAText = plain(input.CTAText)
	}
	if input.CTALink != nil {
		params.CTALink = validateLink(fields, input.CTALink)
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
		return Hero{}, err
	}

	record, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Hero{}, mapStoreError(err)
	}
	return mapHero(record), nil
}

func (s *service) Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error { //nolint:revive
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func validateTitle(fields apperr.FieldErrors, raw string) string {
	title := sanitizer.PlainText(raw)
	switch {
	case title == "":
		fields.Add("title", "title is required")
	case len([]rune(title)) > maxTitleLength:
		fields.Add("title", fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	return title
}

// validateLink accepts site-relative paths and absolute http(s) URLs.
func validateLink(fields apperr.FieldErrors, raw *string) *string {
	link := trimmed(raw)
	if link == nil {
		return nil
	}
	if strings.HasPrefix(*link, "/") && !strings.HasPrefix(*link, "//") {
		return link
	}
	u, err := url.Parse(*link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		fields.Add("ctaLink", "ctaLink must be a relative path or an http(s) URL")
		return nil
	}
	return link
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
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func mapHero(record persistence.HeroContent) Hero {
	return Hero{
		ID:          record.ID,
		Title:       record.Title,
		Subtitle:    record.Subtitle,
		Description: record.Description,
		Image:       record.Image,
		CTAText:     record.CTAText,
		CTALink:     record.CTALink,
		SortOrder:   record.SortOrder,
		IsActive:    record.IsActive,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
