package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainrepo "github.com/carecrest/hospital-cms/domains/blogs/be/repo"
	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/cache"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/sanitizer"
	"github.com/carecrest/hospital-cms/platform/go/slug"
)

var (
	ErrNotFound = fmt.Errorf("blog %w", apperr.ErrNotFound)
	ErrConflict = fmt.Errorf("blog %w", apperr.ErrConflict)
)

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"

	maxTitleLength = 300
	maxTags        = 20
	maxTagLength   = 50
)

// Blog is an article as served to clients.
type Blog struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         *string    `json:"excerpt,omitempty"`
	Content         string     `json:"content"`
	ContentFormat   string     `json:"contentFormat"`
	ContentHTML     string     `json:"contentHtml"`
	CoverImage      *string    `json:"coverImage,omitempty"`
	Author          *string    `json:"author,omitempty"`
	CategoryID      *uuid.UUID `json:"categoryId,omitempty"`
	SubcategoryID   *uuid.UUID `json:"subcategoryId,omitempty"`
	Tags            []string   `json:"tags"`
	IsPublished     bool       `json:"isPublished"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
	MetaTitle       *string    `json:"metaTitle,omitempty"`
	MetaDescription *string    `json:"metaDescription,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	Title           string
	Slug            *string
	Excerpt         *string
	Content         string
	ContentFormat   *string
	CoverImage      *string
	Author          *string
	CategoryID      *uuid.UUID
	SubcategoryID   *uuid.UUID
	Tags            []string
	IsPublished     *bool
	MetaTitle       *string
	MetaDescription *string
}

// UpdateInput is a partial update. Tags replaces the whole list when non-nil.
type UpdateInput struct {
	Title           *string
	Slug            *string
	Excerpt         *string
	Content         *string
	ContentFormat   *string
	CoverImage      *string
	Author          *string
	CategoryID      *uuid.UUID
	SubcategoryID   *uuid.UUID
	Tags            *[]string
	IsPublished     *bool
	MetaTitle       *string
	MetaDescription *string
}

func (in UpdateInput) empty() bool {
	return in.Title == nil && in.Slug == nil && in.Excerpt == nil && in.Content == nil &&
		in.ContentFormat == nil && in.CoverImage == nil && in.Author == nil && in.CategoryID == nil &&
		in.SubcategoryID == nil && in.Tags == nil && in.IsPublished == nil && in.MetaTitle == nil &&
		in.MetaDescription == nil
}

// ListFilter narrows List. IncludeDrafts only applies to staff.
type ListFilter struct {
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	Tag           *string
	Search        *string
	IncludeDrafts bool
	Page          int
	PageSize      int
}

type ListResult struct {
	Items      []Blog `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalItems int    `json:"totalItems"`
	TotalPages int    `json:"totalPages"`
}

type Service interface {
	List(ctx context.Context, audit requesttrace.AuditInfo, filter ListFilter) (ListResult, error)
	Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Blog, error)
	GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, slug string) (Blog, error)
	Create(ctx context.Context, audit requesttrace.AuditInfo, input CreateInput) (Blog, error)
	Update(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, input UpdateInput) (Blog, error)
	Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error
}

type service struct {
	repo   domainrepo.Repository
	slugs  *slug.Resolver
	cache  cache.Cache[Blog]
	logger *zap.Logger
	now    func() time.Time
}

// Option customises the service.
type Option func(*service)

// WithCache serves slug lookups through c.
func WithCache(c cache.Cache[Blog]) Option {
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
		panic("blogs repository is required")
	}
	if slugs == nil {
		panic("slug resolver is required")
	}
	s := &service{
		repo:   repo,
		slugs:  slugs,
		cache:  cache.Noop[Blog]{},
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context, audit requesttrace.AuditInfo, filter ListFilter) (ListResult, error) {
	page := persistence.PageParams{Page: filter.Page, PageSize: filter.PageSize}.Normalize()

	var tag *string
	if filter.Tag != nil {
		if t := normalizeTag(*filter.Tag); t != "" {
			tag = &t
		}
	}

	result, err := s.repo.List(ctx, persistence.BlogFilter{
		PublishedOnly: !(filter.IncludeDrafts && audit.CanSeeDrafts()),
		CategoryID:    filter.CategoryID,
		SubcategoryID: filter.SubcategoryID,
		Tag:           tag,
		Search:        filter.Search,
		Page:          page,
	})
	if err != nil {
		return ListResult{}, err
	}

	items := make([]Blog, 0, len(result.Blogs))
	for _, record := range result.Blogs {
		items = append(items, mapBlog(record))
	}
	return ListResult{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: (result.TotalItems + page.PageSize - 1) / page.PageSize,
	}, nil
}

func (s *service) Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Blog, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return Blog{}, mapStoreError(err)
	}
	return visible(audit, mapBlog(record))
}

// GetBySlug reads through the cache. Drafts are cached too and filtered per caller.
func (s *service) GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, value string) (Blog, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return Blog{}, ErrNotFound
	}

	blog, err := cache.GetOrLoad(ctx, s.cache, s.logger, value, func(ctx context.Context) (Blog, error) {
		record, err := s.repo.GetBySlug(ctx, value)
		if err != nil {
			return Blog{}, mapStoreError(err)
		}
		return mapBlog(record), nil
	})
	if err != nil {
		return Blog{}, err
	}
	return visible(audit, blog)
}

func (s *service) Create(ctx context.Context, audit requesttrace.AuditInfo, input CreateInput) (Blog, error) { //nolint:revive
	fields := apperr.FieldErrors{}
	params := persistence.BlogParams{
		Title:           validateTitle(fields, input.Title),
		Excerpt:         plain(input.Excerpt),
		ContentFormat:   FormatHTML,
		CoverImage:      trimmed(input.CoverImage),
		Author:          plain(input.Author),
		CategoryID:      input.CategoryID,
		SubcategoryID:   input.SubcategoryID,
		Tags:            normalizeTags(fields, input.Tags),
		MetaTitle:       plain(input.MetaTitle),
		MetaDescription: plain(input.MetaDescription),
	}
	if input.ContentFormat != nil {
		params.ContentFormat = validateFormat(fields, *input.ContentFormat)
	}
	if strings.TrimSpace(input.Content) == "" {
		fields.Add("content", "content is required")
	}
	if err := fields.Err(); err != nil {
		return Blog{}, err
	}

	if err := render(&params, input.Content); err != nil {
		return Blog{}, err
	}
	if input.IsPublished != nil && *input.IsPublished {
		params.IsPublished = true
		now := s.now().UTC()
		params.PublishedAt = &now
	}

	var err error
	params.Slug, err = s.slugs.ForCreate(ctx, input.Slug, params.Title)
	if err != nil {
		return Blog{}, err
	}

	record, err := s.repo.Create(ctx, params)
	if err != nil {
		return Blog{}, mapStoreError(err)
	}
	return mapBlog(record), nil
}

func (s *service) Update(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, input UpdateInput) (Blog, error) { //nolint:revive
	if input.empty() {
		return Blog{}, apperr.Invalid("body", "at least one field must be provided")
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Blog{}, mapStoreError(err)
	}

	fields := apperr.FieldErrors{}
	params := persistence.BlogParams{
		Title:           current.Title,
		Excerpt:         current.Excerpt,
		Content:         current.Content,
		ContentFormat:   current.ContentFormat,
		ContentHTML:     current.ContentHTML,
		CoverImage:      current.CoverImage,
		Author:          current.Author,
		CategoryID:      current.CategoryID,
		SubcategoryID:   current.SubcategoryID,
		Tags:            current.Tags,
		IsPublished:     current.IsPublished,
		PublishedAt:     current.PublishedAt,
		MetaTitle:       current.MetaTitle,
		MetaDescription: current.MetaDescription,
	}
	if input.Title != nil {
		params.Title = validateTitle(fields, *input.Title)
	}
	if input.Excerpt != nil {
		params.Excerpt = plain(input.Excerpt)
	}
	if input.CoverImage != nil {
		params.CoverImage = trimmed(input.CoverImage)
	}
	if input.Author != nil {
		params.Author = plain(input.Author)
	}
	if input.CategoryID != nil {
		params.CategoryID = nilIfZero(*input.CategoryID)
	}
	if input.SubcategoryID != nil {
		params.SubcategoryID = nilIfZero(*input.SubcategoryID)
	}
	if input.Tags != nil {
		params.Tags = normalizeTags(fields, *input.Tags)
	}
	if input.MetaTitle != nil {
		params.MetaTitle = plain(input.MetaTitle)
	}
	if input.MetaDescription != nil {
		params.MetaDescription = plain(input.MetaDescription)
	}
	if input.ContentFormat != nil {
		params.ContentFormat = validateFormat(fields, *input.ContentFormat)
	}
	content := current.Content
	if input.Content != nil {
		content = *input.Content
		if strings.TrimSpace(content) == "" {
			fields.Add("content", "content is required")
		}
	}
	if err := fields.Err(); err != nil {
		return Blog{}, err
	}

	if input.Content != nil || input.ContentFormat != nil {
		if err := render(&params, content); err != nil {
			return Blog{}, err
		}
	}
	if input.IsPublished != nil {
		params.IsPublished = *input.IsPublished
		if params.IsPublished && params.PublishedAt == nil {
			now := s.now().UTC()
			params.PublishedAt = &now
		}
	}

	params.Slug, err = s.slugs.ForUpdate(ctx, id, input.Slug, current.Slug, current.Title, params.Title)
	if err != nil {
		return Blog{}, err
	}

	record, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Blog{}, mapStoreError(err)
	}

	cache.Invalidate(ctx, s.cache, s.logger, cacheKeys(current.Slug, record.Slug)...)
	return mapBlog(record), nil
}

func (s *service) Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error { //nolint:revive
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}

	cache.Invalidate(ctx, s.cache, s.logger, cacheKeys(current.Slug)...)
	return nil
}

// render fills Content and ContentHTML. HTML input is sanitised in place; markdown is kept
// as written and rendered.
func render(params *persistence.BlogParams, content string) error {
	switch params.ContentFormat {
	case FormatMarkdown:
		html, err := sanitizer.Markdown(content)
		if err != nil {
			return apperr.Invalid("content", err.Error())
		}
		params.Content = content
		params.ContentHTML = html
	default:
		clean := sanitizer.HTML(content)
		params.Content = clean
		params.ContentHTML = clean
	}
	return nil
}

func visible(audit requesttrace.AuditInfo, blog Blog) (Blog, error) {
	if !blog.IsPublished && !audit.CanSeeDrafts() {
		return Blog{}, ErrNotFound
	}
	return blog, nil
}

func cacheKeys(slugs ...string) []string {
	keys := make([]string, 0, len(slugs))
	seen := map[string]bool{}
	for _, s := range slugs {
		if s != "" && !seen[s] {
			seen[s] = true
			keys = append(keys, s)
		}
	}
	return keys
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

func validateFormat(fields apperr.FieldErrors, raw string) string {
	format := strings.ToLower(strings.TrimSpace(raw))
	switch format {
	case FormatHTML, FormatMarkdown:
		return format
	case "":
		return FormatHTML
	default:
		fields.Add("contentFormat", "contentFormat must be html or markdown")
		return format
	}
}

func normalizeTag(raw string) string {
	return strings.ToLower(sanitizer.PlainText(raw))
}

// normalizeTags lowercases, trims and de-duplicates, preserving first-seen order.
func normalizeTags(fields apperr.FieldErrors, raw []string) []string {
	tags := make([]string, 0, len(raw))
	seen := map[string]bool{}
	for _, r := range raw {
		tag := normalizeTag(r)
		if tag == "" || seen[tag] {
			continue
		}
		if len([]rune(tag)) > maxTagLength {
			fields.Add("tags", fmt.Sprintf("tag %q exceeds %d characters", tag, maxTagLength))
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	if len(tags) > maxTags {
		fields.Add("tags", fmt.Sprintf("at most %d tags are allowed", maxTags))
	}
	return tags
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

func nilIfZero(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConflict):
		return ErrConflict
	case errors.Is(err, persistence.ErrInvalidReference):
		return apperr.Invalid("categoryId", "category or subcategory not found")
	default:
		return err
	}
}

func mapBlog(record persistence.Blog) Blog {
	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}
	return Blog{
		ID:              record.ID,
		Title:           record.Title,
		Slug:            record.Slug,
		Excerpt:         record.Excerpt,
		Content:         record.Content,
		ContentFormat:   record.ContentFormat,
		ContentHTML:     record.ContentHTML,
		CoverImage:      record.CoverImage,
		Author:          record.Author,
		CategoryID:      record.CategoryID,
		SubcategoryID:   record.SubcategoryID,
		Tags:            tags,
		IsPublished:     record.IsPublished,
		PublishedAt:     record.PublishedAt,
		MetaTitle:       record.MetaTitle,
		MetaDescription: record.MetaDescription,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
