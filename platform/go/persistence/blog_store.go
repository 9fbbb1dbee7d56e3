package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Blog is an article. ContentHTML holds the sanitised rendering of Content.
type Blog struct {
	ID              uuid.UUID
	Title           string
	Slug            string
	Excerpt         *string
	Content         string
	ContentFormat   string
	ContentHTML     string
	CoverImage      *string
	Author          *string
	CategoryID      *uuid.UUID
	SubcategoryID   *uuid.UUID
	Tags            []string
	IsPublished     bool
	PublishedAt     *time.Time
	MetaTitle       *string
	MetaDescription *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type BlogParams struct {
	Title           string
	Slug            string
	Excerpt         *string
	Content         string
	ContentFormat   string
	ContentHTML     string
	CoverImage      *string
	Author          *string
	CategoryID      *uuid.UUID
	SubcategoryID   *uuid.UUID
	Tags            []string
	IsPublished     bool
	PublishedAt     *time.Time
	MetaTitle       *string
	MetaDescription *string
}

// BlogFilter narrows ListBlogs. PublishedOnly is forced for anonymous readers.
type BlogFilter struct {
	PublishedOnly bool
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	Tag           *string
	Search        *string
	Page          PageParams
}

type ListBlogsResult struct {
	Blogs      []Blog
	TotalItems int
}

const blogColumns = `id, title, COALESCE(slug, ''), excerpt, content, content_format, content_html, cover_image, author,
	category_id, subcategory_id, tags, is_published, published_at, meta_title, meta_description, created_at, updated_at`

type BlogStore struct {
	pool *pgxpool.Pool
}

func NewBlogStore(pool *pgxpool.Pool) (*BlogStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &BlogStore{pool: pool}, nil
}

func (s *BlogStore) CreateBlog(ctx context.Context, params BlogParams) (Blog, error) {
	if params.Tags == nil {
		params.Tags = []string{}
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO blogs (
			title, slug, excerpt, content, content_format, content_html, cover_image, author,
			category_id, subcategory_id, tags, is_published, published_at, meta_title, meta_description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+blogColumns,
		params.Title, params.Slug, params.Excerpt, params.Content, params.ContentFormat, params.ContentHTML,
		params.CoverImage, params.Author, params.CategoryID, params.SubcategoryID, params.Tags,
		params.IsPublished, params.PublishedAt, params.MetaTitle, params.MetaDescription)

	blog, err := scanBlog(row)
	if err != nil {
		return Blog{}, classifyWriteError(err)
	}
	return blog, nil
}

func (s *BlogStore) GetBlog(ctx context.Context, id uuid.UUID) (Blog, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+blogColumns+`
		FROM blogs
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return fetchBlog(row)
}

func (s *BlogStore) GetBlogBySlug(ctx context.Context, value string) (Blog, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+blogColumns+`
		FROM blogs
		WHERE slug = $1 AND deleted_at IS NULL
	`, value)
	return fetchBlog(row)
}

func (s *BlogStore) ListBlogs(ctx context.Context, filter BlogFilter) (ListBlogsResult, error) {
	where := newWhere("deleted_at IS NULL")
	if filter.PublishedOnly {
		where.addRaw("is_published")
	}
	if filter.CategoryID != nil {
		where.add("category_id = $%d", *filter.CategoryID)
	}
	if filter.SubcategoryID != nil {
		where.add("subcategory_id = $%d", *filter.SubcategoryID)
	}
	if filter.Tag != nil && *filter.Tag != "" {
		where.add("$%d = ANY(tags)", *filter.Tag)
	}
	if filter.Search != nil && *filter.Search != "" {
		where.add("(LOWER(title) LIKE $%[1]d OR LOWER(COALESCE(excerpt, '')) LIKE $%[1]d)", likePattern(*filter.Search))
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM blogs WHERE "+where.sql(), where.args...).Scan(&total); err != nil {
		return ListBlogsResult{}, fmt.Errorf("count blogs: %w", err)
	}

	result := ListBlogsResult{Blogs: []Blog{}, TotalItems: total}
	if total == 0 {
		return result, nil
	}

	args, pageSQL := where.pageArgs(filter.Page)
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM blogs
		WHERE %s
		ORDER BY COALESCE(published_at, created_at) DESC, id ASC
		%s
	`, blogColumns, where.sql(), pageSQL), args...)
	if err != nil {
		return ListBlogsResult{}, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return ListBlogsResult{}, fmt.Errorf("scan blog: %w", err)
		}
		result.Blogs = append(result.Blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return ListBlogsResult{}, fmt.Errorf("iterate blogs: %w", err)
	}
	return result, nil
}

func (s *BlogStore) UpdateBlog(ctx context.Context, id uuid.UUID, params BlogParams) (Blog, error) {
	if params.Tags == nil {
		params.Tags = []string{}
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE blogs
		SET title = $2, slug = $3, excerpt = $4, content = $5, content_format = $6, content_html = $7,
		    cover_image = $8, author = $9, category_id = $10, subcategory_id = $11, tags = $12,
		    is_published = $13, published_at = $14, meta_title = $15, meta_description = $16,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+blogColumns,
		id, params.Title, params.Slug, params.Excerpt, params.Content, params.ContentFormat, params.ContentHTML,
		params.CoverImage, params.Author, params.CategoryID, params.SubcategoryID, params.Tags,
		params.IsPublished, params.PublishedAt, params.MetaTitle, params.MetaDescription)
	return fetchBlog(row)
}

func (s *BlogStore) SoftDeleteBlog(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE blogs
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete blog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func fetchBlog(row pgx.Row) (Blog, error) {
	blog, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Blog{}, ErrNotFound
		}
		return Blog{}, classifyWriteError(err)
	}
	return blog, nil
}

func scanBlog(row rowScanner) (Blog, error) {
	var b Blog
	err := row.Scan(&b.ID, &b.Title, &b.Slug, &b.Excerpt, &b.Content, &b.ContentFormat, &b.ContentHTML,
		&b.CoverImage, &b.Author, &b.CategoryID, &b.SubcategoryID, &b.Tags, &b.IsPublished, &b.PublishedAt,
		&b.MetaTitle, &b.MetaDescription, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}
