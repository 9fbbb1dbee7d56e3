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

// Category is a hospital department or service area.
type Category struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description *string
	Icon        *string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryParams carries every writable column.
type CategoryParams struct {
	Name        string
	Slug        string
	Description *string
	Icon        *string
	SortOrder   int
	IsActive    bool
}

const categoryColumns = `id, name, COALESCE(slug, ''), description, icon, sort_order, is_active, created_at, updated_at`

type CategoryStore struct {
	pool *pgxpool.Pool
}

func NewCategoryStore(pool *pgxpool.Pool) (*CategoryStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &CategoryStore{pool: pool}, nil
}

func (s *CategoryStore) CreateCategory(ctx context.Context, params CategoryParams) (Category, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO categories (name, slug, description, icon, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		params.Name, params.Slug, params.Description, params.Icon, params.SortOrder, params.IsActive)

	category, err := scanCategory(row)
	if err != nil {
		return Category{}, classifyWriteError(err)
	}
	return category, nil
}

func (s *CategoryStore) GetCategory(ctx context.Context, id uuid.UUID) (Category, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return fetchCategory(row)
}

// GetCategoryBySlug picks the oldest live record when a backfill left duplicates behind.
func (s *CategoryStore) GetCategoryBySlug(ctx context.Context, value string) (Category, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE slug = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
		LIMIT 1
	`, value)
	return fetchCategory(row)
}

func (s *CategoryStore) ListCategories(ctx context.Context, includeInactive bool) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE deleted_at IS NULL AND ($1::bool OR is_active)
		ORDER BY sort_order ASC, name ASC
	`, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryStore) UpdateCategory(ctx context.Context, id uuid.UUID, params CategoryParams) (Category, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, icon = $5, sort_order = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+categoryColumns,
		id, params.Name, params.Slug, params.Description, params.Icon, params.SortOrder, params.IsActive)
	return fetchCategory(row)
}

// SoftDeleteCategory retires the category and its live subcategories in one transaction.
func (s *CategoryStore) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE categories
			SET deleted_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL
		`, id)
		if err != nil {
			return fmt.Errorf("soft delete category: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx, `
			UPDATE subcategories
			SET deleted_at = NOW(), updated_at = NOW()
			WHERE category_id = $1 AND deleted_at IS NULL
		`, id); err != nil {
			return fmt.Errorf("soft delete subcategories: %w", err)
		}
		return nil
	})
}

func fetchCategory(row pgx.Row) (Category, error) {
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, classifyWriteError(err)
	}
	return category, nil
}

func scanCategory(row rowScanner) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
