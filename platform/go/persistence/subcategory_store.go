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

// Subcategory is a specialty nested under a category.
type Subcategory struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Slug        string
	Description *string
	Image       *string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type SubcategoryParams struct {
	CategoryID  uuid.UUID
	Name        string
	Slug        string
	Description *string
	Image       *string
	SortOrder   int
	IsActive    bool
}

// SubcategoryFilter narrows ListSubcategories.
type SubcategoryFilter struct {
	CategoryID      *uuid.UUID
	IncludeInactive bool
}

const subcategoryColumns = `id, category_id, name, COALESCE(slug, ''), description, image, sort_order, is_active, created_at, updated_at`

type SubcategoryStore struct {
	pool *pgxpool.Pool
}

func NewSubcategoryStore(pool *pgxpool.Pool) (*SubcategoryStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &SubcategoryStore{pool: pool}, nil
}

func (s *SubcategoryStore) CreateSubcategory(ctx context.Context, params SubcategoryParams) (Subcategory, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO subcategories (category_id, name, slug, description, image, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+subcategoryColumns,
		params.CategoryID, params.Name, params.Slug, params.Description, params.Image, params.SortOrder, params.IsActive)

	sub, err := scanSubcategory(row)
	if err != nil {
		return Subcategory{}, classifyWriteError(err)
	}
	return sub, nil
}

func (s *SubcategoryStore) GetSubcategory(ctx context.Context, id uuid.UUID) (Subcategory, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+subcategoryColumns+`
		FROM subcategories
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return fetchSubcategory(row)
}

func (s *SubcategoryStore) GetSubcategoryBySlug(ctx context.Context, value string) (Subcategory, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+subcategoryColumns+`
		FROM subcategories
		WHERE slug = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
		LIMIT 1
	`, value)
	return fetchSubcategory(row)
}

func (s *SubcategoryStore) ListSubcategories(ctx context.Context, filter SubcategoryFilter) ([]Subcategory, error) {
	where := newWhere("deleted_at IS NULL")
	if !filter.IncludeInactive {
		where.addRaw("is_active")
	}
	if filter.CategoryID != nil {
		where.add("category_id = $%d", *filter.CategoryID)
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM subcategories
		WHERE %s
		ORDER BY sort_order ASC, name ASC
	`, subcategoryColumns, where.sql()), where.args...)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	subs := []Subcategory{}
	for rows.Next() {
		sub, err := scanSubcategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subcategories: %w", err)
	}
	return subs, nil
}

func (s *SubcategoryStore) UpdateSubcategory(ctx context.Context, id uuid.UUID, params SubcategoryParams) (Subcategory, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE subcategories
		SET category_id = $2, name = $3, slug = $4, description = $5, image = $6,
		    sort_order = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+subcategoryColumns,
		id, params.CategoryID, params.Name, params.Slug, params.Description, params.Image, params.SortOrder, params.IsActive)
	return fetchSubcategory(row)
}

func (s *SubcategoryStore) SoftDeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE subcategories
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete subcategory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func fetchSubcategory(row pgx.Row) (Subcategory, error) {
	sub, err := scanSubcategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subcategory{}, ErrNotFound
		}
		return Subcategory{}, classifyWriteError(err)
	}
	return sub, nil
}

func scanSubcategory(row rowScanner) (Subcategory, error) {
	var s Subcategory
	err := row.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug, &s.Description, &s.Image, &s.SortOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
