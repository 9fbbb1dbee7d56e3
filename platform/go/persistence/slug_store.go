package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carecrest/hospital-cms/platform/go/slug"
)

// SlugKind names an entity collection that carries slugs.
type SlugKind string

const (
	SlugKindCategories    SlugKind = "categories"
	SlugKindSubcategories SlugKind = "subcategories"
	SlugKindBlogs         SlugKind = "blogs"
	SlugKindDoctors       SlugKind = "doctors"
)

// SlugKinds lists every sluggable kind in backfill order.
var SlugKinds = []SlugKind{SlugKindCategories, SlugKindSubcategories, SlugKindBlogs, SlugKindDoctors}

type slugTable struct {
	table       string
	titleColumn string
}

// Table and column names are interpolated into SQL, so only these entries are reachable.
var slugTables = map[SlugKind]slugTable{
	SlugKindCategories:    {table: "categories", titleColumn: "name"},
	SlugKindSubcategories: {table: "subcategories", titleColumn: "name"},
	SlugKindBlogs:         {table: "blogs", titleColumn: "title"},
	SlugKindDoctors:       {table: "doctors", titleColumn: "name"},
}

// ParseSlugKind validates a kind name coming from configuration or a URL.
func ParseSlugKind(raw string) (SlugKind, error) {
	kind := SlugKind(raw)
	if _, ok := slugTables[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
	return kind, nil
}

// SlugRecord is a live record whose slug is NULL or empty.
type SlugRecord struct {
	ID    uuid.UUID
	Title string
}

// SlugStore runs slug queries against any sluggable table.
type SlugStore struct {
	pool *pgxpool.Pool
}

func NewSlugStore(pool *pgxpool.Pool) (*SlugStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &SlugStore{pool: pool}, nil
}

// lookupSlugTable returns the kind's table and title column, quoted for SQL.
func lookupSlugTable(kind SlugKind) (slugTable, error) {
	t, ok := slugTables[kind]
	if !ok {
		return slugTable{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	table, err := sqlIdentifier(t.table)
	if err != nil {
		return slugTable{}, err
	}
	column, err := sqlIdentifier(t.titleColumn)
	if err != nil {
		return slugTable{}, err
	}
	return slugTable{table: table, titleColumn: column}, nil
}

// ListMissingSlugs returns live records without a slug, oldest first.
func (s *SlugStore) ListMissingSlugs(ctx context.Context, kind SlugKind) ([]SlugRecord, error) {
	t, err := lookupSlugTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, %s
		FROM %s
		WHERE deleted_at IS NULL AND (slug IS NULL OR slug = '')
		ORDER BY created_at ASC, id ASC
	`, t.titleColumn, t.table))
	if err != nil {
		return nil, fmt.Errorf("list %s missing slugs: %w", kind, err)
	}
	defer rows.Close()

	records := []SlugRecord{}
	for rows.Next() {
		var rec SlugRecord
		if err := rows.Scan(&rec.ID, &rec.Title); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", kind, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s records: %w", kind, err)
	}

	return records, nil
}

// UpdateSlug writes a slug onto a single live record.
func (s *SlugStore) UpdateSlug(ctx context.Context, kind SlugKind, id uuid.UUID, value string) error {
	t, err := lookupSlugTable(kind)
	if err != nil {
		return err
	}

	result, err := s.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET slug = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, t.table), id, value)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("update %s slug: %w", kind, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugExists reports whether a live record other than excludeID already uses candidate.
func (s *SlugStore) SlugExists(ctx context.Context, kind SlugKind, candidate string, excludeID *uuid.UUID) (bool, error) {
	t, err := lookupSlugTable(kind)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE slug = $1 AND deleted_at IS NULL AND ($2::uuid IS NULL OR id <> $2)
		)
	`, t.table), candidate, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s slug: %w", kind, err)
	}
	return exists, nil
}

// ExistsFunc adapts the store to the slug resolver for a single kind.
func (s *SlugStore) ExistsFunc(kind SlugKind) slug.ExistsFunc {
	return func(ctx context.Context, candidate string, excludeID *uuid.UUID) (bool, error) {
		return s.SlugExists(ctx, kind, candidate, excludeID)
	}
}
