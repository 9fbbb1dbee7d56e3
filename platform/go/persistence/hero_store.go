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

// HeroContent is a homepage banner slide.
type HeroContent struct {
	ID          uuid.UUID
	Title       string
	Subtitle    *string
	Description *string
	Image       *string
	CTAText     *string
	CTALink     *string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type HeroParams struct {
	Title       string
	Subtitle    *string
	Description *string
	Image       *string
	CTAText     *string
	CTALink     *string
	SortOrder   int
	IsActive    bool
}

const heroColumns = `id, title, subtitle, description, image, cta_text, cta_link, sort_order, is_active, created_at, updated_at`

type HeroStore struct {
	pool *pgxpool.Pool
}

func NewHeroStore(pool *pgxpool.Pool) (*HeroStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &HeroStore{pool: pool}, nil
}

func (s *HeroStore) CreateHero(ctx context.Context, params HeroParams) (HeroContent, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO hero_contents (title, subtitle, description, image, cta_text, cta_link, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+heroColumns,
		params.Title, params.Subtitle, params.Description, params.Image, params.CTAText, params.CTALink,
		params.SortOrder, params.IsActive)
	return fetchHero(row)
}

func (s *HeroStore) GetHero(ctx context.Context, id uuid.UUID) (HeroContent, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+heroColumns+` FROM hero_contents WHERE id = $1`, id)
	return fetchHero(row)
}

func (s *HeroStore) ListHeroes(ctx context.Context, activeOnly bool) ([]HeroContent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+heroColumns+`
		FROM hero_contents
		WHERE (NOT $1::bool OR is_active)
		ORDER BY sort_order ASC, created_at ASC
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list hero content: %w", err)
	}
	defer rows.Close()

	items := []HeroContent{}
	for rows.Next() {
		item, err := scanHero(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hero content: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hero content: %w", err)
	}
	return items, nil
}

func (s *HeroStore) UpdateHero(ctx context.Context, id uuid.UUID, params HeroParams) (HeroContent, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE hero_contents
		SET title = $2, subtitle = $3, description = $4, image = $5, cta_text = $6, cta_link = $7,
		    sort_order = $8, is_active = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING `+heroColumns,
		id, params.Title, params.Subtitle, params.Description, params.Image, params.CTAText, params.CTALink,
		params.SortOrder, params.IsActive)
	return fetchHero(row)
}

func (s *HeroStore) DeleteHero(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM hero_contents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete hero content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func fetchHero(row pgx.Row) (HeroContent, error) {
	item, err := scanHero(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return HeroContent{}, ErrNotFound
		}
		return HeroContent{}, err
	}
	return item, nil
}

func scanHero(row rowScanner) (HeroContent, error) {
	var h HeroContent
	err := row.Scan(&h.ID, &h.Title, &h.Subtitle, &h.Description, &h.Image, &h.CTAText, &h.CTALink,
		&h.SortOrder, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}
