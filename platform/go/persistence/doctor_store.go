package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Doctor is a practitioner profile. Availability is the raw weekly schedule document.
type Doctor struct {
	ID              uuid.UUID
	Name            string
	Slug            string
	Designation     *string
	Specialization  *string
	Qualifications  *string
	ExperienceYears int
	Bio             *string
	Image           *string
	Email           *string
	Phone           *string
	CategoryID      *uuid.UUID
	Availability    json.RawMessage
	IsActive        bool
	SortOrder       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type DoctorParams struct {
	Name            string
	Slug            string
	Designation     *string
	Specialization  *string
	Qualifications  *string
	ExperienceYears int
	Bio             *string
	Image           *string
	Email           *string
	Phone           *string
	CategoryID      *uuid.UUID
	Availability    json.RawMessage
	IsActive        bool
	SortOrder       int
}

type DoctorFilter struct {
	IncludeInactive bool
	CategoryID      *uuid.UUID
	Specialization  *string
	Search          *string
	Page            PageParams
}

type ListDoctorsResult struct {
	Doctors    []Doctor
	TotalItems int
}

const doctorColumns = `id, name, COALESCE(slug, ''), designation, specialization, qualifications, experience_years,
	bio, image, email, phone, category_id, availability, is_active, sort_order, created_at, updated_at`

type DoctorStore struct {
	pool *pgxpool.Pool
}

func NewDoctorStore(pool *pgxpool.Pool) (*DoctorStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &DoctorStore{pool: pool}, nil
}

func (s *DoctorStore) CreateDoctor(ctx context.Context, params DoctorParams) (Doctor, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO doctors (
			name, slug, designation, specialization, qualifications, experience_years, bio, image,
			email, phone, category_id, availability, is_active, sort_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+doctorColumns,
		params.Name, params.Slug, params.Designation, params.Specialization, params.Qualifications,
		params.ExperienceYears, params.Bio, params.Image, params.Email, params.Phone, params.CategoryID,
		params.Availability, params.IsActive, params.SortOrder)

	doctor, err := scanDoctor(row)
	if err != nil {
		return Doctor{}, classifyWriteError(err)
	}
	return doctor, nil
}

func (s *DoctorStore) GetDoctor(ctx context.Context, id uuid.UUID) (Doctor, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return fetchDoctor(row)
}

func (s *DoctorStore) GetDoctorBySlug(ctx context.Context, value string) (Doctor, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE slug = $1 AND deleted_at IS NULL
	`, value)
	return fetchDoctor(row)
}

func (s *DoctorStore) ListDoctors(ctx context.Context, filter DoctorFilter) (ListDoctorsResult, error) {
	where := newWhere("deleted_at IS NULL")
	if !filter.IncludeInactive {
		where.addRaw("is_active")
	}
	if filter.CategoryID != nil {
		where.add("category_id = $%d", *filter.CategoryID)
	}
	if filter.Specialization != nil && *filter.Specialization != "" {
		where.add("LOWER(COALESCE(specialization, '')) LIKE $%d", likePattern(*filter.Specialization))
	}
	if filter.Search != nil && *filter.Search != "" {
		where.add("(LOWER(name) LIKE $%[1]d OR LOWER(COALESCE(designation, '')) LIKE $%[1]d)", likePattern(*filter.Search))
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM doctors WHERE "+where.sql(), where.args...).Scan(&total); err != nil {
		return ListDoctorsResult{}, fmt.Errorf("count doctors: %w", err)
	}

	result := ListDoctorsResult{Doctors: []Doctor{}, TotalItems: total}
	if total == 0 {
		return result, nil
	}

	args, pageSQL := where.pageArgs(filter.Page)
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM doctors
		WHERE %s
		ORDER BY sort_order ASC, name ASC
		%s
	`, doctorColumns, where.sql(), pageSQL), args...)
	if err != nil {
		return ListDoctorsResult{}, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			return ListDoctorsResult{}, fmt.Errorf("scan doctor: %w", err)
		}
		result.Doctors = append(result.Doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return ListDoctorsResult{}, fmt.Errorf("iterate doctors: %w", err)
	}
	return result, nil
}

func (s *DoctorStore) UpdateDoctor(ctx context.Context, id uuid.UUID, params DoctorParams) (Doctor, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE doctors
		SET name = $2, slug = $3, designation = $4, specialization = $5, qualifications = $6,
		    experience_years = $7, bio = $8, image = $9, email = $10, phone = $11, category_id = $12,
		    availability = $13, is_active = $14, sort_order = $15, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+doctorColumns,
		id, params.Name, params.Slug, params.Designation, params.Specialization, params.Qualifications,
		params.ExperienceYears, params.Bio, params.Image, params.Email, params.Phone, params.CategoryID,
		params.Availability, params.IsActive, params.SortOrder)
	return fetchDoctor(row)
}

func (s *DoctorStore) SoftDeleteDoctor(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE doctors
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func fetchDoctor(row pgx.Row) (Doctor, error) {
	doctor, err := scanDoctor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Doctor{}, ErrNotFound
		}
		return Doctor{}, classifyWriteError(err)
	}
	return doctor, nil
}

func scanDoctor(row rowScanner) (Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Slug, &d.Designation, &d.Specialization, &d.Qualifications,
		&d.ExperienceYears, &d.Bio, &d.Image, &d.Email, &d.Phone, &d.CategoryID, &d.Availability,
		&d.IsActive, &d.SortOrder, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}
