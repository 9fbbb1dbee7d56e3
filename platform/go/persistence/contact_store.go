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

// ContactMessage is an enquiry submitted through the public contact form.
type ContactMessage struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     *string
	Subject   *string
	Message   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateContactParams struct {
	Name    string
	Email   string
	Phone   *string
	Subject *string
	Message string
}

type ContactFilter struct {
	Status *string
	Page   PageParams
}

type ListContactsResult struct {
	Messages   []ContactMessage
	TotalItems int
}

const contactColumns = `id, name, email, phone, subject, message, status, created_at, updated_at`

type ContactStore struct {
	pool *pgxpool.Pool
}

func NewContactStore(pool *pgxpool.Pool) (*ContactStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &ContactStore{pool: pool}, nil
}

func (s *ContactStore) CreateContact(ctx context.Context, params CreateContactParams) (ContactMessage, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, phone, subject, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+contactColumns,
		params.Name, params.Email, params.Phone, params.Subject, params.Message)
	return fetchContact(row)
}

func (s *ContactStore) GetContact(ctx context.Context, id uuid.UUID) (ContactMessage, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id = $1`, id)
	return fetchContact(row)
}

func (s *ContactStore) ListContacts(ctx context.Context, filter ContactFilter) (ListContactsResult, error) {
	where := newWhere()
	if filter.Status != nil && *filter.Status != "" {
		where.add("status = $%d", *filter.Status)
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM contact_messages WHERE "+where.sql(), where.args...).Scan(&total); err != nil {
		return ListContactsResult{}, fmt.Errorf("count contact messages: %w", err)
	}

	result := ListContactsResult{Messages: []ContactMessage{}, TotalItems: total}
	if total == 0 {
		return result, nil
	}

	args, pageSQL := where.pageArgs(filter.Page)
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM contact_messages
		WHERE %s
		ORDER BY created_at DESC, id ASC
		%s
	`, contactColumns, where.sql(), pageSQL), args...)
	if err != nil {
		return ListContactsResult{}, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		msg, err := scanContact(rows)
		if err != nil {
			return ListContactsResult{}, fmt.Errorf("scan contact message: %w", err)
		}
		result.Messages = append(result.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return ListContactsResult{}, fmt.Errorf("iterate contact messages: %w", err)
	}
	return result, nil
}

func (s *ContactStore) UpdateContactStatus(ctx context.Context, id uuid.UUID, status string) (ContactMessage, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE contact_messages
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+contactColumns, id, status)
	return fetchContact(row)
}

func (s *ContactStore) DeleteContact(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func fetchContact(row pgx.Row) (ContactMessage, error) {
	msg, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ContactMessage{}, ErrNotFound
		}
		return ContactMessage{}, err
	}
	return msg, nil
}

func scanContact(row rowScanner) (ContactMessage, error) {
	var m ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
