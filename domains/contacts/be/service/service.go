package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainrepo "github.com/carecrest/hospital-cms/domains/contacts/be/repo"
	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/logging"
	"github.com/carecrest/hospital-cms/platform/go/mailer"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/sanitizer"
)

var ErrNotFound = fmt.Errorf("contact message %w", apperr.ErrNotFound)

const (
	StatusNew      = "new"
	StatusRead     = "read"
	StatusReplied  = "replied"
	StatusArchived = "archived"
)

const (
	maxNameLength    = 200
	maxSubjectLength = 300
	maxMessageLength = 5000
	notifyTimeout    = 10 * time.Second
)

var statuses = map[string]bool{StatusNew: true, StatusRead: true, StatusReplied: true, StatusArchived: true}

// Message is an enquiry submitted through the public contact form.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Subject   *string   `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SubmitInput struct {
	Name    string
	Email   string
	Phone   *string
	Subject *string
	Message string
}

type ListFilter struct {
	Status   *string
	Page     int
	PageSize int
}

type ListResult struct {
	Items      []Message `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalItems int       `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
}

type Service interface {
	Submit(ctx context.Context, audit requesttrace.AuditInfo, input SubmitInput) (Message, error)
	List(ctx context.Context, audit requesttrace.AuditInfo, filter ListFilter) (ListResult, error)
	Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Message, error)
	UpdateStatus(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, status string) (Message, error)
	Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error
}

type service struct {
	repo     domainrepo.Repository
	sender   mailer.Sender
	notifyTo string
	logger   *zap.Logger
}

type Option func(*service)

// WithNotifications mails every new message to notifyTo. An empty address disables it.
func WithNotifications(sender mailer.Sender, notifyTo string) Option {
	return func(s *service) {
		if sender != nil && notifyTo != "" {
			s.sender = sender
			s.notifyTo = notifyTo
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

func New(repo domainrepo.Repository, opts ...Option) Service {
	if repo == nil {
		panic("contacts repository is required")
	}
	s := &service{repo: repo, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Submit(ctx context.Context, audit requesttrace.AuditInfo, input SubmitInput) (Message, error) {
	fields := apperr.FieldErrors{}
	params := persistence.CreateContactParams{
		Name:    required(fields, "name", input.Name, maxNameLength),
		Email:   validateEmail(fields, input.Email),
		Phone:   plain(input.Phone),
		Subject: plain(input.Subject),
		Message: required(fields, "message", input.Message, maxMessageLength),
	}
	if params.Subject != nil && len([]rune(*params.Subject)) > maxSubjectLength {
		fields.Add("subject", fmt.Sprintf("subject must be at most %d characters", maxSubjectLength))
	}
	if err := fields.Err(); err != nil {
		return Message{}, err
	}

	record, err := s.repo.Create(ctx, params)
	if err != nil {
		return Message{}, err
	}

	msg := mapMessage(record)
	s.notify(ctx, audit, msg)
	return msg, nil
}

// notify never fails the submission. The message is already stored.
func (s *service) notify(ctx context.Context, audit requesttrace.AuditInfo, msg Message) {
	if s.sender == nil {
		return
	}

	logger := s.logger
	if l, ok := logging.FromContext(ctx); ok {
		logger = l
	}
	logger = logger.With(zap.String("contact_id", msg.ID.String()), zap.String("request_id", audit.RequestID))

	email, err := notification(s.notifyTo, msg)
	if err != nil {
		logger.Error("render contact notification", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.sender.Send(ctx, email); err != nil {
		logger.Warn("contact notification not sent", zap.Error(err))
	}
}

func (s *service) List(ctx context.Context, audit requesttrace.AuditInfo, filter ListFilter) (ListResult, error) { //nolint:revive
	if filter.Status != nil && !statuses[*filter.Status] {
		return ListResult{}, apperr.Invalid("status", "status must be one of new, read, replied, archived")
	}

	page := persistence.PageParams{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	result, err := s.repo.List(ctx, persistence.ContactFilter{Status: filter.Status, Page: page})
	if err != nil {
		return ListResult{}, err
	}

	items := make([]Message, 0, len(result.Messages))
	for _, record := range result.Messages {
		items = append(items, mapMessage(record))
	}
	return ListResult{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: (result.TotalItems + page.PageSize - 1) / page.PageSize,
	}, nil
}

func (s *service) Get(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) (Message, error) { //nolint:revive
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return Message{}, mapStoreError(err)
	}
	return mapMessage(record), nil
}

func (s *service) UpdateStatus(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID, status string) (Message, error) { //nolint:revive
	status = strings.ToLower(strings.TrimSpace(status))
	if !statuses[status] {
		return Message{}, apperr.Invalid("status", "status must be one of new, read, replied, archived")
	}

	record, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return Message{}, mapStoreError(err)
	}
	return mapMessage(record), nil
}

func (s *service) Delete(ctx context.Context, audit requesttrace.AuditInfo, id uuid.UUID) error { //nolint:revive
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func required(fields apperr.FieldErrors, field, raw string, maxLength int) string {
	v := sanitizer.PlainText(raw)
	switch {
	case v == "":
		fields.Add(field, field+" is required")
	case len([]rune(v)) > maxLength:
		fields.Add(field, fmt.Sprintf("%s must be at most %d characters", field, maxLength))
	}
	return v
}

func validateEmail(fields apperr.FieldErrors, raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		fields.Add("email", "email is required")
		return ""
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		fields.Add("email", "email must be a valid address")
		return ""
	}
	return v
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

func mapStoreError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func mapMessage(record persistence.ContactMessage) Message {
	return Message{
		ID:        record.ID,
		Name:      record.Name,
		Email:     record.Email,
		Phone:     record.Phone,
		Subject:   record.Subject,
		Message:   record.Message,
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
