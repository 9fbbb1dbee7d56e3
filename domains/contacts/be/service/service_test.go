package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/mailer"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

type mockRepository struct {
	createFn       func(ctx context.Context, params persistence.CreateContactParams) (persistence.ContactMessage, error)
	getFn          func(ctx context.Context, id uuid.UUID) (persistence.ContactMessage, error)
	listFn         func(ctx context.Context, filter persistence.ContactFilter) (persistence.ListContactsResult, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, status string) (persistence.ContactMessage, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockRepository) Create(ctx context.Context, params persistence.CreateContactParams) (persistence.ContactMessage, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, params)
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (persistence.ContactMessage, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, id)
}

func (m *mockRepository) List(ctx context.Context, filter persistence.ContactFilter) (persistence.ListContactsResult, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, filter)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (persistence.ContactMessage, error) {
	if m.updateStatusFn == nil {
		panic("updateStatusFn not configured")
	}
	return m.updateStatusFn(ctx, id, status)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, id)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Email
	err  error
}

func (s *recordingSender) Send(_ context.Context, email mailer.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	return s.err
}

var anonymous = requesttrace.Anonymous("test")

func echoCreate(_ context.Context, params persistence.CreateContactParams) (persistence.ContactMessage, error) {
	return persistence.ContactMessage{
		ID: uuid.New(), Name: params.Name, Email: params.Email, Phone: params.Phone,
		Subject: params.Subject, Message: params.Message, Status: StatusNew,
	}, nil
}

func TestServiceSubmitSanitisesAndNotifies(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	svc := New(&mockRepository{createFn: echoCreate}, WithNotifications(sender, "desk@carecrest.health"))

	subject := "Appointment <script>alert(1)</script>"
	got, err := svc.Submit(context.Background(), anonymous, SubmitInput{
		Name:    " Jane <b>Doe</b> ",
		Email:   "jane@example.com",
		Subject: &subject,
		Message: "Can I book <i>Tuesday</i>?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "Appointment", *got.Subject)
	assert.Equal(t, "Can I book Tuesday?", got.Message)
	assert.Equal(t, StatusNew, got.Status)

	require.Len(t, sender.sent, 1)
	email := sender.sent[0]
	assert.Equal(t, []string{"desk@carecrest.health"}, email.To)
	assert.Equal(t, "jane@example.com", email.ReplyTo)
	assert.Equal(t, "Contact: Appointment", email.Subject)
	assert.Contains(t, email.HTML, "Can I book Tuesday?")
	assert.Contains(t, email.Text, "Jane Doe <jane@example.com>")
}

func TestServiceSubmitSurvivesMailerFailure(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	sender := &recordingSender{err: errors.New("resend: 500")}
	svc := New(&mockRepository{createFn: echoCreate},
		WithNotifications(sender, "desk@carecrest.health"),
		WithLogger(zap.New(core)),
	)

	_, err := svc.Submit(context.Background(), anonymous, SubmitInput{Name: "Jane", Email: "jane@example.com", Message: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("contact notification not sent").Len())
}

func TestServiceSubmitWithoutNotifications(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	svc := New(&mockRepository{createFn: echoCreate}, WithNotifications(sender, ""))

	_, err := svc.Submit(context.Background(), anonymous, SubmitInput{Name: "Jane", Email: "jane@example.com", Message: "Hi"})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestServiceSubmitValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input SubmitInput
		field string
	}{
		{name: "missing name", input: SubmitInput{Email: "a@b.co", Message: "x"}, field: "name"},
		{name: "tags only name", input: SubmitInput{Name: "<br>", Email: "a@b.co", Message: "x"}, field: "name"},
		{name: "missing email", input: SubmitInput{Name: "A", Message: "x"}, field: "email"},
		{name: "bad email", input: SubmitInput{Name: "A", Email: "not-an-email", Message: "x"}, field: "email"},
		{name: "display name email", input: SubmitInput{Name: "A", Email: "Bob <bob@b.co>", Message: "x"}, field: "email"},
		{name: "missing message", input: SubmitInput{Name: "A", Email: "a@b.co"}, field: "message"},
	}

	svc := New(&mockRepository{})
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Submit(context.Background(), anonymous, tt.input)
			var validationErr *apperr.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Contains(t, validationErr.Fields, tt.field)
		})
	}
}

func TestServiceListStatusFilter(t *testing.T) {
	t.Parallel()

	repo := &mockRepository{listFn: func(_ context.Context, filter persistence.ContactFilter) (persistence.ListContactsResult, error) {
		assert.Equal(t, StatusRead, *filter.Status)
		assert.Equal(t, persistence.PageParams{Page: 2, PageSize: 10}, filter.Page)
		return persistence.ListContactsResult{Messages: []persistence.ContactMessage{{ID: uuid.New()}}, TotalItems: 11}, nil
	}}
	svc := New(repo)

	status := StatusRead
	got, err := svc.List(context.Background(), anonymous, ListFilter{Status: &status, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalPages)

	bad := "spam"
	_, err = svc.List(context.Background(), anonymous, ListFilter{Status: &bad})
	var validationErr *apperr.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestServiceUpdateStatus(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	repo := &mockRepository{updateStatusFn: func(_ context.Context, got uuid.UUID, status string) (persistence.ContactMessage, error) {
		if got != id {
			return persistence.ContactMessage{}, persistence.ErrNotFound
		}
		return persistence.ContactMessage{ID: id, Status: status}, nil
	}}
	svc := New(repo)

	msg, err := svc.UpdateStatus(context.Background(), anonymous, id, " Replied ")
	require.NoError(t, err)
	assert.Equal(t, StatusReplied, msg.Status)

	_, err = svc.UpdateStatus(context.Background(), anonymous, uuid.New(), StatusArchived)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateStatus(context.Background(), anonymous, id, "deleted")
	var validationErr *apperr.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}
