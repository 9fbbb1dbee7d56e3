package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	var s Sender = Noop{}
	require.NoError(t, s.Send(context.Background(), Email{}))
}

func TestNewResendValidates(t *testing.T) {
	_, err := NewResend(ResendConfig{FromEmail: "a@b.c"})
	require.Error(t, err)

	_, err = NewResend(ResendConfig{APIKey: "re_test"})
	require.Error(t, err)
}

func TestResendSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	s, err := NewResend(ResendConfig{APIKey: "re_test", FromEmail: "noreply@carecrest.health", FromName: "CareCrest", BaseURL: srv.URL})
	require.NoError(t, err)

	err = s.Send(context.Background(), Email{
		To:      []string{"frontdesk@carecrest.health"},
		ReplyTo: "patient@example.com",
		Subject: "New contact message",
		Text:    "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "CareCrest <noreply@carecrest.health>", got["from"])
	assert.Equal(t, "New contact message", got["subject"])
}

func TestResendRequiresRecipients(t *testing.T) {
	s, err := NewResend(ResendConfig{APIKey: "re_test", FromEmail: "noreply@carecrest.health"})
	require.NoError(t, err)
	require.ErrorIs(t, s.Send(context.Background(), Email{Subject: "x"}), ErrNoRecipients)
}
