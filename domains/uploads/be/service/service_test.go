package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/storage"
)

type mockStore struct {
	putFn    func(ctx context.Context, key string, body io.Reader, size int64, contentType string) (storage.Object, error)
	deleteFn func(ctx context.Context, key string) error
}

func (m *mockStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (storage.Object, error) {
	if m.putFn == nil {
		panic("putFn not configured")
	}
	return m.putFn(ctx, key, body, size, contentType)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, key)
}

func (m *mockStore) URL(key string) string { return "https://cdn.example/" + key }

var (
	editor  = requesttrace.AuditInfo{ActorKind: requesttrace.ActorKindUser, RequestID: "req-1"}
	pngData = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
)

func echoPut(_ context.Context, key string, body io.Reader, size int64, contentType string) (storage.Object, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.Object{}, err
	}
	if int64(len(data)) != size {
		return storage.Object{}, errors.New("size mismatch")
	}
	return storage.Object{Key: key, URL: "https://cdn.example/" + key, ContentType: contentType, Size: size}, nil
}

func newService(store storage.ObjectStore, opts ...Option) *service {
	svc := New(store, opts...).(*service)
	svc.now = func() time.Time { return time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestUploadSniffsContentType(t *testing.T) {
	t.Parallel()

	obj, err := newService(&mockStore{putFn: echoPut}).Upload(context.Background(), editor, Input{
		Filename:    "scan.png",
		ContentType: "application/octet-stream",
		Size:        int64(len(pngData)),
		Body:        bytes.NewReader(pngData),
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.True(t, strings.HasPrefix(obj.Key, "uploads/2025/03/"), obj.Key)
	assert.True(t, strings.HasSuffix(obj.Key, ".png"), obj.Key)
	assert.Equal(t, int64(len(pngData)), obj.Size)
}

func TestUploadAcceptsDeclaredSVG(t *testing.T) {
	t.Parallel()

	svg := `<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"></svg>`
	obj, err := newService(&mockStore{putFn: echoPut}).Upload(context.Background(), editor, Input{
		ContentType: "image/svg+xml",
		Size:        -1,
		Body:        strings.NewReader(svg),
	})
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", obj.ContentType)
	assert.True(t, strings.HasSuffix(obj.Key, ".svg"))
}

func TestUploadRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input Input
		want  error
	}{
		{name: "text file", input: Input{ContentType: "image/png", Body: strings.NewReader("hello world")}, want: &apperr.ValidationError{}},
		{name: "svg with script", input: Input{ContentType: "image/svg+xml", Body: strings.NewReader(`<svg><script>alert(1)</script></svg>`)}, want: &apperr.ValidationError{}},
		{name: "svg not declared", input: Input{ContentType: "text/plain", Body: strings.NewReader(`<svg></svg>`)}, want: &apperr.ValidationError{}},
		{name: "empty", input: Input{Body: strings.NewReader("")}, want: &apperr.ValidationError{}},
		{name: "declared too large", input: Input{Size: 1 << 30, Body: bytes.NewReader(pngData)}, want: apperr.ErrTooLarge},
		{name: "body too large", input: Input{Size: -1, Body: bytes.NewReader(append(pngData, make([]byte, 64)...))}, want: apperr.ErrTooLarge},
	}

	svc := newService(&mockStore{}, WithMaxBytes(100))
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Upload(context.Background(), editor, tt.input)
			require.Error(t, err)
			var validationErr *apperr.ValidationError
			if errors.As(tt.want, &validationErr) {
				assert.True(t, errors.As(err, &validationErr), "got %v", err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDeleteResolvesKey(t *testing.T) {
	t.Parallel()

	var deleted []string
	store := &mockStore{deleteFn: func(_ context.Context, key string) error {
		deleted = append(deleted, key)
		if strings.Contains(key, "missing") {
			return storage.ErrNotFound
		}
		return nil
	}}
	svc := newService(store)

	require.NoError(t, svc.Delete(context.Background(), editor, "uploads/2025/03/a.png"))
	require.NoError(t, svc.Delete(context.Background(), editor, "2025/03/b.png"))
	assert.ErrorIs(t, svc.Delete(context.Background(), editor, "uploads/missing.png"), ErrNotFound)

	var validationErr *apperr.ValidationError
	assert.True(t, errors.As(svc.Delete(context.Background(), editor, "../etc/passwd"), &validationErr))
	assert.Equal(t, []string{"uploads/2025/03/a.png", "uploads/2025/03/b.png", "uploads/missing.png"}, deleted)
}
