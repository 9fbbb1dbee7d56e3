package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/carecrest/hospital-cms/domains/uploads/be/service"
	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/storage"
)

type mockService struct {
	uploadFn func(ctx context.Context, input service.Input) (storage.Object, error)
	deleteFn func(ctx context.Context, key string) error
	maxBytes int64
}

func (m *mockService) Upload(ctx context.Context, _ requesttrace.AuditInfo, input service.Input) (storage.Object, error) {
	if m.uploadFn == nil {
		panic("uploadFn not configured")
	}
	return m.uploadFn(ctx, input)
}

func (m *mockService) Delete(ctx context.Context, _ requesttrace.AuditInfo, key string) error {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, key)
}

func (m *mockService) MaxBytes() int64 { return m.maxBytes }

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func serve(t *testing.T, svc service.Service, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	New(svc, zaptest.NewLogger(t)).Routes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerUpload(t *testing.T) {
	t.Parallel()

	svc := &mockService{maxBytes: 1 << 20}
	svc.uploadFn = func(_ context.Context, input service.Input) (storage.Object, error) {
		require.Equal(t, "logo.png", input.Filename)
		require.Equal(t, "image/png", input.ContentType)
		data, err := io.ReadAll(input.Body)
		require.NoError(t, err)
		return storage.Object{Key: "uploads/x.png", URL: "/media/uploads/x.png", ContentType: "image/png", Size: int64(len(data))}, nil
	}

	body, contentType := multipartBody(t, "file", "logo.png", "image/png", []byte("\x89PNG\r\n\x1a\nrest"))
	req := httptest.NewRequest(http.MethodPost, "/admin/uploads", body)
	req.Header.Set("Content-Type", contentType)

	rec := serve(t, svc, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "/media/uploads/x.png", rec.Header().Get("Location"))

	var obj storage.Object
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obj))
	require.Equal(t, int64(12), obj.Size)
}

func TestHandlerUploadErrors(t *testing.T) {
	t.Parallel()

	svc := &mockService{maxBytes: 16}
	svc.uploadFn = func(context.Context, service.Input) (storage.Object, error) {
		return storage.Object{}, apperr.Invalid("file", "file must be an image")
	}

	body, contentType := multipartBody(t, "attachment", "a.png", "image/png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/admin/uploads", body)
	req.Header.Set("Content-Type", contentType)
	require.Equal(t, http.StatusBadRequest, serve(t, svc, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/admin/uploads", bytes.NewBufferString(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusBadRequest, serve(t, svc, req).Code)

	body, contentType = multipartBody(t, "file", "big.png", "image/png", bytes.Repeat([]byte("a"), 2<<20))
	req = httptest.NewRequest(http.MethodPost, "/admin/uploads", body)
	req.Header.Set("Content-Type", contentType)
	require.Equal(t, http.StatusRequestEntityTooLarge, serve(t, svc, req).Code)
}

func TestHandlerDelete(t *testing.T) {
	t.Parallel()

	svc := &mockService{deleteFn: func(_ context.Context, key string) error {
		if key == "uploads/2025/03/a.png" {
			return nil
		}
		return service.ErrNotFound
	}}

	rec := serve(t, svc, httptest.NewRequest(http.MethodDelete, "/admin/uploads/uploads/2025/03/a.png", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, svc, httptest.NewRequest(http.MethodDelete, "/admin/uploads/uploads/gone.png", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
