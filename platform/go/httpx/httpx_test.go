package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/slug"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{name: "validation", err: apperr.Invalid("name", "required"), status: http.StatusBadRequest, detail: "one or more fields are invalid"},
		{name: "not found", err: fmt.Errorf("blog %w", apperr.ErrNotFound), status: http.StatusNotFound, detail: "blog not found"},
		{name: "conflict", err: fmt.Errorf("slug %w", apperr.ErrConflict), status: http.StatusConflict, detail: "slug conflict"},
		{name: "invalid slug", err: fmt.Errorf("%w: bad", slug.ErrInvalid), status: http.StatusBadRequest},
		{name: "slug taken", err: fmt.Errorf("%w: \"cardiology\"", slug.ErrTaken), status: http.StatusConflict},
		{name: "exhausted", err: slug.ErrAttemptsExhausted, status: http.StatusConflict},
		{name: "storage", err: fmt.Errorf("%w: boom", slug.ErrStorageUnavailable), status: http.StatusServiceUnavailable},
		{name: "too large", err: fmt.Errorf("file: %w", apperr.ErrTooLarge), status: http.StatusRequestEntityTooLarge},
		{name: "unknown", err: errors.New("pq: connection reset"), status: http.StatusInternalServerError, detail: "an unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			problem := Classify(tt.err)
			assert.Equal(t, tt.status, problem.Status)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, problem.Detail)
			}
		})
	}
}

func TestResponderWritesProblem(t *testing.T) {
	t.Parallel()

	rs := NewResponder("categories", zaptest.NewLogger(t))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", nil)

	rs.Error(rec, req, apperr.Invalid("name", "name is required"), "createCategory")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ContentTypeProblem, rec.Header().Get("Content-Type"))

	var problem Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, ProblemTypeValidation, problem.Type)
	assert.Equal(t, "/api/v1/categories", problem.Instance)
	assert.Equal(t, []string{"name is required"}, problem.Errors["name"])
}

func TestResponderPartialError(t *testing.T) {
	t.Parallel()

	rs := NewResponder("slug-migrations", zaptest.NewLogger(t))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/slug-migrations/blogs", nil)

	rs.PartialError(rec, req, fmt.Errorf("backfill blogs: %w", apperr.ErrConflict), "migrateSlugKind", map[string]int{"updated": 1})

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"updated":1}`, string(extractMember(t, rec.Body.Bytes(), "partial")))

	rec = httptest.NewRecorder()
	rs.Error(rec, req, apperr.ErrConflict, "migrateSlugKind")
	assert.NotContains(t, rec.Body.String(), `"partial"`)
}

func extractMember(t *testing.T, body []byte, name string) json.RawMessage {
	t.Helper()
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &doc))
	member, ok := doc[name]
	require.True(t, ok, "member %q missing from %s", name, body)
	return member
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"Cardiology"}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "unknown field", body: `{"name":"x","extra":1}`, wantErr: true},
		{name: "trailing document", body: `{"name":"x"}{"name":"y"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr {
				var validationErr *apperr.ValidationError
				assert.True(t, errors.As(err, &validationErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Cardiology", dst.Name)
		})
	}
}

func TestDecodeJSONTooLarge(t *testing.T) {
	t.Parallel()

	body := `{"name":"` + strings.Repeat("a", MaxJSONBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dst map[string]any
	err := DecodeJSON(httptest.NewRecorder(), req, &dst)
	assert.ErrorIs(t, err, apperr.ErrTooLarge)
}

func TestUUIDParam(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", value)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	got, err := UUIDParam(withParam(id.String()), "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = UUIDParam(withParam("nope"), "id")
	var validationErr *apperr.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestBindQueries(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/?page=2&includeInactive=true&tag=heart", nil)
	var (
		page            *int
		includeInactive *bool
		tag             *string
		search          *string
	)
	require.NoError(t, BindQueries(req, map[string]any{
		"page":            &page,
		"includeInactive": &includeInactive,
		"tag":             &tag,
		"search":          &search,
	}))
	require.NotNil(t, page)
	assert.Equal(t, 2, *page)
	assert.True(t, *includeInactive)
	assert.Equal(t, "heart", *tag)
	assert.Nil(t, search)

	bad := httptest.NewRequest(http.MethodGet, "/?page=two", nil)
	err := BindQueries(bad, map[string]any{"page": &page})
	var validationErr *apperr.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "page")
}

func TestOptionalUUIDQuery(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	got, err := OptionalUUIDQuery(httptest.NewRequest(http.MethodGet, "/?categoryId="+id.String(), nil), "categoryId")
	require.NoError(t, err)
	assert.Equal(t, id, *got)

	got, err = OptionalUUIDQuery(httptest.NewRequest(http.MethodGet, "/", nil), "categoryId")
	require.NoError(t, err)
	assert.Nil(t, got)
}
