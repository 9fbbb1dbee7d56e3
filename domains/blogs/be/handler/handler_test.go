package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/carecrest/hospital-cms/domains/blogs/be/service"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

type mockService struct {
	listFn      func(ctx context.Context, filter service.ListFilter) (service.ListResult, error)
	getBySlugFn func(ctx context.Context, slug string) (service.Blog, error)
	createFn    func(ctx context.Context, input service.CreateInput) (service.Blog, error)
	updateFn    func(ctx context.Context, id uuid.UUID, input service.UpdateInput) (service.Blog, error)
}

func (m *mockService) List(ctx context.Context, _ requesttrace.AuditInfo, filter service.ListFilter) (service.ListResult, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, filter)
}

func (m *mockService) Get(context.Context, requesttrace.AuditInfo, uuid.UUID) (service.Blog, error) {
	panic("Get not configured")
}

func (m *mockService) GetBySlug(ctx context.Context, _ requesttrace.AuditInfo, value string) (service.Blog, error) {
	if m.getBySlugFn == nil {
		panic("getBySlugFn not configured")
	}
	return m.getBySlugFn(ctx, value)
}

func (m *mockService) Create(ctx context.Context, _ requesttrace.AuditInfo, input service.CreateInput) (service.Blog, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, input)
}

func (m *mockService) Update(ctx context.Context, _ requesttrace.AuditInfo, id uuid.UUID, input service.UpdateInput) (service.Blog, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, id, input)
}

func (m *mockService) Delete(context.Context, requesttrace.AuditInfo, uuid.UUID) error {
	panic("Delete not configured")
}

func do(t *testing.T, svc service.Service, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	New(svc, zaptest.NewLogger(t)).Routes(r, r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestHandlerListBindsQuery(t *testing.T) {
	t.Parallel()

	categoryID := uuid.New()
	svc := &mockService{}
	svc.listFn = func(_ context.Context, filter service.ListFilter) (service.ListResult, error) {
		require.Equal(t, 2, filter.Page)
		require.Equal(t, 5, filter.PageSize)
		require.Equal(t, "heart", *filter.Tag)
		require.Equal(t, "diet", *filter.Search)
		require.Equal(t, categoryID, *filter.CategoryID)
		require.Nil(t, filter.SubcategoryID)
		return service.ListResult{Items: []service.Blog{}, Page: 2, PageSize: 5}, nil
	}

	rec := do(t, svc, http.MethodGet, "/blogs?page=2&pageSize=5&tag=heart&search=diet&categoryId="+categoryID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body service.ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Page)
}

func TestHandlerListRejectsBadPage(t *testing.T) {
	t.Parallel()

	rec := do(t, &mockService{}, http.MethodGet, "/blogs?page=first", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGetBySlug(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	svc.getBySlugFn = func(_ context.Context, value string) (service.Blog, error) {
		if value == "draft" {
			return service.Blog{}, service.ErrNotFound
		}
		return service.Blog{ID: uuid.New(), Slug: value, Tags: []string{}, IsPublished: true}, nil
	}

	require.Equal(t, http.StatusOK, do(t, svc, http.MethodGet, "/blogs/slug/heart-health", "").Code)
	require.Equal(t, http.StatusNotFound, do(t, svc, http.MethodGet, "/blogs/slug/draft", "").Code)
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	svc.createFn = func(_ context.Context, input service.CreateInput) (service.Blog, error) {
		require.Equal(t, "Heart health", input.Title)
		require.Equal(t, "markdown", *input.ContentFormat)
		require.Equal(t, []string{"heart"}, input.Tags)
		return service.Blog{ID: uuid.New(), Title: input.Title, Slug: "heart-health", Tags: input.Tags}, nil
	}

	rec := do(t, svc, http.MethodPost, "/blogs", `{"title":"Heart health","content":"# hi","contentFormat":"markdown","tags":["heart"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/api/v1/blogs/"))
}

func TestHandlerUpdateTags(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	svc.updateFn = func(_ context.Context, _ uuid.UUID, input service.UpdateInput) (service.Blog, error) {
		require.NotNil(t, input.Tags)
		require.Empty(t, *input.Tags)
		return service.Blog{Tags: []string{}}, nil
	}

	rec := do(t, svc, http.MethodPatch, "/blogs/"+uuid.NewString(), `{"tags":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
}
