package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/carecrest/hospital-cms/domains/subcategories/be/service"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

type mockService struct {
	listFn   func(ctx context.Context, filter service.ListFilter) ([]service.Subcategory, error)
	createFn func(ctx context.Context, input service.CreateInput) (service.Subcategory, error)
}

func (m *mockService) List(ctx context.Context, _ requesttrace.AuditInfo, filter service.ListFilter) ([]service.Subcategory, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, filter)
}

func (m *mockService) Get(context.Context, requesttrace.AuditInfo, uuid.UUID) (service.Subcategory, error) {
	panic("Get not configured")
}

func (m *mockService) GetBySlug(context.Context, requesttrace.AuditInfo, string) (service.Subcategory, error) {
	return service.Subcategory{}, service.ErrNotFound
}

func (m *mockService) Create(ctx context.Context, _ requesttrace.AuditInfo, input service.CreateInput) (service.Subcategory, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, input)
}

func (m *mockService) Update(context.Context, requesttrace.AuditInfo, uuid.UUID, service.UpdateInput) (service.Subcategory, error) {
	panic("Update not configured")
}

func (m *mockService) Delete(context.Context, requesttrace.AuditInfo, uuid.UUID) error {
	panic("Delete not configured")
}

func newRouter(t *testing.T, svc service.Service) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	New(svc, zaptest.NewLogger(t)).Routes(r, r)
	return r
}

func TestHandlerListByCategory(t *testing.T) {
	t.Parallel()

	categoryID := uuid.New()
	svc := &mockService{}
	svc.listFn = func(_ context.Context, filter service.ListFilter) ([]service.Subcategory, error) {
		require.NotNil(t, filter.CategoryID)
		require.Equal(t, categoryID, *filter.CategoryID)
		return []service.Subcategory{}, nil
	}

	rec := httptest.NewRecorder()
	newRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subcategories?categoryId="+categoryID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestHandlerListRejectsBadCategoryID(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newRouter(t, &mockService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subcategories?categoryId=abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()

	categoryID := uuid.New()
	svc := &mockService{}
	svc.createFn = func(_ context.Context, input service.CreateInput) (service.Subcategory, error) {
		require.Equal(t, categoryID, input.CategoryID)
		return service.Subcategory{ID: uuid.New(), CategoryID: input.CategoryID, Name: input.Name, Slug: "knee"}, nil
	}

	body := `{"categoryId":"` + categoryID.String() + `","name":"Knee"}`
	rec := httptest.NewRecorder()
	newRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/subcategories", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "/api/v1/subcategories/")
}

func TestHandlerGetBySlugNotFound(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newRouter(t, &mockService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subcategories/slug/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
