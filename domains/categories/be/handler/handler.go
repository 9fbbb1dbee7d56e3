package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/domains/categories/be/service"
	"github.com/carecrest/hospital-cms/platform/go/httpx"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

const categoriesBasePath = "/api/v1/categories"

const (
	listOperation      = "listCategories"
	getOperation       = "getCategory"
	getBySlugOperation = "getCategoryBySlug"
	createOperation    = "createCategory"
	updateOperation    = "updateCategory"
	deleteOperation    = "deleteCategory"
)

// Handler wires the categories service to HTTP.
type Handler struct {
	svc  service.Service
	resp httpx.Responder
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("categories service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, resp: httpx.NewResponder("categories", logger)}
}

// Routes registers read routes on public and write routes on admin.
func (h *Handler) Routes(public, admin chi.Router) {
	public.Get("/categories", h.List)
	public.Get("/categories/slug/{slug}", h.GetBySlug)
	public.Get("/categories/{categoryId}", h.Get)

	admin.Post("/categories", h.Create)
	admin.Patch("/categories/{categoryId}", h.Update)
	admin.Delete("/categories/{categoryId}", h.Delete)
}

type listResponse struct {
	Items []service.Category `json:"items"`
}

type createRequest struct {
	Name        string  `json:"name"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type updateRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var includeInactive bool
	if err := httpx.BindQuery(r, "includeInactive", &includeInactive); err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}

	categories, err := h.svc.List(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), includeInactive)
	if err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Items: categories})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "categoryId")
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}

	category, err := h.svc.Get(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id)
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.svc.GetBySlug(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		h.resp.Error(w, r, err, getBySlugOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, createOperation)
		return
	}

	category, err := h.svc.Create(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), service.CreateInput{
		Name:        body.Name,
		Slug:        body.Slug,
		Description: body.Description,
		Icon:        body.Icon,
		SortOrder:   body.SortOrder,
		IsActive:    body.IsActive,
	})
	if err != nil {
		h.resp.Error(w, r, err, createOperation)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", categoriesBasePath, category.ID))
	httpx.WriteJSON(w, http.StatusCreated, category)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "categoryId")
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	var body updateRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	category, err := h.svc.Update(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id, service.UpdateInput{
		Name:        body.Name,
		Slug:        body.Slug,
		Description: body.Description,
		Icon:        body.Icon,
		SortOrder:   body.SortOrder,
		IsActive:    body.IsActive,
	})
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "categoryId")
	if err != nil {
		h.resp.Error(w, r, err, deleteOperation)
		return
	}

	if err := h.svc.Delete(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id); err != nil {
		h.resp.Error(w, r, err, deleteOperation)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
