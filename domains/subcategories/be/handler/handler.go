package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/domains/subcategories/be/service"
	"github.com/carecrest/hospital-cms/platform/go/httpx"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

const subcategoriesBasePath = "/api/v1/subcategories"

const (
	listOperation      = "listSubcategories"
	getOperation       = "getSubcategory"
	getBySlugOperation = "getSubcategoryBySlug"
	createOperation    = "createSubcategory"
	updateOperation    = "updateSubcategory"
	deleteOperation    = "deleteSubcategory"
)

// Handler wires the subcategories service to HTTP.
type Handler struct {
	svc  service.Service
	resp httpx.Responder
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("subcategories service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, resp: httpx.NewResponder("subcategories", logger)}
}

func (h *Handler) Routes(public, admin chi.Router) {
	public.Get("/subcategories", h.List)
	public.Get("/subcategories/slug/{slug}", h.GetBySlug)
	public.Get("/subcategories/{subcategoryId}", h.Get)

	admin.Post("/subcategories", h.Create)
	admin.Patch("/subcategories/{subcategoryId}", h.Update)
	admin.Delete("/subcategories/{subcategoryId}", h.Delete)
}

type listResponse struct {
	Items []service.Subcategory `json:"items"`
}

type createRequest struct {
	CategoryID  uuid.UUID `json:"categoryId"`
	Name        string    `json:"name"`
	Slug        *string   `json:"slug,omitempty"`
	Description *string   `json:"description,omitempty"`
	Image       *string   `json:"image,omitempty"`
	SortOrder   *int      `json:"sortOrder,omitempty"`
	IsActive    *bool     `json:"isActive,omitempty"`
}

type updateRequest struct {
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	Name        *string    `json:"name,omitempty"`
	Slug        *string    `json:"slug,omitempty"`
	Description *string    `json:"description,omitempty"`
	Image       *string    `json:"image,omitempty"`
	SortOrder   *int       `json:"sortOrder,omitempty"`
	IsActive    *bool      `json:"isActive,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter service.ListFilter
	if err := httpx.BindQuery(r, "includeInactive", &filter.IncludeInactive); err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	categoryID, err := httpx.OptionalUUIDQuery(r, "categoryId")
	if err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	filter.CategoryID = categoryID

	items, err := h.svc.List(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), filter)
	if err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Items: items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "subcategoryId")
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}

	item, err := h.svc.Get(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id)
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetBySlug(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		h.resp.Error(w, r, err, getBySlugOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, createOperation)
		return
	}

	item, err := h.svc.Create(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), service.CreateInput{
		CategoryID:  body.CategoryID,
		Name:        body.Name,
		Slug:        body.Slug,
		Description: body.Description,
		Image:       body.Image,
		SortOrder:   body.SortOrder,
		IsActive:    body.IsActive,
	})
	if err != nil {
		h.resp.Error(w, r, err, createOperation)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", subcategoriesBasePath, item.ID))
	httpx.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "subcategoryId")
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	var body updateRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	item, err := h.svc.Update(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id, service.UpdateInput{
		CategoryID:  body.CategoryID,
		Name:        body.Name,
		Slug:        body.Slug,
		Description: body.Description,
		Image:       body.Image,
		SortOrder:   body.SortOrder,
		IsActive:    body.IsActive,
	})
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "subcategoryId")
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
