package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/domains/hero/be/service"
	"github.com/carecrest/hospital-cms/platform/go/httpx"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

const heroBasePath = "/api/v1/hero"

const (
	listOperation   = "listHero"
	getOperation    = "getHero"
	createOperation = "createHero"
	updateOperation = "updateHero"
	deleteOperation = "deleteHero"
)

type Handler struct {
	svc  service.Service
	resp httpx.Responder
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("hero service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, resp: httpx.NewResponder("hero", logger)}
}

func (h *Handler) Routes(public, admin chi.Router) {
	public.Get("/hero", h.List)
	public.Get("/hero/{heroId}", h.Get)

	admin.Post("/hero", h.Create)
	admin.Patch("/hero/{heroId}", h.Update)
	admin.Delete("/hero/{heroId}", h.Delete)
}

type listResponse struct {
	Items []service.Hero `json:"items"`
}

type createRequest struct {
	Title       string  `json:"title"`
	Subtitle    *string `json:"subtitle,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	CTAText     *string `json:"ctaText,omitempty"`
	CTALink     *string `json:"ctaLink,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type updateRequest struct {
	Title       *string `json:"title,omitempty"`
	Subtitle    *string `json:"subtitle,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	CTAText     *string `json:"ctaText,omitempty"`
	CTALink     *string `json:"ctaLink,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var includeInactive bool
	if err := httpx.BindQuery(r, "includeInactive", &includeInactive); err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}

	items, err := h.svc.List(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), includeInactive)
	if err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Items: items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "heroId")
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}

	hero, err := h.svc.Get(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id)
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, hero)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, createOperation)
		return
	}

	hero, err := h.svc.Create(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), service.CreateInput{
		Title:       body.Title,
		Subtitle:    body.Subtitle,
		Description: body.Description,
		Image:       body.Image,
		CTAText:     body.CTAText,
		CTALink:     body.CTALink,
		SortOrder:   body.SortOrder,
		IsActive:    body.IsActive,
	})
	if err != nil {
		h.resp.Error(w, r, err, createOperation)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", heroBasePath, hero.ID))
	httpx.WriteJSON(w, http.StatusCreated, hero)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "heroId")
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	var body updateRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	hero, err := h.svc.Update(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id, service.UpdateInput{
		Title:       body.Title,
		Subtitle:    body.Subtitle,
		Description: body.Description,
		Image:       body.Image,
		CTAText:     body.CTAText,
		CTALink:     body.CTALink,
		SortOrder:   body.SortOrder,
		IsActive:    body.IsActive,
	})
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, hero)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "heroId")
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
