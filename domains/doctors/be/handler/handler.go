package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/domains/doctors/be/service"
	"github.com/carecrest/hospital-cms/platform/go/httpx"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

const doctorsBasePath = "/api/v1/doctors"

const (
	listOperation      = "listDoctors"
	getOperation       = "getDoctor"
	getBySlugOperation = "getDoctorBySlug"
	createOperation    = "createDoctor"
	updateOperation    = "updateDoctor"
	deleteOperation    = "deleteDoctor"
)

// Handler wires the doctors service to HTTP.
type Handler struct {
	svc  service.Service
	resp httpx.Responder
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("doctors service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, resp: httpx.NewResponder("doctors", logger)}
}

func (h *Handler) Routes(public, admin chi.Router) {
	public.Get("/doctors", h.List)
	public.Get("/doctors/slug/{slug}", h.GetBySlug)
	public.Get("/doctors/{doctorId}", h.Get)

	admin.Post("/doctors", h.Create)
	admin.Patch("/doctors/{doctorId}", h.Update)
	admin.Delete("/doctors/{doctorId}", h.Delete)
}

type createRequest struct {
	Name            string          `json:"name"`
	Slug            *string         `json:"slug,omitempty"`
	Designation     *string         `json:"designation,omitempty"`
	Specialization  *string         `json:"specialization,omitempty"`
	Qualifications  *string         `json:"qualifications,omitempty"`
	ExperienceYears *int            `json:"experienceYears,omitempty"`
	Bio             *string         `json:"bio,omitempty"`
	Image           *string         `json:"image,omitempty"`
	Email           *string         `json:"email,omitempty"`
	Phone           *string         `json:"phone,omitempty"`
	CategoryID      *uuid.UUID      `json:"categoryId,omitempty"`
	Availability    json.RawMessage `json:"availability,omitempty"`
	IsActive        *bool           `json:"isActive,omitempty"`
	SortOrder       *int            `json:"sortOrder,omitempty"`
}

type updateRequest struct {
	Name            *string         `json:"name,omitempty"`
	Slug            *string         `json:"slug,omitempty"`
	Designation     *string         `json:"designation,omitempty"`
	Specialization  *string         `json:"specialization,omitempty"`
	Qualifications  *string         `json:"qualifications,omitempty"`
	ExperienceYears *int            `json:"experienceYears,omitempty"`
	Bio             *string         `json:"bio,omitempty"`
	Image           *string         `json:"image,omitempty"`
	Email           *string         `json:"email,omitempty"`
	Phone           *string         `json:"phone,omitempty"`
	CategoryID      *uuid.UUID      `json:"categoryId,omitempty"`
	Availability    json.RawMessage `json:"availability,omitempty"`
	IsActive        *bool           `json:"isActive,omitempty"`
	SortOrder       *int            `json:"sortOrder,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		filter         service.ListFilter
		specialization string
		search         string
	)
	err := httpx.BindQueries(r, map[string]any{
		"page":            &filter.Page,
		"pageSize":        &filter.PageSize,
		"specialization":  &specialization,
		"search":          &search,
		"includeInactive": &filter.IncludeInactive,
	})
	if err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	if specialization != "" {
		filter.Specialization = &specialization
	}
	if search != "" {
		filter.Search = &search
	}
	if filter.CategoryID, err = httpx.OptionalUUIDQuery(r, "categoryId"); err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}

	result, err := h.svc.List(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), filter)
	if err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "doctorId")
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}

	doctor, err := h.svc.Get(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id)
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, doctor)
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.svc.GetBySlug(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		h.resp.Error(w, r, err, getBySlugOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, doctor)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, createOperation)
		return
	}

	doctor, err := h.svc.Create(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), service.CreateInput{
		Name:            body.Name,
		Slug:            body.Slug,
		Designation:     body.Designation,
		Specialization:  body.Specialization,
		Qualifications:  body.Qualifications,
		ExperienceYears: body.ExperienceYears,
		Bio:             body.Bio,
		Image:           body.Image,
		Email:           body.Email,
		Phone:           body.Phone,
		CategoryID:      body.CategoryID,
		Availability:    body.Availability,
		IsActive:        body.IsActive,
		SortOrder:       body.SortOrder,
	})
	if err != nil {
		h.resp.Error(w, r, err, createOperation)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", doctorsBasePath, doctor.ID))
	httpx.WriteJSON(w, http.StatusCreated, doctor)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "doctorId")
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	var body updateRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	doctor, err := h.svc.Update(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id, service.UpdateInput{
		Name:            body.Name,
		Slug:            body.Slug,
		Designation:     body.Designation,
		Specialization:  body.Specialization,
		Qualifications:  body.Qualifications,
		ExperienceYears: body.ExperienceYears,
		Bio:             body.Bio,
		Image:           body.Image,
		Email:           body.Email,
		Phone:           body.Phone,
		CategoryID:      body.CategoryID,
		Availability:    body.Availability,
		IsActive:        body.IsActive,
		SortOrder:       body.SortOrder,
	})
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, doctor)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "doctorId")
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
