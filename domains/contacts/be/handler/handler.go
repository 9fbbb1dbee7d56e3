package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/domains/contacts/be/service"
	"github.com/carecrest/hospital-cms/platform/go/httpx"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

const contactsBasePath = "/api/v1/contacts"

const (
	submitOperation = "submitContact"
	listOperation   = "listContacts"
	getOperation    = "getContact"
	updateOperation = "updateContactStatus"
	deleteOperation = "deleteContact"
)

// Handler wires the contacts service to HTTP. Only submission is public.
type Handler struct {
	svc  service.Service
	resp httpx.Responder
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("contacts service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, resp: httpx.NewResponder("contacts", logger)}
}

func (h *Handler) Routes(public, admin chi.Router) {
	public.Post("/contacts", h.Submit)

	admin.Get("/contacts", h.List)
	admin.Get("/contacts/{contactId}", h.Get)
	admin.Patch("/contacts/{contactId}", h.UpdateStatus)
	admin.Delete("/contacts/{contactId}", h.Delete)
}

type submitRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Subject *string `json:"subject,omitempty"`
	Message string  `json:"message"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var body submitRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, submitOperation)
		return
	}

	msg, err := h.svc.Submit(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), service.SubmitInput{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Subject: body.Subject,
		Message: body.Message,
	})
	if err != nil {
		h.resp.Error(w, r, err, submitOperation)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", contactsBasePath, msg.ID))
	httpx.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		filter service.ListFilter
		status string
	)
	err := httpx.BindQueries(r, map[string]any{
		"page":     &filter.Page,
		"pageSize": &filter.PageSize,
		"status":   &status,
	})
	if err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	if status != "" {
		filter.Status = &status
	}

	result, err := h.svc.List(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), filter)
	if err != nil {
		h.resp.Error(w, r, err, listOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "contactId")
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}

	msg, err := h.svc.Get(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id)
	if err != nil {
		h.resp.Error(w, r, err, getOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, msg)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "contactId")
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	var body statusRequest
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}

	msg, err := h.svc.UpdateStatus(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), id, body.Status)
	if err != nil {
		h.resp.Error(w, r, err, updateOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, msg)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "contactId")
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
