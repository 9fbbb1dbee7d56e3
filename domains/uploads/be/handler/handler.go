package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/domains/uploads/be/service"
	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/httpx"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

const (
	uploadOperation = "uploadMedia"
	deleteOperation = "deleteMedia"

	formField = "file"
	// multipart framing on top of the file itself
	formOverhead int64 = 1 << 20
	maxMemory    int64 = 8 << 20
)

type Handler struct {
	svc  service.Service
	resp httpx.Responder
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("uploads service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, resp: httpx.NewResponder("uploads", logger)}
}

// Routes registers on the admin router. Multipart bodies bypass the OpenAPI validator.
func (h *Handler) Routes(admin chi.Router) {
	admin.Post("/admin/uploads", h.Upload)
	admin.Delete("/admin/uploads/*", h.Delete)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.svc.MaxBytes()+formOverhead)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.resp.Error(w, r, formError(err), uploadOperation)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(formField)
	if err != nil {
		h.resp.Error(w, r, apperr.Invalid(formField, "multipart field \"file\" is required"), uploadOperation)
		return
	}
	defer file.Close()

	obj, err := h.svc.Upload(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), service.Input{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.resp.Error(w, r, err, uploadOperation)
		return
	}

	w.Header().Set("Location", obj.URL)
	httpx.WriteJSON(w, http.StatusCreated, obj)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), chi.URLParam(r, "*")); err != nil {
		h.resp.Error(w, r, err, deleteOperation)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func formError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("upload body: %w", apperr.ErrTooLarge)
	}
	return apperr.Invalid("body", "request must be multipart/form-data")
}
