package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/domains/slugmigrations/be/service"
	"github.com/carecrest/hospital-cms/platform/go/auth"
	"github.com/carecrest/hospital-cms/platform/go/httpx"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

const (
	migrateAllOperation  = "migrateAllSlugs"
	migrateKindOperation = "migrateSlugKind"
)

type Handler struct {
	svc  service.Service
	resp httpx.Responder
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("slug migrations service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, resp: httpx.NewResponder("slug-migrations", logger)}
}

// Routes registers on an authenticated router. Editors are rejected; only admins may run backfills.
func (h *Handler) Routes(admin chi.Router) {
	admin.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleAdmin))
		r.Post("/admin/slug-migrations", h.MigrateAll)
		r.Post("/admin/slug-migrations/{kind}", h.MigrateKind)
	})
}

func (h *Handler) MigrateAll(w http.ResponseWriter, r *http.Request) {
	unique, err := uniqueParam(r)
	if err != nil {
		h.resp.Error(w, r, err, migrateAllOperation)
		return
	}

	report, err := h.svc.MigrateAll(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), unique)
	if err != nil {
		h.resp.Error(w, r, err, migrateAllOperation)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) MigrateKind(w http.ResponseWriter, r *http.Request) {
	unique, err := uniqueParam(r)
	if err != nil {
		h.resp.Error(w, r, err, migrateKindOperation)
		return
	}

	summary, err := h.svc.MigrateKind(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), chi.URLParam(r, "kind"), unique)
	if err != nil {
		if summary.Kind == "" {
			h.resp.Error(w, r, err, migrateKindOperation)
			return
		}
		// Records written before the failure stay written; report them with the problem.
		h.resp.PartialError(w, r, err, migrateKindOperation, summary)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

// uniqueParam is nil when the query does not name a mode.
func uniqueParam(r *http.Request) (*bool, error) {
	var unique *bool
	if err := httpx.BindQuery(r, "unique", &unique); err != nil {
		return nil, err
	}
	return unique, nil
}
