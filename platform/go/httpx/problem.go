// Package httpx renders JSON bodies and RFC 7807 problem details for the chi handlers.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/platform/go/apperr"
	platformlogging "github.com/carecrest/hospital-cms/platform/go/logging"
	"github.com/carecrest/hospital-cms/platform/go/slug"
)

const (
	ProblemTypeValidation   = "https://carecrest.health/problems/validation-error"
	ProblemTypeNotFound     = "https://carecrest.health/problems/not-found"
	ProblemTypeConflict     = "https://carecrest.health/problems/conflict"
	ProblemTypeUnauthorized = "https://carecrest.health/problems/unauthorized"
	ProblemTypeForbidden    = "https://carecrest.health/problems/forbidden"
	ProblemTypeTooLarge     = "https://carecrest.health/problems/payload-too-large"
	ProblemTypeUnavailable  = "https://carecrest.health/problems/unavailable"
	ProblemTypeInternal     = "https://carecrest.health/problems/internal-error"

	ContentTypeProblem = "application/problem+json"
)

// Problem is an RFC 7807 problem details document.
type Problem struct {
	Type     string              `json:"type,omitempty"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
	// Partial carries work that completed before the failure and was not undone.
	Partial  any                 `json:"partial,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteProblem writes p as application/problem+json.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", ContentTypeProblem)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// Responder classifies service errors into problems and logs them once, at a level that
// follows the status class.
type Responder struct {
	resource string
	logger   *zap.Logger
}

func NewResponder(resource string, logger *zap.Logger) Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Responder{resource: resource, logger: logger}
}

// Error renders err for operation op.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error, op string) {
	rs.render(w, r, err, op, nil)
}

// PartialError renders err like Error and attaches partial as the problem's "partial" member.
func (rs Responder) PartialError(w http.ResponseWriter, r *http.Request, err error, op string, partial any) {
	rs.render(w, r, err, op, partial)
}

func (rs Responder) render(w http.ResponseWriter, r *http.Request, err error, op string, partial any) {
	problem := Classify(err)
	problem.Instance = r.URL.Path
	problem.Partial = partial

	logger := rs.loggerFrom(r.Context())
	fields := []zap.Field{
		zap.String("resource", rs.resource),
		zap.String("operation", op),
		zap.Int("status", problem.Status),
		zap.Error(err),
	}

	switch {
	case problem.Status >= http.StatusInternalServerError:
		logger.Error(rs.resource+" operation failed", fields...)
	case problem.Status == http.StatusNotFound:
		logger.Info(rs.resource+" resource not found", fields...)
	default:
		logger.Warn(rs.resource+" request rejected", fields...)
	}

	WriteProblem(w, problem)
}

func (rs Responder) loggerFrom(ctx context.Context) *zap.Logger {
	if logger, ok := platformlogging.FromContext(ctx); ok {
		return logger
	}
	return rs.logger
}

// Classify maps the shared error vocabulary onto a problem. Unknown errors become a 500
// whose detail never leaks the cause.
func Classify(err error) Problem {
	var validationErr *apperr.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return Problem{
			Type:   ProblemTypeValidation,
			Title:  "Validation failed",
			Status: http.StatusBadRequest,
			Detail: "one or more fields are invalid",
			Errors: copyFields(validationErr.Fields),
		}
	case errors.Is(err, slug.ErrInvalid):
		return Problem{
			Type:   ProblemTypeValidation,
			Title:  "Validation failed",
			Status: http.StatusBadRequest,
			Detail: "one or more fields are invalid",
			Errors: map[string][]string{"slug": {err.Error()}},
		}
	case errors.Is(err, apperr.ErrNotFound):
		return Problem{Type: ProblemTypeNotFound, Title: "Resource not found", Status: http.StatusNotFound, Detail: err.Error()}
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, slug.ErrTaken), errors.Is(err, slug.ErrAttemptsExhausted):
		return Problem{Type: ProblemTypeConflict, Title: "Conflict", Status: http.StatusConflict, Detail: err.Error()}
	case errors.Is(err, apperr.ErrTooLarge):
		return Problem{Type: ProblemTypeTooLarge, Title: "Payload too large", Status: http.StatusRequestEntityTooLarge, Detail: err.Error()}
	case errors.Is(err, apperr.ErrUnavailable), errors.Is(err, slug.ErrStorageUnavailable):
		return Problem{Type: ProblemTypeUnavailable, Title: "Service unavailable", Status: http.StatusServiceUnavailable, Detail: "a dependency is temporarily unavailable"}
	default:
		return Problem{Type: ProblemTypeInternal, Title: "Internal server error", Status: http.StatusInternalServerError, Detail: "an unexpected error occurred"}
	}
}

func copyFields(fields apperr.FieldErrors) map[string][]string {
	if len(fields) == 0 {
		return nil
	}
	copied := make(map[string][]string, len(fields))
	for field, messages := range fields {
		copied[field] = append([]string(nil), messages...)
	}
	return copied
}
