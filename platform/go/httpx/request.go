package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/carecrest/hospital-cms/platform/go/apperr"
)

// MaxJSONBody caps decoded request bodies.
const MaxJSONBody = 1 << 20

// DecodeJSON reads a single JSON document into dst. Malformed input is a validation error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Invalid("body", "request body is required")
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body: %w", apperr.ErrTooLarge)
		case errors.Is(err, io.EOF):
			return apperr.Invalid("body", "request body is required")
		default:
			return apperr.Invalid("body", err.Error())
		}
	}

	if dec.More() {
		return apperr.Invalid("body", "request body must contain a single JSON document")
	}
	return nil
}

// UUIDParam parses a chi path parameter as a UUID.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Invalid(name, "must be a valid UUID")
	}
	return id, nil
}

// BindQuery binds an optional form-style query parameter into dest (a pointer).
func BindQuery(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return apperr.Invalid(name, err.Error())
	}
	return nil
}

// BindQueries binds several optional query parameters, collecting every failure.
func BindQueries(r *http.Request, params map[string]any) error {
	fields := apperr.FieldErrors{}
	for name, dest := range params {
		if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
			fields.Add(name, err.Error())
		}
	}
	return fields.Err()
}

// OptionalUUIDQuery parses an optional UUID query parameter.
func OptionalUUIDQuery(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Invalid(name, "must be a valid UUID")
	}
	return &id, nil
}
