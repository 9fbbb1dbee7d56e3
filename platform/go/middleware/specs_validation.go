package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	platformauth "github.com/carecrest/hospital-cms/platform/go/auth"
	"github.com/carecrest/hospital-cms/platform/go/httpx"
)

// BearerScheme is the security scheme name used by the contract.
const BearerScheme = "bearerAuth"

// ValidateAuthenticationViaSwagger enforces bearerAuth requirements declared in the
// contract. Scopes on the requirement are CMS roles; any one of them satisfies it.
// The JWT middleware must already have run so credentials are on the request context.
func ValidateAuthenticationViaSwagger(ctx context.Context, input *openapi3filter.AuthenticationInput) error {
	if input == nil || input.SecuritySchemeName != BearerScheme {
		return nil
	}

	r := input.RequestValidationInput.Request
	if r == nil {
		return errors.New("no request in validation input")
	}

	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return errors.New("missing or invalid Authorization header")
	}

	creds, ok := platformauth.UserFromContext(r.Context())
	if !ok {
		return errors.New("unauthenticated request")
	}

	if len(input.Scopes) == 0 {
		return nil
	}
	for _, role := range input.Scopes {
		if creds.HasRole(role) {
			return nil
		}
	}
	return fmt.Errorf("one of roles %v is required", input.Scopes)
}

// OpenAPIValidator validates requests against spec and renders failures as problem details.
func OpenAPIValidator(spec *openapi3.T) func(http.Handler) http.Handler {
	return oapimiddleware.OapiRequestValidatorWithOptions(spec, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: ValidateAuthenticationViaSwagger,
			MultiError:         false,
		},
		SilenceServersWarning: true,
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			httpx.WriteProblem(w, validationProblem(message, statusCode))
		},
	})
}

func validationProblem(message string, status int) httpx.Problem {
	switch status {
	case http.StatusUnauthorized:
		return httpx.Problem{Type: httpx.ProblemTypeUnauthorized, Title: "Unauthorized", Status: status, Detail: message}
	case http.StatusForbidden:
		return httpx.Problem{Type: httpx.ProblemTypeForbidden, Title: "Forbidden", Status: status, Detail: message}
	case http.StatusNotFound:
		return httpx.Problem{Type: httpx.ProblemTypeNotFound, Title: "Resource not found", Status: status, Detail: message}
	default:
		return httpx.Problem{Type: httpx.ProblemTypeValidation, Title: "Request does not match the API contract", Status: status, Detail: message}
	}
}
