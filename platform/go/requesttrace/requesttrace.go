package requesttrace

import (
	"context"
	"errors"

	platformauth "github.com/carecrest/hospital-cms/platform/go/auth"
)

type contextKey string

const (
	ctxAuditInfo contextKey = "CMS_REQUEST_TRACE"
)

// ActorKind represents who initiated a request.
type ActorKind string

const (
	ActorKindUser      ActorKind = "user"
	ActorKindAnonymous ActorKind = "anonymous"
	ActorKindSystem    ActorKind = "system"
)

// AuditInfo captures request-scoped metadata for traceability.
// UserID and Roles are set only when ActorKind is user.
type AuditInfo struct {
	ActorKind ActorKind
	UserID    *string
	Roles     []string
	RequestID string
}

// HasRole mirrors UserCredentials.HasRole for code that only sees the audit record.
func (a AuditInfo) HasRole(role string) bool {
	if a.ActorKind != ActorKindUser {
		return false
	}
	return (&platformauth.UserCredentials{Roles: a.Roles}).HasRole(role)
}

// CanSeeDrafts reports whether the actor may read unpublished or inactive content.
func (a AuditInfo) CanSeeDrafts() bool {
	return a.HasRole(platformauth.RoleEditor)
}

// IntoContext stores the AuditInfo in the provided context.
func IntoContext(ctx context.Context, audit AuditInfo) context.Context {
	return context.WithValue(ctx, ctxAuditInfo, audit)
}

// FromContext extracts the AuditInfo from context, returning false when not present.
func FromContext(ctx context.Context) (AuditInfo, bool) {
	if ctx == nil {
		return AuditInfo{}, false
	}
	audit, ok := ctx.Value(ctxAuditInfo).(AuditInfo)
	return audit, ok
}

// FromContextOrAnonymous returns the AuditInfo stored on the context, or an anonymous record when absent.
func FromContextOrAnonymous(ctx context.Context) AuditInfo {
	if audit, ok := FromContext(ctx); ok {
		return audit
	}
	return Anonymous("")
}

// FromCredentials builds an AuditInfo from authenticated user credentials and a request ID.
func FromCredentials(creds *platformauth.UserCredentials, requestID string) (AuditInfo, error) {
	if creds == nil {
		return AuditInfo{}, errors.New("credentials are required to build audit info")
	}
	if creds.ID == "" {
		return AuditInfo{}, errors.New("user id is required to build audit info")
	}

	id := creds.ID
	return AuditInfo{
		ActorKind: ActorKindUser,
		UserID:    &id,
		Roles:     append([]string(nil), creds.Roles...),
		RequestID: requestID,
	}, nil
}

func Anonymous(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindAnonymous, RequestID: requestID}
}

// System builds an AuditInfo for startup and scheduled work such as the slug backfill.
func System(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindSystem, RequestID: requestID}
}
