package requesttrace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	platformauth "github.com/carecrest/hospital-cms/platform/go/auth"
)

func ptr(s string) *string { return &s }

func TestIntoContextAndFromContext(t *testing.T) {
	audit := AuditInfo{ActorKind: ActorKindUser, UserID: ptr("user-123"), Roles: []string{"editor"}, RequestID: "req-abc"}

	ctx := IntoContext(context.Background(), audit)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, audit, got)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)
	require.Equal(t, ActorKindAnonymous, FromContextOrAnonymous(context.Background()).ActorKind)
}

func TestFromCredentials(t *testing.T) {
	creds := &platformauth.UserCredentials{ID: "user-456", Roles: []string{"admin"}}

	audit, err := FromCredentials(creds, "req-xyz")
	require.NoError(t, err)
	require.Equal(t, ActorKindUser, audit.ActorKind)
	require.Equal(t, "user-456", *audit.UserID)
	require.Equal(t, "req-xyz", audit.RequestID)
	require.True(t, audit.HasRole(platformauth.RoleEditor))
	require.True(t, audit.CanSeeDrafts())

	creds.Roles[0] = "viewer"
	require.Equal(t, []string{"admin"}, audit.Roles, "audit keeps its own copy of roles")
}

func TestFromCredentialsMissingUser(t *testing.T) {
	_, err := FromCredentials(&platformauth.UserCredentials{}, "req-1")
	require.Error(t, err)

	_, err = FromCredentials(nil, "req-1")
	require.Error(t, err)
}

func TestAnonymousAndSystemHaveNoRoles(t *testing.T) {
	anon := Anonymous("req-anon")
	require.Equal(t, ActorKindAnonymous, anon.ActorKind)
	require.Nil(t, anon.UserID)
	require.False(t, anon.CanSeeDrafts())

	system := System("startup")
	require.Equal(t, ActorKindSystem, system.ActorKind)
	require.False(t, system.HasRole(platformauth.RoleAdmin))
}
