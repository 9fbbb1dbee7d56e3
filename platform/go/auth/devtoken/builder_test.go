package devtoken

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carecrest/hospital-cms/platform/go/auth"
)

func TestBuildUnsignedFirebaseToken(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()

	token, err := BuildUnsignedFirebaseToken(Params{
		ProjectID:     "local-cms",
		UserID:        "admin-123",
		Email:         "admin@example.com",
		Name:          "Dev Admin",
		EmailVerified: true,
		Roles:         []string{"admin"},
		ExpiresIn:     30 * time.Minute,
	}, now)
	require.NoError(t, err)

	header, payload := splitToken(t, token)
	require.Equal(t, "none", header["alg"])
	require.Equal(t, "https://securetoken.google.com/local-cms", payload["iss"])
	require.Equal(t, "local-cms", payload["aud"])
	require.Equal(t, "admin-123", payload["sub"])
	require.EqualValues(t, now.Add(30*time.Minute).Unix(), payload["exp"])
	require.Equal(t, []any{"admin"}, payload["roles"])

	firebaseClaim, ok := payload["firebase"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "password", firebaseClaim["sign_in_provider"])
}

func TestBuildUnsignedFirebaseTokenRoundTripsThroughMiddlewareVerifier(t *testing.T) {
	token, err := BuildUnsignedFirebaseToken(Params{
		ProjectID: "local-cms",
		UserID:    "editor-7",
		Email:     "editor@example.com",
		Roles:     []string{"editor"},
	}, time.Time{})
	require.NoError(t, err)

	claims, err := auth.UnsignedTokenVerifier()(context.Background(), token)
	require.NoError(t, err)

	creds, err := auth.DefaultCredentialExtractor(claims)
	require.NoError(t, err)
	require.Equal(t, "editor-7", creds.ID)
	require.True(t, creds.HasRole(auth.RoleEditor))
	require.False(t, creds.IsAdmin())
}

func TestBuildUnsignedFirebaseTokenValidation(t *testing.T) {
	_, err := BuildUnsignedFirebaseToken(Params{UserID: "u", Email: "e@example.com"}, time.Now())
	require.ErrorContains(t, err, "projectID")

	_, err = BuildUnsignedFirebaseToken(Params{ProjectID: "p", Email: "e@example.com"}, time.Now())
	require.ErrorContains(t, err, "userID")

	_, err = BuildUnsignedFirebaseToken(Params{ProjectID: "p", UserID: "u"}, time.Now())
	require.ErrorContains(t, err, "email")
}

func splitToken(t *testing.T, token string) (map[string]any, map[string]any) {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 2)
	return decodeSegment(t, parts[0]), decodeSegment(t, parts[1])
}

func decodeSegment(t *testing.T, segment string) map[string]any {
	t.Helper()
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
