// Package devtoken mints unsigned Firebase-shaped ID tokens for local and CI use with
// AUTH_PROVIDER=dev. The tokens carry no signature and are never accepted by Firebase.
package devtoken

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Params holds the claims to mint. No environment variables are read.
type Params struct {
	ProjectID      string        // Firebase project id; used for aud and iss
	UserID         string        // user_id/sub (required)
	Email          string        // email claim (required)
	Name           string        // display name
	EmailVerified  bool          // email_verified claim
	Roles          []string      // CMS roles, e.g. "admin" or "editor"
	SignInProvider string        // firebase.sign_in_provider; default "password"
	ExpiresIn      time.Duration // relative expiry; default 1h if zero
	Audience       string        // defaults to ProjectID
	Issuer         string        // defaults to https://securetoken.google.com/<projectId>
}

// BuildUnsignedFirebaseToken returns a "header.payload" JWT with alg "none".
func BuildUnsignedFirebaseToken(p Params, now time.Time) (string, error) {
	if strings.TrimSpace(p.ProjectID) == "" {
		return "", errors.New("projectID is required")
	}
	if strings.TrimSpace(p.UserID) == "" {
		return "", errors.New("userID is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return "", errors.New("email is required")
	}

	if now.IsZero() {
		now = time.Now().UTC()
	}

	expiresIn := p.ExpiresIn
	if expiresIn == 0 {
		expiresIn = time.Hour
	}

	issuer := p.Issuer
	if strings.TrimSpace(issuer) == "" {
		issuer = fmt.Sprintf("https://securetoken.google.com/%s", p.ProjectID)
	}

	audience := p.Audience
	if strings.TrimSpace(audience) == "" {
		audience = p.ProjectID
	}

	signInProvider := p.SignInProvider
	if strings.TrimSpace(signInProvider) == "" {
		signInProvider = "password"
	}

	payload := map[string]any{
		"iss":            issuer,
		"aud":            audience,
		"auth_time":      now.Unix(),
		"user_id":        p.UserID,
		"sub":            p.UserID,
		"iat":            now.Unix(),
		"exp":            now.Add(expiresIn).Unix(),
		"email":          p.Email,
		"email_verified": p.EmailVerified,
		"firebase": map[string]any{
			"identities":       map[string]any{"email": []string{p.Email}},
			"sign_in_provider": signInProvider,
		},
	}
	if p.Name != "" {
		payload["name"] = p.Name
	}
	if len(p.Roles) > 0 {
		payload["roles"] = p.Roles
	}

	headerSegment, err := encodeSegment(map[string]any{"alg": "none", "typ": "JWT"})
	if err != nil {
		return "", err
	}

	payloadSegment, err := encodeSegment(payload)
	if err != nil {
		return "", err
	}

	return headerSegment + "." + payloadSegment, nil
}

func encodeSegment(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
