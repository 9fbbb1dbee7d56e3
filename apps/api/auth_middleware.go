package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	platformauth "github.com/carecrest/hospital-cms/platform/go/auth"
	"github.com/carecrest/hospital-cms/platform/go/gcp"
)

// buildAuthMiddleware constructs the JWT middleware for the configured provider.
// Requests without a bearer token pass through anonymously; role checks happen per route.
func buildAuthMiddleware(ctx context.Context, cfg config, logger *zap.Logger) func(http.Handler) http.Handler {
	var verify platformauth.VerifyFunc
	switch cfg.AuthProvider {
	case "firebase":
		fbAuth, err := gcp.NewAuthClient(ctx, gcp.FirebaseConfig{
			CredentialsFile: cfg.FirebaseConfig,
			ProjectID:       cfg.FirebaseProject,
		})
		if err != nil {
			logger.Fatal("init firebase auth", zap.Error(err))
		}
		verify = platformauth.FirebaseTokenVerifier(fbAuth)
	case "dev":
		logger.Warn("using dev auth middleware; do not use in production")
		verify = platformauth.UnsignedTokenVerifier()
	default:
		logger.Fatal("unsupported auth provider", zap.String("provider", cfg.AuthProvider))
	}

	extract := func(claims map[string]any) (*platformauth.UserCredentials, error) {
		creds, err := platformauth.DefaultCredentialExtractor(claims)
		if err != nil {
			return nil, err
		}
		if len(creds.Roles) == 0 {
			logger.Debug("authenticated user without cms roles", zap.String("userId", creds.ID))
		}
		return creds, nil
	}

	return platformauth.JWT(verify, extract)
}
