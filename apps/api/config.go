package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/storage"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL      string `env:"DATABASE_URL,required"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`

	AuthProvider    string        `env:"AUTH_PROVIDER" envDefault:"firebase"` // firebase | dev
	FirebaseConfig  string        `env:"FIREBASE_CONFIG"`                     // service account file; ADC when empty
	FirebaseProject string        `env:"GCLOUD_PROJECT"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:","`
	RedisURL        string        `env:"REDIS_URL"` // empty disables caching
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	StorageBackend       string `env:"STORAGE_BACKEND" envDefault:"local"` // gcs | s3 | local
	StorageBucket        string `env:"STORAGE_BUCKET"`
	StorageLocalDir      string `env:"STORAGE_LOCAL_DIR" envDefault:"./.data/media"`
	StoragePublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL" envDefault:"/media"`
	S3Region             string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint           string `env:"S3_ENDPOINT"`
	S3AccessKey          string `env:"S3_ACCESS_KEY"`
	S3SecretKey          string `env:"S3_SECRET_KEY"`
	S3PathStyle          bool   `env:"S3_PATH_STYLE"`
	UploadMaxBytes       int64  `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`

	ResendAPIKey       string `env:"RESEND_API_KEY"`
	ResendFromEmail    string `env:"RESEND_FROM_EMAIL"`
	ResendFromName     string `env:"RESEND_FROM_NAME" envDefault:"CareCrest Hospital"`
	ContactNotifyEmail string `env:"CONTACT_NOTIFY_EMAIL"`

	SlugStartupKinds      []string      `env:"SLUG_MIGRATION_STARTUP_KINDS" envSeparator:","`
	SlugBackfillUnique    bool          `env:"SLUG_BACKFILL_UNIQUE"`
	SlugMigrationSchedule string        `env:"SLUG_MIGRATION_SCHEDULE"` // cron spec; empty disables
	SlugMigrationTimeout  time.Duration `env:"SLUG_MIGRATION_TIMEOUT" envDefault:"2m"`
	SlugMaxAttempts       int           `env:"SLUG_MAX_ATTEMPTS" envDefault:"10000"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, err
	}
	if _, err := cfg.startupKinds(); err != nil {
		return config{}, err
	}
	switch cfg.AuthProvider {
	case "firebase", "dev":
	default:
		return config{}, fmt.Errorf("unsupported AUTH_PROVIDER %q (use firebase or dev)", cfg.AuthProvider)
	}
	if cfg.StorageBackend != storage.BackendLocal && strings.TrimSpace(cfg.StorageBucket) == "" {
		return config{}, fmt.Errorf("STORAGE_BUCKET is required when STORAGE_BACKEND=%s", cfg.StorageBackend)
	}
	return cfg, nil
}

// disabledStartupKinds turns the startup backfill off when it is the whole list.
const disabledStartupKinds = "none"

// startupKinds parses SLUG_MIGRATION_STARTUP_KINDS. Unset yields nil, which keeps the runner
// default; "none" yields an empty list, which disables the startup sweep.
func (c config) startupKinds() ([]persistence.SlugKind, error) {
	var names []string
	for _, raw := range c.SlugStartupKinds {
		if raw = strings.TrimSpace(raw); raw != "" {
			names = append(names, raw)
		}
	}
	if slices.ContainsFunc(names, func(name string) bool { return strings.EqualFold(name, disabledStartupKinds) }) {
		if len(names) != 1 {
			return nil, fmt.Errorf("SLUG_MIGRATION_STARTUP_KINDS: %q cannot be combined with other kinds", disabledStartupKinds)
		}
		return []persistence.SlugKind{}, nil
	}

	var kinds []persistence.SlugKind
	for _, name := range names {
		kind, err := persistence.ParseSlugKind(name)
		if err != nil {
			return nil, fmt.Errorf("SLUG_MIGRATION_STARTUP_KINDS: %w", err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func (c config) storageConfig() storage.Config {
	return storage.Config{
		Backend:       c.StorageBackend,
		Bucket:        c.StorageBucket,
		LocalDir:      c.StorageLocalDir,
		PublicBaseURL: c.StoragePublicBaseURL,
		S3Region:      c.S3Region,
		S3Endpoint:    c.S3Endpoint,
		S3AccessKey:   c.S3AccessKey,
		S3SecretKey:   c.S3SecretKey,
		S3PathStyle:   c.S3PathStyle,
	}
}
