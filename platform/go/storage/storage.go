// Package storage stores uploaded media in an object store and reports a public URL for it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

const (
	BackendGCS   = "gcs"
	BackendS3    = "s3"
	BackendLocal = "local"
)

var (
	ErrInvalidKey   = errors.New("storage: invalid object key")
	ErrNotFound     = errors.New("storage: object not found")
	ErrUploadFailed = errors.New("storage: upload failed")
)

// Object describes a stored blob.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// ObjectStore is implemented by every backend.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Config selects and configures a backend.
type Config struct {
	Backend       string
	Bucket        string
	LocalDir      string
	PublicBaseURL string

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PathStyle bool
}

// New builds the backend named by cfg.Backend.
func New(ctx context.Context, cfg Config) (ObjectStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendGCS:
		return NewGCS(ctx, cfg.Bucket, cfg.PublicBaseURL)
	case BackendS3:
		return NewS3(S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PathStyle: cfg.S3PathStyle,
			PublicURL: cfg.PublicBaseURL,
		})
	case BackendLocal, "":
		return NewLocal(cfg.LocalDir, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// ResolveObjectKey joins prefix and logicalKey into a clean slash-separated key.
// Path traversal segments are rejected.
func ResolveObjectKey(prefix, logicalKey string) (string, error) {
	key := strings.Trim(strings.TrimSpace(logicalKey), "/")
	if key == "" {
		return "", fmt.Errorf("%w: logical key is required", ErrInvalidKey)
	}

	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix != "" {
		key = prefix + "/" + key
	}

	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return key, nil
}

// NewObjectKey returns a fresh key under prefix with an extension derived from contentType.
func NewObjectKey(prefix, contentType string) string {
	key, err := ResolveObjectKey(prefix, uuid.NewString()+ExtFromMIME(contentType))
	if err != nil {
		// prefix was unusable; fall back to the bare name
		return uuid.NewString() + ExtFromMIME(contentType)
	}
	return key
}

var mimeExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

// ExtFromMIME maps the supported image types to a file extension, ".bin" otherwise.
func ExtFromMIME(contentType string) string {
	if ext, ok := mimeExtensions[strings.ToLower(strings.TrimSpace(contentType))]; ok {
		return ext
	}
	return ".bin"
}

// IsImage reports whether contentType is one of the accepted upload types.
func IsImage(contentType string) bool {
	_, ok := mimeExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	return ok
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}
