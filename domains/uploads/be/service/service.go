// Package service validates and stores uploaded media.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/storage"
)

var ErrNotFound = fmt.Errorf("upload %w", apperr.ErrNotFound)

const (
	DefaultMaxBytes int64 = 5 << 20

	svgType  = "image/svg+xml"
	sniffLen = 512
)

// Input is one uploaded file. Size is the client-declared length, -1 when unknown.
type Input struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service interface {
	Upload(ctx context.Context, audit requesttrace.AuditInfo, input Input) (storage.Object, error)
	Delete(ctx context.Context, audit requesttrace.AuditInfo, key string) error
	MaxBytes() int64
}

type service struct {
	store    storage.ObjectStore
	maxBytes int64
	prefix   string
	now      func() time.Time
	logger   *zap.Logger
}

type Option func(*service)

// WithMaxBytes caps the accepted file size. Values below 1 keep DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(s *service) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(store storage.ObjectStore, opts ...Option) Service {
	if store == nil {
		panic("object store is required")
	}
	s := &service{
		store:    store,
		maxBytes: DefaultMaxBytes,
		prefix:   "uploads",
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) MaxBytes() int64 { return s.maxBytes }

// Upload stores the file under uploads/<yyyy>/<mm>/<uuid><ext>. The content type is taken
// from the file's leading bytes; SVG is accepted only when declared and textual.
func (s *service) Upload(ctx context.Context, audit requesttrace.AuditInfo, input Input) (storage.Object, error) {
	if input.Body == nil {
		return storage.Object{}, apperr.Invalid("file", "file is required")
	}
	if input.Size > s.maxBytes {
		return storage.Object{}, s.tooLarge()
	}

	data, err := io.ReadAll(io.LimitReader(input.Body, s.maxBytes+1))
	if err != nil {
		return storage.Object{}, fmt.Errorf("read upload: %w", err)
	}
	switch {
	case len(data) == 0:
		return storage.Object{}, apperr.Invalid("file", "file is empty")
	case int64(len(data)) > s.maxBytes:
		return storage.Object{}, s.tooLarge()
	}

	contentType, err := detectImageType(data, input.ContentType)
	if err != nil {
		return storage.Object{}, err
	}

	now := s.now().UTC()
	key := storage.NewObjectKey(fmt.Sprintf("%s/%04d/%02d", s.prefix, now.Year(), int(now.Month())), contentType)

	obj, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return storage.Object{}, err
	}

	s.logger.Info("media uploaded",
		zap.String("key", obj.Key),
		zap.String("content_type", contentType),
		zap.Int64("size", obj.Size),
		zap.String("filename", input.Filename),
		zap.String("request_id", audit.RequestID),
	)
	return obj, nil
}

func (s *service) Delete(ctx context.Context, audit requesttrace.AuditInfo, key string) error { //nolint:revive
	resolved, err := storage.ResolveObjectKey(s.prefix, strings.TrimPrefix(strings.TrimSpace(key), s.prefix+"/"))
	if err != nil {
		return apperr.Invalid("key", "key is not a valid upload key")
	}

	if err := s.store.Delete(ctx, resolved); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *service) tooLarge() error {
	return fmt.Errorf("file exceeds %d bytes: %w", s.maxBytes, apperr.ErrTooLarge)
}

func detectImageType(data []byte, declared string) (string, error) {
	sniffed := http.DetectContentType(data[:min(len(data), sniffLen)])
	if storage.IsImage(sniffed) && sniffed != svgType {
		return sniffed, nil
	}

	declared = strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	if declared == svgType && isTextual(sniffed) && looksLikeSVG(data) {
		return svgType, nil
	}
	return "", apperr.Invalid("file", "file must be a jpeg, png, webp, gif or svg image")
}

func isTextual(sniffed string) bool {
	return strings.HasPrefix(sniffed, "text/xml") || strings.HasPrefix(sniffed, "text/plain")
}

func looksLikeSVG(data []byte) bool {
	lower := bytes.ToLower(data)
	return bytes.Contains(lower, []byte("<svg")) && !bytes.Contains(lower, []byte("<script"))
}
