// Package service exposes the slug backfill to administrators.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/platform/go/apperr"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
	"github.com/carecrest/hospital-cms/platform/go/slugmigration"
)

// ErrUnknownKind is returned for a kind name that has no slug column.
var ErrUnknownKind = fmt.Errorf("slug kind %w", apperr.ErrNotFound)

// Runner is the part of slugmigration.Runner the service drives.
type Runner interface {
	MigrateMissingSlugs(ctx context.Context, kind persistence.SlugKind) (slugmigration.Summary, error)
	MigrateAll(ctx context.Context) slugmigration.RunReport
}

// RunnerFactory returns the runner for one request. unique is nil when the caller did not
// ask for a particular mode.
type RunnerFactory func(unique *bool) Runner

type Service interface {
	MigrateAll(ctx context.Context, audit requesttrace.AuditInfo, unique *bool) (slugmigration.RunReport, error)
	MigrateKind(ctx context.Context, audit requesttrace.AuditInfo, kind string, unique *bool) (slugmigration.Summary, error)
}

type service struct {
	runners RunnerFactory
	logger  *zap.Logger
}

// FromRunner adapts a configured runner. A non-nil unique overrides its backfill mode.
func FromRunner(runner *slugmigration.Runner) RunnerFactory {
	if runner == nil {
		panic("slug migration runner is required")
	}
	return func(unique *bool) Runner {
		if unique == nil {
			return runner
		}
		return runner.UniqueMode(*unique)
	}
}

func New(runners RunnerFactory, logger *zap.Logger) Service {
	if runners == nil {
		panic("runner factory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{runners: runners, logger: logger}
}

func (s *service) MigrateAll(ctx context.Context, audit requesttrace.AuditInfo, unique *bool) (slugmigration.RunReport, error) {
	report := s.runners(unique).MigrateAll(ctx)
	s.logger.Info("slug backfill triggered",
		zap.String("scope", "all"),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
		zap.String("request_id", audit.RequestID),
	)
	return report, nil
}

// MigrateKind backfills one kind. Zero missing slugs is a success with Updated 0. On
// failure the partial summary is returned with the error; a slug rejected by a unique
// index surfaces as apperr.ErrConflict.
func (s *service) MigrateKind(ctx context.Context, audit requesttrace.AuditInfo, kind string, unique *bool) (slugmigration.Summary, error) {
	parsed, err := persistence.ParseSlugKind(kind)
	if err != nil {
		return slugmigration.Summary{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	summary, err := s.runners(unique).MigrateMissingSlugs(ctx, parsed)
	if err != nil {
		if slugmigration.IsUnknownKind(err) {
			return slugmigration.Summary{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
		s.logger.Error("slug backfill failed",
			zap.String("kind", kind),
			zap.Int("updated", summary.Updated),
			zap.String("request_id", audit.RequestID),
			zap.Error(err),
		)
		if errors.Is(err, persistence.ErrConflict) {
			return summary, fmt.Errorf("backfill %s: %w: %w", kind, apperr.ErrConflict, err)
		}
		return summary, fmt.Errorf("backfill %s: %w", kind, err)
	}

	s.logger.Info("slug backfill triggered",
		zap.String("scope", kind),
		zap.Int("updated", summary.Updated),
		zap.String("request_id", audit.RequestID),
	)
	return summary, nil
}
