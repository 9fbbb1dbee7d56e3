// Package slugmigration backfills slugs onto records created before slugs existed.
package slugmigration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/slug"
)

// DefaultStartupKinds is swept when no explicit list is configured.
var DefaultStartupKinds = []persistence.SlugKind{persistence.SlugKindCategories, persistence.SlugKindSubcategories}

// Store is the persistence surface the runner needs.
type Store interface {
	ListMissingSlugs(ctx context.Context, kind persistence.SlugKind) ([]persistence.SlugRecord, error)
	UpdateSlug(ctx context.Context, kind persistence.SlugKind, id uuid.UUID, value string) error
	SlugExists(ctx context.Context, kind persistence.SlugKind, candidate string, excludeID *uuid.UUID) (bool, error)
}

// Result describes one record that received a slug.
type Result struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

// Summary is the outcome of backfilling a single kind.
type Summary struct {
	Kind    persistence.SlugKind `json:"kind"`
	Message string               `json:"message"`
	Updated int                  `json:"updated"`
	Results []Result             `json:"results"`
}

// KindOutcome pairs a kind with its summary, or the error that stopped it.
type KindOutcome struct {
	Summary
	Error string `json:"error,omitempty"`
}

// RunReport aggregates a multi-kind run. Failed counts kinds that stopped on an error.
type RunReport struct {
	Kinds   []KindOutcome `json:"kinds"`
	Updated int           `json:"updated"`
	Failed  int           `json:"failed"`
}

// Runner assigns slugs to records that lack one, one kind at a time.
type Runner struct {
	store        Store
	logger       *zap.Logger
	startupKinds []persistence.SlugKind
	unique       bool
	maxAttempts  int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithUniqueBackfill routes generated slugs through the unique resolver, so two records
// titled "A" become "a" and "a-2" instead of both receiving "a".
func WithUniqueBackfill(enabled bool) Option {
	return func(r *Runner) { r.unique = enabled }
}

// WithStartupKinds replaces the kinds swept by RunMigration. A nil list keeps the default;
// an empty one disables the startup sweep.
func WithStartupKinds(kinds []persistence.SlugKind) Option {
	return func(r *Runner) {
		if kinds != nil {
			r.startupKinds = append([]persistence.SlugKind{}, kinds...)
		}
	}
}

// WithMaxAttempts bounds the resolver in unique mode.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) { r.maxAttempts = n }
}

// NewRunner builds a runner over store. Without options it uses the plain generator and
// sweeps DefaultStartupKinds.
func NewRunner(store Store, opts ...Option) *Runner {
	if store == nil {
		panic("slug migration runner requires a store")
	}
	r := &Runner{
		store:        store,
		logger:       zap.NewNop(),
		startupKinds: DefaultStartupKinds,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UniqueMode returns a runner sharing r's store and settings with unique backfill set to
// enabled. r itself is unchanged.
func (r *Runner) UniqueMode(enabled bool) *Runner {
	c := *r
	c.unique = enabled
	return &c
}

// StartupKinds returns the kinds swept by RunMigration.
func (r *Runner) StartupKinds() []persistence.SlugKind {
	return append([]persistence.SlugKind(nil), r.startupKinds...)
}

// MigrateMissingSlugs assigns slugs to every live record of kind that lacks one. Records are
// handled one at a time; the first failure stops the kind and returns the partial summary.
// Slugs already written stay written.
func (r *Runner) MigrateMissingSlugs(ctx context.Context, kind persistence.SlugKind) (Summary, error) {
	summary := Summary{Kind: kind, Results: []Result{}}

	records, err := r.store.ListMissingSlugs(ctx, kind)
	if err != nil {
		return summary, fmt.Errorf("list %s missing slugs: %w", kind, err)
	}

	if len(records) == 0 {
		summary.Message = fmt.Sprintf("all %s already have slugs", kind)
		return summary, nil
	}

	resolver := r.resolverFor(kind)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return r.partial(summary), err
		}

		value, err := r.slugFor(ctx, resolver, rec)
		if err != nil {
			return r.partial(summary), fmt.Errorf("generate slug for %s %s: %w", kind, rec.ID, err)
		}

		if err := r.store.UpdateSlug(ctx, kind, rec.ID, value); err != nil {
			return r.partial(summary), fmt.Errorf("update %s %s: %w", kind, rec.ID, err)
		}

		summary.Updated++
		summary.Results = append(summary.Results, Result{ID: rec.ID, Title: rec.Title, Slug: value})
		r.logger.Debug("slug assigned",
			zap.String("kind", string(kind)),
			zap.String("id", rec.ID.String()),
			zap.String("slug", value),
		)
	}

	summary.Message = fmt.Sprintf("migrated %d %s", summary.Updated, kind)
	r.logger.Info("slug backfill complete", zap.String("kind", string(kind)), zap.Int("updated", summary.Updated))
	return summary, nil
}

// RunMigration sweeps the configured startup kinds. A failing kind is logged and the
// remaining kinds still run.
func (r *Runner) RunMigration(ctx context.Context) RunReport {
	return r.run(ctx, r.startupKinds)
}

// MigrateAll sweeps every sluggable kind with the same isolation as RunMigration.
func (r *Runner) MigrateAll(ctx context.Context) RunReport {
	return r.run(ctx, persistence.SlugKinds)
}

func (r *Runner) run(ctx context.Context, kinds []persistence.SlugKind) RunReport {
	report := RunReport{Kinds: make([]KindOutcome, 0, len(kinds))}

	for _, kind := range kinds {
		summary, err := r.MigrateMissingSlugs(ctx, kind)
		outcome := KindOutcome{Summary: summary}
		report.Updated += summary.Updated

		if err != nil {
			outcome.Error = err.Error()
			report.Failed++
			r.logger.Error("slug backfill failed",
				zap.String("kind", string(kind)),
				zap.Int("updated", summary.Updated),
				zap.Error(err),
			)
		}

		report.Kinds = append(report.Kinds, outcome)
	}

	return report
}

func (r *Runner) resolverFor(kind persistence.SlugKind) *slug.Resolver {
	if !r.unique {
		return nil
	}
	exists := func(ctx context.Context, candidate string, excludeID *uuid.UUID) (bool, error) {
		return r.store.SlugExists(ctx, kind, candidate, excludeID)
	}
	var opts []slug.Option
	if r.maxAttempts > 0 {
		opts = append(opts, slug.WithMaxAttempts(r.maxAttempts))
	}
	return slug.NewResolver(exists, opts...)
}

func (r *Runner) slugFor(ctx context.Context, resolver *slug.Resolver, rec persistence.SlugRecord) (string, error) {
	if resolver == nil {
		return slug.Generate(rec.Title), nil
	}
	id := rec.ID
	return resolver.Unique(ctx, rec.Title, &id)
}

func (r *Runner) partial(summary Summary) Summary {
	summary.Message = fmt.Sprintf("migrated %d %s before failure", summary.Updated, summary.Kind)
	return summary
}

// IsUnknownKind reports whether err came from an unsupported kind name.
func IsUnknownKind(err error) bool {
	return errors.Is(err, persistence.ErrUnknownKind)
}
