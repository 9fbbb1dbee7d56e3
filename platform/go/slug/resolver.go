package slug

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// DefaultMaxAttempts bounds the suffix search of a Resolver.
const DefaultMaxAttempts = 10000

// ExistsFunc reports whether a live record of one entity kind already holds candidate.
// The record identified by excludeID, when non-nil, must be ignored.
type ExistsFunc func(ctx context.Context, candidate string, excludeID *uuid.UUID) (bool, error)

// Resolver turns titles into slugs that are unique within one entity kind.
//
// The check and the subsequent write are not atomic. Two concurrent writers with the
// same title can both be handed the same slug; a storage unique index, where present,
// rejects the second write.
type Resolver struct {
	exists      ExistsFunc
	maxAttempts int
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithMaxAttempts caps how many candidates are checked before giving up. Values below 1
// keep the default.
func WithMaxAttempts(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// NewResolver builds a Resolver around the kind's existence check.
func NewResolver(exists ExistsFunc, opts ...Option) *Resolver {
	if exists == nil {
		panic("slug resolver requires an exists func")
	}

	r := &Resolver{exists: exists, maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Unique returns Generate(title) when it is free, otherwise the first free
// "<base>-<n>" with n counting up from 2.
func (r *Resolver) Unique(ctx context.Context, title string, excludeID *uuid.UUID) (string, error) {
	return r.UniqueFrom(ctx, Generate(title), excludeID)
}

// UniqueFrom runs the suffix search from an already generated base slug.
func (r *Resolver) UniqueFrom(ctx context.Context, base string, excludeID *uuid.UUID) (string, error) {
	candidate := base
	for attempt, counter := 1, 2; ; attempt, counter = attempt+1, counter+1 {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		taken, err := r.exists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("%w: check %q: %w", ErrStorageUnavailable, candidate, err)
		}
		if !taken {
			return candidate, nil
		}

		if attempt >= r.maxAttempts {
			return "", fmt.Errorf("%w: base %q after %d candidates", ErrAttemptsExhausted, base, attempt)
		}

		candidate = base + "-" + strconv.Itoa(counter)
	}
}

// Available reports whether candidate is free for the record identified by excludeID.
func (r *Resolver) Available(ctx context.Context, candidate string, excludeID *uuid.UUID) (bool, error) {
	taken, err := r.exists(ctx, candidate, excludeID)
	if err != nil {
		return false, fmt.Errorf("%w: check %q: %w", ErrStorageUnavailable, candidate, err)
	}
	return !taken, nil
}
