package slug

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ForCreate picks the slug of a new record. An explicit slug is normalised and must be
// free; otherwise one is derived from title.
func (r *Resolver) ForCreate(ctx context.Context, explicit *string, title string) (string, error) {
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		return r.claim(ctx, *explicit, nil)
	}
	return r.Unique(ctx, title, nil)
}

// ForUpdate picks the slug after an update of record id. An explicit slug wins. A changed
// title, or a record that never had a slug, gets a fresh one. Otherwise current is kept.
func (r *Resolver) ForUpdate(ctx context.Context, id uuid.UUID, explicit *string, current, oldTitle, newTitle string) (string, error) {
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		return r.claim(ctx, *explicit, &id)
	}
	if newTitle != oldTitle || current == "" {
		return r.Unique(ctx, newTitle, &id)
	}
	return current, nil
}

func (r *Resolver) claim(ctx context.Context, explicit string, excludeID *uuid.UUID) (string, error) {
	normalized, err := Normalize(explicit)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	free, err := r.Available(ctx, normalized, excludeID)
	if err != nil {
		return "", err
	}
	if !free {
		return "", fmt.Errorf("%w: %q", ErrTaken, normalized)
	}
	return normalized, nil
}
