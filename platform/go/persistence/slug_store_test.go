package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugStoreIntegration(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping slug store integration test in short mode")
	}

	ctx := context.Background()
	pool := mustTestPool(t)

	store, err := NewSlugStore(pool)
	require.NoError(t, err)

	var (
		nullID, emptyID, sluggedID, deletedID uuid.UUID
	)
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO categories (name, slug) VALUES ('Cardiology', NULL) RETURNING id`).Scan(&nullID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO categories (name, slug) VALUES ('Neurology', '') RETURNING id`).Scan(&emptyID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO categories (name, slug) VALUES ('Oncology', 'oncology') RETURNING id`).Scan(&sluggedID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO categories (name, slug, deleted_at) VALUES ('Old', NULL, NOW()) RETURNING id`).Scan(&deletedID))

	t.Run("lists only live records missing a slug", func(t *testing.T) {
		records, err := store.ListMissingSlugs(ctx, SlugKindCategories)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, SlugRecord{ID: nullID, Title: "Cardiology"}, records[0])
		assert.Equal(t, SlugRecord{ID: emptyID, Title: "Neurology"}, records[1])
	})

	t.Run("exists honours exclusion and soft deletes", func(t *testing.T) {
		taken, err := store.SlugExists(ctx, SlugKindCategories, "oncology", nil)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = store.SlugExists(ctx, SlugKindCategories, "oncology", &sluggedID)
		require.NoError(t, err)
		assert.False(t, taken)

		require.NoError(t, store.UpdateSlug(ctx, SlugKindCategories, nullID, "cardiology"))
		taken, err = store.SlugExists(ctx, SlugKindCategories, "cardiology", nil)
		require.NoError(t, err)
		assert.True(t, taken)
	})

	t.Run("update on a soft-deleted record is not found", func(t *testing.T) {
		err := store.UpdateSlug(ctx, SlugKindCategories, deletedID, "old")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate slugs are rejected where a unique index exists", func(t *testing.T) {
		var first, second uuid.UUID
		require.NoError(t, pool.QueryRow(ctx, `INSERT INTO blogs (title, slug) VALUES ('A', 'a') RETURNING id`).Scan(&first))
		require.NoError(t, pool.QueryRow(ctx, `INSERT INTO blogs (title) VALUES ('A') RETURNING id`).Scan(&second))

		err := store.UpdateSlug(ctx, SlugKindBlogs, second, "a")
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := store.ListMissingSlugs(ctx, SlugKind("users"))
		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}
