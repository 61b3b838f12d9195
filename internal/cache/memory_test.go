package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "contributions::user", `[{"date":"2024-03-15","count":1}]`, 900*time.Second))

	value, ok, err := store.Get(ctx, "contributions::user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"date":"2024-03-15","count":1}]`, value)

	now = now.Add(899 * time.Second)
	_, ok, _ = store.Get(ctx, "contributions::user")
	assert.True(t, ok, "entry should live until its TTL")

	now = now.Add(time.Second)
	_, ok, err = store.Get(ctx, "contributions::user")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire at its TTL")
}

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", "first", time.Minute))
	require.NoError(t, store.Set(ctx, "k", "second", time.Minute))

	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestMemoryStoreDeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "short", "a", time.Minute))
	require.NoError(t, store.Set(ctx, "long", "b", time.Hour))

	now = now.Add(2 * time.Minute)
	removed, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok, _ := store.Get(ctx, "long")
	assert.True(t, ok)
}
