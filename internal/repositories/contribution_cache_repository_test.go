package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alimgiray/contribstats/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) (*ContributionCacheRepository, *time.Time) {
	t.Helper()

	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := NewContributionCacheRepository(db)
	repo.now = func() time.Time { return now }
	return repo, &now
}

func TestContributionCacheRepositorySetGet(t *testing.T) {
	ctx := context.Background()
	repo, now := newTestRepository(t)

	_, ok, err := repo.Get(ctx, "contributions:a:b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "contributions:a:b", "[]", 900*time.Second))

	value, ok, err := repo.Get(ctx, "contributions:a:b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", value)

	entry, err := repo.GetEntry(ctx, "contributions:a:b")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.ExpiresAt.Equal(now.Add(900*time.Second)))
}

func TestContributionCacheRepositoryOverwrite(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	require.NoError(t, repo.Set(ctx, "k", "first", time.Minute))
	require.NoError(t, repo.Set(ctx, "k", "second", time.Minute))

	value, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestContributionCacheRepositoryExpiry(t *testing.T) {
	ctx := context.Background()
	repo, now := newTestRepository(t)

	require.NoError(t, repo.Set(ctx, "short", "a", time.Minute))
	require.NoError(t, repo.Set(ctx, "long", "b", time.Hour))

	*now = now.Add(time.Minute)

	_, ok, err := repo.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok, "expired rows are never returned")

	entry, err := repo.GetEntry(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, entry, "rows left for the janitor still read as absent")

	removed, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	value, ok, err := repo.Get(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", value)
}
