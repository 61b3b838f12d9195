package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alimgiray/contribstats/internal/models"
)

// ContributionCacheRepository stores serialized series in contribution_cache.
// The SQL is shared by SQLite and PostgreSQL.
type ContributionCacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewContributionCacheRepository(db *sql.DB) *ContributionCacheRepository {
	return &ContributionCacheRepository{
		db:  db,
		now: time.Now,
	}
}

// Get returns the unexpired value stored under key
func (r *ContributionCacheRepository) Get(ctx context.Context, key string) (string, bool, error) {
	entry, err := r.GetEntry(ctx, key)
	if err != nil {
		return "", false, err
	}
	if entry == nil {
		return "", false, nil
	}
	return entry.Value, true, nil
}

// GetEntry retrieves an unexpired cache entry, or nil when there is none
func (r *ContributionCacheRepository) GetEntry(ctx context.Context, key string) (*models.ContributionCacheEntry, error) {
	query := `SELECT cache_key, value, expires_at FROM contribution_cache WHERE cache_key = $1`

	var entry models.ContributionCacheEntry
	var expiresAt int64
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&entry.Key,
		&entry.Value,
		&expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry.ExpiresAt = time.UnixMilli(expiresAt)
	if entry.IsExpired(r.now()) {
		return nil, nil
	}
	return &entry, nil
}

// Set creates or overwrites the entry under key
func (r *ContributionCacheRepository) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	query := `
		INSERT INTO contribution_cache (cache_key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`

	_, err := r.db.ExecContext(ctx, query, key, value, r.now().Add(ttl).UnixMilli())
	return err
}

// DeleteExpired removes expired rows and reports how many were deleted
func (r *ContributionCacheRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM contribution_cache WHERE expires_at <= $1`

	result, err := r.db.ExecContext(ctx, query, r.now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
