package boltcache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"notewise/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *BoltCache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "notewise.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBoltCache_SetGetDelete(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	assert.NoError(t, c.Delete(ctx, "never-set"))
	assert.NoError(t, c.Ping(ctx))
}

func TestBoltCache_Expiration(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "forever", "2", 0))

	now = now.Add(2 * time.Minute)
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	val, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "2", val)

	assert.ErrorIs(t, c.Expire(ctx, "short", time.Hour), domain.ErrCacheMiss)

	require.NoError(t, c.Expire(ctx, "forever", time.Minute))
	now = now.Add(time.Hour)
	_, err = c.Get(ctx, "forever")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	removed, err := c.Purge()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}
