package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/consultation-api/pkg/errors"
)

type cachedPayload struct {
	Total int `json:"total"`
}

func newMiniredisRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheRepository(client, zap.NewNop()), srv
}

func TestCacheRepositorySetGet(t *testing.T) {
	repo, srv := newMiniredisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "stats:a", cachedPayload{Total: 3}, time.Minute))
	assert.True(t, srv.Exists(DefaultCacheNamespace+"stats:a"))

	var out cachedPayload
	require.NoError(t, repo.Get(ctx, "stats:a", &out))
	assert.Equal(t, 3, out.Total)

	srv.FastForward(2 * time.Minute)
	assert.ErrorIs(t, repo.Get(ctx, "stats:a", &out), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryCorruptEntryIsMiss(t *testing.T) {
	repo, srv := newMiniredisRepo(t)
	require.NoError(t, srv.Set(DefaultCacheNamespace+"stats:bad", "{not json"))

	var out cachedPayload
	assert.ErrorIs(t, repo.Get(context.Background(), "stats:bad", &out), appErrors.ErrCacheMiss)
	assert.False(t, srv.Exists(DefaultCacheNamespace+"stats:bad"))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, srv := newMiniredisRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "stats:a", cachedPayload{}, time.Minute))
	require.NoError(t, repo.Set(ctx, "stats:b", cachedPayload{}, time.Minute))
	require.NoError(t, repo.Set(ctx, "other", cachedPayload{}, time.Minute))

	removed, err := repo.DeleteByPattern(ctx, "stats:*")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.True(t, srv.Exists(DefaultCacheNamespace+"other"))
	assert.NoError(t, repo.Ping(ctx))
}

func TestCacheRepositoryDeleteKeys(t *testing.T) {
	repo, srv := newMiniredisRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "stats:a", cachedPayload{}, time.Minute))
	require.NoError(t, repo.Set(ctx, "stats:b", cachedPayload{}, time.Minute))

	removed, err := repo.Delete(ctx, "stats:a", "stats:missing")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.False(t, srv.Exists(DefaultCacheNamespace+"stats:a"))
	assert.True(t, srv.Exists(DefaultCacheNamespace+"stats:b"))
}

func TestCacheRepositoryNilClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var out cachedPayload
	assert.ErrorIs(t, repo.Get(ctx, "k", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "k", out, time.Minute))
	removed, err := repo.DeleteByPattern(ctx, "*")
	assert.NoError(t, err)
	assert.Zero(t, removed)
	removed, err = repo.Delete(ctx, "k")
	assert.NoError(t, err)
	assert.Zero(t, removed)
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
