package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCachedListingServedFromRedis(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, newTestCache(t))
	ctx := context.Background()

	_, err := service.CreateFabric(ctx, CreateFabricRequest{Name: "Cotton", PricePerMeter: dec("200")})
	require.NoError(t, err)

	_, total, err := service.ListFabrics(ctx, ListFilters{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, repo.listFabricCalls)

	// second read hits the cache
	_, total, err = service.ListFabrics(ctx, ListFilters{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, repo.listFabricCalls)
}

func TestCatalogWriteInvalidatesListings(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, newTestCache(t))
	ctx := context.Background()

	fabric, err := service.CreateFabric(ctx, CreateFabricRequest{Name: "Cotton", PricePerMeter: dec("200")})
	require.NoError(t, err)

	_, _, err = service.ListFabrics(ctx, ListFilters{Limit: 50})
	require.NoError(t, err)
	require.Equal(t, 1, repo.listFabricCalls)

	raised := dec("250")
	_, err = service.UpdateFabric(ctx, fabric.ID, UpdateFabricRequest{PricePerMeter: &raised})
	require.NoError(t, err)

	// version bumped, old entry is dead
	listed, _, err := service.ListFabrics(ctx, ListFilters{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listFabricCalls)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].PricePerMeter.Equal(raised))
}

func TestCacheKeyVariesByFilters(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, newTestCache(t))
	ctx := context.Background()

	_, _, err := service.ListItemTypes(ctx, ListFilters{Limit: 50})
	require.NoError(t, err)
	_, _, err = service.ListItemTypes(ctx, ListFilters{Search: "kurta", Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listItemTypeCalls)
}

func TestCacheFallsThroughWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockRepository()
	service := NewService(repo, NewCache(client, time.Minute))
	ctx := context.Background()

	mr.Close()

	_, total, err := service.ListFabrics(ctx, ListFilters{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Equal(t, 1, repo.listFabricCalls)
}

func TestNilCacheReadsStoreDirectly(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, nil)

	_, _, err := service.ListFabrics(context.Background(), ListFilters{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listFabricCalls)
}
