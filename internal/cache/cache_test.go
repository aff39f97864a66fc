package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basket/internal/cache"
	"basket/internal/domain"
)

func TestNoopNeverHits(t *testing.T) {
	var c cache.Cache = cache.Noop{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []int{1}))

	var out []int
	hit, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Flush(ctx))
}

func TestNewRedisUnreachable(t *testing.T) {
	_, err := cache.NewRedis("127.0.0.1:1", time.Minute)
	assert.Error(t, err)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *cache.Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := cache.NewRedis(mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return mr, r
}

func TestRedisProductRoundTrip(t *testing.T) {
	mr, r := newRedis(t)
	ctx := context.Background()

	in := domain.Product{
		ID: "banana-001", Name: "Banana", Price: 40, CategoryID: "fruits-vegetables",
		Stock: 120, Unit: domain.UnitDozen, Featured: true,
		Category: &domain.Category{ID: "fruits-vegetables", Name: "Fruits & Vegetables", Active: true},
	}
	require.NoError(t, r.Set(ctx, "product:banana-001", in))
	assert.True(t, mr.Exists("basket:catalog:product:banana-001"))
	assert.Equal(t, time.Minute, mr.TTL("basket:catalog:product:banana-001"))

	var out domain.Product
	hit, err := r.Get(ctx, "product:banana-001", &out)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, in, out)

	hit, err = r.Get(ctx, "product:ghost", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisFlushDropsTrackedKeysOnly(t *testing.T) {
	mr, r := newRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "products", []domain.Product{{ID: "milk-001"}}))
	require.NoError(t, r.Set(ctx, "categories", []domain.Category{{ID: "dairy-eggs"}}))
	require.NoError(t, mr.Set("session:other", "keep"))

	require.NoError(t, r.Flush(ctx))
	assert.False(t, mr.Exists("basket:catalog:products"))
	assert.False(t, mr.Exists("basket:catalog:categories"))
	assert.False(t, mr.Exists("basket:catalog_keys"))
	assert.True(t, mr.Exists("session:other"))

	var out []domain.Product
	hit, err := r.Get(ctx, "products", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	// flushing an empty cache is fine, and keys set afterwards are tracked again
	require.NoError(t, r.Flush(ctx))
	require.NoError(t, r.Set(ctx, "products", []domain.Product{{ID: "egg-001"}}))
	members, err := mr.SMembers("basket:catalog_keys")
	require.NoError(t, err)
	assert.Equal(t, []string{"basket:catalog:products"}, members)
}
