package stats

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_Roundtrip(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	rec := domain.StatsRecord{ItemsScanned: 7, OrdersCompleted: 2, TotalRevenue: 260}
	require.NoError(t, store.Save(ctx, rec))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)
}

func TestRedisStore_MissingKey(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(defaultKey, "{definitely not json"))

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestService_SurvivesRestart(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	first := NewService(ctx, store)
	first.AddItemsScanned(ctx, 3)
	first.AddOrdersCompleted(ctx, 1)
	first.AddRevenue(ctx, 230)

	// A fresh service over the same store reproduces the counters.
	second := NewService(ctx, store)
	assert.Equal(t, domain.StatsRecord{
		ItemsScanned:    3,
		OrdersCompleted: 1,
		TotalRevenue:    230,
	}, second.Snapshot())
}

func TestService_CorruptRecordFallsBackToZeros(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(defaultKey, "garbage"))

	svc := NewService(context.Background(), store)
	assert.Equal(t, domain.StatsRecord{}, svc.Snapshot())
}
