package stats

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
)

type memStore struct {
	mu      sync.Mutex
	rec     domain.StatsRecord
	has     bool
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load(context.Context) (domain.StatsRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.StatsRecord{}, m.loadErr
	}
	if !m.has {
		return domain.StatsRecord{}, ErrNotFound
	}
	return m.rec, nil
}

func (m *memStore) Save(_ context.Context, rec domain.StatsRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rec = rec
	m.has = true
	return nil
}

func (m *memStore) saved() (domain.StatsRecord, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, m.saves
}

func TestService_StartsFromZeros(t *testing.T) {
	svc := NewService(context.Background(), &memStore{})
	assert.Equal(t, domain.StatsRecord{}, svc.Snapshot())
}

func TestService_LoadsExistingRecord(t *testing.T) {
	store := &memStore{
		rec: domain.StatsRecord{ItemsScanned: 10, OrdersCompleted: 4, TotalRevenue: 520},
		has: true,
	}

	svc := NewService(context.Background(), store)
	assert.Equal(t, store.rec, svc.Snapshot())
}

func TestService_LoadFailureIsNotFatal(t *testing.T) {
	store := &memStore{loadErr: fmt.Errorf("storage exploded")}

	svc := NewService(context.Background(), store)
	assert.Equal(t, domain.StatsRecord{}, svc.Snapshot())

	// The service keeps working and persisting after a failed load.
	svc.AddItemsScanned(context.Background(), 1)
	rec, saves := store.saved()
	assert.Equal(t, int64(1), rec.ItemsScanned)
	assert.Equal(t, 1, saves)
}

func TestService_EveryMutationPersists(t *testing.T) {
	store := &memStore{}
	ctx := context.Background()
	svc := NewService(ctx, store)

	svc.AddItemsScanned(ctx, 2)
	svc.AddOrdersCompleted(ctx, 1)
	svc.AddRevenue(ctx, 130)

	rec, saves := store.saved()
	assert.Equal(t, 3, saves)
	assert.Equal(t, domain.StatsRecord{
		ItemsScanned:    2,
		OrdersCompleted: 1,
		TotalRevenue:    130,
	}, rec)
}

func TestService_RevenueOnlyIncreases(t *testing.T) {
	store := &memStore{}
	ctx := context.Background()
	svc := NewService(ctx, store)

	svc.AddRevenue(ctx, 230)
	svc.AddRevenue(ctx, -50)
	svc.AddRevenue(ctx, 0)

	assert.Equal(t, float64(230), svc.Snapshot().TotalRevenue)
	_, saves := store.saved()
	assert.Equal(t, 1, saves, "ignored amounts must not persist")
}

func TestService_Reset(t *testing.T) {
	store := &memStore{}
	ctx := context.Background()
	svc := NewService(ctx, store)

	svc.AddItemsScanned(ctx, 5)
	svc.AddRevenue(ctx, 100)
	svc.Reset(ctx)

	assert.Equal(t, domain.StatsRecord{}, svc.Snapshot())
	rec, _ := store.saved()
	assert.Equal(t, domain.StatsRecord{}, rec)
}

func TestService_SaveFailureDoesNotBlockCaller(t *testing.T) {
	store := &memStore{saveErr: fmt.Errorf("disk full")}
	ctx := context.Background()
	svc := NewService(ctx, store)

	require.NotPanics(t, func() { svc.AddItemsScanned(ctx, 1) })
	// In-memory state still advanced; persistence is best effort.
	assert.Equal(t, int64(1), svc.Snapshot().ItemsScanned)
}
