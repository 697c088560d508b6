// Package stats accumulates the session counters (items scanned, orders
// completed, revenue) and persists the full record after every mutation.
package stats

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
)

// Service is the single process-wide stats instance. A missing or corrupt
// persisted record is never fatal: the service logs and starts from zeros.
// Persistence failures are likewise logged and never block the caller.
type Service struct {
	store Store

	mu  sync.Mutex
	rec domain.StatsRecord
}

// NewService loads the persisted record (defaults to zeros on any failure).
func NewService(ctx context.Context, store Store) *Service {
	s := &Service{store: store}

	rec, err := store.Load(ctx)
	switch {
	case err == nil:
		s.rec = rec
	case errors.Is(err, ErrNotFound):
		// First run, keep zeros.
	default:
		log.Printf("stats load failed, starting from zeros: %v", err)
	}
	return s
}

// AddItemsScanned increments the scanned-items counter.
func (s *Service) AddItemsScanned(ctx context.Context, n int64) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.rec.ItemsScanned += n
	rec := s.rec
	s.mu.Unlock()
	s.persist(ctx, rec)
}

// AddOrdersCompleted increments the completed-orders counter.
func (s *Service) AddOrdersCompleted(ctx context.Context, n int64) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.rec.OrdersCompleted += n
	rec := s.rec
	s.mu.Unlock()
	s.persist(ctx, rec)
}

// AddRevenue adds a completed order's total. Revenue only ever increases;
// non-positive amounts are ignored.
func (s *Service) AddRevenue(ctx context.Context, amount float64) {
	if amount <= 0 {
		return
	}
	s.mu.Lock()
	s.rec.TotalRevenue += amount
	rec := s.rec
	s.mu.Unlock()
	s.persist(ctx, rec)
}

// Reset zeroes all counters and persists the empty record.
func (s *Service) Reset(ctx context.Context) {
	s.mu.Lock()
	s.rec = domain.StatsRecord{}
	rec := s.rec
	s.mu.Unlock()
	s.persist(ctx, rec)
}

// Snapshot returns a copy of the current record.
func (s *Service) Snapshot() domain.StatsRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec
}

func (s *Service) persist(ctx context.Context, rec domain.StatsRecord) {
	if err := s.store.Save(ctx, rec); err != nil {
		log.Printf("stats persist failed: %v", err)
	}
}
