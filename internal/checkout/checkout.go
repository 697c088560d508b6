// Package checkout coordinates the counter flow: detections feed the cart,
// completing an order exports it, archives it, bumps the counters and clears
// the cart. Cart and Stats stay unaware of each other; this is the one place
// that ties them together.
package checkout

import (
	"context"
	"errors"
	"log"

	"github.com/elbara99/ai-counter-cafeteria/internal/cart"
	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
	"github.com/elbara99/ai-counter-cafeteria/internal/orders"
	"github.com/elbara99/ai-counter-cafeteria/internal/stats"
)

// ErrEmptyCart is returned when an order is completed or exported with
// nothing in the cart.
var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// Exporter writes the order and session artifacts.
type Exporter interface {
	ExportOrder(items []domain.CartItem, total float64) (domain.OrderExport, string, error)
	ExportSession(rec domain.StatsRecord) (string, error)
}

// Service drives the cart/stats/export flow. The archive is optional: a
// counter without a working database still completes orders.
type Service struct {
	cart     *cart.Cart
	stats    *stats.Service
	exporter Exporter
	archive  orders.RepoInterface
}

// NewService wires the coordinator. archive may be nil.
func NewService(c *cart.Cart, s *stats.Service, e Exporter, archive orders.RepoInterface) *Service {
	return &Service{
		cart:     c,
		stats:    s,
		exporter: e,
		archive:  archive,
	}
}

// HandleDetections consumes one detection batch: every detection becomes a
// cart item and counts as a scanned item. Returns the added items.
func (s *Service) HandleDetections(ctx context.Context, detections []domain.Detection) []domain.CartItem {
	if len(detections) == 0 {
		return nil
	}

	added := make([]domain.CartItem, 0, len(detections))
	for _, d := range detections {
		added = append(added, s.cart.AddItem(d.Product, d.Confidence))
	}
	s.stats.AddItemsScanned(ctx, int64(len(added)))
	return added
}

// CompleteOrder snapshots the cart, exports the order file, archives it,
// bumps ordersCompleted and totalRevenue by exactly the order total, and
// removes the snapshotted items. Items scanned while the order is being
// written stay in the cart for the next one. Nothing is mutated when the
// export fails.
func (s *Service) CompleteOrder(ctx context.Context) (domain.OrderExport, error) {
	items, total := s.cart.Snapshot()
	if len(items) == 0 {
		return domain.OrderExport{}, ErrEmptyCart
	}

	order, path, err := s.exporter.ExportOrder(items, total)
	if err != nil {
		return domain.OrderExport{}, err
	}
	log.Printf("order %s exported to %s", order.OrderID, path)

	if s.archive != nil {
		// Archive failure is logged but does not fail the sale.
		if err := s.archive.SaveOrder(ctx, order); err != nil {
			log.Printf("failed to archive order %s: %v", order.OrderID, err)
		}
	}

	s.stats.AddOrdersCompleted(ctx, 1)
	s.stats.AddRevenue(ctx, total)

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	s.cart.RemoveAll(ids)

	return order, nil
}

// ExportSession writes the aggregate stats snapshot and returns its path.
func (s *Service) ExportSession() (string, error) {
	return s.exporter.ExportSession(s.stats.Snapshot())
}
