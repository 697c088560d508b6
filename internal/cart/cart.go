// Package cart holds the in-memory order being built at the counter. The
// cart knows nothing about stats or persistence; the coordinating caller owns
// those side effects.
package cart

import (
	"sync"
	"time"

	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
)

// Cart is an ordered list of added items with a running total. Items get
// fresh monotonic ids; checkout removes the items it billed, explicit clear
// empties everything. Safe for concurrent use.
type Cart struct {
	mu     sync.Mutex
	nextID int64
	items  []domain.CartItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddItem appends a new item for the product and returns it. confidence is
// the classifier score that produced the scan; pass 0 for a manual add.
func (c *Cart) AddItem(p domain.Product, confidence float64) domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	item := domain.CartItem{
		ID:            c.nextID,
		ProductID:     p.ID,
		PrimaryName:   p.PrimaryName,
		SecondaryName: p.SecondaryName,
		Price:         p.Price,
		Confidence:    confidence,
		AddedAt:       time.Now(),
	}
	c.items = append(c.items, item)
	return item
}

// RemoveItem removes the first item with the given id. Returns false if the
// id is absent; that is not an error.
func (c *Cart) RemoveItem(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Total is the sum of the remaining items' prices.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, item := range c.items {
		total += item.Price
	}
	return total
}

// Snapshot returns a copy of the items and their total under one lock, so a
// concurrent add cannot land between the two reads.
func (c *Cart) Snapshot() ([]domain.CartItem, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	var total float64
	for _, item := range c.items {
		total += item.Price
	}
	return out, total
}

// RemoveAll removes the items with the given ids. Items added after the
// caller took its snapshot are not touched.
func (c *Cart) RemoveAll(ids []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := c.items[:0]
	for _, item := range c.items {
		if !drop[item.ID] {
			kept = append(kept, item)
		}
	}
	c.items = kept
}

// Items returns a snapshot copy of the cart contents, in insertion order.
func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
