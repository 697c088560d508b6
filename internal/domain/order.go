package domain

import "time"

// OrderExport represents the full order state at checkout time. It is a
// write-once artifact: built, serialized, archived, and not retained.
type OrderExport struct {
	OrderID    string     `json:"orderId"`
	Timestamp  time.Time  `json:"timestamp"`
	Items      []CartItem `json:"items"`
	Total      float64    `json:"total"`
	ItemsCount int        `json:"itemsCount"`
	Currency   string     `json:"currency"`
}
