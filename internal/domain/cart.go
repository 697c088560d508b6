package domain

import "time"

// CartItem is a single scanned (or manually added) line in the cart. IDs are
// assigned by the cart from a monotonic counter and are unique per session.
type CartItem struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"productId"`
	PrimaryName   string    `json:"primaryName"`
	SecondaryName string    `json:"secondaryName"`
	Price         float64   `json:"price"`
	Confidence    float64   `json:"confidence,omitempty"`
	AddedAt       time.Time `json:"addedAt"`
}
