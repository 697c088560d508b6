package domain

// StatsRecord holds the session counters. A single process-wide instance is
// kept in memory and rewritten to the store after every mutation.
type StatsRecord struct {
	ItemsScanned    int64   `json:"itemsScanned"`
	OrdersCompleted int64   `json:"ordersCompleted"`
	TotalRevenue    float64 `json:"totalRevenue"`
}
