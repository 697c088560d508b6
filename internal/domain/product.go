package domain

// Product is one sellable entry of the fixed catalog. The set is defined at
// startup and never mutated.
type Product struct {
	ID              int64   `json:"id"`
	PrimaryName     string  `json:"primaryName"`
	SecondaryName   string  `json:"secondaryName"`
	Price           float64 `json:"price"`
	ClassifierLabel string  `json:"classifierLabel"`
}
