package catalog

import (
	"strings"

	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
)

// Catalog maps classifier labels to sellable products. The set is fixed at
// startup; lookups are case-insensitive and trim surrounding whitespace.
type Catalog struct {
	products []domain.Product
	excluded map[string]struct{}
}

// New builds a catalog from a fixed product list plus the non-product labels
// the classifier may emit (e.g. "empty").
func New(products []domain.Product, excludedLabels ...string) *Catalog {
	excluded := make(map[string]struct{}, len(excludedLabels))
	for _, l := range excludedLabels {
		excluded[normalize(l)] = struct{}{}
	}
	return &Catalog{
		products: products,
		excluded: excluded,
	}
}

// Default returns the two-product catalog the classifier was trained against.
func Default() *Catalog {
	return New([]domain.Product{
		{ID: 1, PrimaryName: "Coffee", SecondaryName: "Café", Price: 100, ClassifierLabel: "caffee"},
		{ID: 2, PrimaryName: "Water", SecondaryName: "Eau", Price: 30, ClassifierLabel: "water"},
	}, "empty")
}

// Match resolves a classifier label to a product.
func (c *Catalog) Match(label string) (domain.Product, bool) {
	needle := normalize(label)
	for _, p := range c.products {
		if normalize(p.ClassifierLabel) == needle {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Excluded reports whether the label names a known non-product class.
func (c *Catalog) Excluded(label string) bool {
	_, ok := c.excluded[normalize(label)]
	return ok
}

// Products returns a copy of the product list, in catalog order.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// ByID resolves a product by its catalog id.
func (c *Catalog) ByID(id int64) (domain.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
