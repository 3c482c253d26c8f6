// Package catalog provides products from a remote REST service with a local fallback,
// plus the pure sorting and title search used by every listing.
package catalog

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, matching the remote service and the browser storefront.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog record. The catalog is read-only from the storefront's point of view.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Image       string          `json:"image"`
	Rating      *Rating         `json:"rating,omitempty"`
}

// Rating is the optional review summary the remote service attaches.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Find returns the first product with the given id.
func Find(items []Product, id int) (Product, bool) {
	for _, p := range items {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func validate(items []Product) error {
	if len(items) == 0 {
		return errEmptyPayload
	}
	for _, p := range items {
		if err := validateOne(p); err != nil {
			return err
		}
	}
	return nil
}

func validateOne(p Product) error {
	if p.ID == 0 && p.Title == "" {
		return errEmptyPayload
	}
	if p.Price.IsNegative() {
		return errNegativePrice
	}
	return nil
}
