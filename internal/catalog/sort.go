package catalog

import (
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMode selects a catalog ordering.
type SortMode string

const (
	SortPriceAsc  SortMode = "price-asc"
	SortPriceDesc SortMode = "price-desc"
	SortTitleAsc  SortMode = "title-asc"
	SortTitleDesc SortMode = "title-desc"
	// SortDefault keeps catalog order.
	SortDefault SortMode = ""
)

// SortModes lists the recognized orderings in menu order.
func SortModes() []SortMode {
	return []SortMode{SortPriceAsc, SortPriceDesc, SortTitleAsc, SortTitleDesc}
}

// Label is the human-readable menu text for a mode.
func (m SortMode) Label() string {
	switch m {
	case SortPriceAsc:
		return "Price: low to high"
	case SortPriceDesc:
		return "Price: high to low"
	case SortTitleAsc:
		return "Title: A to Z"
	case SortTitleDesc:
		return "Title: Z to A"
	default:
		return "Default order"
	}
}

// ParseSortMode validates user input. The empty string selects catalog order.
func ParseSortMode(s string) (SortMode, error) {
	m := SortMode(strings.ToLower(strings.TrimSpace(s)))
	if m == SortDefault || slices.Contains(SortModes(), m) {
		return m, nil
	}
	return SortDefault, errors.Errorf("unknown sort mode %q (valid: price-asc, price-desc, title-asc, title-desc)", s)
}

// Sort returns a reordered copy of items. The input slice is never modified.
// Equal keys keep their relative input order in both directions, and an
// unrecognized mode returns the items in input order.
func Sort(items []Product, mode SortMode, tag language.Tag) []Product {
	out := slices.Clone(items)

	switch mode {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b Product) int { return b.Price.Cmp(a.Price) })
	case SortTitleAsc, SortTitleDesc:
		// A Collator is not safe for concurrent use; one per call.
		col := collate.New(tag)
		if mode == SortTitleAsc {
			slices.SortStableFunc(out, func(a, b Product) int { return col.CompareString(a.Title, b.Title) })
		} else {
			slices.SortStableFunc(out, func(a, b Product) int { return col.CompareString(b.Title, a.Title) })
		}
	}
	return out
}
