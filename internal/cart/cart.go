// Package cart is the authoritative shopping cart: an ordered list of lines,
// one per product, persisted in full after every mutation.
package cart

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"storefront/internal/catalog"
	"storefront/internal/kv"
	"storefront/internal/logging"
)

// Line is one product in the cart. Title, price and image are captured when the
// product is first added and are not refreshed from the catalog.
type Line struct {
	ProductID int             `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"qty"`
}

// Total is price × quantity.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals summarizes the cart.
type Totals struct {
	ItemCount int
	Subtotal  decimal.Decimal
}

// Store owns the cart lines. Every line has Quantity >= 1 and no two lines share a ProductID.
type Store struct {
	mu    sync.RWMutex
	kv    kv.Store
	lines []Line
}

// Open hydrates the cart from storage. A missing or corrupt record yields an empty cart.
func Open(store kv.Store) *Store {
	s := &Store{kv: store}
	s.lines = s.load()
	return s
}

func (s *Store) load() []Line {
	var stored []Line
	ok, err := kv.GetJSON(s.kv, kv.KeyCart, &stored)
	if err != nil {
		logging.Get(logging.CategoryCart).Warn("Discarding unreadable cart: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	lines := repair(stored)
	if len(lines) != len(stored) {
		logging.Get(logging.CategoryCart).Warn("Repaired stored cart: %d lines -> %d", len(stored), len(lines))
	}
	logging.CartDebug("Hydrated %d cart lines", len(lines))
	return lines
}

// repair drops non-positive lines and folds duplicate ids into their first occurrence.
func repair(stored []Line) []Line {
	out := make([]Line, 0, len(stored))
	index := make(map[int]int, len(stored))
	for _, l := range stored {
		if l.Quantity <= 0 {
			continue
		}
		if i, seen := index[l.ProductID]; seen {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// commit persists next and, on success, makes it the current cart.
// Callers hold s.mu.
func (s *Store) commit(next []Line) error {
	if next == nil {
		next = []Line{}
	}
	if err := kv.SetJSON(s.kv, kv.KeyCart, next); err != nil {
		return errors.Wrap(err, "failed to save cart")
	}
	s.lines = next
	return nil
}

func (s *Store) indexOf(productID int) int {
	return slices.IndexFunc(s.lines, func(l Line) bool { return l.ProductID == productID })
}

// Add puts quantity units of p in the cart. A quantity below 1 is treated as 1.
// An existing line grows in place; otherwise a new line is appended.
func (s *Store) Add(p catalog.Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.lines)
	if i := s.indexOf(p.ID); i >= 0 {
		next[i].Quantity += quantity
	} else {
		next = append(next, Line{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  quantity,
		})
	}
	if err := s.commit(next); err != nil {
		return err
	}
	logging.Cart("Added product %d x%d", p.ID, quantity)
	return nil
}

// ChangeQuantity adjusts a line by delta, removing it when the result drops to zero or below.
// Unknown ids are ignored.
func (s *Store) ChangeQuantity(productID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 || delta == 0 {
		return nil
	}

	next := slices.Clone(s.lines)
	next[i].Quantity += delta
	if next[i].Quantity <= 0 {
		next = slices.Delete(next, i, i+1)
	}
	if err := s.commit(next); err != nil {
		return err
	}
	logging.CartDebug("Changed product %d by %+d", productID, delta)
	return nil
}

// Merge folds lines from another cart into this one with a single write.
// Matching ids add their quantities; new ids are appended in the given order.
// Lines with a non-positive quantity are skipped.
func (s *Store) Merge(lines []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := repair(append(slices.Clone(s.lines), lines...))
	if err := s.commit(next); err != nil {
		return err
	}
	logging.Cart("Merged %d incoming cart lines", len(lines))
	return nil
}

// Remove deletes the line for productID if present.
func (s *Store) Remove(productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(s.lines), func(l Line) bool { return l.ProductID == productID })
	if err := s.commit(next); err != nil {
		return err
	}
	logging.CartDebug("Removed product %d", productID)
	return nil
}

// Clear empties the cart.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(nil); err != nil {
		return err
	}
	logging.Cart("Cart cleared")
	return nil
}

// Totals returns item count and subtotal.
func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return computeTotals(s.lines)
}

func computeTotals(lines []Line) Totals {
	t := Totals{Subtotal: decimal.Zero}
	for _, l := range lines {
		t.ItemCount += l.Quantity
		t.Subtotal = t.Subtotal.Add(l.Total())
	}
	return t
}

// Snapshot returns a copy of the lines in cart order.
func (s *Store) Snapshot() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lines)
}

// Len is the number of distinct lines.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// Reload re-reads the cart from storage, picking up writes from other processes.
// The read happens under the lock so a concurrent mutation cannot be overwritten
// by an older copy.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = s.load()
}

// ParseQuantity converts quantity-field input into a positive count.
// Leading digits are honored ("3 pcs" is 3); anything without a positive
// leading integer becomes 1.
func ParseQuantity(input string) int {
	s := strings.TrimPrefix(strings.TrimSpace(input), "+")
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		s = s[:end]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
