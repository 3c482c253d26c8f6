// Package invoice turns a cart into an itemized invoice with a flat 10% tax and
// renders it as printable HTML or Markdown.
package invoice

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/logging"
)

// ErrEmptyCart is returned by Build when there is nothing to invoice.
var ErrEmptyCart = errors.New("cart is empty")

// DefaultCurrency is the symbol prefixed to every amount.
const DefaultCurrency = "₨"

// TaxRate is applied to the subtotal.
var TaxRate = decimal.New(10, -2)

// Line is one invoice row.
type Line struct {
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Invoice is the computed document. It is never persisted.
type Invoice struct {
	Number      string          `json:"number"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Lines       []Line          `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
}

// Build computes the invoice for lines. Tax is the subtotal times TaxRate rounded
// to two decimals, and the grand total is subtotal plus that rounded tax.
func Build(lines []cart.Line, now time.Time) (Invoice, error) {
	if len(lines) == 0 {
		return Invoice{}, ErrEmptyCart
	}

	inv := Invoice{
		Number:      newNumber(),
		GeneratedAt: now,
		Lines:       make([]Line, 0, len(lines)),
		Subtotal:    decimal.Zero,
	}
	for _, l := range lines {
		total := l.Total()
		inv.Lines = append(inv.Lines, Line{
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
			LineTotal: total,
		})
		inv.Subtotal = inv.Subtotal.Add(total)
	}
	inv.Tax = inv.Subtotal.Mul(TaxRate).Round(2)
	inv.GrandTotal = inv.Subtotal.Add(inv.Tax)

	logging.Invoice("Built invoice %s: %d lines, grand total %s", inv.Number, len(inv.Lines), inv.GrandTotal.StringFixed(2))
	return inv, nil
}

func newNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "INV-" + strings.ToUpper(id[:8])
}

// FormatMoney renders d with the default currency symbol and two decimals.
func FormatMoney(d decimal.Decimal) string {
	return DefaultCurrency + d.StringFixed(2)
}

// Options control presentation only; they never change amounts.
type Options struct {
	StoreName string
	Currency  string
	// Location for the generation timestamp; nil means the invoice's own zone.
	Location *time.Location
}

func (o Options) money(d decimal.Decimal) string {
	if o.Currency == "" {
		return FormatMoney(d)
	}
	return o.Currency + d.StringFixed(2)
}

func (o Options) storeName() string {
	if o.StoreName == "" {
		return "My Store"
	}
	return o.StoreName
}

func (o Options) timestamp(t time.Time) string {
	if o.Location != nil {
		t = t.In(o.Location)
	}
	return t.Format("2006-01-02 15:04:05")
}
