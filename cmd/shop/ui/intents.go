package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"storefront/internal/catalog"
)

// Pages never touch the stores. They report what the user asked for with one of
// these messages and the root Model dispatches it.

type sortRequest struct{ Mode catalog.SortMode }

type openProductRequest struct{ ID int }

type addRequest struct {
	ProductID int
	Quantity  int
}

type changeQtyRequest struct {
	ProductID int
	Delta     int
}

type removeRequest struct{ ProductID int }

type clearRequest struct{}

type checkoutRequest struct{}

type saveInvoiceRequest struct{}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func money(currency string, d decimal.Decimal) string {
	return currency + d.StringFixed(2)
}
