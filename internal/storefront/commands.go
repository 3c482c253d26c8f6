package storefront

import (
	"storefront/internal/account"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/invoice"
)

// Command is a user action. Each concrete type below is handled by App.Dispatch.
type Command interface {
	Name() string
}

// LoadCatalog fetches the catalog (remote first, then fallback). Refresh refetches
// even when a catalog is already loaded.
type LoadCatalog struct{ Refresh bool }

// ShowProduct resolves a single product for the detail view.
type ShowProduct struct{ ID int }

// SortCatalog changes the listing order.
type SortCatalog struct{ Mode catalog.SortMode }

// SearchCatalog returns title suggestions. Limit <= 0 means the default list size.
type SearchCatalog struct {
	Query string
	Limit int
}

// AddToCart adds Quantity units of a catalog product.
type AddToCart struct {
	ProductID int
	Quantity  int
}

// ChangeQuantity is the +/- control on a cart line.
type ChangeQuantity struct {
	ProductID int
	Delta     int
}

// RemoveFromCart drops a line.
type RemoveFromCart struct{ ProductID int }

// ClearCart empties the cart once the user has confirmed.
type ClearCart struct{ Confirmed bool }

// Checkout issues an invoice for the current cart.
type Checkout struct{}

// Signup creates an account.
type Signup struct {
	FullName, Email, Password, Confirm string
}

// Login signs in.
type Login struct {
	Email, Password string
}

// Logout signs out.
type Logout struct{}

func (LoadCatalog) Name() string    { return "load_catalog" }
func (ShowProduct) Name() string    { return "show_product" }
func (SortCatalog) Name() string    { return "sort_catalog" }
func (SearchCatalog) Name() string  { return "search_catalog" }
func (AddToCart) Name() string      { return "add_to_cart" }
func (ChangeQuantity) Name() string { return "change_quantity" }
func (RemoveFromCart) Name() string { return "remove_from_cart" }
func (ClearCart) Name() string      { return "clear_cart" }
func (Checkout) Name() string       { return "checkout" }
func (Signup) Name() string         { return "signup" }
func (Login) Name() string          { return "login" }
func (Logout) Name() string         { return "logout" }

// Result carries whatever a command produced. Fields a command does not touch are zero.
// Cart and Totals are always filled so every view can refresh its badge.
type Result struct {
	Products []catalog.Product
	Product  *catalog.Product
	Cart     []cart.Line
	Totals   cart.Totals
	Invoice  *invoice.Invoice
	User     *account.CurrentUser
	// Message is the one-line notice shown after the action.
	Message string
}
