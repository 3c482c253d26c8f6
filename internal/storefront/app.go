// Package storefront is the command layer between the presentation and the stores.
// Every user action is a Command dispatched through App, which owns the catalog
// source, cart, account store and the loaded catalog.
package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"storefront/internal/account"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/invoice"
	"storefront/internal/kv"
	"storefront/internal/logging"
)

var (
	// ErrProductNotFound is returned when a command names an id the catalog does not have.
	ErrProductNotFound = errors.New("product not found")
	// ErrConfirmationRequired is returned by ClearCart without Confirmed.
	ErrConfirmationRequired = errors.New("clear cart? confirmation required")
	// ErrUnknownCommand is returned for a Command type Dispatch does not handle.
	ErrUnknownCommand = errors.New("unknown command")
)

// Deps wires an App.
type Deps struct {
	Source  catalog.Source
	Storage kv.Store
	Locale  language.Tag
	// Clock stamps invoices; nil means time.Now.
	Clock          func() time.Time
	AccountOptions []account.Option
}

// App executes storefront commands.
type App struct {
	source   catalog.Source
	cart     *cart.Store
	accounts *account.Store
	locale   language.Tag
	now      func() time.Time

	mu       sync.RWMutex
	products []catalog.Product
	loaded   bool
	sortMode catalog.SortMode
}

// New creates an App and hydrates the cart from storage.
func New(deps Deps) *App {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	locale := deps.Locale
	if locale == language.Und {
		locale = language.English
	}
	return &App{
		source:   deps.Source,
		cart:     cart.Open(deps.Storage),
		accounts: account.NewStore(deps.Storage, deps.AccountOptions...),
		locale:   locale,
		now:      now,
	}
}

// Cart exposes the cart store for read-only use (snapshots, totals).
func (a *App) Cart() *cart.Store { return a.cart }

// Accounts exposes the account store for read-only use.
func (a *App) Accounts() *account.Store { return a.accounts }

// SortMode is the active listing order.
func (a *App) SortMode() catalog.SortMode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sortMode
}

// Products returns the loaded catalog in the active sort order.
func (a *App) Products() []catalog.Product {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return catalog.Sort(a.products, a.sortMode, a.locale)
}

// ReloadCart picks up cart writes from other processes.
func (a *App) ReloadCart() Result {
	a.cart.Reload()
	return a.withCart(Result{})
}

func (a *App) withCart(r Result) Result {
	r.Cart = a.cart.Snapshot()
	r.Totals = a.cart.Totals()
	return r
}

// Dispatch executes cmd.
func (a *App) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	logging.UIDebug("dispatch %s", cmd.Name())

	var (
		res Result
		err error
	)
	switch c := cmd.(type) {
	case LoadCatalog:
		res, err = a.loadCatalog(ctx, c)
	case ShowProduct:
		res, err = a.showProduct(ctx, c)
	case SortCatalog:
		res, err = a.sortCatalog(c)
	case SearchCatalog:
		res.Products = catalog.Search(a.loadedProducts(), c.Query, c.Limit)
	case AddToCart:
		res, err = a.addToCart(ctx, c)
	case ChangeQuantity:
		err = a.cart.ChangeQuantity(c.ProductID, c.Delta)
		a.audit(logging.AuditCartChange, err, "product_id", c.ProductID, "delta", c.Delta)
	case RemoveFromCart:
		err = a.cart.Remove(c.ProductID)
		a.audit(logging.AuditCartRemove, err, "product_id", c.ProductID)
	case ClearCart:
		if !c.Confirmed {
			return a.withCart(Result{}), ErrConfirmationRequired
		}
		err = a.cart.Clear()
		a.audit(logging.AuditCartClear, err)
		if err == nil {
			res.Message = "Cart cleared"
		}
	case Checkout:
		res, err = a.checkout()
	case Signup:
		res, err = a.signup(c)
	case Login:
		res, err = a.login(c)
	case Logout:
		err = a.accounts.Logout()
		a.audit(logging.AuditLogout, err)
	default:
		return Result{}, errors.Wrapf(ErrUnknownCommand, "%T", cmd)
	}

	if err != nil {
		logging.Get(logging.CategoryUI).Warn("%s failed: %v", cmd.Name(), err)
	}
	return a.withCart(res), err
}

func (a *App) audit(t logging.AuditEventType, err error, keysAndValues ...interface{}) {
	if err != nil {
		keysAndValues = append(keysAndValues, "error", err.Error())
	}
	logging.Audit().Record(t, err == nil, keysAndValues...)
}

func (a *App) loadedProducts() []catalog.Product {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.products
}

func (a *App) loadCatalog(ctx context.Context, c LoadCatalog) (Result, error) {
	a.mu.RLock()
	loaded := a.loaded
	a.mu.RUnlock()

	if !loaded || c.Refresh {
		items, err := a.source.FetchCatalog(ctx)
		a.audit(logging.AuditCatalogFetch, err)
		if err != nil {
			return Result{}, err
		}
		a.mu.Lock()
		a.products = items
		a.loaded = true
		a.mu.Unlock()
	}
	return Result{Products: a.Products()}, nil
}

func (a *App) showProduct(ctx context.Context, c ShowProduct) (Result, error) {
	p, ok, err := a.source.FetchOne(ctx, c.ID)
	if err != nil {
		// The loaded catalog may still know the product.
		cached, found := catalog.Find(a.loadedProducts(), c.ID)
		if !found {
			return Result{}, err
		}
		p, ok = cached, true
	}
	if !ok {
		return Result{}, errors.Wrapf(ErrProductNotFound, "id %d", c.ID)
	}
	return Result{Product: &p}, nil
}

func (a *App) sortCatalog(c SortCatalog) (Result, error) {
	a.mu.Lock()
	a.sortMode = c.Mode
	a.mu.Unlock()
	return Result{Products: a.Products()}, nil
}

func (a *App) addToCart(ctx context.Context, c AddToCart) (Result, error) {
	p, ok := catalog.Find(a.loadedProducts(), c.ProductID)
	if !ok {
		fetched, found, err := a.source.FetchOne(ctx, c.ProductID)
		if err != nil {
			return Result{}, err
		}
		if !found {
			return Result{}, errors.Wrapf(ErrProductNotFound, "id %d", c.ProductID)
		}
		p = fetched
	}

	err := a.cart.Add(p, c.Quantity)
	a.audit(logging.AuditCartAdd, err, "product_id", p.ID, "qty", c.Quantity)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "Product added to Cart 🛒"}, nil
}

func (a *App) checkout() (Result, error) {
	inv, err := invoice.Build(a.cart.Snapshot(), a.now())
	if err != nil {
		return Result{}, err
	}
	a.audit(logging.AuditCheckout, nil, "invoice", inv.Number, "grand_total", inv.GrandTotal.StringFixed(2))
	return Result{Invoice: &inv}, nil
}

func (a *App) signup(c Signup) (Result, error) {
	cur, err := a.accounts.Signup(c.FullName, c.Email, c.Password, c.Confirm)
	a.audit(logging.AuditSignup, err)
	if err != nil {
		return Result{}, err
	}
	return Result{User: &cur, Message: account.Greeting(cur.Name)}, nil
}

func (a *App) login(c Login) (Result, error) {
	cur, err := a.accounts.Login(c.Email, c.Password)
	if err != nil {
		a.audit(logging.AuditLoginFailed, err)
		return Result{}, err
	}
	a.audit(logging.AuditLogin, nil, "user_id", cur.ID)
	return Result{User: &cur, Message: account.Greeting(cur.Name)}, nil
}

// BootState is what the first screen needs.
type BootState struct {
	Products []catalog.Product
	User     *account.CurrentUser
	// CatalogErr is set when neither catalog source answered; the cart still works.
	CatalogErr error
}

// Boot loads the catalog and the signed-in identity concurrently.
func (a *App) Boot(ctx context.Context) BootState {
	timer := logging.StartTimer(logging.CategoryBoot, "Boot")
	defer timer.Stop()

	var state BootState
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := a.loadCatalog(gctx, LoadCatalog{})
		if err != nil {
			state.CatalogErr = err
			return nil
		}
		state.Products = res.Products
		return nil
	})
	g.Go(func() error {
		if cur, ok := a.accounts.Current(); ok {
			state.User = &cur
		}
		return nil
	})
	_ = g.Wait()

	logging.Boot("Boot complete: %d products, signed in=%v", len(state.Products), state.User != nil)
	return state
}
