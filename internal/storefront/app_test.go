package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/language"

	"storefront/internal/account"
	"storefront/internal/catalog"
	"storefront/internal/invoice"
	"storefront/internal/kv"
)

// fakeSource serves a fixed catalog; extra holds products only FetchOne knows about.
type fakeSource struct {
	items []catalog.Product
	extra []catalog.Product
	err   error
}

func (s *fakeSource) FetchCatalog(ctx context.Context) ([]catalog.Product, error) {
	return s.items, s.err
}

func (s *fakeSource) FetchOne(ctx context.Context, id int) (catalog.Product, bool, error) {
	if s.err != nil {
		return catalog.Product{}, false, s.err
	}
	if p, ok := catalog.Find(s.items, id); ok {
		return p, true, nil
	}
	p, ok := catalog.Find(s.extra, id)
	return p, ok, nil
}

func p(id int, title, price string) catalog.Product {
	return catalog.Product{ID: id, Title: title, Price: decimal.RequireFromString(price)}
}

func newTestApp(t *testing.T, src catalog.Source) (*App, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	app := New(Deps{
		Source:         src,
		Storage:        mem,
		Locale:         language.English,
		Clock:          func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		AccountOptions: []account.Option{account.WithBcryptCost(bcrypt.MinCost)},
	})
	return app, mem
}

func defaultCatalog() *fakeSource {
	return &fakeSource{items: []catalog.Product{
		p(1, "Backpack", "109.95"),
		p(2, "T-Shirt", "22.30"),
		p(3, "Jacket", "55.99"),
	}}
}

func TestDispatch_LoadAndSort(t *testing.T) {
	app, _ := newTestApp(t, defaultCatalog())
	ctx := context.Background()

	res, err := app.Dispatch(ctx, LoadCatalog{})
	require.NoError(t, err)
	assert.Len(t, res.Products, 3)

	res, err = app.Dispatch(ctx, SortCatalog{Mode: catalog.SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Products[0].ID)
	assert.Equal(t, catalog.SortPriceAsc, app.SortMode())

	res, err = app.Dispatch(ctx, SortCatalog{Mode: catalog.SortTitleAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Backpack", "Jacket", "T-Shirt"}, []string{res.Products[0].Title, res.Products[1].Title, res.Products[2].Title})

	// A later load keeps the chosen order.
	res, err = app.Dispatch(ctx, LoadCatalog{})
	require.NoError(t, err)
	assert.Equal(t, "Backpack", res.Products[0].Title)
}

func TestDispatch_LoadCatalogUnavailable(t *testing.T) {
	src := &catalog.FallbackSource{
		Primary:  &fakeSource{err: errors.New("offline")},
		Fallback: &fakeSource{err: errors.New("missing file")},
	}
	app, _ := newTestApp(t, src)

	_, err := app.Dispatch(context.Background(), LoadCatalog{})
	assert.True(t, errors.Is(err, catalog.ErrCatalogUnavailable))
}

func TestDispatch_CartFlow(t *testing.T) {
	app, mem := newTestApp(t, defaultCatalog())
	ctx := context.Background()
	_, err := app.Dispatch(ctx, LoadCatalog{})
	require.NoError(t, err)

	res, err := app.Dispatch(ctx, AddToCart{ProductID: 2, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "Product added to Cart 🛒", res.Message)
	assert.Equal(t, 2, res.Totals.ItemCount)

	res, err = app.Dispatch(ctx, AddToCart{ProductID: 1, Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Totals.ItemCount, "zero quantity normalizes to one")

	res, err = app.Dispatch(ctx, ChangeQuantity{ProductID: 2, Delta: -1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Totals.ItemCount)
	assert.Equal(t, 2, res.Cart[0].ProductID, "position preserved")

	res, err = app.Dispatch(ctx, RemoveFromCart{ProductID: 1})
	require.NoError(t, err)
	require.Len(t, res.Cart, 1)

	raw, ok, err := mem.Get(kv.KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":2,"title":"T-Shirt","price":22.3,"image":"","qty":1}]`, raw)
}

func TestDispatch_AddUnknownProduct(t *testing.T) {
	app, _ := newTestApp(t, defaultCatalog())
	_, err := app.Dispatch(context.Background(), AddToCart{ProductID: 404, Quantity: 1})
	assert.True(t, errors.Is(err, ErrProductNotFound))
	assert.Equal(t, 0, app.Cart().Len())
}

func TestDispatch_AddFetchesOneWhenCatalogNotLoaded(t *testing.T) {
	src := defaultCatalog()
	src.extra = []catalog.Product{p(77, "Hidden", "1")}
	app, _ := newTestApp(t, src)

	_, err := app.Dispatch(context.Background(), AddToCart{ProductID: 77, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, app.Cart().Len())
}

func TestDispatch_ClearRequiresConfirmation(t *testing.T) {
	app, _ := newTestApp(t, defaultCatalog())
	ctx := context.Background()
	_, err := app.Dispatch(ctx, AddToCart{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	res, err := app.Dispatch(ctx, ClearCart{})
	assert.True(t, errors.Is(err, ErrConfirmationRequired))
	assert.Len(t, res.Cart, 1, "cart untouched without confirmation")

	res, err = app.Dispatch(ctx, ClearCart{Confirmed: true})
	require.NoError(t, err)
	assert.Empty(t, res.Cart)
}

func TestDispatch_Checkout(t *testing.T) {
	app, _ := newTestApp(t, defaultCatalog())
	ctx := context.Background()

	_, err := app.Dispatch(ctx, Checkout{})
	assert.True(t, errors.Is(err, invoice.ErrEmptyCart))

	_, err = app.Dispatch(ctx, AddToCart{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	res, err := app.Dispatch(ctx, Checkout{})
	require.NoError(t, err)
	require.NotNil(t, res.Invoice)
	assert.Equal(t, "120.95", res.Invoice.GrandTotal.StringFixed(2))
	assert.Equal(t, 2026, res.Invoice.GeneratedAt.Year())
	assert.Len(t, res.Cart, 1, "checkout does not empty the cart")
}

func TestDispatch_ShowProduct(t *testing.T) {
	app, _ := newTestApp(t, defaultCatalog())
	ctx := context.Background()

	res, err := app.Dispatch(ctx, ShowProduct{ID: 3})
	require.NoError(t, err)
	require.NotNil(t, res.Product)
	assert.Equal(t, "Jacket", res.Product.Title)

	_, err = app.Dispatch(ctx, ShowProduct{ID: 99})
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestDispatch_ShowProductFallsBackToLoadedCatalog(t *testing.T) {
	src := defaultCatalog()
	app, _ := newTestApp(t, src)
	ctx := context.Background()
	_, err := app.Dispatch(ctx, LoadCatalog{})
	require.NoError(t, err)

	src.err = errors.New("went offline")
	res, err := app.Dispatch(ctx, ShowProduct{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Backpack", res.Product.Title)
}

func TestDispatch_Search(t *testing.T) {
	app, _ := newTestApp(t, defaultCatalog())
	ctx := context.Background()
	_, err := app.Dispatch(ctx, LoadCatalog{})
	require.NoError(t, err)

	res, err := app.Dispatch(ctx, SearchCatalog{Query: "JACK"})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, 3, res.Products[0].ID)
}

func TestDispatch_Accounts(t *testing.T) {
	app, _ := newTestApp(t, defaultCatalog())
	ctx := context.Background()

	res, err := app.Dispatch(ctx, Signup{FullName: "Ada Lovelace", Email: "ada@x", Password: "engine", Confirm: "engine"})
	require.NoError(t, err)
	assert.Equal(t, "Hi, Ada", res.Message)

	_, err = app.Dispatch(ctx, Logout{})
	require.NoError(t, err)
	_, ok := app.Accounts().Current()
	assert.False(t, ok)

	_, err = app.Dispatch(ctx, Login{Email: "ada@x", Password: "nope"})
	assert.True(t, errors.Is(err, account.ErrInvalidCredentials))

	res, err = app.Dispatch(ctx, Login{Email: "ADA@x", Password: "engine"})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, 1, res.User.ID)
}

type unknownCommand struct{}

func (unknownCommand) Name() string { return "unknown" }

func TestDispatch_UnknownCommand(t *testing.T) {
	app, _ := newTestApp(t, defaultCatalog())
	_, err := app.Dispatch(context.Background(), unknownCommand{})
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}

func TestBoot(t *testing.T) {
	app, _ := newTestApp(t, defaultCatalog())
	_, err := app.Dispatch(context.Background(), Signup{FullName: "Grace", Email: "g@x", Password: "cobol60", Confirm: "cobol60"})
	require.NoError(t, err)

	state := app.Boot(context.Background())
	assert.NoError(t, state.CatalogErr)
	assert.Len(t, state.Products, 3)
	require.NotNil(t, state.User)
	assert.Equal(t, "Grace", state.User.Name)
}

func TestBoot_CatalogDownStillBoots(t *testing.T) {
	app, _ := newTestApp(t, &fakeSource{err: errors.New("down")})
	state := app.Boot(context.Background())
	assert.Error(t, state.CatalogErr)
	assert.Nil(t, state.User)
}

func TestReloadCart(t *testing.T) {
	app, mem := newTestApp(t, defaultCatalog())
	require.NoError(t, mem.Set(kv.KeyCart, `[{"id":9,"title":"Elsewhere","price":3,"image":"","qty":2}]`))

	res := app.ReloadCart()
	require.Len(t, res.Cart, 1)
	assert.Equal(t, 2, res.Totals.ItemCount)
}
