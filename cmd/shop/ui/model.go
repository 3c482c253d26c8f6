package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"storefront/internal/cart"
	"storefront/internal/invoice"
	"storefront/internal/logging"
	"storefront/internal/storefront"
)

type page int

const (
	pageCatalog page = iota
	pageProduct
	pageCart
	pageSearch
	pageInvoice
)

func (p page) String() string {
	switch p {
	case pageProduct:
		return "product"
	case pageCart:
		return "cart"
	case pageSearch:
		return "search"
	case pageInvoice:
		return "invoice"
	default:
		return "catalog"
	}
}

// Options configure the storefront UI.
type Options struct {
	// Theme is a ui.theme setting: auto, dark or light.
	Theme   string
	Invoice invoice.Options
	// InvoiceDir receives invoices saved with w. Empty disables saving.
	InvoiceDir string
	// Changes signals that another process wrote the storage; the cart is reloaded.
	Changes <-chan struct{}
}

type bootMsg struct{ state storefront.BootState }

type resultMsg struct {
	cmd storefront.Command
	res storefront.Result
	err error
}

type storageChangedMsg struct{}

type invoiceSavedMsg struct {
	path string
	err  error
}

// Model is the root bubbletea model. Pages report intents; Model turns them into
// storefront commands executed off the update loop.
type Model struct {
	ctx  context.Context
	app  *storefront.App
	opts Options

	styles  Styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	page     page
	prev     page
	width    int
	height   int
	loading  bool
	greeting string
	totals   cart.Totals
	status   string
	failed   bool

	catalog CatalogPageModel
	product ProductPageModel
	cart    CartPageModel
	search  SearchPageModel
	invoice InvoicePageModel
}

// New creates the storefront UI over app.
func New(ctx context.Context, app *storefront.App, opts Options) Model {
	styles := StylesFor(opts.Theme)
	currency := opts.Invoice.Currency
	if currency == "" {
		currency = invoice.DefaultCurrency
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Prompt

	m := Model{
		ctx:     ctx,
		app:     app,
		opts:    opts,
		styles:  styles,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		loading: true,
		catalog: NewCatalogPageModel(styles, currency),
		product: NewProductPageModel(styles, currency),
		cart:    NewCartPageModel(styles, currency),
		search:  NewSearchPageModel(styles, currency),
		invoice: NewInvoicePageModel(styles, opts.Theme),
	}
	m.setCart(app.Cart().Snapshot(), app.Cart().Totals())
	m.catalog.SetMode(app.SortMode())
	return m
}

// Init starts the boot sequence and the storage watch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.boot(), m.waitForChange())
}

func (m Model) boot() tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		return bootMsg{state: app.Boot(ctx)}
	}
}

func (m Model) dispatch(c storefront.Command) tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		res, err := app.Dispatch(ctx, c)
		return resultMsg{cmd: c, res: res, err: err}
	}
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.opts.Changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storageChangedMsg{}
	}
}

func (m *Model) setCart(lines []cart.Line, totals cart.Totals) {
	m.totals = totals
	m.cart.SetLines(lines, totals)
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

func (m *Model) refreshGreeting() {
	m.greeting, _ = m.app.Accounts().Greeting()
}

func (m *Model) goTo(p page) {
	if p != m.page {
		m.prev = m.page
	}
	m.page = p
	logging.UIDebug("page %s", p)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bootMsg:
		m.loading = false
		m.refreshGreeting()
		m.setCart(m.app.Cart().Snapshot(), m.app.Cart().Totals())
		if msg.state.CatalogErr != nil {
			m.setStatus("Catalog unavailable: "+msg.state.CatalogErr.Error(), true)
			return m, nil
		}
		return m, m.catalog.SetProducts(msg.state.Products)

	case resultMsg:
		return m.handleResult(msg)

	case storageChangedMsg:
		res := m.app.ReloadCart()
		m.setCart(res.Cart, res.Totals)
		m.refreshGreeting()
		return m, m.waitForChange()

	case invoiceSavedMsg:
		if msg.err != nil {
			m.invoice.SetNotice(m.styles.Error.Render("Save failed: " + msg.err.Error()))
		} else {
			m.invoice.SetNotice(m.styles.Success.Render("Saved " + msg.path))
		}
		return m, nil

	case debounceMsg:
		if m.search.Settled(msg) && m.search.Query() != "" {
			return m, m.dispatch(storefront.SearchCatalog{Query: m.search.Query()})
		}
		return m, nil

	case sortRequest:
		return m, m.dispatch(storefront.SortCatalog{Mode: msg.Mode})
	case openProductRequest:
		return m, m.dispatch(storefront.ShowProduct{ID: msg.ID})
	case addRequest:
		return m, m.dispatch(storefront.AddToCart{ProductID: msg.ProductID, Quantity: msg.Quantity})
	case changeQtyRequest:
		return m, m.dispatch(storefront.ChangeQuantity{ProductID: msg.ProductID, Delta: msg.Delta})
	case removeRequest:
		return m, m.dispatch(storefront.RemoveFromCart{ProductID: msg.ProductID})
	case clearRequest:
		return m, m.dispatch(storefront.ClearCart{Confirmed: true})
	case checkoutRequest:
		return m, m.dispatch(storefront.Checkout{})
	case saveInvoiceRequest:
		return m, m.saveInvoice()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updatePage(msg)
}

func (m Model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	m.setCart(msg.res.Cart, msg.res.Totals)
	if msg.err != nil {
		m.setStatus(msg.err.Error(), true)
		if _, ok := msg.cmd.(storefront.LoadCatalog); ok {
			m.loading = false
		}
		return m, nil
	}
	if msg.res.Message != "" {
		m.setStatus(msg.res.Message, false)
	}

	switch msg.cmd.(type) {
	case storefront.LoadCatalog:
		m.loading = false
		m.setStatus(fmt.Sprintf("Loaded %d products", len(msg.res.Products)), false)
		return m, m.catalog.SetProducts(msg.res.Products)
	case storefront.SortCatalog:
		m.catalog.SetMode(m.app.SortMode())
		return m, m.catalog.SetProducts(msg.res.Products)
	case storefront.SearchCatalog:
		m.search.SetSuggestions(msg.res.Products)
	case storefront.ShowProduct:
		cmd := m.product.SetProduct(*msg.res.Product)
		m.goTo(pageProduct)
		return m, cmd
	case storefront.Checkout:
		inv := *msg.res.Invoice
		m.invoice.SetInvoice(inv, invoice.RenderMarkdown(inv, m.opts.Invoice))
		m.setStatus("Invoice "+inv.Number, false)
		m.goTo(pageInvoice)
	}
	return m, nil
}

func (m Model) capturing() bool {
	switch m.page {
	case pageProduct, pageSearch:
		return true
	case pageCart:
		return m.cart.Confirming()
	default:
		return m.catalog.Capturing()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if msg.String() == "esc" && m.page != pageCatalog && !m.cart.Confirming() {
		m.back()
		return m, nil
	}

	if !m.capturing() {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "c":
			m.goTo(pageCart)
			return m, nil
		case "f":
			m.goTo(pageSearch)
			return m, m.search.Focus()
		case "r":
			if m.page == pageCatalog {
				m.loading = true
				m.setStatus("Refreshing catalog…", false)
				return m, tea.Batch(m.spinner.Tick, m.dispatch(storefront.LoadCatalog{Refresh: true}))
			}
		}
	}

	return m.updatePage(msg)
}

func (m *Model) back() {
	switch m.page {
	case pageProduct:
		if m.prev == pageSearch {
			m.page = pageSearch
			return
		}
		m.page = pageCatalog
	case pageInvoice:
		m.page = pageCart
	default:
		m.page = pageCatalog
	}
}

func (m Model) updatePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.page {
	case pageProduct:
		m.product, cmd = m.product.Update(msg)
	case pageCart:
		m.cart, cmd = m.cart.Update(msg)
	case pageSearch:
		m.search, cmd = m.search.Update(msg)
	case pageInvoice:
		m.invoice, cmd = m.invoice.Update(msg)
	default:
		m.catalog, cmd = m.catalog.Update(msg)
	}
	return m, cmd
}

func (m Model) saveInvoice() tea.Cmd {
	inv, ok := m.invoice.Invoice()
	dir, opts := m.opts.InvoiceDir, m.opts.Invoice
	return func() tea.Msg {
		if !ok {
			return invoiceSavedMsg{err: invoice.ErrEmptyCart}
		}
		if dir == "" {
			return invoiceSavedMsg{err: fmt.Errorf("no invoice directory configured")}
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return invoiceSavedMsg{err: err}
		}
		path := filepath.Join(dir, inv.Number+".html")
		f, err := os.Create(path)
		if err != nil {
			return invoiceSavedMsg{err: err}
		}
		if err := invoice.RenderHTML(f, inv, opts); err != nil {
			_ = f.Close()
			return invoiceSavedMsg{err: err}
		}
		return invoiceSavedMsg{path: path, err: f.Close()}
	}
}

func (m *Model) setSize(w, h int) {
	m.width = w
	m.height = h
	m.help.Width = w

	// Header, divider and footer take three lines.
	bodyH := max(h-3, 3)
	m.catalog.SetSize(w, bodyH)
	m.product.SetSize(w, bodyH)
	m.cart.SetSize(w, bodyH)
	m.search.SetSize(w, bodyH)
	m.invoice.SetSize(w, bodyH)
}

// View renders the UI.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), m.bodyView(), m.footerView())
}

func (m Model) headerView() string {
	name := m.opts.Invoice.StoreName
	if name == "" {
		name = "My Store"
	}
	parts := []string{m.styles.Header.Render(name)}
	if m.greeting != "" {
		parts = append(parts, m.styles.Bold.Render(" "+m.greeting+" "))
	}
	parts = append(parts, " ", m.styles.CartBadge(m.totals.ItemCount))
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) bodyView() string {
	switch m.page {
	case pageProduct:
		return m.product.View()
	case pageCart:
		return m.cart.View()
	case pageSearch:
		return m.search.View()
	case pageInvoice:
		return m.invoice.View()
	default:
		if m.loading && len(m.catalog.Products()) == 0 {
			return m.styles.Content.Render(m.spinner.View() + " Loading catalog…")
		}
		return m.catalog.View()
	}
}

func (m Model) footerView() string {
	var status string
	if m.status != "" {
		if m.failed {
			status = m.styles.Error.Render(m.status) + "  "
		} else {
			status = m.styles.Success.Render(m.status) + "  "
		}
	}
	return m.styles.Rule(m.width) + "\n" + m.styles.Footer.Render(status+m.help.ShortHelpView(m.keys.forPage(m.page)))
}
