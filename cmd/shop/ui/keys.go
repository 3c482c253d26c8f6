package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Back     key.Binding
	Cart     key.Binding
	Search   key.Binding
	Refresh  key.Binding
	Sort     key.Binding
	Filter   key.Binding
	Open     key.Binding
	QuickAdd key.Binding
	AddQty   key.Binding
	Inc      key.Binding
	Dec      key.Binding
	Remove   key.Binding
	Clear    key.Binding
	Checkout key.Binding
	Copy     key.Binding
	Save     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Cart:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cart")),
		Search:   key.NewBinding(key.WithKeys("f", "ctrl+f"), key.WithHelp("f", "search")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		QuickAdd: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add one")),
		AddQty:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add to cart")),
		Inc:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more")),
		Dec:      key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "less")),
		Remove:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Clear:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear")),
		Checkout: key.NewBinding(key.WithKeys("p", "enter"), key.WithHelp("p", "checkout")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy no.")),
		Save:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save html")),
	}
}

func (k keyMap) forPage(p page) []key.Binding {
	switch p {
	case pageProduct:
		return []key.Binding{k.AddQty, k.Back}
	case pageCart:
		return []key.Binding{k.Inc, k.Dec, k.Remove, k.Clear, k.Checkout, k.Back}
	case pageSearch:
		return []key.Binding{k.Open, k.Back}
	case pageInvoice:
		return []key.Binding{k.Copy, k.Save, k.Back}
	default:
		return []key.Binding{k.Open, k.QuickAdd, k.Sort, k.Filter, k.Search, k.Cart, k.Refresh, k.Quit}
	}
}
