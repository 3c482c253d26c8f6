package invoice

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"storefront/internal/cart"
)

func line(id int, title, price string, qty int) cart.Line {
	return cart.Line{ProductID: id, Title: title, Price: decimal.RequireFromString(price), Quantity: qty}
}

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestBuild_EmptyCart(t *testing.T) {
	_, err := Build(nil, fixedNow)
	assert.True(t, errors.Is(err, ErrEmptyCart))
}

func TestBuild_Totals(t *testing.T) {
	tests := []struct {
		name                  string
		lines                 []cart.Line
		subtotal, tax, grand  string
	}{
		{
			name:     "single line",
			lines:    []cart.Line{line(1, "Bag", "109.95", 1)},
			subtotal: "109.95", tax: "11.00", grand: "120.95",
		},
		{
			name:     "tax rounds half up",
			lines:    []cart.Line{line(1, "Pin", "0.05", 1)},
			subtotal: "0.05", tax: "0.01", grand: "0.06",
		},
		{
			name:     "multiple lines",
			lines:    []cart.Line{line(1, "Shirt", "22.3", 3), line(2, "Tee", "12.99", 2)},
			subtotal: "92.88", tax: "9.29", grand: "102.17",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := Build(tt.lines, fixedNow)
			require.NoError(t, err)

			assert.Equal(t, tt.subtotal, inv.Subtotal.StringFixed(2))
			assert.Equal(t, tt.tax, inv.Tax.StringFixed(2))
			assert.Equal(t, tt.grand, inv.GrandTotal.StringFixed(2))
			assert.True(t, inv.GrandTotal.Equal(inv.Subtotal.Add(inv.Tax)))
			assert.Len(t, inv.Lines, len(tt.lines))
			assert.Equal(t, fixedNow, inv.GeneratedAt)
		})
	}
}

func TestBuild_LinesAndNumber(t *testing.T) {
	inv, err := Build([]cart.Line{line(1, "Shirt", "22.30", 3)}, fixedNow)
	require.NoError(t, err)

	require.Len(t, inv.Lines, 1)
	assert.Equal(t, "Shirt", inv.Lines[0].Title)
	assert.Equal(t, 3, inv.Lines[0].Quantity)
	assert.Equal(t, "66.90", inv.Lines[0].LineTotal.StringFixed(2))

	assert.True(t, strings.HasPrefix(inv.Number, "INV-"))
	assert.Len(t, inv.Number, len("INV-")+8)

	other, err := Build([]cart.Line{line(1, "Shirt", "22.30", 3)}, fixedNow)
	require.NoError(t, err)
	assert.NotEqual(t, inv.Number, other.Number)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "₨22.30", FormatMoney(decimal.RequireFromString("22.3")))
	assert.Equal(t, "₨0.00", FormatMoney(decimal.Zero))
	assert.Equal(t, "$5.00", Options{Currency: "$"}.money(decimal.NewFromInt(5)))
}

// textByID finds the concatenated text of the element with the given id.
func textByID(n *html.Node, id string) (string, bool) {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return collectText(n), true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s, ok := textByID(c, id); ok {
			return s, true
		}
	}
	return "", false
}

func collectText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(collectText(c))
	}
	return b.String()
}

func hasElement(n *html.Node, tag string) bool {
	if n.Type == html.ElementNode && n.Data == tag {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasElement(c, tag) {
			return true
		}
	}
	return false
}

func TestRenderHTML(t *testing.T) {
	inv, err := Build([]cart.Line{
		line(1, `<script>alert("x")</script> & Co`, "10", 2),
	}, fixedNow)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, inv, Options{StoreName: "Corner Shop"}))

	doc, err := html.Parse(&buf)
	require.NoError(t, err)

	assert.False(t, hasElement(doc, "script"), "titles must be escaped")

	sub, ok := textByID(doc, "subtotal")
	require.True(t, ok)
	assert.Equal(t, "₨20.00", sub)

	tax, _ := textByID(doc, "tax")
	assert.Equal(t, "₨2.00", tax)

	grand, _ := textByID(doc, "grand")
	assert.Equal(t, "₨22.00", grand)

	out, err := HTML(inv, Options{StoreName: "Corner Shop"})
	require.NoError(t, err)
	assert.Contains(t, out, "Invoice: Corner Shop")
	assert.Contains(t, out, "2026-03-14 09:26:53")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderMarkdown(t *testing.T) {
	inv, err := Build([]cart.Line{line(1, "Pipe | Wrench", "4.50", 2)}, fixedNow)
	require.NoError(t, err)

	md := RenderMarkdown(inv, Options{})
	assert.Contains(t, md, "# Invoice: My Store")
	assert.Contains(t, md, `Pipe \| Wrench`)
	assert.Contains(t, md, "| Subtotal | ₨9.00 |")
	assert.Contains(t, md, "| Tax (10%) | ₨0.90 |")
	assert.Contains(t, md, "**₨9.90**")
}
