package invoice

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/go-faster/errors"
)

var htmlTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Invoice {{.Number}}</title>
<style>
  body{font-family:Arial, sans-serif; padding:20px}
  table{width:100%; border-collapse:collapse}
  td,th{padding:8px; border-bottom:1px solid #ddd}
  .center{text-align:center}
  .right{text-align:right}
  h2{margin-top:0}
</style>
</head>
<body>
  <h2>Invoice: {{.Store}}</h2>
  <div>Invoice no. {{.Number}}</div>
  <div>Generated: {{.Generated}}</div>
  <table>
    <thead><tr><th>Item</th><th class="center">Qty</th><th class="right">Unit</th><th class="right">Total</th></tr></thead>
    <tbody>
{{- range .Rows}}
      <tr><td>{{.Title}}</td><td class="center">{{.Quantity}}</td><td class="right">{{.Unit}}</td><td class="right">{{.Total}}</td></tr>
{{- end}}
    </tbody>
    <tfoot>
      <tr><td colspan="3" class="right">Subtotal</td><td class="right" id="subtotal">{{.Subtotal}}</td></tr>
      <tr><td colspan="3" class="right">Tax (10%)</td><td class="right" id="tax">{{.Tax}}</td></tr>
      <tr><td colspan="3" class="right"><strong>Grand Total</strong></td><td class="right" id="grand"><strong>{{.Grand}}</strong></td></tr>
    </tfoot>
  </table>
  <p>Thank you for your purchase!</p>
</body></html>
`))

type htmlRow struct {
	Title    string
	Quantity int
	Unit     string
	Total    string
}

type htmlView struct {
	Store     string
	Number    string
	Generated string
	Rows      []htmlRow
	Subtotal  string
	Tax       string
	Grand     string
}

// RenderHTML writes a printable invoice document. Product titles are escaped.
func RenderHTML(w io.Writer, inv Invoice, opts Options) error {
	view := htmlView{
		Store:     opts.storeName(),
		Number:    inv.Number,
		Generated: opts.timestamp(inv.GeneratedAt),
		Subtotal:  opts.money(inv.Subtotal),
		Tax:       opts.money(inv.Tax),
		Grand:     opts.money(inv.GrandTotal),
	}
	for _, l := range inv.Lines {
		view.Rows = append(view.Rows, htmlRow{
			Title:    l.Title,
			Quantity: l.Quantity,
			Unit:     opts.money(l.UnitPrice),
			Total:    opts.money(l.LineTotal),
		})
	}
	if err := htmlTemplate.Execute(w, view); err != nil {
		return errors.Wrap(err, "render invoice html")
	}
	return nil
}

// HTML is RenderHTML into a string.
func HTML(inv Invoice, opts Options) (string, error) {
	var b strings.Builder
	if err := RenderHTML(&b, inv, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

var markdownEscaper = strings.NewReplacer(`|`, `\|`, "\n", " ", "*", `\*`, "_", `\_`)

// RenderMarkdown returns the invoice as a Markdown document for terminal display.
func RenderMarkdown(inv Invoice, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Invoice: %s\n\n", markdownEscaper.Replace(opts.storeName()))
	fmt.Fprintf(&b, "Invoice no. **%s**  \nGenerated: %s\n\n", inv.Number, opts.timestamp(inv.GeneratedAt))
	b.WriteString("| Item | Qty | Unit | Total |\n")
	b.WriteString("|:-----|:---:|-----:|------:|\n")
	for _, l := range inv.Lines {
		fmt.Fprintf(&b, "| %s | %d | %s | %s |\n",
			markdownEscaper.Replace(l.Title), l.Quantity, opts.money(l.UnitPrice), opts.money(l.LineTotal))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "| | |\n|---:|---:|\n")
	fmt.Fprintf(&b, "| Subtotal | %s |\n", opts.money(inv.Subtotal))
	fmt.Fprintf(&b, "| Tax (10%%) | %s |\n", opts.money(inv.Tax))
	fmt.Fprintf(&b, "| **Grand Total** | **%s** |\n\n", opts.money(inv.GrandTotal))
	b.WriteString("Thank you for your purchase!\n")
	return b.String()
}
