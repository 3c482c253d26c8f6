package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/cmd/shop/ui"
	"storefront/internal/browser"
	"storefront/internal/invoice"
	"storefront/internal/storefront"
)

var (
	checkoutHTML string
	checkoutPDF  string
)

// checkoutCmd issues an invoice for the current cart
var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Generate an invoice for the cart",
	Long: `Builds an invoice for the current cart: subtotal, 10% tax and grand total.
The cart is left as it is.

Examples:
  shop checkout
  shop checkout --html invoice.html
  shop checkout --pdf invoice.pdf   # requires Chrome or Chromium`,
	RunE: runCheckout,
}

func runCheckout(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.app.Dispatch(ctx, storefront.Checkout{})
	if err != nil {
		return err
	}
	inv := *res.Invoice
	opts := s.invoiceOptions()
	logger.Info("Invoice generated", zap.String("number", inv.Number), zap.String("grand_total", inv.GrandTotal.StringFixed(2)))

	out, err := ui.RenderMarkdown(invoice.RenderMarkdown(inv, opts), s.cfg.UI.Theme, 100)
	if err != nil {
		return fmt.Errorf("failed to render invoice: %w", err)
	}
	fmt.Print(out)

	if checkoutHTML == "" && checkoutPDF == "" {
		return nil
	}

	html, err := invoice.HTML(inv, opts)
	if err != nil {
		return fmt.Errorf("failed to render invoice HTML: %w", err)
	}

	if checkoutHTML != "" {
		if err := writeFile(checkoutHTML, []byte(html)); err != nil {
			return err
		}
		fmt.Printf("Invoice written to %s\n", checkoutHTML)
	}

	if checkoutPDF != "" {
		session := browser.NewSession(s.browserConfig())
		defer session.Close()

		pdf, err := browser.NewPrinter(session).PDF(ctx, html)
		if err != nil {
			return fmt.Errorf("failed to print invoice: %w", err)
		}
		if err := writeFile(checkoutPDF, pdf); err != nil {
			return err
		}
		fmt.Printf("Invoice printed to %s\n", checkoutPDF)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
