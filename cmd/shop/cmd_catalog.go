package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/cmd/shop/ui"
	"storefront/internal/catalog"
	"storefront/internal/storefront"
)

var (
	catalogSort string
	searchLimit int
)

// catalogCmd lists every product
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the product catalog",
	Long: `Fetches the catalog from the configured API. When the API is unreachable the
local fallback catalog is shown instead.

Example:
  shop catalog --sort price-asc`,
	RunE: runCatalog,
}

// productCmd shows one product
var productCmd = &cobra.Command{
	Use:   "product [id]",
	Short: "Show a single product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

// searchCmd prints title suggestions
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Suggest products whose title contains the query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	mode, err := catalog.ParseSortMode(catalogSort)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.app.Dispatch(ctx, storefront.LoadCatalog{}); err != nil {
		return err
	}
	res, err := s.app.Dispatch(ctx, storefront.SortCatalog{Mode: mode})
	if err != nil {
		return err
	}
	logger.Debug("Catalog loaded", zap.Int("products", len(res.Products)), zap.String("sort", string(mode)))

	fmt.Print(s.productTable(fmt.Sprintf("Catalog (%s)", mode.Label()), res.Products))
	fmt.Printf("%d products\n", len(res.Products))
	return nil
}

func runProduct(cmd *cobra.Command, args []string) error {
	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.app.Dispatch(ctx, storefront.ShowProduct{ID: id})
	if err != nil {
		return err
	}

	p := res.Product
	fmt.Printf("#%d %s\n", p.ID, p.Title)
	fmt.Printf("Price:    %s\n", s.money(p.Price))
	if p.Category != "" {
		fmt.Printf("Category: %s\n", p.Category)
	}
	if p.Rating != nil {
		fmt.Printf("Rating:   %.1f (%d reviews)\n", p.Rating.Rate, p.Rating.Count)
	}
	if p.Description != "" {
		fmt.Printf("\n%s\n", p.Description)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	ctx, cancel := commandContext()
	defer cancel()

	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.app.Dispatch(ctx, storefront.LoadCatalog{}); err != nil {
		return err
	}
	res, err := s.app.Dispatch(ctx, storefront.SearchCatalog{Query: query, Limit: searchLimit})
	if err != nil {
		return err
	}

	if len(res.Products) == 0 {
		fmt.Printf("No products match %q\n", query)
		return nil
	}
	for _, p := range res.Products {
		fmt.Printf("%4d  %s\n", p.ID, p.Title)
	}
	return nil
}

func parseProductID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid product id %q", arg)
	}
	return id, nil
}

func (s *shop) money(d decimal.Decimal) string {
	return s.cfg.Invoice.Currency + d.StringFixed(2)
}

func (s *shop) productTable(title string, items []catalog.Product) string {
	table := ui.NewSimpleTable(title, []string{"ID", "Title", "Category", "Price"})
	table.AlignRight(0, 3)
	table.MaxWidth(1, 48)
	for _, p := range items {
		table.AddRow(strconv.Itoa(p.ID), p.Title, p.Category, s.money(p.Price))
	}
	return table.View(ui.StylesFor(s.cfg.UI.Theme))
}
