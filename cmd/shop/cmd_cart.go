package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/cmd/shop/ui"
	"storefront/internal/cart"
	"storefront/internal/storefront"
)

var (
	cartQty      string
	cartClearYes bool
)

// cartCmd shows the cart; its subcommands change it
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	Long: `Shows the persistent cart. Changes made here are visible immediately to a
running interactive shop in the same workspace.`,
	RunE: runCartList,
}

var cartAddCmd = &cobra.Command{
	Use:   "add [id]",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartIncCmd = &cobra.Command{
	Use:   "inc [id]",
	Short: "Increase a line's quantity by one",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartStep(+1),
}

var cartDecCmd = &cobra.Command{
	Use:   "dec [id]",
	Short: "Decrease a line's quantity by one, removing it at zero",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartStep(-1),
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a line from the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart (requires --yes)",
	RunE:  runCartClear,
}

func runCartList(cmd *cobra.Command, args []string) error {
	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	printCart(s, s.app.Cart().Snapshot(), s.app.Cart().Totals())
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}
	qty := cart.ParseQuantity(cartQty)

	ctx, cancel := commandContext()
	defer cancel()

	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.app.Dispatch(ctx, storefront.AddToCart{ProductID: id, Quantity: qty})
	if err != nil {
		return err
	}
	logger.Debug("Added to cart", zap.Int("id", id), zap.Int("qty", qty))

	fmt.Println(res.Message)
	printCart(s, res.Cart, res.Totals)
	return nil
}

func runCartStep(delta int) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseProductID(args[0])
		if err != nil {
			return err
		}

		s, err := openShop()
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := s.app.Dispatch(context.Background(), storefront.ChangeQuantity{ProductID: id, Delta: delta})
		if err != nil {
			return err
		}
		printCart(s, res.Cart, res.Totals)
		return nil
	}
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}

	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.app.Dispatch(context.Background(), storefront.RemoveFromCart{ProductID: id})
	if err != nil {
		return err
	}
	printCart(s, res.Cart, res.Totals)
	return nil
}

func runCartClear(cmd *cobra.Command, args []string) error {
	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.app.Dispatch(context.Background(), storefront.ClearCart{Confirmed: cartClearYes})
	if err != nil {
		return fmt.Errorf("%w (rerun with --yes)", err)
	}
	fmt.Println(res.Message)
	return nil
}

func printCart(s *shop, lines []cart.Line, totals cart.Totals) {
	if len(lines) == 0 {
		fmt.Println("Your cart is empty")
		return
	}

	table := ui.NewSimpleTable("Cart", []string{"ID", "Title", "Qty", "Price", "Total"})
	table.AlignRight(0, 2, 3, 4)
	table.MaxWidth(1, 48)
	for _, l := range lines {
		table.AddRow(strconv.Itoa(l.ProductID), l.Title, strconv.Itoa(l.Quantity), s.money(l.Price), s.money(l.Total()))
	}
	fmt.Print(table.View(ui.StylesFor(s.cfg.UI.Theme)))
	fmt.Printf("%d items, subtotal %s\n", totals.ItemCount, s.money(totals.Subtotal))
}
