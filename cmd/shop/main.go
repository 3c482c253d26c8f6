// Command shop is the storefront: a terminal shop with a persistent cart, a product
// catalog fetched from a remote API with a local fallback, and invoice generation.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	workspace string
	timeout   time.Duration
	ephemeral bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shop",
	Short: "shop - a terminal storefront",
	Long: `shop is a small storefront for the terminal.

Products come from the configured catalog API, falling back to a bundled
catalog when it is unreachable. The cart and accounts persist in
.shop/storefront.db, so they survive restarts and are shared by every shop
process running against the same workspace.

Run without arguments to start the interactive storefront.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal; it logs to .shop/logs only.
		if cmd.Use == "shop" && cmd.CalledAs() == "shop" {
			logger = zap.NewNop()
			return nil
		}

		config := zap.NewProductionConfig()
		config.Encoding = "console"
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runInteractive,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep cart and accounts in memory for this run only")

	// Catalog flags
	catalogCmd.Flags().StringVar(&catalogSort, "sort", "", "Sort order: price-asc, price-desc, title-asc, title-desc")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum suggestions (default 5)")

	// Cart subcommands
	cartAddCmd.Flags().StringVar(&cartQty, "qty", "1", "Quantity to add")
	cartClearCmd.Flags().BoolVarP(&cartClearYes, "yes", "y", false, "Confirm clearing the cart")
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartIncCmd)
	cartCmd.AddCommand(cartDecCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)

	// Checkout flags
	checkoutCmd.Flags().StringVar(&checkoutHTML, "html", "", "Write the invoice as HTML to this file")
	checkoutCmd.Flags().StringVar(&checkoutPDF, "pdf", "", "Print the invoice to PDF through headless Chrome")

	// Account subcommands
	accountSignupCmd.Flags().StringVar(&accountName, "name", "", "Full name")
	accountSignupCmd.Flags().StringVar(&accountEmail, "email", "", "Email address")
	accountSignupCmd.Flags().StringVar(&accountPassword, "password", "", "Password (at least 6 characters)")
	accountSignupCmd.Flags().StringVar(&accountConfirm, "confirm", "", "Password confirmation")
	accountLoginCmd.Flags().StringVar(&accountEmail, "email", "", "Email address")
	accountLoginCmd.Flags().StringVar(&accountPassword, "password", "", "Password")
	accountCmd.AddCommand(accountSignupCmd)
	accountCmd.AddCommand(accountLoginCmd)
	accountCmd.AddCommand(accountLogoutCmd)
	accountCmd.AddCommand(accountWhoamiCmd)

	// Add commands to root
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
