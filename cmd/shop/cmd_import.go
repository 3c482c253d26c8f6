package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/browser"
	"storefront/internal/storefront"
)

// importCmd pulls cart and accounts out of a browser storefront
var importCmd = &cobra.Command{
	Use:   "import [url]",
	Short: "Import cart and accounts from a browser storefront",
	Long: `Opens the browser storefront at url in headless Chrome and reads its
localStorage (mycart_v1, users_v1, current_user). The cart lines are merged
into the local cart, accounts are added by email, and the browser's signed-in
user is adopted when nobody is signed in here.

Example:
  shop import http://localhost:5500/index.html`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// newStorageReader opens the reader used by import. Tests replace it.
var newStorageReader = func(cfg browser.Config) (storefront.StorageReader, func() error) {
	session := browser.NewSession(cfg)
	return browser.NewImporter(session), session.Close
}

func runImport(cmd *cobra.Command, args []string) error {
	url := args[0]

	ctx, cancel := commandContext()
	defer cancel()

	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	reader, closeReader := newStorageReader(s.browserConfig())
	defer func() {
		if err := closeReader(); err != nil {
			logger.Warn("Failed to close browser", zap.Error(err))
		}
	}()

	logger.Info("Importing browser state", zap.String("url", url))
	report, err := s.app.ImportBrowserState(ctx, reader, url)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d cart lines and %d accounts\n", report.CartLines, report.Accounts)
	if report.SignedIn {
		if greeting, ok := s.app.Accounts().Greeting(); ok {
			fmt.Println(greeting)
		}
	}
	for _, key := range report.SkippedKeys {
		fmt.Printf("Skipped unreadable %s\n", key)
	}
	return nil
}
