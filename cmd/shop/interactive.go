package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"storefront/cmd/shop/ui"
	"storefront/internal/config"
	"storefront/internal/kv"
	"storefront/internal/logging"
)

// runInteractive starts the terminal storefront.
func runInteractive(cmd *cobra.Command, args []string) error {
	s, err := openShop()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := ui.Options{
		Theme:      s.cfg.UI.Theme,
		Invoice:    s.invoiceOptions(),
		InvoiceDir: filepath.Join(s.ws, config.DefaultWorkspaceDir, "invoices"),
	}

	// Pick up cart and sign-in changes made by other shop processes.
	if db, ok := s.store.(*kv.SQLite); ok {
		watcher, err := kv.NewWatcher(db.Path(), 200*time.Millisecond)
		if err != nil {
			logging.Get(logging.CategoryUI).Warn("Storage watch disabled: %v", err)
		} else {
			defer watcher.Close()
			if err := watcher.Start(ctx); err != nil {
				logging.Get(logging.CategoryUI).Warn("Storage watch disabled: %v", err)
			} else {
				opts.Changes = watcher.Changes()
			}
		}
	}

	logging.Boot("Starting interactive storefront in %s", s.ws)
	p := tea.NewProgram(ui.New(ctx, s.app, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("storefront UI failed: %w", err)
	}
	return nil
}
