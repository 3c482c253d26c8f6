package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"storefront/internal/browser"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/invoice"
	"storefront/internal/kv"
	"storefront/internal/logging"
	"storefront/internal/storefront"
)

// shop is everything one command invocation needs, opened from the workspace.
type shop struct {
	ws    string
	cfg   *config.Config
	store kv.Store
	app   *storefront.App
}

func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// openShop loads config, initializes file logging, opens storage and wires the App.
func openShop() (*shop, error) {
	ws := resolveWorkspace()

	cfg, err := config.LoadWorkspace(ws)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logging.Initialize(filepath.Join(ws, config.DefaultWorkspaceDir), cfg.Logging.Options()); err != nil {
		logger.Warn("File logging disabled", zap.Error(err))
	}

	var store kv.Store
	if ephemeral {
		store = kv.NewMemory()
	} else {
		dbPath := cfg.DatabasePath(ws)
		logger.Debug("Opening storage", zap.String("path", dbPath))
		store, err = kv.OpenSQLite(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
	}

	source := &catalog.FallbackSource{
		Primary:  catalog.NewHTTPSource(cfg.Catalog.Endpoint, cfg.GetCatalogTimeout()),
		Fallback: &catalog.FileSource{Path: cfg.Catalog.FallbackPath},
	}

	app := storefront.New(storefront.Deps{
		Source:  source,
		Storage: store,
		Locale:  cfg.LocaleTag(),
	})

	return &shop{ws: ws, cfg: cfg, store: store, app: app}, nil
}

func (s *shop) Close() {
	if err := s.store.Close(); err != nil {
		logger.Warn("Failed to close storage", zap.Error(err))
	}
	logging.CloseAll()
	logging.CloseAudit()
}

func (s *shop) invoiceOptions() invoice.Options {
	return invoice.Options{
		StoreName: s.cfg.Invoice.StoreName,
		Currency:  s.cfg.Invoice.Currency,
	}
}

func (s *shop) browserConfig() browser.Config {
	return browser.Config{
		Bin:               s.cfg.Browser.Bin,
		ControlURL:        s.cfg.Browser.ControlURL,
		Headless:          s.cfg.Browser.Headless,
		NavigationTimeout: s.cfg.GetNavigationTimeout(),
	}
}

// commandContext returns a context bounded by --timeout and cancelled on SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
