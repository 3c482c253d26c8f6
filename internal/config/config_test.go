package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/language"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Catalog.Endpoint != "https://fakestoreapi.com/products" {
		t.Errorf("expected fakestore endpoint, got %s", cfg.Catalog.Endpoint)
	}
	if cfg.Invoice.Currency != "₨" {
		t.Errorf("expected currency ₨, got %s", cfg.Invoice.Currency)
	}
	if cfg.Logging.DebugMode {
		t.Error("expected debug mode off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Catalog.Endpoint = "http://localhost:9999/products"
	cfg.Invoice.StoreName = "Corner Shop"
	cfg.Logging.Categories = map[string]bool{"cart": false}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Catalog.Endpoint != "http://localhost:9999/products" {
		t.Errorf("expected saved endpoint, got %s", loaded.Catalog.Endpoint)
	}
	if loaded.Invoice.StoreName != "Corner Shop" {
		t.Errorf("expected StoreName=Corner Shop, got %s", loaded.Invoice.StoreName)
	}
	if on, ok := loaded.Logging.Categories["cart"]; !ok || on {
		t.Errorf("expected cart category saved as disabled, got %v", loaded.Logging.Categories)
	}
	if opts := loaded.Logging.Options(); opts.DebugMode || opts.Categories["cart"] {
		t.Errorf("unexpected logging options %+v", opts)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.DatabasePath != "storefront.db" {
		t.Errorf("expected default database path, got %s", cfg.Storage.DatabasePath)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ui:\n  theme: dark\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("expected theme dark, got %s", cfg.UI.Theme)
	}
	if cfg.Catalog.Timeout != "10s" {
		t.Errorf("expected default timeout to survive, got %s", cfg.Catalog.Timeout)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("catalog: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetCatalogTimeout(); got != 10*time.Second {
		t.Errorf("expected 10s, got %v", got)
	}
	cfg.Catalog.Timeout = "garbage"
	if got := cfg.GetCatalogTimeout(); got != 10*time.Second {
		t.Errorf("expected fallback 10s, got %v", got)
	}
	cfg.Browser.NavigationTimeout = "2m"
	if got := cfg.GetNavigationTimeout(); got != 2*time.Minute {
		t.Errorf("expected 2m, got %v", got)
	}
}

func TestConfig_LocaleTag(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Catalog.Locale = "sv"
	if cfg.LocaleTag() != language.Swedish {
		t.Errorf("expected Swedish, got %v", cfg.LocaleTag())
	}
	cfg.Catalog.Locale = "!!"
	if cfg.LocaleTag() != language.English {
		t.Errorf("expected English fallback, got %v", cfg.LocaleTag())
	}
}

func TestConfig_DatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	ws := t.TempDir()

	want := filepath.Join(ws, ".shop", "storefront.db")
	if got := cfg.DatabasePath(ws); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	abs := filepath.Join(ws, "elsewhere.db")
	cfg.Storage.DatabasePath = abs
	if got := cfg.DatabasePath(ws); got != abs {
		t.Errorf("expected absolute path untouched, got %s", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, true},
		{"bad timeout", func(c *Config) { c.Catalog.Timeout = "soon" }, true},
		{"bad navigation timeout", func(c *Config) { c.Browser.NavigationTimeout = "later" }, true},
		{"bad locale", func(c *Config) { c.Catalog.Locale = "!!" }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"empty database", func(c *Config) { c.Storage.DatabasePath = "" }, true},
		{"light theme", func(c *Config) { c.UI.Theme = "light" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingConfig_Options(t *testing.T) {
	lc := LoggingConfig{Level: "debug", Format: "json", DebugMode: true}
	opts := lc.Options()
	if !opts.DebugMode || !opts.JSONFormat || opts.Level != "debug" {
		t.Errorf("unexpected options: %+v", opts)
	}
}
