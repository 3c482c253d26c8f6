package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultWorkspaceDir is the per-project state directory, the analogue of a browser profile.
const DefaultWorkspaceDir = ".shop"

// Config holds all storefront configuration.
type Config struct {
	// Catalog source
	Catalog CatalogConfig `yaml:"catalog"`

	// Local key-value storage
	Storage StorageConfig `yaml:"storage"`

	// Invoice presentation
	Invoice InvoiceConfig `yaml:"invoice"`

	// Headless browser bridge
	Browser BrowserConfig `yaml:"browser"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`
}

// CatalogConfig configures where products come from.
type CatalogConfig struct {
	Endpoint     string `yaml:"endpoint" env:"SHOP_CATALOG_URL"`
	FallbackPath string `yaml:"fallback_path" env:"SHOP_FALLBACK_PATH"` // empty = bundled products.json
	Timeout      string `yaml:"timeout"`
	Locale       string `yaml:"locale" env:"SHOP_LOCALE"` // BCP 47 tag used for title collation
}

// StorageConfig configures the key-value store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" env:"SHOP_DB"` // relative paths resolve against the workspace dir
}

// InvoiceConfig configures invoice rendering.
type InvoiceConfig struct {
	StoreName string `yaml:"store_name"`
	Currency  string `yaml:"currency"`
}

// BrowserConfig configures the go-rod bridge.
type BrowserConfig struct {
	Bin               string `yaml:"bin" env:"SHOP_CHROME_BIN"`
	ControlURL        string `yaml:"control_url"` // attach to an existing Chrome instead of launching
	Headless          bool   `yaml:"headless"`
	NavigationTimeout string `yaml:"navigation_timeout"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme string `yaml:"theme" env:"SHOP_THEME"` // auto, dark, light
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Endpoint: "https://fakestoreapi.com/products",
			Timeout:  "10s",
			Locale:   "en",
		},
		Storage: StorageConfig{
			DatabasePath: "storefront.db",
		},
		Invoice: InvoiceConfig{
			StoreName: "MyStore",
			Currency:  "₨",
		},
		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: "30s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults if config file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWorkspace loads <workspace>/.shop/config.yaml.
func LoadWorkspace(workspace string) (*Config, error) {
	return Load(filepath.Join(workspace, DefaultWorkspaceDir, "config.yaml"))
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies SHOP_* environment variables on top of file values.
// Unset variables leave fields untouched.
func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse env: %w", err)
	}
	return nil
}

// GetCatalogTimeout returns the remote fetch timeout as a duration.
func (c *Config) GetCatalogTimeout() time.Duration {
	d, err := time.ParseDuration(c.Catalog.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetNavigationTimeout returns the browser navigation timeout as a duration.
func (c *Config) GetNavigationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Browser.NavigationTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LocaleTag returns the configured collation locale, English when unparseable.
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Catalog.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// DatabasePath resolves the storage path against the workspace state directory.
func (c *Config) DatabasePath(workspace string) string {
	if filepath.IsAbs(c.Storage.DatabasePath) {
		return c.Storage.DatabasePath
	}
	return filepath.Join(workspace, DefaultWorkspaceDir, c.Storage.DatabasePath)
}

// ValidThemes lists accepted ui.theme values.
var ValidThemes = []string{"auto", "dark", "light"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Catalog.Timeout != "" {
		if _, err := time.ParseDuration(c.Catalog.Timeout); err != nil {
			return fmt.Errorf("invalid catalog.timeout %q: %w", c.Catalog.Timeout, err)
		}
	}
	if c.Browser.NavigationTimeout != "" {
		if _, err := time.ParseDuration(c.Browser.NavigationTimeout); err != nil {
			return fmt.Errorf("invalid browser.navigation_timeout %q: %w", c.Browser.NavigationTimeout, err)
		}
	}
	if c.Catalog.Locale != "" {
		if _, err := language.Parse(c.Catalog.Locale); err != nil {
			return fmt.Errorf("invalid catalog.locale %q: %w", c.Catalog.Locale, err)
		}
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path must not be empty")
	}

	valid := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid ui.theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}
	return nil
}
