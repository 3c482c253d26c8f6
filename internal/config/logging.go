package config

import "storefront/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" env:"SHOP_LOG_LEVEL"`    // debug, info, warn, error
	Format     string          `yaml:"format"`                        // json, text
	DebugMode  bool            `yaml:"debug_mode" env:"SHOP_DEBUG"`   // Master toggle - false = no logging (production)
	Categories map[string]bool `yaml:"categories"`                    // Per-category toggles
}

// Options converts the section into logging.Initialize options. Category gating
// happens in logging.IsCategoryEnabled.
func (c LoggingConfig) Options() logging.Options {
	return logging.Options{
		DebugMode:  c.DebugMode,
		Level:      c.Level,
		JSONFormat: c.Format == "json",
		Categories: c.Categories,
	}
}
