// Package logging provides config-driven categorized file-based logging for the storefront.
// Logs are written to .shop/logs/ with separate files per category.
// Logging is controlled by logging.debug_mode in .shop/config.yaml - when false, no logs are written.
// The terminal belongs to the TUI, so nothing here ever writes to stdout.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a log file.
type Category string

const (
	CategoryBoot    Category = "boot"    // Boot/initialization
	CategoryCatalog Category = "catalog" // Remote and fallback catalog fetches
	CategoryCart    Category = "cart"    // Cart mutations and hydration
	CategoryStore   Category = "store"   // Key-value storage and watcher
	CategoryAccount Category = "account" // Credential store
	CategoryInvoice Category = "invoice" // Invoice issuing and rendering
	CategoryBrowser Category = "browser" // Headless Chrome bridge
	CategoryUI      Category = "ui"      // TUI command dispatch
)

// Options is the logging section of .shop/config.yaml (see config.LoggingConfig.Options).
type Options struct {
	DebugMode  bool
	Level      string
	JSONFormat bool
	Categories map[string]bool
}

// Logger wraps a zap sugared logger bound to one category file.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	opts      Options
	optsMu    sync.RWMutex
	level     = zapcore.InfoLevel
)

// Initialize sets up the logging directory under baseDir (normally the .shop directory).
// Safe to call more than once; every call closes existing loggers first.
func Initialize(baseDir string, o Options) error {
	if baseDir == "" {
		return fmt.Errorf("base directory required")
	}

	CloseAll()
	CloseAudit()

	optsMu.Lock()
	opts = o
	level = parseLevel(o.Level)
	logsDir = filepath.Join(baseDir, "logs")
	optsMu.Unlock()

	if !o.DebugMode {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", logsDir, err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== storefront logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", level)
	if len(o.Categories) > 0 {
		enabled := 0
		for cat, on := range o.Categories {
			if on {
				enabled++
			}
			boot.Debug("Category '%s': %v", cat, on)
		}
		boot.Info("Enabled categories: %d/%d", enabled, len(o.Categories))
	} else {
		boot.Info("All categories enabled (no category filter)")
	}
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func IsDebugMode() bool {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled reports whether category writes anything. Categories missing
// from the filter are on.
func IsCategoryEnabled(category Category) bool {
	optsMu.RLock()
	defer optsMu.RUnlock()

	if !opts.DebugMode {
		return false
	}
	on, listed := opts.Categories[string(category)]
	return on || !listed
}

// Get returns the logger for category, opening its file on first use.
// Disabled categories get a logger that drops everything.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := open(category)
	if l.sugar != nil {
		loggers[category] = l
	}
	return l
}

// open creates <logsDir>/<date>_<category>.log. Callers hold loggersMu.
func open(category Category) *Logger {
	optsMu.RLock()
	dir, jsonFormat, lvl := logsDir, opts.JSONFormat, level
	optsMu.RUnlock()
	if dir == "" {
		return &Logger{category: category}
	}

	name := filepath.Join(dir, time.Now().Format("2006-01-02")+"_"+string(category)+".log")
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] %s disabled: %v\n", category, err)
		return &Logger{category: category}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)
	if !jsonFormat {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(file), lvl)
	return &Logger{category: category, file: file, sugar: zap.New(core).Named(string(category)).Sugar()}
}

func (l *Logger) Debug(format string, args ...any) {
	if l.sugar != nil {
		l.sugar.Debugf(format, args...)
	}
}

func (l *Logger) Info(format string, args ...any) {
	if l.sugar != nil {
		l.sugar.Infof(format, args...)
	}
}

func (l *Logger) Warn(format string, args ...any) {
	if l.sugar != nil {
		l.sugar.Warnf(format, args...)
	}
}

func (l *Logger) Error(format string, args ...any) {
	if l.sugar != nil {
		l.sugar.Errorf(format, args...)
	}
}

// CloseAll syncs and closes every category file. Call at shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for cat, l := range loggers {
		_ = l.sugar.Sync()
		_ = l.file.Close()
		delete(loggers, cat)
	}
}

// Shorthands for the categories the storefront logs to most. Each is a no-op when
// its category is disabled.

func Boot(format string, args ...any)         { Get(CategoryBoot).Info(format, args...) }
func Catalog(format string, args ...any)      { Get(CategoryCatalog).Info(format, args...) }
func Cart(format string, args ...any)         { Get(CategoryCart).Info(format, args...) }
func CartDebug(format string, args ...any)    { Get(CategoryCart).Debug(format, args...) }
func Store(format string, args ...any)        { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...any)   { Get(CategoryStore).Debug(format, args...) }
func Account(format string, args ...any)      { Get(CategoryAccount).Info(format, args...) }
func AccountDebug(format string, args ...any) { Get(CategoryAccount).Debug(format, args...) }
func Invoice(format string, args ...any)      { Get(CategoryInvoice).Info(format, args...) }
func Browser(format string, args ...any)      { Get(CategoryBrowser).Info(format, args...) }
func BrowserDebug(format string, args ...any) { Get(CategoryBrowser).Debug(format, args...) }
func UIDebug(format string, args ...any)      { Get(CategoryUI).Debug(format, args...) }

// Timer logs how long an operation took, at debug level.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop logs and returns the elapsed time.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	Get(t.category).Debug("%s took %v", t.op, d)
	return d
}
