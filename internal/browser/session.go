// Package browser drives a headless Chrome through go-rod. The storefront uses it to
// print invoices to PDF and to read state out of a browser storefront's localStorage.
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"storefront/internal/logging"
)

// Config controls how Chrome is found or launched.
type Config struct {
	// Bin is the Chrome/Chromium executable. Empty lets rod locate (or fetch) one.
	Bin string
	// ControlURL attaches to an already running Chrome instead of launching.
	ControlURL        string
	Headless          bool
	NavigationTimeout time.Duration
}

// DefaultConfig returns a headless configuration.
func DefaultConfig() Config {
	return Config{Headless: true, NavigationTimeout: 30 * time.Second}
}

// Session owns one Chrome connection, started lazily and shared by Printer and Importer.
// The connection lives until Close; callers scope their own work with Browser.Context.
type Session struct {
	cfg      Config
	mu       sync.Mutex
	browser  *rod.Browser
	launched *launcher.Launcher

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession creates an unstarted session.
func NewSession(cfg Config) *Session {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = DefaultConfig().NavigationTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{cfg: cfg, ctx: ctx, cancel: cancel}
}

// Start connects to Chrome, launching it when no ControlURL is configured.
// ctx is only checked up front; the returned browser lives as long as the session.
func (s *Session) Start(ctx context.Context) (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "browser session closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.browser != nil {
		if _, err := s.browser.Version(); err == nil {
			return s.browser, nil
		}
		logging.Get(logging.CategoryBrowser).Warn("Stale browser connection detected, reconnecting")
		s.reset()
	}

	controlURL := s.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(s.cfg.Headless)
		if s.cfg.Bin != "" {
			l = l.Bin(s.cfg.Bin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, errors.Wrap(err, "launch chrome")
		}
		s.launched = l
		controlURL = url
		logging.Browser("Launched Chrome (headless=%v)", s.cfg.Headless)
	}

	// rod runs its event loop on this context.
	b := rod.New().ControlURL(controlURL).Context(s.ctx)
	if err := b.Connect(); err != nil {
		s.killLaunched()
		return nil, errors.Wrap(err, "connect to chrome")
	}
	s.browser = b
	logging.BrowserDebug("Connected to %s", controlURL)
	return b, nil
}

// Close disconnects and stops any Chrome this session launched.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	s.killLaunched()
	s.cancel()
	return err
}

// reset drops the current connection and any Chrome it launched. Callers hold s.mu.
func (s *Session) reset() {
	if s.browser != nil {
		_ = s.browser.Close()
		s.browser = nil
	}
	s.killLaunched()
}

func (s *Session) killLaunched() {
	if s.launched != nil {
		s.launched.Kill()
		s.launched = nil
	}
}

func (s *Session) timeout() time.Duration {
	return s.cfg.NavigationTimeout
}
