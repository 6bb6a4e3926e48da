package gather

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// manager owns the Chrome instance used for captures: launch (or
// connect to a remote), hand out pages, shut down. Captures are
// one-shot, so there is no recycling; a fresh manager per run is fine.
type manager struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

func newManager(cfg Config, logger *slog.Logger) *manager {
	return &manager{cfg: cfg, logger: logger}
}

func (m *manager) start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("gather: manager is closed")
	}
	if m.browser != nil {
		return nil
	}

	var wsURL string
	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		m.logger.Info("gather: connecting to remote browser", "url", wsURL)
	} else {
		l := launcher.New().Headless(true)
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("gather: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		m.logger.Info("gather: launched local chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("gather: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		m.logger.Warn("gather: ignore cert errors failed", "error", err)
	}

	m.browser = b
	return nil
}

// openPage creates a stealth tab, applies device emulation, navigates,
// and waits for load.
func (m *manager) openPage(ctx context.Context, pageURL string) (*rod.Page, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("gather: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("gather: create tab: %w", err)
	}

	if !m.cfg.Desktop {
		err := proto.EmulationSetDeviceMetricsOverride{
			Width:             m.cfg.ViewportWidth,
			Height:            m.cfg.ViewportHeight,
			DeviceScaleFactor: m.cfg.ScaleFactor,
			Mobile:            true,
		}.Call(page)
		if err != nil {
			page.Close()
			return nil, fmt.Errorf("gather: device emulation: %w", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("gather: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.logger.Warn("gather: wait load timeout", "url", pageURL, "error", err)
	}

	return page, nil
}

func (m *manager) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true

	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
}
