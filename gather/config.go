package gather

import "time"

// Config controls browser lifecycle and capture limits.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string `yaml:"remote_url"`

	// NavigateTimeout bounds navigation plus page load. Default: 30s.
	NavigateTimeout time.Duration `yaml:"navigate_timeout"`

	// Desktop disables mobile emulation. Audits run on a desktop
	// presentation are marked not-applicable downstream.
	Desktop bool `yaml:"desktop"`

	// ViewportWidth/Height/ScaleFactor describe the emulated device.
	// Defaults: 412x823 @ 1.75 (a mid-range phone).
	ViewportWidth  int     `yaml:"viewport_width"`
	ViewportHeight int     `yaml:"viewport_height"`
	ScaleFactor    float64 `yaml:"scale_factor"`

	// MinimumLegibleSize is the font-size floor in CSS pixels below
	// which a text node counts as failing. Default: 12.
	MinimumLegibleSize float64 `yaml:"minimum_legible_size"`

	// MaxAnalyzedNodes caps how many failing text nodes get their style
	// provenance resolved via CDP. Failing text beyond the cap is still
	// counted, just not attributed. Default: 50.
	MaxAnalyzedNodes int `yaml:"max_analyzed_nodes"`
}

func (c *Config) defaults() {
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 412
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 823
	}
	if c.ScaleFactor <= 0 {
		c.ScaleFactor = 1.75
	}
	if c.MinimumLegibleSize <= 0 {
		c.MinimumLegibleSize = 12
	}
	if c.MaxAnalyzedNodes <= 0 {
		c.MaxAnalyzedNodes = 50
	}
}
