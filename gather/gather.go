// Package gather captures page artifacts for the legibility audits. It
// drives headless Chrome via CDP: device emulation, stylesheet-header
// tracking, a flattened DOM walk with per-text-node computed font
// sizes, and style-provenance resolution for failing nodes.
//
// gather captures, it does not judge. The artifact.Bundle it produces
// is an immutable snapshot consumed by the fontsize audit.
package gather

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/mkmetko/lighthouse/artifact"
)

// Gatherer captures artifact bundles from live pages.
type Gatherer struct {
	cfg    Config
	mgr    *manager
	logger *slog.Logger
}

// New creates a Gatherer. Call Start before Capture.
func New(cfg Config, logger *slog.Logger) *Gatherer {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Gatherer{cfg: cfg, mgr: newManager(cfg, logger), logger: logger}
}

// Start launches (or connects to) the browser.
func (g *Gatherer) Start(ctx context.Context) error {
	return g.mgr.start(ctx)
}

// Close shuts the browser down.
func (g *Gatherer) Close() {
	g.mgr.close()
}

// Capture visits pageURL and returns its artifact bundle.
func (g *Gatherer) Capture(ctx context.Context, pageURL string) (*artifact.Bundle, error) {
	page, err := g.mgr.openPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	// Subscribe before CSSEnable: enabling replays styleSheetAdded for
	// sheets that loaded during navigation.
	sheets := trackStyleSheets(ctx, page)

	if err := (proto.DOMEnable{}).Call(page); err != nil {
		return nil, fmt.Errorf("gather: enable DOM domain: %w", err)
	}
	if err := (proto.CSSEnable{}).Call(page); err != nil {
		return nil, fmt.Errorf("gather: enable CSS domain: %w", err)
	}

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("gather: page info: %w", err)
	}

	outerHTML, err := serializeDOM(ctx, page)
	if err != nil {
		return nil, err
	}
	metas, err := parseMetaElements(outerHTML)
	if err != nil {
		return nil, fmt.Errorf("gather: parse meta elements: %w", err)
	}

	fontSize, err := g.collectFontSize(page, sheets)
	if err != nil {
		return nil, err
	}

	g.logger.Info("gather: captured page",
		"url", info.URL,
		"total_text", fontSize.TotalTextLength,
		"failing_text", fontSize.FailingTextLength,
		"analyzed_nodes", len(fontSize.AnalyzedFailingNodes))

	return &artifact.Bundle{
		URL:                  artifact.URL{FinalURL: info.URL},
		MetaElements:         metas,
		FontSize:             *fontSize,
		TestedAsMobileDevice: !g.cfg.Desktop,
	}, nil
}

func serializeDOM(ctx context.Context, page *rod.Page) (string, error) {
	res, err := page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("gather: serialize DOM: %w", err)
	}
	return res.Value.Str(), nil
}
