// Package auditor wires the legibility pipeline together:
//
//	gather (CDP capture) → viewport classification → fontsize audit → runstore
//
// A Runner owns the browser, the run database, and the audit
// configuration, and exposes the pipeline over HTTP (serve.go) and MCP
// (mcp.go).
package auditor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkmetko/lighthouse/artifact"
	"github.com/mkmetko/lighthouse/fontsize"
	"github.com/mkmetko/lighthouse/gather"
	"github.com/mkmetko/lighthouse/runstore"
	"github.com/mkmetko/lighthouse/viewport"
)

// CaptureFunc produces an artifact bundle for a URL. Production uses
// gather.Gatherer.Capture; tests inject canned bundles.
type CaptureFunc func(ctx context.Context, pageURL string) (*artifact.Bundle, error)

// Runner is the audit orchestrator.
type Runner struct {
	cfg      *Config
	logger   *slog.Logger
	store    *runstore.Store
	audit    *fontsize.Audit
	capture  CaptureFunc
	gatherer *gather.Gatherer
}

// Option customises a Runner.
type Option func(*Runner)

// WithCapture replaces the browser-backed capture path (testing,
// offline replay).
func WithCapture(fn CaptureFunc) Option {
	return func(r *Runner) { r.capture = fn }
}

// New creates a Runner: opens the run database and prepares the
// gatherer (the browser only starts on Start).
func New(cfg *Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	store, err := runstore.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:    cfg,
		logger: logger,
		store:  store,
		audit:  fontsize.New(cfg.Audit, viewport.New()),
	}
	for _, o := range opts {
		o(r)
	}

	if r.capture == nil {
		r.gatherer = gather.New(cfg.Gather, logger)
		r.capture = r.gatherer.Capture
	}
	return r, nil
}

// Start launches the browser when the Runner owns one.
func (r *Runner) Start(ctx context.Context) error {
	if r.gatherer == nil {
		return nil
	}
	return r.gatherer.Start(ctx)
}

// Close shuts down the browser and the run database.
func (r *Runner) Close() error {
	if r.gatherer != nil {
		r.gatherer.Close()
	}
	return r.store.Close()
}

// AuditURL captures a page, runs the legibility audit, and persists
// the result.
func (r *Runner) AuditURL(ctx context.Context, pageURL string) (*runstore.Run, error) {
	bundle, err := r.capture(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("auditor: capture %s: %w", pageURL, err)
	}
	return r.AuditBundle(ctx, bundle)
}

// AuditBundle audits a previously captured bundle and persists the
// result.
func (r *Runner) AuditBundle(ctx context.Context, bundle *artifact.Bundle) (*runstore.Run, error) {
	report, err := r.audit.Run(ctx, bundle)
	if err != nil {
		return nil, err
	}

	run, err := r.store.SaveRun(ctx, bundle.URL.FinalURL, report)
	if err != nil {
		return nil, err
	}

	r.logger.Info("auditor: run complete",
		"run_id", run.RunID, "url", run.URL, "score", run.Score,
		"display", run.DisplayValue)
	return run, nil
}

// GetRun fetches a persisted run. Nil when not found.
func (r *Runner) GetRun(ctx context.Context, runID string) (*runstore.Run, error) {
	return r.store.GetRun(ctx, runID)
}

// ListRuns returns recent runs, newest first.
func (r *Runner) ListRuns(ctx context.Context, limit int) ([]*runstore.Run, error) {
	return r.store.ListRuns(ctx, limit)
}
