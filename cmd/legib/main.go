// Command legib audits web pages for mobile font-size legibility.
//
// Usage:
//
//	legib -url https://example.com           # one-shot audit, report on stdout
//	legib -artifacts bundle.json             # audit a captured bundle, no browser
//	legib -serve                             # HTTP API
//	legib -mcp                               # MCP server on stdio
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/mkmetko/lighthouse/artifact"
	"github.com/mkmetko/lighthouse/auditor"
)

func main() {
	configPath := flag.String("config", "", "path to legib.yaml config file")
	singleURL := flag.String("url", "", "audit a single URL and exit")
	artifactPath := flag.String("artifacts", "", "audit a captured bundle JSON file and exit")
	serve := flag.Bool("serve", false, "run the HTTP API")
	mcpMode := flag.Bool("mcp", false, "run an MCP server on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *singleURL, *artifactPath, *serve, *mcpMode); err != nil {
		logger.Error("legib: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, singleURL, artifactPath string, serve, mcpMode bool) error {
	cfg := &auditor.Config{}
	if configPath != "" {
		loaded, err := auditor.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	switch {
	case artifactPath != "":
		return runArtifacts(ctx, logger, cfg, artifactPath)
	case singleURL != "":
		return runSingle(ctx, logger, cfg, singleURL)
	case serve:
		return runServe(ctx, logger, cfg)
	case mcpMode:
		return runMCP(ctx, logger, cfg)
	}

	fmt.Fprintln(os.Stderr, "usage: legib -url <url> | -artifacts <file> | -serve | -mcp")
	os.Exit(1)
	return nil
}

func runSingle(ctx context.Context, logger *slog.Logger, cfg *auditor.Config, url string) error {
	r, err := auditor.New(cfg, logger)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Start(ctx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}

	run, err := r.AuditURL(ctx, url)
	if err != nil {
		return err
	}
	return printJSON(run)
}

func runArtifacts(ctx context.Context, logger *slog.Logger, cfg *auditor.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifacts: %w", err)
	}
	bundle, err := artifact.UnmarshalBundle(data)
	if err != nil {
		return fmt.Errorf("parse artifacts: %w", err)
	}

	// Offline mode: no browser.
	offline := func(context.Context, string) (*artifact.Bundle, error) {
		return nil, errors.New("offline mode: no browser")
	}
	r, err := auditor.New(cfg, logger, auditor.WithCapture(offline))
	if err != nil {
		return err
	}
	defer r.Close()

	run, err := r.AuditBundle(ctx, bundle)
	if err != nil {
		return err
	}
	return printJSON(run)
}

func runServe(ctx context.Context, logger *slog.Logger, cfg *auditor.Config) error {
	r, err := auditor.New(cfg, logger)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Start(ctx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	return r.Serve(ctx)
}

func runMCP(ctx context.Context, logger *slog.Logger, cfg *auditor.Config) error {
	r, err := auditor.New(cfg, logger)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Start(ctx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	return r.ServeMCP(ctx)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
