// Package viewport classifies a page's viewport configuration from its
// <meta name="viewport"> element. A page counts as mobile-optimized
// when the viewport is sized to the device (width=device-width) or
// scaled for small screens (initial-scale >= 1).
package viewport

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/mkmetko/lighthouse/artifact"
)

// Result is the classification outcome.
type Result struct {
	HasViewportTag    bool     `json:"has_viewport_tag"`
	IsMobileOptimized bool     `json:"is_mobile_optimized"`
	Warnings          []string `json:"warnings,omitempty"`
}

// Classifier parses viewport meta content. Results are memoised by raw
// content string; identical pages across runs hit the cache.
type Classifier struct {
	mu    sync.Mutex
	cache map[string]Result
}

// New creates a Classifier.
func New() *Classifier {
	return &Classifier{cache: make(map[string]Result)}
}

// Classify inspects the page's meta elements and decides whether its
// viewport configuration is mobile-optimized.
func (c *Classifier) Classify(ctx context.Context, metas []artifact.MetaElement) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	content, found := viewportContent(metas)
	if !found {
		return Result{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.cache[content]; ok {
		return r, nil
	}

	r := classifyContent(content)
	c.cache[content] = r
	return r, nil
}

// MobileOptimized implements the audit-side classifier interface.
func (c *Classifier) MobileOptimized(ctx context.Context, metas []artifact.MetaElement) (bool, error) {
	r, err := c.Classify(ctx, metas)
	if err != nil {
		return false, err
	}
	return r.IsMobileOptimized, nil
}

// viewportContent returns the content of the first viewport meta tag.
func viewportContent(metas []artifact.MetaElement) (string, bool) {
	for _, m := range metas {
		if strings.EqualFold(strings.TrimSpace(m.Name), "viewport") {
			return m.Content, true
		}
	}
	return "", false
}

func classifyContent(content string) Result {
	r := Result{HasViewportTag: true}

	deviceWidth := false
	var initialScale float64

	for _, directive := range splitDirectives(content) {
		key, value, ok := strings.Cut(directive, "=")
		if !ok {
			r.Warnings = append(r.Warnings, "unparseable directive: "+directive)
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToLower(strings.TrimSpace(value))

		switch key {
		case "width":
			if value == "device-width" {
				deviceWidth = true
			}
		case "initial-scale":
			s, err := strconv.ParseFloat(value, 64)
			if err != nil {
				r.Warnings = append(r.Warnings, "invalid initial-scale: "+value)
				continue
			}
			initialScale = s
		}
	}

	r.IsMobileOptimized = deviceWidth || initialScale >= 1
	return r
}

// splitDirectives splits viewport content on commas and semicolons,
// both of which browsers accept as separators.
func splitDirectives(content string) []string {
	fields := strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
