// Package fontsize implements the mobile font-legibility audit: given
// per-text-node font measurements captured from a rendered page, it
// decides whether enough visible text is legible and attributes the
// illegible remainder to the CSS rules responsible.
//
// The audit is a pure, synchronous transformation over an immutable
// artifact.Bundle; the single external call is the viewport classifier.
// It never touches the live page and never mutates its inputs.
package fontsize

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/mkmetko/lighthouse/artifact"
)

const (
	labelUserAgent  = "User Agent Stylesheet"
	labelDynamic    = "dynamic"
	labelUnknown    = "Unknown"
	labelAdditional = "Add'l illegible text"
	labelLegible    = "Legible text"

	explanationViewport = "Text is illegible because there's no viewport meta tag optimized for mobile screens."
)

// Headings returns the report table headings.
func Headings() []string {
	return []string{"Source", "Selector", "% of Page Text", "Font Size"}
}

// Classifier decides whether a page's viewport configuration is
// mobile-optimized. Implemented by the viewport package. The call may
// suspend; any failure propagates to the audit's caller.
type Classifier interface {
	MobileOptimized(ctx context.Context, metas []artifact.MetaElement) (bool, error)
}

// Result is the audit product consumed by the reporting pipeline.
type Result struct {
	Score             int      `json:"score"`
	NotApplicable     bool     `json:"not_applicable,omitempty"`
	Explanation       string   `json:"explanation,omitempty"`
	DisplayValue      string   `json:"display_value,omitempty"`
	PassingProportion float64  `json:"passing_proportion,omitempty"`
	Details           *Details `json:"details,omitempty"`
}

// Details is the offending-rule table.
type Details struct {
	Headings []string `json:"headings"`
	Rows     []Row    `json:"rows"`
}

// Row is one line of the table: either an offending rule or one of the
// two synthetic summary rows (unanalyzed and legible text).
type Row struct {
	Source   Source   `json:"source"`
	Selector Selector `json:"selector"`
	Coverage string   `json:"coverage"`
	FontSize string   `json:"font_size"`
}

// Audit runs the font-legibility check.
type Audit struct {
	cfg        Config
	classifier Classifier
}

// New creates the audit. The classifier must not be nil.
func New(cfg Config, classifier Classifier) *Audit {
	cfg.defaults()
	return &Audit{cfg: cfg, classifier: classifier}
}

// Config returns the effective configuration after defaults.
func (a *Audit) Config() Config {
	return a.cfg
}

// Run evaluates one captured page. Terminal states, in order: not
// evaluated under mobile emulation (pass, not applicable); no
// mobile-optimized viewport (fail, explanation only); no analyzable
// text (pass); otherwise the full table analysis.
func (a *Audit) Run(ctx context.Context, bundle *artifact.Bundle) (*Result, error) {
	if !bundle.TestedAsMobileDevice {
		return &Result{Score: 1, NotApplicable: true}, nil
	}

	mobile, err := a.classifier.MobileOptimized(ctx, bundle.MetaElements)
	if err != nil {
		return nil, fmt.Errorf("fontsize: classify viewport: %w", err)
	}
	if !mobile {
		return &Result{Score: 0, Explanation: explanationViewport}, nil
	}

	fs := &bundle.FontSize
	if fs.TotalTextLength == 0 {
		return &Result{Score: 1}, nil
	}

	passingPct := float64(fs.TotalTextLength-fs.FailingTextLength) /
		float64(fs.TotalTextLength) * 100

	rules := aggregate(fs.AnalyzedFailingNodes)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].textLength > rules[j].textLength
	})

	rows := make([]Row, 0, len(rules)+2)
	for _, r := range rules {
		source, selector := ruleOrigin(bundle.URL.FinalURL, r.rule, r.node)
		rows = append(rows, Row{
			Source:   source,
			Selector: selector,
			Coverage: coverage(r.textLength, fs.TotalTextLength),
			FontSize: formatPx(r.fontSize),
		})
	}

	if fs.AnalyzedFailingTextLength < fs.FailingTextLength {
		// Some failing text was never individually analyzed (the
		// gatherer caps provenance resolution); summarize the remainder.
		rows = append(rows, Row{
			Source:   Source{Kind: SourceKindCode, Label: labelAdditional},
			Coverage: coverage(fs.FailingTextLength-fs.AnalyzedFailingTextLength, fs.TotalTextLength),
			FontSize: "< " + formatPx(a.cfg.MinimumLegibleSize),
		})
	}

	if passingPct > 0 {
		rows = append(rows, Row{
			Source:   Source{Kind: SourceKindCode, Label: labelLegible},
			Coverage: formatPercent(passingPct),
			FontSize: "≥ " + formatPx(a.cfg.MinimumLegibleSize),
		})
	}

	res := &Result{
		PassingProportion: passingPct / 100,
		DisplayValue:      fmt.Sprintf(a.cfg.DisplayTemplate, passingPct),
		Details:           &Details{Headings: Headings(), Rows: rows},
	}
	if passingPct >= a.cfg.PassThreshold {
		res.Score = 1
	}
	return res, nil
}

func coverage(textLength, total int) string {
	return formatPercent(float64(textLength) / float64(total) * 100)
}

func formatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 2, 64) + "%"
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
