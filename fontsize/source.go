package fontsize

import (
	"strings"

	"github.com/mkmetko/lighthouse/artifact"
)

// SourceKind tags the Source variant.
type SourceKind string

const (
	SourceKindURL      SourceKind = "url"
	SourceKindCode     SourceKind = "code"
	SourceKindLocation SourceKind = "source-location"
)

// URLProvider values for SourceKindLocation.
const (
	URLProviderNetwork = "network"
	URLProviderComment = "comment"
)

// Source says where an offending style came from. Exactly one variant
// is populated per row: a plain page URL, an opaque code label, or a
// resolved stylesheet location.
type Source struct {
	Kind        SourceKind `json:"kind"`
	URL         string     `json:"url,omitempty"`          // url, source-location
	Label       string     `json:"label,omitempty"`        // code
	URLProvider string     `json:"url_provider,omitempty"` // source-location
	Line        int        `json:"line,omitempty"`
	Column      int        `json:"column,omitempty"`
}

// Selector is the display selector for a row: either the rule's
// selector text, or a node descriptor when no rule selector exists.
type Selector struct {
	Text string          `json:"text,omitempty"`
	Node *NodeDescriptor `json:"node,omitempty"`
}

// NodeDescriptor displays a node by its opening-tag snippet together
// with its parent's resolved selector.
type NodeDescriptor struct {
	Selector string `json:"selector"`
	Snippet  string `json:"snippet"`
}

func selectorText(pr *artifact.ParentRule) string {
	if pr == nil {
		return ""
	}
	return strings.Join(pr.Selectors, ", ")
}

// ruleOrigin resolves the origin and display selector for one offending
// rule. Branches, first match wins: node-attached styling, user-agent
// default, runtime-injected stylesheet, resolvable source location,
// unresolved.
func ruleOrigin(baseURL string, rule *artifact.RuleDescriptor, node *artifact.Node) (Source, Selector) {
	if rule == nil || rule.Type == artifact.RuleAttributes || rule.Type == artifact.RuleInline {
		// Styling came from the node itself (inline style or styling
		// attributes); attribute it to the page.
		return Source{Kind: SourceKindURL, URL: baseURL},
			Selector{Node: nodeDescriptor(node)}
	}

	if rule.ParentRule != nil && rule.ParentRule.Origin == artifact.OriginUserAgent {
		return Source{Kind: SourceKindCode, Label: labelUserAgent},
			Selector{Text: selectorText(rule.ParentRule)}
	}

	selector := Selector{Text: selectorText(rule.ParentRule)}

	sheet := rule.StyleSheet
	if sheet != nil && sheet.SourceURL == "" && !sheet.HasSourceURL {
		// No resource URL at all: the stylesheet was injected at runtime.
		return Source{Kind: SourceKindCode, Label: labelDynamic}, selector
	}

	if sheet != nil && rule.Range != nil {
		provider := URLProviderNetwork
		if sheet.HasSourceURL {
			provider = URLProviderComment
		}

		line := rule.Range.StartLine
		column := rule.Range.StartColumn
		if sheet.IsInline && !sheet.HasSourceURL {
			// Reproject coordinates from the inline <style> block into the
			// document. Skipped for sourceURL-comment sheets: those ranges
			// are read relative to the block itself.
			line += sheet.StartLine
			if rule.Range.StartLine == 0 {
				column += sheet.StartColumn
			}
		}

		return Source{
			Kind:        SourceKindLocation,
			URL:         sheet.SourceURL,
			URLProvider: provider,
			Line:        line,
			Column:      column,
		}, selector
	}

	// Stylesheet present but no usable range: the declaration was never
	// fully resolved upstream.
	return Source{Kind: SourceKindCode, Label: labelUnknown}, selector
}
