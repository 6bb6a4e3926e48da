// Package artifact defines the captured-page data model shared between
// the gatherer and the audits. A Bundle is an immutable snapshot: the
// gatherer builds it once per page visit, audits only read it.
package artifact

// Bundle holds everything captured from one rendered page.
type Bundle struct {
	URL                  URL           `json:"url"`
	MetaElements         []MetaElement `json:"meta_elements"`
	FontSize             FontSize      `json:"font_size"`
	TestedAsMobileDevice bool          `json:"tested_as_mobile_device"`
}

// URL identifies the audited page.
type URL struct {
	FinalURL string `json:"final_url"`
}

// MetaElement is one <meta> tag from the document head.
type MetaElement struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// FontSize is the per-page font measurement artifact. Text lengths are
// counted in non-whitespace characters.
//
// AnalyzedFailingNodes may cover less text than FailingTextLength: the
// gatherer caps how many failing nodes it resolves style provenance
// for, and AnalyzedFailingTextLength records how much text that cap
// left attributed.
type FontSize struct {
	AnalyzedFailingNodes      []FailingNode `json:"analyzed_failing_nodes"`
	AnalyzedFailingTextLength int           `json:"analyzed_failing_text_length"`
	FailingTextLength         int           `json:"failing_text_length"`
	TotalTextLength           int           `json:"total_text_length"`
}

// FailingNode is one run of text rendered below the legibility floor,
// together with the node it belongs to and the style declaration that
// set its font size. Rule may be nil when no declaration was resolved.
type FailingNode struct {
	Node       *Node           `json:"node"`
	Rule       *RuleDescriptor `json:"rule,omitempty"`
	FontSize   float64         `json:"font_size"`
	TextLength int             `json:"text_length"`
}

// Node is a lightweight DOM element reference. Attributes is the CDP
// flat form: name, value, name, value, in document order. Parent is a
// non-owning reference into the bundle's node table; nil for the root.
// When serialized, each node carries its ancestor chain inline.
type Node struct {
	NodeID     int64    `json:"node_id"`
	LocalName  string   `json:"local_name"`
	Attributes []string `json:"attributes,omitempty"`
	Parent     *Node    `json:"parent,omitempty"`
}

// RuleType says where a font-size declaration came from.
type RuleType string

const (
	RuleRegular    RuleType = "Regular"
	RuleAttributes RuleType = "Attributes"
	RuleInline     RuleType = "Inline"
)

// RuleDescriptor describes the CSS declaration responsible for a
// failing node's font size. Only Regular rules carry stylesheet
// identity; Range, ParentRule and StyleSheet may each be absent when
// the rule was never fully resolved.
type RuleDescriptor struct {
	Type         RuleType     `json:"type"`
	StyleSheetID string       `json:"style_sheet_id,omitempty"`
	Range        *SourceRange `json:"range,omitempty"`
	ParentRule   *ParentRule  `json:"parent_rule,omitempty"`
	StyleSheet   *StyleSheet  `json:"style_sheet,omitempty"`
}

// SourceRange is the start of a declaration inside its stylesheet text.
type SourceRange struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
}

// ParentRule carries the selector list and origin of the rule that
// contains a matched declaration.
type ParentRule struct {
	Origin    string   `json:"origin"`
	Selectors []string `json:"selectors"`
}

// OriginUserAgent marks rules from the browser's built-in stylesheet.
const OriginUserAgent = "user-agent"

// StyleSheet mirrors the CDP stylesheet header fields the audit needs.
// SourceURL is the network URL, or an authored path when HasSourceURL
// reports that it came from a sourceURL marker comment. StartLine and
// StartColumn locate an inline <style> block within its document.
type StyleSheet struct {
	SourceURL    string `json:"source_url"`
	HasSourceURL bool   `json:"has_source_url"`
	IsInline     bool   `json:"is_inline"`
	StartLine    int    `json:"start_line"`
	StartColumn  int    `json:"start_column"`
}
