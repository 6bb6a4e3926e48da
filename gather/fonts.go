package gather

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/mkmetko/lighthouse/artifact"
)

const textNodeType = 3

// nodeTable maps CDP node ids to artifact nodes with parent links. The
// table owns the nodes; artifact references into it are non-owning.
type nodeTable struct {
	raw  map[proto.DOMNodeID]*proto.DOMNode
	refs map[proto.DOMNodeID]*artifact.Node
}

func newNodeTable(nodes []*proto.DOMNode) *nodeTable {
	t := &nodeTable{
		raw:  make(map[proto.DOMNodeID]*proto.DOMNode, len(nodes)),
		refs: make(map[proto.DOMNodeID]*artifact.Node, len(nodes)),
	}
	for _, n := range nodes {
		t.raw[n.NodeID] = n
	}
	return t
}

// ref resolves an element reference, building its parent chain lazily.
func (t *nodeTable) ref(id proto.DOMNodeID) *artifact.Node {
	if r, ok := t.refs[id]; ok {
		return r
	}
	raw, ok := t.raw[id]
	if !ok {
		return nil
	}

	r := &artifact.Node{
		NodeID:     int64(raw.NodeID),
		LocalName:  raw.LocalName,
		Attributes: raw.Attributes,
	}
	t.refs[id] = r
	if raw.ParentID != 0 {
		r.Parent = t.ref(raw.ParentID)
	}
	return r
}

// collectFontSize walks every text node of the flattened document,
// measures its computed font size, and resolves style provenance for
// failing nodes up to the configured cap.
func (g *Gatherer) collectFontSize(page *rod.Page, sheets *sheetTracker) (*artifact.FontSize, error) {
	depth := -1
	doc, err := proto.DOMGetFlattenedDocument{Depth: &depth, Pierce: true}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("gather: flattened document: %w", err)
	}
	table := newNodeTable(doc.Nodes)

	type failingText struct {
		elem   proto.DOMNodeID
		size   float64
		length int
	}

	fs := &artifact.FontSize{}
	var failures []failingText

	for _, n := range doc.Nodes {
		if n.NodeType != textNodeType {
			continue
		}
		length := visibleTextLength(n.NodeValue)
		if length == 0 {
			continue
		}
		parent, ok := table.raw[n.ParentID]
		if !ok {
			continue
		}

		size, err := computedFontSize(page, parent.NodeID)
		if err != nil {
			g.logger.Debug("gather: computed style failed",
				"node", int64(parent.NodeID), "error", err)
			continue
		}

		fs.TotalTextLength += length
		if size >= g.cfg.MinimumLegibleSize {
			continue
		}

		fs.FailingTextLength += length
		failures = append(failures, failingText{elem: parent.NodeID, size: size, length: length})
	}

	headers := sheets.snapshot()
	for i, f := range failures {
		if i >= g.cfg.MaxAnalyzedNodes {
			break
		}

		var rule *artifact.RuleDescriptor
		matched, err := proto.CSSGetMatchedStylesForNode{NodeID: f.elem}.Call(page)
		if err != nil {
			g.logger.Debug("gather: matched styles failed",
				"node", int64(f.elem), "error", err)
		} else {
			rule = effectiveFontRule(matched, headers)
		}

		fs.AnalyzedFailingNodes = append(fs.AnalyzedFailingNodes, artifact.FailingNode{
			Node:       table.ref(f.elem),
			Rule:       rule,
			FontSize:   f.size,
			TextLength: f.length,
		})
		fs.AnalyzedFailingTextLength += f.length
	}

	return fs, nil
}

// visibleTextLength counts non-whitespace runes.
func visibleTextLength(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func computedFontSize(page *rod.Page, id proto.DOMNodeID) (float64, error) {
	res, err := proto.CSSGetComputedStyleForNode{NodeID: id}.Call(page)
	if err != nil {
		return 0, err
	}
	for _, p := range res.ComputedStyle {
		if p.Name == "font-size" {
			return parsePixels(p.Value)
		}
	}
	return 0, fmt.Errorf("gather: no font-size in computed style")
}

func parsePixels(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	if err != nil {
		return 0, fmt.Errorf("gather: parse font size %q: %w", v, err)
	}
	return f, nil
}

// effectiveFontRule picks the declaration that won the font-size
// cascade for an element: inline style, then styling attributes, then
// matched rules (CDP reports them in ascending specificity, so the
// last one with a font-size declaration wins), then inherited rules.
// Returns nil when nothing declares font-size.
func effectiveFontRule(
	m *proto.CSSGetMatchedStylesForNodeResult,
	headers map[proto.CSSStyleSheetID]*proto.CSSCSSStyleSheetHeader,
) *artifact.RuleDescriptor {
	if hasFontSize(m.InlineStyle) {
		return &artifact.RuleDescriptor{Type: artifact.RuleInline}
	}
	if hasFontSize(m.AttributesStyle) {
		return &artifact.RuleDescriptor{Type: artifact.RuleAttributes}
	}

	for i := len(m.MatchedCSSRules) - 1; i >= 0; i-- {
		rule := m.MatchedCSSRules[i].Rule
		if rule != nil && hasFontSize(rule.Style) {
			return regularDescriptor(rule, headers)
		}
	}

	// Inherited entries are ordered nearest ancestor first.
	for _, inh := range m.Inherited {
		if hasFontSize(inh.InlineStyle) {
			return &artifact.RuleDescriptor{Type: artifact.RuleInline}
		}
		for i := len(inh.MatchedCSSRules) - 1; i >= 0; i-- {
			rule := inh.MatchedCSSRules[i].Rule
			if rule != nil && hasFontSize(rule.Style) {
				return regularDescriptor(rule, headers)
			}
		}
	}

	return nil
}

func hasFontSize(style *proto.CSSCSSStyle) bool {
	if style == nil {
		return false
	}
	for _, p := range style.CSSProperties {
		if p.Name == "font-size" {
			return true
		}
	}
	return false
}

// regularDescriptor builds a rule descriptor from a matched CSS rule,
// joining in the stylesheet header when one was tracked.
func regularDescriptor(
	rule *proto.CSSCSSRule,
	headers map[proto.CSSStyleSheetID]*proto.CSSCSSStyleSheetHeader,
) *artifact.RuleDescriptor {
	style := rule.Style
	d := &artifact.RuleDescriptor{
		Type:         artifact.RuleRegular,
		StyleSheetID: string(style.StyleSheetID),
	}
	if style.Range != nil {
		d.Range = &artifact.SourceRange{
			StartLine:   style.Range.StartLine,
			StartColumn: style.Range.StartColumn,
		}
	}

	pr := &artifact.ParentRule{Origin: string(rule.Origin)}
	if rule.SelectorList != nil {
		for _, s := range rule.SelectorList.Selectors {
			pr.Selectors = append(pr.Selectors, s.Text)
		}
	}
	d.ParentRule = pr

	if h := headers[style.StyleSheetID]; h != nil {
		d.StyleSheet = &artifact.StyleSheet{
			SourceURL:    h.SourceURL,
			HasSourceURL: h.HasSourceURL,
			IsInline:     h.IsInline,
			StartLine:    int(h.StartLine),
			StartColumn:  int(h.StartColumn),
		}
	}
	return d
}
