package artifact

import "testing"

func TestBundleRoundTrip(t *testing.T) {
	body := &Node{NodeID: 1, LocalName: "body"}
	p := &Node{NodeID: 2, LocalName: "p", Attributes: []string{"class", "small"}, Parent: body}

	in := &Bundle{
		URL:          URL{FinalURL: "https://example.com/"},
		MetaElements: []MetaElement{{Name: "viewport", Content: "width=device-width"}},
		FontSize: FontSize{
			AnalyzedFailingNodes: []FailingNode{{
				Node: p,
				Rule: &RuleDescriptor{
					Type:         RuleRegular,
					StyleSheetID: "s1",
					Range:        &SourceRange{StartLine: 4, StartColumn: 2},
					ParentRule:   &ParentRule{Origin: "regular", Selectors: []string{".small"}},
					StyleSheet:   &StyleSheet{SourceURL: "https://example.com/site.css"},
				},
				FontSize:   10,
				TextLength: 42,
			}},
			AnalyzedFailingTextLength: 42,
			FailingTextLength:         42,
			TotalTextLength:           100,
		},
		TestedAsMobileDevice: true,
	}

	data, err := MarshalBundle(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := UnmarshalBundle(data)
	if err != nil {
		t.Fatal(err)
	}

	if out.URL.FinalURL != in.URL.FinalURL {
		t.Fatalf("url: got %q", out.URL.FinalURL)
	}
	if !out.TestedAsMobileDevice {
		t.Fatal("mobile flag lost")
	}
	if len(out.FontSize.AnalyzedFailingNodes) != 1 {
		t.Fatalf("nodes: got %d", len(out.FontSize.AnalyzedFailingNodes))
	}

	node := out.FontSize.AnalyzedFailingNodes[0].Node
	if node.LocalName != "p" || len(node.Attributes) != 2 {
		t.Fatalf("node: got %+v", node)
	}
	// The ancestor chain survives serialization.
	if node.Parent == nil || node.Parent.LocalName != "body" {
		t.Fatalf("parent: got %+v", node.Parent)
	}

	rule := out.FontSize.AnalyzedFailingNodes[0].Rule
	if rule.Type != RuleRegular || rule.Range.StartLine != 4 {
		t.Fatalf("rule: got %+v", rule)
	}
	if rule.StyleSheet == nil || rule.StyleSheet.SourceURL != "https://example.com/site.css" {
		t.Fatalf("stylesheet: got %+v", rule.StyleSheet)
	}
}

func TestUnmarshalBundle_Invalid(t *testing.T) {
	if _, err := UnmarshalBundle([]byte("{broken")); err == nil {
		t.Fatal("want error for malformed JSON")
	}
}
