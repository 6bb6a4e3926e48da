package fontsize

import (
	"testing"

	"github.com/mkmetko/lighthouse/artifact"
)

func elem(localName string, attrs ...string) *artifact.Node {
	return &artifact.Node{NodeID: 1, LocalName: localName, Attributes: attrs}
}

func TestAttributeMap(t *testing.T) {
	node := elem("div",
		"ID", " main ",
		"Class", "a b",
		"data-x", "   ",
		"class", "c",
	)

	m := attributeMap(node)

	if got := m["id"]; got != "main" {
		t.Fatalf("id: got %q, want %q", got, "main")
	}
	// Later duplicate overwrites, names compared lower-cased.
	if got := m["class"]; got != "c" {
		t.Fatalf("class: got %q, want %q", got, "c")
	}
	// Whitespace-only values are dropped.
	if _, ok := m["data-x"]; ok {
		t.Fatal("data-x should be dropped")
	}
}

func TestNodeSelector_Priority(t *testing.T) {
	cases := []struct {
		name string
		node *artifact.Node
		want string
	}{
		{"id wins over class", elem("div", "id", "hero", "class", "a b"), "#hero"},
		{"class joined with dots", elem("div", "class", "  a   b c "), ".a.b.c"},
		{"tag fallback lower-cased", elem("DIV"), "div"},
		{"empty id falls through to class", elem("p", "id", " ", "class", "x"), ".x"},
		{"nil node", nil, ""},
	}

	for _, tc := range cases {
		if got := nodeSelector(tc.node); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestNodeSnippet(t *testing.T) {
	node := elem("span", "Class", " Big Red ", "id", "x")

	// The snippet keeps original attribute names and values.
	want := `<span Class=" Big Red " id="x">`
	if got := nodeSnippet(node); got != want {
		t.Fatalf("snippet: got %q, want %q", got, want)
	}
}

func TestNodeDescriptor(t *testing.T) {
	parent := elem("section", "id", "content")
	node := elem("span", "class", "small")
	node.Parent = parent

	d := nodeDescriptor(node)
	if d.Selector != "#content" {
		t.Fatalf("parent selector: got %q, want %q", d.Selector, "#content")
	}
	if d.Snippet != `<span class="small">` {
		t.Fatalf("snippet: got %q", d.Snippet)
	}

	// No parent: empty selector, snippet still rendered.
	orphan := elem("em")
	d = nodeDescriptor(orphan)
	if d.Selector != "" {
		t.Fatalf("orphan selector: got %q, want empty", d.Selector)
	}
	if d.Snippet != "<em>" {
		t.Fatalf("orphan snippet: got %q", d.Snippet)
	}
}
