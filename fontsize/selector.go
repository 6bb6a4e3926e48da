package fontsize

import (
	"fmt"
	"strings"

	"github.com/mkmetko/lighthouse/artifact"
)

// attributeMap folds a node's flat attribute list into a map. Names are
// lower-cased, values trimmed; entries with empty trimmed values are
// dropped and later duplicates overwrite earlier ones.
func attributeMap(node *artifact.Node) map[string]string {
	attrs := node.Attributes
	m := make(map[string]string, len(attrs)/2)
	for i := 0; i+1 < len(attrs); i += 2 {
		value := strings.TrimSpace(attrs[i+1])
		if value == "" {
			continue
		}
		m[strings.ToLower(attrs[i])] = value
	}
	return m
}

// nodeSelector derives a readable CSS-like selector for a node:
// #id, then .class (multi-class joined with dots), then the tag name.
func nodeSelector(node *artifact.Node) string {
	if node == nil {
		return ""
	}
	attrs := attributeMap(node)
	if id := attrs["id"]; id != "" {
		return "#" + id
	}
	if class := attrs["class"]; class != "" {
		return "." + strings.Join(strings.Fields(class), ".")
	}
	return strings.ToLower(node.LocalName)
}

// nodeSnippet renders the node's opening tag with its original,
// unnormalised attribute values.
func nodeSnippet(node *artifact.Node) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(node.LocalName)
	for i := 0; i+1 < len(node.Attributes); i += 2 {
		fmt.Fprintf(&sb, ` %s="%s"`, node.Attributes[i], node.Attributes[i+1])
	}
	sb.WriteByte('>')
	return sb.String()
}

// nodeDescriptor pairs a node's snippet with its parent's selector.
// Used for rows whose styling is attributable only to the node itself
// and no rule selector exists.
func nodeDescriptor(node *artifact.Node) *NodeDescriptor {
	if node == nil {
		return &NodeDescriptor{}
	}
	return &NodeDescriptor{
		Selector: nodeSelector(node.Parent),
		Snippet:  nodeSnippet(node),
	}
}
