package fontsize

import (
	"fmt"

	"github.com/mkmetko/lighthouse/artifact"
)

// aggregatedRule is one distinct offending rule with its summed
// affected text length.
type aggregatedRule struct {
	node       *artifact.Node
	rule       *artifact.RuleDescriptor
	fontSize   float64
	textLength int
}

// ruleKey derives the identity under which failing nodes are merged.
// Regular rules collapse by stylesheet id plus declaration start (two
// occurrences at the same location are the same rule); anything without
// stylesheet identity collapses per node instead.
func ruleKey(rule *artifact.RuleDescriptor, node *artifact.Node) string {
	if rule != nil && rule.Type == artifact.RuleRegular {
		var line, column int
		if rule.Range != nil {
			line = rule.Range.StartLine
			column = rule.Range.StartColumn
		}
		return fmt.Sprintf("%s@%d:%d", rule.StyleSheetID, line, column)
	}
	if node != nil {
		return fmt.Sprintf("node:%d", node.NodeID)
	}
	return "node:?"
}

// aggregate collapses failing nodes by rule identity, in input order.
// The first node seen for a key fixes the displayed node, rule and font
// size; later duplicates only add their text length.
func aggregate(failing []artifact.FailingNode) []*aggregatedRule {
	byKey := make(map[string]*aggregatedRule, len(failing))
	var rules []*aggregatedRule

	for i := range failing {
		f := &failing[i]
		key := ruleKey(f.Rule, f.Node)
		if agg, ok := byKey[key]; ok {
			agg.textLength += f.TextLength
			continue
		}
		agg := &aggregatedRule{
			node:       f.Node,
			rule:       f.Rule,
			fontSize:   f.FontSize,
			textLength: f.TextLength,
		}
		byKey[key] = agg
		rules = append(rules, agg)
	}

	return rules
}
