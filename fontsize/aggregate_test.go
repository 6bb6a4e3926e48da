package fontsize

import (
	"math/rand"
	"testing"

	"github.com/mkmetko/lighthouse/artifact"
)

func regularRule(sheetID string, line, column int) *artifact.RuleDescriptor {
	return &artifact.RuleDescriptor{
		Type:         artifact.RuleRegular,
		StyleSheetID: sheetID,
		Range:        &artifact.SourceRange{StartLine: line, StartColumn: column},
	}
}

func TestAggregate_CollapsesSameRule(t *testing.T) {
	failing := []artifact.FailingNode{
		{Node: elem("p"), Rule: regularRule("s1", 10, 4), FontSize: 10, TextLength: 100},
		{Node: elem("span"), Rule: regularRule("s1", 10, 4), FontSize: 11, TextLength: 50},
		{Node: elem("p"), Rule: regularRule("s1", 10, 5), FontSize: 10, TextLength: 25},
	}

	rules := aggregate(failing)
	if len(rules) != 2 {
		t.Fatalf("rules: got %d, want 2", len(rules))
	}
	if rules[0].textLength != 150 {
		t.Fatalf("summed length: got %d, want 150", rules[0].textLength)
	}
	// First observation fixes the displayed fields.
	if rules[0].fontSize != 10 || rules[0].node.LocalName != "p" {
		t.Fatalf("representative: got %gpx %q, want first-seen", rules[0].fontSize, rules[0].node.LocalName)
	}
	if rules[1].textLength != 25 {
		t.Fatalf("distinct range must not collapse: got %d", rules[1].textLength)
	}
}

func TestAggregate_MissingRangeDefaultsToZero(t *testing.T) {
	noRange := &artifact.RuleDescriptor{Type: artifact.RuleRegular, StyleSheetID: "s1"}
	zeroRange := regularRule("s1", 0, 0)

	rules := aggregate([]artifact.FailingNode{
		{Node: elem("p"), Rule: noRange, TextLength: 10},
		{Node: elem("p"), Rule: zeroRange, TextLength: 20},
	})
	if len(rules) != 1 {
		t.Fatalf("rules: got %d, want 1 (absent range collapses with 0:0)", len(rules))
	}
	if rules[0].textLength != 30 {
		t.Fatalf("summed length: got %d, want 30", rules[0].textLength)
	}
}

func TestAggregate_NodeFallbackKey(t *testing.T) {
	a := &artifact.Node{NodeID: 7, LocalName: "p"}
	b := &artifact.Node{NodeID: 8, LocalName: "p"}

	rules := aggregate([]artifact.FailingNode{
		{Node: a, Rule: &artifact.RuleDescriptor{Type: artifact.RuleInline}, TextLength: 5},
		{Node: a, Rule: nil, TextLength: 6},
		{Node: b, Rule: nil, TextLength: 7},
	})

	// Without stylesheet identity, fragments collapse per node.
	if len(rules) != 2 {
		t.Fatalf("rules: got %d, want 2", len(rules))
	}
	if rules[0].textLength != 11 || rules[1].textLength != 7 {
		t.Fatalf("lengths: got %d and %d, want 11 and 7", rules[0].textLength, rules[1].textLength)
	}
}

func TestAggregate_RegularRuleTakesPrecedenceOverNodeKey(t *testing.T) {
	node := &artifact.Node{NodeID: 7, LocalName: "p"}

	rules := aggregate([]artifact.FailingNode{
		{Node: node, Rule: regularRule("s1", 1, 1), TextLength: 5},
		{Node: node, Rule: nil, TextLength: 6},
	})

	// Same node, but one fragment has stylesheet identity: two rows.
	if len(rules) != 2 {
		t.Fatalf("rules: got %d, want 2", len(rules))
	}
}

func TestAggregate_InsertionOrder(t *testing.T) {
	failing := []artifact.FailingNode{
		{Node: elem("a"), Rule: regularRule("s2", 0, 0), TextLength: 1},
		{Node: elem("b"), Rule: regularRule("s1", 0, 0), TextLength: 2},
		{Node: elem("c"), Rule: regularRule("s2", 0, 0), TextLength: 3},
	}

	rules := aggregate(failing)
	if rules[0].node.LocalName != "a" || rules[1].node.LocalName != "b" {
		t.Fatalf("order: got %q then %q, want first-seen order",
			rules[0].node.LocalName, rules[1].node.LocalName)
	}
}

// Permuting the input changes representatives at most, never totals.
func TestAggregate_TotalsOrderIndependent(t *testing.T) {
	failing := []artifact.FailingNode{
		{Node: elem("p"), Rule: regularRule("s1", 0, 0), FontSize: 10, TextLength: 10},
		{Node: elem("p"), Rule: regularRule("s1", 0, 0), FontSize: 11, TextLength: 20},
		{Node: elem("p"), Rule: regularRule("s2", 0, 0), FontSize: 9, TextLength: 40},
		{Node: &artifact.Node{NodeID: 3}, Rule: nil, FontSize: 8, TextLength: 80},
	}

	sum := func(rules []*aggregatedRule) map[string]int {
		m := make(map[string]int)
		for _, r := range rules {
			m[ruleKey(r.rule, r.node)] = r.textLength
		}
		return m
	}

	want := sum(aggregate(failing))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]artifact.FailingNode(nil), failing...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got := sum(aggregate(shuffled))
		for k, v := range want {
			if got[k] != v {
				t.Fatalf("permutation %d: key %s got %d, want %d", i, k, got[k], v)
			}
		}
	}
}
