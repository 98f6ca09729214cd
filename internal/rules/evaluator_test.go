package rules

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tavolo/pricing-service/internal/models"
)

func leaf(field, op string, value any) models.ConditionNode {
	return models.ConditionNode{Field: field, Operator: op, Value: value}
}

func group(logic string, children ...models.ConditionNode) models.ConditionNode {
	return models.ConditionNode{Logic: logic, Children: children}
}

func TestEmptyGroups(t *testing.T) {
	ctx := map[string]any{}

	if !Evaluate(group(models.LogicAnd), ctx) {
		t.Error("empty AND group should be true")
	}
	if Evaluate(group(models.LogicOr), ctx) {
		t.Error("empty OR group should be false")
	}
}

func TestNumericOperators(t *testing.T) {
	ctx := map[string]any{
		"subtotal":  decimal.NewFromInt(600),
		"itemCount": 3,
	}

	cases := []struct {
		name string
		node models.ConditionNode
		want bool
	}{
		{"gte true", leaf("subtotal", ">=", 500.0), true},
		{"gte boundary", leaf("subtotal", ">=", 600.0), true},
		{"gte false", leaf("subtotal", ">=", 601.0), false},
		{"lte", leaf("itemCount", "<=", 3.0), true},
		{"gt", leaf("itemCount", ">", 2.0), true},
		{"lt false", leaf("itemCount", "<", 3.0), false},
		{"decimal vs float", leaf("subtotal", ">", 599.99), true},
		{"missing field", leaf("nope", ">=", 1.0), false},
		{"non-numeric actual", leaf("channel", ">=", 1.0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.node, ctx); got != tc.want {
				t.Errorf("Evaluate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEquality(t *testing.T) {
	ctx := map[string]any{
		"channel":    "app",
		"itemCount":  3,
		"firstOrder": true,
	}

	if !Evaluate(leaf("channel", "=", "app"), ctx) {
		t.Error("string equality should hold")
	}
	if Evaluate(leaf("channel", "=", "web"), ctx) {
		t.Error("different strings should not be equal")
	}
	if !Evaluate(leaf("itemCount", "=", 3.0), ctx) {
		t.Error("int context value should equal JSON-decoded number")
	}
	if Evaluate(leaf("itemCount", "=", "3"), ctx) {
		t.Error("number must not coerce to match a string")
	}
	if !Evaluate(leaf("firstOrder", "=", true), ctx) {
		t.Error("bool equality should hold")
	}
	if Evaluate(leaf("missing", "=", "x"), ctx) {
		t.Error("missing field never equals anything")
	}
}

func TestInOperator(t *testing.T) {
	ctx := map[string]any{"channel": "app"}

	if !Evaluate(leaf("channel", "in", []any{"web", "app"}), ctx) {
		t.Error("in should find member")
	}
	if Evaluate(leaf("channel", "in", []any{"web", "kiosk"}), ctx) {
		t.Error("in should miss non-member")
	}
	if Evaluate(leaf("channel", "in", "app"), ctx) {
		t.Error("in with a non-list value must evaluate false, not error")
	}
}

func TestContainsOperator(t *testing.T) {
	ctx := map[string]any{"segmentIds": []string{"vip", "students"}}

	if !Evaluate(leaf("segmentIds", "contains", "vip"), ctx) {
		t.Error("contains should find member of context list")
	}
	if Evaluate(leaf("segmentIds", "contains", "staff"), ctx) {
		t.Error("contains should miss non-member")
	}
	// contains requires the context value to be a list
	if Evaluate(leaf("channel", "contains", "app"), map[string]any{"channel": "app"}) {
		t.Error("contains on a scalar context value must be false")
	}
}

func TestMalformedNodesNeverPanic(t *testing.T) {
	ctx := map[string]any{"subtotal": decimal.NewFromInt(100)}

	cases := []models.ConditionNode{
		leaf("subtotal", "between", 5),          // unknown operator
		leaf("subtotal", "", nil),               // no operator
		leaf("subtotal", "=", map[string]any{}), // odd value type
		{Logic: "XOR"},                          // unknown logic
	}
	for _, node := range cases {
		if Evaluate(node, ctx) {
			t.Errorf("malformed node %+v should evaluate false", node)
		}
	}
}

func TestNestedGroups(t *testing.T) {
	ctx := map[string]any{
		"subtotal":  decimal.NewFromInt(600),
		"channel":   "app",
		"dayOfWeek": "friday",
	}

	tree := group(models.LogicAnd,
		leaf("subtotal", ">=", 500.0),
		group(models.LogicOr,
			leaf("channel", "=", "web"),
			leaf("dayOfWeek", "in", []any{"friday", "saturday"}),
		),
	)
	if !Evaluate(tree, ctx) {
		t.Error("nested AND(OR) tree should hold")
	}

	tree.Children[0] = leaf("subtotal", ">=", 700.0)
	if Evaluate(tree, ctx) {
		t.Error("failing AND child should fail the tree")
	}
}
