package models

import "fmt"

// Logic connectives for condition groups.
const (
	LogicAnd = "AND"
	LogicOr  = "OR"
)

// Comparison operators accepted on condition leaves.
const (
	OpGTE      = ">="
	OpLTE      = "<="
	OpEQ       = "="
	OpGT       = ">"
	OpLT       = "<"
	OpIn       = "in"
	OpContains = "contains"
)

// ConditionNode is either a leaf comparison or a group of child nodes.
// A node with a non-empty Logic is a group; otherwise it is a leaf.
// Trees arrive as admin-entered JSON and are validated once at the
// admin boundary; evaluation never re-validates and fails open instead.
type ConditionNode struct {
	Field    string `json:"field,omitempty"`
	Operator string `json:"operator,omitempty"`
	Value    any    `json:"value,omitempty"`

	Logic    string          `json:"logic,omitempty"`
	Children []ConditionNode `json:"children,omitempty"`
}

// IsGroup reports whether the node is a group rather than a leaf.
func (n ConditionNode) IsGroup() bool {
	return n.Logic != ""
}

// Validate checks the closed shape of the tree. Called when a promotion
// is created or updated, not on the pricing path.
func (n ConditionNode) Validate() error {
	if n.IsGroup() {
		if n.Logic != LogicAnd && n.Logic != LogicOr {
			return fmt.Errorf("unknown logic %q", n.Logic)
		}
		for i, c := range n.Children {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("child %d: %w", i, err)
			}
		}
		return nil
	}

	if n.Field == "" {
		return fmt.Errorf("condition field is required")
	}
	switch n.Operator {
	case OpGTE, OpLTE, OpEQ, OpGT, OpLT:
	case OpIn:
		if _, ok := n.Value.([]any); !ok {
			return fmt.Errorf("operator %q requires a list value", n.Operator)
		}
	case OpContains:
	default:
		return fmt.Errorf("unknown operator %q", n.Operator)
	}
	return nil
}
