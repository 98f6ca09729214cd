// Package rules evaluates admin-authored condition trees and activation
// schedules against a per-request pricing context. Everything in here is
// pure: no I/O, no shared state, safe under concurrent requests.
package rules

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/tavolo/pricing-service/internal/models"
)

// Evaluate walks a condition tree against the context map. Malformed
// leaves never fail the request: an unknown operator, a missing field,
// or an uncoercible comparison evaluates to false. An AND group with no
// children is true, an OR group with no children is false.
func Evaluate(node models.ConditionNode, ctx map[string]any) bool {
	if node.IsGroup() {
		switch node.Logic {
		case models.LogicAnd:
			for _, child := range node.Children {
				if !Evaluate(child, ctx) {
					return false
				}
			}
			return true
		case models.LogicOr:
			for _, child := range node.Children {
				if Evaluate(child, ctx) {
					return true
				}
			}
			return false
		}
		return false
	}

	actual := ctx[node.Field]

	switch node.Operator {
	case models.OpGTE, models.OpLTE, models.OpGT, models.OpLT:
		a, aok := asNumber(actual)
		b, bok := asNumber(node.Value)
		if !aok || !bok {
			return false
		}
		switch node.Operator {
		case models.OpGTE:
			return a >= b
		case models.OpLTE:
			return a <= b
		case models.OpGT:
			return a > b
		default:
			return a < b
		}
	case models.OpEQ:
		return valuesEqual(actual, node.Value)
	case models.OpIn:
		list, ok := asList(node.Value)
		if !ok {
			return false
		}
		return listContains(list, actual)
	case models.OpContains:
		list, ok := asList(actual)
		if !ok {
			return false
		}
		return listContains(list, node.Value)
	}

	return false
}

func listContains(list []any, v any) bool {
	for _, item := range list {
		if valuesEqual(item, v) {
			return true
		}
	}
	return false
}

// valuesEqual compares without cross-kind coercion: two numbers compare
// numerically whatever their concrete Go type, but a string never
// equals a number and nothing equals nil.
func valuesEqual(a, b any) bool {
	if an, aok := asNumber(a); aok {
		bn, bok := asNumber(b)
		return bok && an == bn
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

// asNumber coerces the numeric shapes that reach the evaluator: native
// ints and floats, decoded JSON numbers, and decimal amounts. Booleans
// and strings are not numbers here.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case decimal.Decimal:
		return n.InexactFloat64(), true
	}
	return 0, false
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
