package path

import (
	"encoding/json"
	"reflect"
	"sort"
)

// Resolution is the outcome of evaluating an expression against a node.
type Resolution struct {
	// Values holds every match in traversal order.
	Values []any
	// Multi mirrors Expr.Multi: true when the expression can fan out.
	Multi bool
}

// Resolve compiles expr and evaluates it against node. Absent keys and
// indices contribute nothing; an empty Values slice is a valid outcome.
func Resolve(expr string, node any) (Resolution, error) {
	compiled, err := Compile(expr)
	if err != nil {
		return Resolution{}, err
	}

	return compiled.Resolve(node)
}

// ResolveOne evaluates a required single path. It fails with an
// *EvaluationError when the expression matches nothing.
func ResolveOne(expr string, node any) (any, error) {
	res, err := Resolve(expr, node)
	if err != nil {
		return nil, err
	}

	if len(res.Values) == 0 {
		return nil, &EvaluationError{Expr: expr}
	}

	return res.Values[0], nil
}

// Resolve evaluates the compiled expression against node.
func (e *Expr) Resolve(node any) (Resolution, error) {
	values := []any{node}

	for _, seg := range e.segs {
		values = applySegment(seg, values)
		if len(values) == 0 {
			break
		}
	}

	if e.arith != nil {
		applied := make([]any, 0, len(values))

		for _, v := range values {
			num, ok := AsNumber(v)
			if !ok {
				return Resolution{}, &ConversionError{Expr: e.src, Value: v}
			}

			applied = append(applied, applyArith(e.arith, num))
		}

		values = applied
	}

	return Resolution{Values: values, Multi: e.multi}, nil
}

func applySegment(seg segment, values []any) []any {
	var out []any

	for _, v := range values {
		switch seg.kind {
		case segKey:
			if m, ok := v.(map[string]any); ok {
				if child, present := m[seg.name]; present {
					out = append(out, child)
				}
			}
		case segIndex:
			if arr, ok := v.([]any); ok {
				idx := seg.index
				if idx < 0 {
					idx += len(arr)
				}

				if idx >= 0 && idx < len(arr) {
					out = append(out, arr[idx])
				}
			}
		case segWildcard:
			switch container := v.(type) {
			case []any:
				out = append(out, container...)
			case map[string]any:
				// Deterministic order for mapping nodes.
				keys := make([]string, 0, len(container))
				for k := range container {
					keys = append(keys, k)
				}

				sort.Strings(keys)

				for _, k := range keys {
					out = append(out, container[k])
				}
			}
		case segFilter:
			if arr, ok := v.([]any); ok {
				for _, item := range arr {
					if seg.pred.matches(item) {
						out = append(out, item)
					}
				}
			}
		}
	}

	return out
}

func (p *predicate) matches(item any) bool {
	target := item

	for _, key := range p.target {
		m, ok := target.(map[string]any)
		if !ok {
			return false
		}

		target, ok = m[key]
		if !ok {
			return false
		}
	}

	if p.exists {
		return true
	}

	switch p.op {
	case "==":
		return looseEqual(target, p.lit)
	case "!=":
		return !looseEqual(target, p.lit)
	case "<", "<=", ">", ">=":
		cmp, ok := orderedCompare(target, p.lit)
		if !ok {
			return false
		}

		switch p.op {
		case "<":
			return cmp < 0
		case "<=":
			return cmp <= 0
		case ">":
			return cmp > 0
		default:
			return cmp >= 0
		}
	default:
		return false
	}
}

func applyArith(op *arithOp, value float64) float64 {
	switch op.op {
	case '+':
		return value + op.operand
	case '-':
		return value - op.operand
	case '*':
		return value * op.operand
	default:
		return value / op.operand
	}
}

// AsNumber coerces the numeric shapes a decoded JSON tree can carry.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

func looseEqual(a, b any) bool {
	if na, ok := AsNumber(a); ok {
		if nb, ok := AsNumber(b); ok {
			return na == nb
		}

		return false
	}

	return reflect.DeepEqual(a, b)
}

// orderedCompare returns -1/0/1 for comparable pairs (numbers or strings).
func orderedCompare(a, b any) (int, bool) {
	if na, ok := AsNumber(a); ok {
		nb, ok := AsNumber(b)
		if !ok {
			return 0, false
		}

		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		default:
			return 0, true
		}
	}

	sa, ok := a.(string)
	if !ok {
		return 0, false
	}

	sb, ok := b.(string)
	if !ok {
		return 0, false
	}

	switch {
	case sa < sb:
		return -1, true
	case sa > sb:
		return 1, true
	default:
		return 0, true
	}
}
