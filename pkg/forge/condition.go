package forge

import (
	"fmt"
	"reflect"

	"github.com/clientforge-io/forge/internal/path"
)

type condKind uint8

const (
	condCompare condKind = iota
	condIn
	condLength
	condQuantifier
	condAnd
	condOr
	condNot
)

type compareOp uint8

const (
	opEq compareOp = iota
	opNe
	opLt
	opLe
	opGt
	opGe
)

func (op compareOp) String() string {
	switch op {
	case opEq:
		return "=="
	case opNe:
		return "!="
	case opLt:
		return "<"
	case opLe:
		return "<="
	case opGt:
		return ">"
	default:
		return ">="
	}
}

// Condition is an immutable boolean expression over model data. Building a
// Condition never evaluates it; Matches is the single evaluation
// entrypoint, used by Result.Filter.
type Condition struct {
	kind     condKind
	op       compareOp
	field    Field
	value    any
	values   []any
	all      bool
	children []Condition
}

// Comparison builders. Each returns a Condition comparing the field's
// resolved value against a literal.

// Eq builds an equality condition.
func (f Field) Eq(value any) Condition {
	return Condition{kind: condCompare, op: opEq, field: f, value: value}
}

// Ne builds an inequality condition.
func (f Field) Ne(value any) Condition {
	return Condition{kind: condCompare, op: opNe, field: f, value: value}
}

// Lt builds a less-than condition.
func (f Field) Lt(value any) Condition {
	return Condition{kind: condCompare, op: opLt, field: f, value: value}
}

// Le builds a less-than-or-equal condition.
func (f Field) Le(value any) Condition {
	return Condition{kind: condCompare, op: opLe, field: f, value: value}
}

// Gt builds a greater-than condition.
func (f Field) Gt(value any) Condition {
	return Condition{kind: condCompare, op: opGt, field: f, value: value}
}

// Ge builds a greater-than-or-equal condition.
func (f Field) Ge(value any) Condition {
	return Condition{kind: condCompare, op: opGe, field: f, value: value}
}

// In builds a membership condition: the field's value must equal one of the
// given values.
func (f Field) In(values ...any) Condition {
	return Condition{kind: condIn, field: f, values: values}
}

// FieldLength compares the length of a collection or string field.
type FieldLength struct {
	field Field
}

// Length returns a handle whose comparisons apply to len(field).
func (f Field) Length() FieldLength { return FieldLength{field: f} }

// Eq builds a condition for the length being equal to n.
func (l FieldLength) Eq(n int) Condition {
	return Condition{kind: condLength, op: opEq, field: l.field, value: n}
}

// Lt builds a condition for the length being less than n.
func (l FieldLength) Lt(n int) Condition {
	return Condition{kind: condLength, op: opLt, field: l.field, value: n}
}

// Le builds a condition for the length being at most n.
func (l FieldLength) Le(n int) Condition {
	return Condition{kind: condLength, op: opLe, field: l.field, value: n}
}

// Gt builds a condition for the length being greater than n.
func (l FieldLength) Gt(n int) Condition {
	return Condition{kind: condLength, op: opGt, field: l.field, value: n}
}

// Ge builds a condition for the length being at least n.
func (l FieldLength) Ge(n int) Condition {
	return Condition{kind: condLength, op: opGe, field: l.field, value: n}
}

// FieldQuantifier quantifies a condition over a nested collection field.
type FieldQuantifier struct {
	field Field
}

// Where returns a handle for existential tests over a collection field.
// The nested condition passed to Any or All is evaluated against each
// element, so it is declared on the element's schema.
func (f Field) Where() FieldQuantifier { return FieldQuantifier{field: f} }

// Any builds a condition that holds when at least one item of the
// collection matches the nested condition. An empty collection never
// matches.
func (q FieldQuantifier) Any(condition Condition) Condition {
	return Condition{kind: condQuantifier, field: q.field, children: []Condition{condition}}
}

// All builds a condition that holds when every item of the collection
// matches the nested condition. An empty collection always matches.
func (q FieldQuantifier) All(condition Condition) Condition {
	return Condition{kind: condQuantifier, field: q.field, all: true, children: []Condition{condition}}
}

// And combines conditions; all must hold. Evaluation short-circuits.
func And(conditions ...Condition) Condition {
	return Condition{kind: condAnd, children: conditions}
}

// Or combines conditions; at least one must hold. Evaluation
// short-circuits.
func Or(conditions ...Condition) Condition {
	return Condition{kind: condOr, children: conditions}
}

// Not negates a condition.
func Not(condition Condition) Condition {
	return Condition{kind: condNot, children: []Condition{condition}}
}

// Matches evaluates the condition against a decoded model instance or raw
// node. Absence of the referenced field is false, not an error, so one
// Condition can run over heterogeneous collections.
func (c Condition) Matches(item any) (bool, error) {
	switch c.kind {
	case condAnd:
		for _, child := range c.children {
			ok, err := child.Matches(item)
			if err != nil || !ok {
				return false, err
			}
		}

		return true, nil
	case condOr:
		for _, child := range c.children {
			ok, err := child.Matches(item)
			if err != nil {
				return false, err
			}

			if ok {
				return true, nil
			}
		}

		return false, nil
	case condNot:
		ok, err := c.children[0].Matches(item)
		if err != nil {
			return false, err
		}

		return !ok, nil
	default:
		return c.matchesLeaf(item)
	}
}

func (c Condition) matchesLeaf(item any) (bool, error) {
	value, found, err := c.field.valueOf(item)
	if err != nil {
		return false, err
	}

	if !found {
		return false, nil
	}

	switch c.kind {
	case condCompare:
		return compareCondition(c.op, value, c.value)
	case condIn:
		for _, candidate := range c.values {
			if looseEqual(value, candidate) {
				return true, nil
			}
		}

		return false, nil
	case condLength:
		length, ok := lengthOf(value)
		if !ok {
			return false, nil
		}

		return compareCondition(c.op, length, c.value)
	case condQuantifier:
		return c.matchesQuantifier(value)
	default:
		return false, fmt.Errorf("unsupported condition kind %d", c.kind)
	}
}

func (c Condition) matchesQuantifier(value any) (bool, error) {
	collection := reflect.ValueOf(value)
	for collection.Kind() == reflect.Pointer || collection.Kind() == reflect.Interface {
		if collection.IsNil() {
			return false, nil
		}

		collection = collection.Elem()
	}

	if collection.Kind() != reflect.Slice && collection.Kind() != reflect.Array {
		return false, nil
	}

	nested := c.children[0]

	for i := range collection.Len() {
		ok, err := nested.Matches(collection.Index(i).Interface())
		if err != nil {
			return false, err
		}

		if c.all && !ok {
			return false, nil
		}

		if !c.all && ok {
			return true, nil
		}
	}

	return c.all, nil
}

// String returns a debug form like Condition(Field(Item.price) > 2).
func (c Condition) String() string {
	switch c.kind {
	case condCompare:
		return fmt.Sprintf("Condition(%s %s %v)", c.field, c.op, c.value)
	case condIn:
		return fmt.Sprintf("Condition(%s in %v)", c.field, c.values)
	case condLength:
		return fmt.Sprintf("Condition(len(%s) %s %v)", c.field, c.op, c.value)
	case condQuantifier:
		quantifier := "any"
		if c.all {
			quantifier = "all"
		}

		return fmt.Sprintf("Condition(%s over %s of %s)", c.children[0], quantifier, c.field)
	case condAnd:
		return fmt.Sprintf("And%v", c.children)
	case condOr:
		return fmt.Sprintf("Or%v", c.children)
	default:
		return fmt.Sprintf("Not(%s)", c.children[0])
	}
}

func compareCondition(op compareOp, left, right any) (bool, error) {
	switch op {
	case opEq:
		return looseEqual(left, right), nil
	case opNe:
		return !looseEqual(left, right), nil
	default:
		cmp, ok := orderedCompare(left, right)
		if !ok {
			return false, nil
		}

		switch op {
		case opLt:
			return cmp < 0, nil
		case opLe:
			return cmp <= 0, nil
		case opGt:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	}
}

func lengthOf(value any) (int, bool) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return 0, false
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len(), true
	default:
		return 0, false
	}
}

// looseEqual and orderedCompare mirror the path engine's comparison rules
// so filter expressions and Conditions agree on semantics.
func looseEqual(a, b any) bool {
	if na, ok := asComparableNumber(a); ok {
		if nb, ok := asComparableNumber(b); ok {
			return na == nb
		}

		return false
	}

	return reflect.DeepEqual(a, b)
}

func orderedCompare(a, b any) (int, bool) {
	if na, ok := asComparableNumber(a); ok {
		nb, ok := asComparableNumber(b)
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

	sa, aOK := a.(string)
	sb, bOK := b.(string)

	if !aOK || !bOK {
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

func asComparableNumber(v any) (float64, bool) {
	return path.AsNumber(v)
}
