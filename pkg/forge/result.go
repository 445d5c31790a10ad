package forge

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/clientforge-io/forge/internal/path"
)

// Result wraps decoded response data and exposes select, query, and filter
// operations, each returning a new independent value. A Result remembers
// whether it wraps a single item or a collection; operations preserve that
// shape unless their semantics necessarily change it.
type Result[T any] struct {
	items  []T
	single bool
}

// Single wraps one item.
func Single[T any](item T) *Result[T] {
	return &Result[T]{items: []T{item}, single: true}
}

// Collection wraps an ordered sequence of items. The slice is copied so the
// Result owns its data.
func Collection[T any](items []T) *Result[T] {
	owned := make([]T, len(items))
	copy(owned, items)

	return &Result[T]{items: owned}
}

// IsSingle reports whether the Result wraps exactly one item by shape (as
// opposed to a collection that happens to have one element).
func (r *Result[T]) IsSingle() bool { return r.single }

// Len returns the number of wrapped items.
func (r *Result[T]) Len() int { return len(r.items) }

// Items returns a copy of the wrapped items as a slice.
func (r *Result[T]) Items() []T {
	out := make([]T, len(r.items))
	copy(out, r.items)

	return out
}

// All iterates the wrapped items in order.
func (r *Result[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range r.items {
			if !yield(item) {
				return
			}
		}
	}
}

// At returns the item at index i. Indexing a single-item Result at 0
// returns the wrapped item.
func (r *Result[T]) At(i int) (T, error) {
	var zero T

	if i < 0 || i >= len(r.items) {
		return zero, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(r.items))
	}

	return r.items[i], nil
}

// First returns the first item.
func (r *Result[T]) First() (T, error) {
	return r.At(0)
}

// One returns the only item; it fails unless the Result wraps exactly one.
func (r *Result[T]) One() (T, error) {
	var zero T

	if len(r.items) != 1 {
		return zero, fmt.Errorf("%w: got %d", ErrNotSingleResult, len(r.items))
	}

	return r.items[0], nil
}

// Equal reports whether two Results have the same shape and deeply equal
// wrapped values.
func (r *Result[T]) Equal(other *Result[T]) bool {
	if other == nil {
		return false
	}

	return r.single == other.single && reflect.DeepEqual(r.items, other.items)
}

// String returns a debug form.
func (r *Result[T]) String() string {
	if r.single {
		return fmt.Sprintf("Result(single %v)", r.items[0])
	}

	return fmt.Sprintf("Result(%v)", r.items)
}

// Filter returns a new Result wrapping only the items every condition
// matches, in input order. The output is always collection-shaped:
// filtering narrows a set, even when the input wrapped a single item.
func (r *Result[T]) Filter(conditions ...Condition) (*Result[T], error) {
	kept := make([]T, 0, len(r.items))

	for _, item := range r.items {
		matched := true

		for _, condition := range conditions {
			ok, err := condition.Matches(item)
			if err != nil {
				return nil, err
			}

			if !ok {
				matched = false

				break
			}
		}

		if matched {
			kept = append(kept, item)
		}
	}

	return &Result[T]{items: kept}, nil
}

// Query resolves a path expression once across the wrapped tree and wraps
// the matches in a new Result. A single-item Result queried with a
// non-wildcard expression stays single-shaped, so Query on one fetched item
// behaves like a scalar accessor; any wildcard or filter yields a
// collection even when it matches one value.
func (r *Result[T]) Query(expr string) (*Result[any], error) {
	compiled, err := path.Compile(expr)
	if err != nil {
		return nil, err
	}

	var matches []any

	for _, item := range r.items {
		node, err := ToNode(item)
		if err != nil {
			return nil, err
		}

		res, err := compiled.Resolve(node)
		if err != nil {
			return nil, err
		}

		matches = append(matches, res.Values...)
	}

	if r.single && !compiled.Multi() {
		if len(matches) == 0 {
			return nil, &PathEvaluationError{Expr: expr}
		}

		return Single(matches[0]), nil
	}

	if matches == nil {
		matches = []any{}
	}

	return &Result[any]{items: matches}, nil
}

// Selection names one projected key: either a plain key/path or an aliased
// path expression.
type Selection struct {
	Key  string
	Path string
}

// Key selects a path under its own name.
func Key(name string) Selection { return Selection{Key: name, Path: name} }

// Alias selects a path expression under a different output key.
func Alias(key, expr string) Selection { return Selection{Key: key, Path: expr} }

// Select resolves every selection against each item and returns one mapping
// per item. A selection with multiple matches collapses to an ordered
// sequence value; a single match stays scalar; no match omits the key.
// When two selections share a key, the later one wins.
func (r *Result[T]) Select(selections ...Selection) ([]map[string]any, error) {
	compiled := make([]*path.Expr, len(selections))

	for i, sel := range selections {
		expr, err := path.Compile(sel.Path)
		if err != nil {
			return nil, err
		}

		compiled[i] = expr
	}

	out := make([]map[string]any, 0, len(r.items))

	for _, item := range r.items {
		node, err := ToNode(item)
		if err != nil {
			return nil, err
		}

		projected := make(map[string]any, len(selections))

		for i, sel := range selections {
			res, err := compiled[i].Resolve(node)
			if err != nil {
				return nil, err
			}

			switch len(res.Values) {
			case 0:
				// Absent on this item: no contribution.
			case 1:
				projected[sel.Key] = res.Values[0]
			default:
				projected[sel.Key] = res.Values
			}
		}

		out = append(out, projected)
	}

	return out, nil
}

// SelectOne projects a single-shaped Result into one mapping.
func (r *Result[T]) SelectOne(selections ...Selection) (map[string]any, error) {
	if !r.single {
		return nil, fmt.Errorf("%w: got collection of %d", ErrNotSingleResult, len(r.items))
	}

	rows, err := r.Select(selections...)
	if err != nil {
		return nil, err
	}

	return rows[0], nil
}
