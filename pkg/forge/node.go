package forge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// ToNode converts a value into its JSON-tree form (map[string]any, []any,
// scalars). Values already in node form pass through untouched; typed models
// go through a JSON round trip.
func ToNode(v any) (any, error) {
	switch v.(type) {
	case nil, map[string]any, []any, string, bool, float64, json.Number:
		return v, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &DecodeError{Target: "node", Err: err}
	}

	var node any

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if err := dec.Decode(&node); err != nil {
		return nil, &DecodeError{Target: "node", Err: err}
	}

	return node, nil
}

// Decode maps a node onto a model type. This is the default model mapper;
// anything that can produce a T works in its place.
func Decode[T any](node any) (T, error) {
	var out T

	raw, err := json.Marshal(node)
	if err != nil {
		return out, &DecodeError{Target: typeName[T](), Err: err}
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &DecodeError{Target: typeName[T](), Err: err}
	}

	return out, nil
}

// DecodeResult decodes a node and wraps it in a Result: a sequence node
// becomes a collection, anything else a single item.
func DecodeResult[T any](node any) (*Result[T], error) {
	if seq, ok := node.([]any); ok {
		items := make([]T, 0, len(seq))

		for i, elem := range seq {
			item, err := Decode[T](elem)
			if err != nil {
				return nil, fmt.Errorf("decoding item %d: %w", i, err)
			}

			items = append(items, item)
		}

		return Collection(items), nil
	}

	item, err := Decode[T](node)
	if err != nil {
		return nil, err
	}

	return Single(item), nil
}

func typeName[T any]() string {
	typ := reflect.TypeFor[T]()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	return typ.String()
}
