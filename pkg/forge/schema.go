package forge

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/clientforge-io/forge/internal/path"
)

// fieldNode is one descriptor in a schema's arena. Parent links point
// root-ward by index, so resolving a descriptor's full path is a walk from
// the root of the chain to the leaf.
type fieldNode struct {
	name     string // Go field name
	jsonName string
	alias    string // optional path override from the forge tag
	parent   int    // arena index, -1 for a direct model attribute
	typ      reflect.Type
}

// Schema holds every field descriptor for one model type. All descriptors
// live in one arena owned by the schema; Field handles reference them by
// index, which keeps ownership single-directional and lifetimes tied to the
// schema itself.
type Schema struct {
	typ    reflect.Type
	fields []fieldNode
	index  map[string]int
}

const maxSchemaDepth = 8

var schemaCache sync.Map // reflect.Type -> *Schema

// SchemaOf builds (once per type) the field descriptor table for a model
// struct. Field names come from json tags; a `forge:"..."` tag supplies a
// path alias for non-trivial mappings. Nested structs and slices of structs
// get child descriptors, so dotted lookups like "items.price" resolve.
func SchemaOf[T any]() (*Schema, error) {
	typ := reflect.TypeFor[T]()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if cached, ok := schemaCache.Load(typ); ok {
		return cached.(*Schema), nil
	}

	if typ.Kind() != reflect.Struct {
		return nil, newConfigurationError("model type %s is not a struct", typ)
	}

	schema := &Schema{typ: typ, index: make(map[string]int)}
	schema.addFields(typ, -1, "", 0)

	actual, _ := schemaCache.LoadOrStore(typ, schema)

	return actual.(*Schema), nil
}

// MustSchemaOf is SchemaOf for package-level model declarations.
func MustSchemaOf[T any]() *Schema {
	schema, err := SchemaOf[T]()
	if err != nil {
		panic(err)
	}

	return schema
}

func (s *Schema) addFields(typ reflect.Type, parent int, prefix string, depth int) {
	if depth >= maxSchemaDepth {
		return
	}

	for i := range typ.NumField() {
		structField := typ.Field(i)
		if !structField.IsExported() {
			continue
		}

		jsonName := jsonFieldName(structField)
		if jsonName == "" {
			continue
		}

		node := fieldNode{
			name:     structField.Name,
			jsonName: jsonName,
			alias:    structField.Tag.Get("forge"),
			parent:   parent,
			typ:      structField.Type,
		}

		idx := len(s.fields)
		s.fields = append(s.fields, node)
		s.index[prefix+jsonName] = idx

		if nested := nestedStructType(structField.Type); nested != nil {
			s.addFields(nested, idx, prefix+jsonName+".", depth+1)
		}
	}
}

// Field looks up a descriptor by its dotted json-name path, e.g. "name" or
// "items.price". Unknown paths are a configuration error.
func (s *Schema) Field(fieldPath string) (Field, error) {
	idx, ok := s.index[fieldPath]
	if !ok {
		return Field{}, newConfigurationError("model %s has no field %q", s.typ, fieldPath)
	}

	return Field{schema: s, idx: idx}, nil
}

// MustField is Field for package-level condition declarations.
func (s *Schema) MustField(fieldPath string) Field {
	field, err := s.Field(fieldPath)
	if err != nil {
		panic(err)
	}

	return field
}

// ModelType returns the struct type the schema describes.
func (s *Schema) ModelType() reflect.Type { return s.typ }

// Len returns the number of descriptors in the arena.
func (s *Schema) Len() int { return len(s.fields) }

// Field is a declarative handle to one model attribute. Comparison methods
// build Conditions instead of evaluating anything; see condition.go.
type Field struct {
	schema *Schema
	idx    int
}

// Path returns the dotted root-first json-name path of the descriptor.
func (f Field) Path() string {
	names := f.chainNames()

	return strings.Join(names, ".")
}

// String returns a debug form like Field(Product.items.price).
func (f Field) String() string {
	if f.schema == nil {
		return "Field(<unset>)"
	}

	return "Field(" + f.schema.typ.Name() + "." + f.Path() + ")"
}

func (f Field) chainNames() []string {
	var names []string

	for idx := f.idx; idx >= 0; idx = f.schema.fields[idx].parent {
		names = append(names, f.schema.fields[idx].jsonName)
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}

	return names
}

// chain returns the descriptor chain root-first.
func (f Field) chain() []fieldNode {
	var nodes []fieldNode

	for idx := f.idx; idx >= 0; idx = f.schema.fields[idx].parent {
		nodes = append(nodes, f.schema.fields[idx])
	}

	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	return nodes
}

// valueOf resolves the descriptor chain against a model instance or raw
// node. Absence anywhere along the chain reports found=false rather than an
// error, since heterogeneous collections are expected input.
func (f Field) valueOf(item any) (any, bool, error) {
	if f.schema == nil {
		return nil, false, ErrConditionFieldUnset
	}

	current := item

	for _, node := range f.chain() {
		if current == nil {
			return nil, false, nil
		}

		if mapping, ok := current.(map[string]any); ok {
			next, found, err := resolveNodeHop(node, mapping)
			if err != nil || !found {
				return nil, found, err
			}

			current = next

			continue
		}

		next, found := resolveStructHop(node, current)
		if !found {
			return nil, false, nil
		}

		current = next
	}

	return current, true, nil
}

func resolveNodeHop(node fieldNode, mapping map[string]any) (any, bool, error) {
	if node.alias != "" {
		res, err := path.Resolve(node.alias, mapping)
		if err != nil {
			return nil, false, err
		}

		if len(res.Values) == 0 {
			return nil, false, nil
		}

		return res.Values[0], true, nil
	}

	value, ok := mapping[node.jsonName]

	return value, ok, nil
}

func resolveStructHop(node fieldNode, current any) (any, bool) {
	value := reflect.ValueOf(current)
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil, false
		}

		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		// Collections are only descended into by Where quantifiers.
		return nil, false
	}

	fieldValue := value.FieldByName(node.name)
	if !fieldValue.IsValid() {
		return nil, false
	}

	return fieldValue.Interface(), true
}

func jsonFieldName(structField reflect.StructField) string {
	tag := structField.Tag.Get("json")
	if tag == "-" {
		return ""
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = structField.Name
	}

	return name
}

// nestedStructType returns the struct type a field descends into, or nil
// when the field is a leaf. Pointers and slices are unwrapped one level.
func nestedStructType(typ reflect.Type) reflect.Type {
	for typ.Kind() == reflect.Pointer || typ.Kind() == reflect.Slice || typ.Kind() == reflect.Array {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct || typ == reflect.TypeOf(time.Time{}) {
		return nil
	}

	return typ
}
