package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"github.com/goliatone/go-modelform/pkg/schema"
)

// ErrNotStruct is returned when a Go model is not a struct.
var ErrNotStruct = errors.New("model: Go models must be structs")

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
		DoNotReference:            false,
	}
}

// Of reflects the JSON schema of T.
func Of[T any](opts ...Option) (*Model, error) {
	return FromType(reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

// FromType reflects the JSON schema of a struct type.
func FromType(t reflect.Type, opts ...Option) (*Model, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %v", ErrNotStruct, t)
	}
	reflected := newReflector().ReflectFromType(t)
	raw, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("model: marshal reflected schema: %w", err)
	}
	root, err := schema.ParseJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("model: reflected schema: %w", err)
	}
	delete(root, "$id")

	m := &Model{
		root:   root,
		refs:   collectReferences(root),
		goType: t,
	}
	return m.finish(opts)
}

// FromInstance reflects the schema of v's type and keeps v as the prior
// instance seeding the form.
func FromInstance(v any, opts ...Option) (*Model, error) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.New("model: instance is a nil pointer")
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, errors.New("model: instance is nil")
	}
	m, err := FromType(rv.Type(), opts...)
	if err != nil {
		return nil, err
	}
	if err := m.attach(v); err != nil {
		return nil, err
	}
	return m, nil
}

// attach keeps v as the prior instance. Its JSON form seeds the widgets.
func (m *Model) attach(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("model: marshal instance: %w", err)
	}
	values := make(map[string]any)
	if err := json.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("model: instance is not a JSON object: %w", err)
	}
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	m.instance = rv
	m.source = v
	m.values = values
	return nil
}

// Field returns the Go value of the instance field serialised under name.
func (m *Model) Field(name string) (any, bool) {
	field, ok := fieldByJSONName(m.instance, name)
	if !ok || !field.CanInterface() {
		return nil, false
	}
	return field.Interface(), true
}

// InstanceClass names the runtime type held by an instance field. Interface
// fields report the concrete type they hold, which lets unions without a
// discriminator pick the matching variant.
func (m *Model) InstanceClass(name string) string {
	field, ok := fieldByJSONName(m.instance, name)
	if !ok {
		return ""
	}
	if field.Kind() == reflect.Interface {
		if field.IsNil() {
			return ""
		}
		field = field.Elem()
	}
	return field.Type().String()
}

func fieldByJSONName(rv reflect.Value, name string) (reflect.Value, bool) {
	if !rv.IsValid() {
		return reflect.Value{}, false
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tagName, skip := jsonFieldName(sf)
		if skip {
			continue
		}
		if sf.Anonymous && tagName == "" {
			if found, ok := fieldByJSONName(rv.Field(i), name); ok {
				return found, true
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if tagName == "" {
			tagName = sf.Name
		}
		if tagName == name {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func jsonFieldName(sf reflect.StructField) (string, bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	return name, false
}
