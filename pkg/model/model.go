package model

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-modelform/pkg/schema"
)

// ErrNoProperties is returned when the root schema does not describe an
// object with properties.
var ErrNoProperties = errors.New("model: root schema has no properties")

// Model is the data-model side of a form.
type Model struct {
	name     string
	root     schema.Node
	refs     schema.References
	goType   reflect.Type
	instance reflect.Value
	source   any
	values   map[string]any

	// validation document; root plus embedded definitions
	validationDoc schema.Node

	mu       sync.Mutex
	compiled *jsonschema.Schema
}

// Option configures model construction.
type Option func(*options)

type options struct {
	name       string
	decorators []Decorator
	instance   any
}

// WithName overrides the model name, which otherwise comes from the schema
// title or the Go type name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithDecorators runs decorators over the model after construction.
func WithDecorators(decorators ...Decorator) Option {
	return func(o *options) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithInstance seeds a schema-backed model with prior values. v is a struct
// or a map serialising to a JSON object. A struct also reports the concrete
// types of its interface fields through InstanceClass.
func WithInstance(v any) Option {
	return func(o *options) {
		o.instance = v
	}
}

// FromNode builds a model from an already parsed root schema. Definitions are
// collected from $defs, definitions and components.schemas.
func FromNode(root schema.Node, opts ...Option) (*Model, error) {
	if root == nil {
		return nil, errors.New("model: root schema is nil")
	}
	m := &Model{
		root: root,
		refs: collectReferences(root),
	}
	return m.finish(opts)
}

// FromDocument parses a JSON or YAML schema document into a model.
func FromDocument(doc schema.Document, opts ...Option) (*Model, error) {
	node, err := doc.Node()
	if err != nil {
		return nil, fmt.Errorf("model: %s: %w", doc.Location(), err)
	}
	return FromNode(node, opts...)
}

func (m *Model) finish(opts []Option) (*Model, error) {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if m.root.Properties() == nil {
		return nil, ErrNoProperties
	}
	if m.validationDoc == nil {
		m.validationDoc = m.root
	}
	if cfg.instance != nil {
		if err := m.attach(cfg.instance); err != nil {
			return nil, err
		}
	}
	m.name = cfg.name
	if m.name == "" {
		m.name = m.root.Title()
	}
	if m.name == "" && m.goType != nil {
		m.name = schema.NameToTitle(m.goType.Name())
	}
	for _, decorator := range cfg.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(m); err != nil {
			return nil, fmt.Errorf("model: decorate: %w", err)
		}
	}
	return m, nil
}

// Name returns the display name of the model.
func (m *Model) Name() string { return m.name }

// Root returns the root schema node. Callers must not mutate it; clone
// property nodes before annotating them.
func (m *Model) Root() schema.Node { return m.root }

// References returns the definitions table.
func (m *Model) References() schema.References { return m.refs }

// GoType returns the Go type values decode into, or nil for schema-only
// models.
func (m *Model) GoType() reflect.Type { return m.goType }

// PropertyNames lists the top-level properties in declaration order.
func (m *Model) PropertyNames() []string { return m.root.PropertyNames() }

// Property returns a top-level property node.
func (m *Model) Property(name string) schema.Node { return m.root.Property(name) }

// IsRequired reports whether a top-level property is required.
func (m *Model) IsRequired(name string) bool { return m.root.IsRequired(name) }

// HasInstance reports whether the model carries a prior instance.
func (m *Model) HasInstance() bool { return m.values != nil }

// InstanceValue returns the JSON form of a top-level field of the prior
// instance.
func (m *Model) InstanceValue(name string) (any, bool) {
	if m.values == nil {
		return nil, false
	}
	value, ok := m.values[name]
	return value, ok
}

// SetDefault overrides the schema default of a top-level property. The root
// node is copied so shared definitions stay untouched.
func (m *Model) SetDefault(name string, value any) error {
	prop := m.root.Property(name)
	if prop == nil {
		return fmt.Errorf("model: unknown property %q", name)
	}
	props := make(map[string]any, len(m.root.Properties()))
	for key, existing := range m.root.Properties() {
		props[key] = existing
	}
	updated := prop.Clone()
	updated["default"] = value
	props[name] = map[string]any(updated)

	root := m.root.Clone()
	root["properties"] = props
	m.root = root

	doc := m.validationDoc.Clone()
	if _, embedded := doc["properties"]; embedded {
		doc["properties"] = props
	}
	m.validationDoc = doc

	m.mu.Lock()
	m.compiled = nil
	m.mu.Unlock()
	return nil
}

func collectReferences(root schema.Node) schema.References {
	refs := make(schema.References)
	add := func(raw any) {
		defs, _ := raw.(map[string]any)
		for name, def := range defs {
			if node := schema.AsNode(def); node != nil {
				refs[name] = node
			}
		}
	}
	add(root["definitions"])
	add(root["$defs"])
	if components := schema.AsNode(root["components"]); components != nil {
		add(components["schemas"])
	}
	return refs
}
