package model

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-modelform/pkg/schema"
)

// ErrUnknownComponent is returned when the requested component schema is not
// declared by the OpenAPI document.
var ErrUnknownComponent = errors.New("model: unknown component schema")

// OpenAPIOptions configures FromOpenAPI.
type OpenAPIOptions struct {
	// Component names the components.schemas entry used as the form root.
	Component string
	// AllowExternalRefs lets the loader follow references outside the
	// document.
	AllowExternalRefs bool
	// Validate runs the OpenAPI document validation before extraction.
	Validate bool
}

// FromOpenAPI builds a model from one component schema of an OpenAPI 3
// document. Every component becomes a definition so references between them
// resolve.
func FromOpenAPI(ctx context.Context, doc schema.Document, cfg OpenAPIOptions, opts ...Option) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.AllowExternalRefs,
	}
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("model: load openapi document: %w", err)
	}
	if cfg.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("model: validate openapi document: %w", err)
		}
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, fmt.Errorf("%w: document declares no component schemas", ErrUnknownComponent)
	}

	// kin drops declaration order, so it is recovered from our own parse.
	ordered, err := doc.Node()
	if err != nil {
		return nil, fmt.Errorf("model: parse openapi document: %w", err)
	}
	var orderedSchemas map[string]any
	if components := schema.AsNode(ordered["components"]); components != nil {
		orderedSchemas, _ = components["schemas"].(map[string]any)
	}

	refs := make(schema.References, len(spec.Components.Schemas))
	schemas := make(map[string]any, len(spec.Components.Schemas))
	for name, ref := range spec.Components.Schemas {
		if ref == nil || ref.Value == nil {
			continue
		}
		node, err := componentNode(ref.Value)
		if err != nil {
			return nil, fmt.Errorf("model: component %s: %w", name, err)
		}
		copyPropertyOrder(node, schema.AsNode(orderedSchemas[name]))
		refs[name] = node
		schemas[name] = map[string]any(node)
	}

	root, ok := refs[cfg.Component]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownComponent, cfg.Component, ComponentNames(refs))
	}
	if root.Title() == "" {
		root = root.Clone()
		root["title"] = cfg.Component
	}

	validationDoc := root.Clone()
	validationDoc["components"] = map[string]any{"schemas": schemas}

	m := &Model{
		root:          root,
		refs:          refs,
		validationDoc: validationDoc,
	}
	return m.finish(opts)
}

// ComponentNames lists definition names alphabetically.
func ComponentNames(refs schema.References) []string {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func componentNode(value *openapi3.Schema) (schema.Node, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	node, err := schema.ParseJSON(raw)
	if err != nil {
		return nil, err
	}
	normalizeOpenAPI(node)
	return node, nil
}

// normalizeOpenAPI rewrites OpenAPI 3.0 keywords into their JSON Schema
// 2020-12 equivalents.
func normalizeOpenAPI(node schema.Node) {
	if node == nil {
		return
	}
	if exclusive, ok := node["exclusiveMinimum"].(bool); ok {
		delete(node, "exclusiveMinimum")
		if min, has := node["minimum"]; has && exclusive {
			node["exclusiveMinimum"] = min
			delete(node, "minimum")
		}
	}
	if exclusive, ok := node["exclusiveMaximum"].(bool); ok {
		delete(node, "exclusiveMaximum")
		if max, has := node["maximum"]; has && exclusive {
			node["exclusiveMaximum"] = max
			delete(node, "maximum")
		}
	}
	delete(node, "nullable")

	for _, key := range []string{"items", "additionalProperties", "not"} {
		normalizeOpenAPI(schema.AsNode(node[key]))
	}
	for _, prop := range node.Properties() {
		normalizeOpenAPI(schema.AsNode(prop))
	}
	for _, key := range []string{"allOf", "anyOf", "oneOf"} {
		branches, _ := node[key].([]any)
		for _, branch := range branches {
			normalizeOpenAPI(schema.AsNode(branch))
		}
	}
}

func copyPropertyOrder(dst, src schema.Node) {
	if dst == nil || src == nil {
		return
	}
	if order, ok := src[schema.PropertyOrderKey]; ok {
		dst[schema.PropertyOrderKey] = order
	}
	for name, prop := range dst.Properties() {
		copyPropertyOrder(schema.AsNode(prop), src.Property(name))
	}
	copyPropertyOrder(schema.AsNode(dst["items"]), schema.AsNode(src["items"]))
}
