package model

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-modelform/pkg/schema"
)

const validationResource = "mem://modelform/model.json"

// Violation is one validation failure. Path holds the property segments of
// the offending value; an empty path refers to the whole value.
type Violation struct {
	Path    []string
	Message string
}

// Validate checks values against the model schema. Violations are returned
// ordered by path; the error is reserved for schemas that fail to compile and
// values that cannot be encoded.
func (m *Model) Validate(values map[string]any) ([]Violation, error) {
	compiled, err := m.compile()
	if err != nil {
		return nil, err
	}
	instance, err := normalizeJSON(values)
	if err != nil {
		return nil, fmt.Errorf("model: encode values: %w", err)
	}
	err = compiled.Validate(instance)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("model: validate: %w", err)
	}
	violations := collectViolations(verr)
	sort.SliceStable(violations, func(i, j int) bool {
		return strings.Join(violations[i].Path, ".") < strings.Join(violations[j].Path, ".")
	})
	return violations, nil
}

func (m *Model) compile() (*jsonschema.Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.compiled != nil {
		return m.compiled, nil
	}

	doc := m.validationDoc.Clone()
	delete(doc, "$id")
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("model: encode schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(validationResource, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("model: add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(validationResource)
	if err != nil {
		return nil, fmt.Errorf("model: compile schema: %w", err)
	}
	m.compiled = compiled
	return compiled, nil
}

// collectViolations flattens the cause tree to its leaves.
func collectViolations(err *jsonschema.ValidationError) []Violation {
	if len(err.Causes) == 0 {
		return []Violation{violationFrom(err)}
	}
	var out []Violation
	for _, cause := range err.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}

func violationFrom(err *jsonschema.ValidationError) Violation {
	path := pointerSegments(err.InstanceLocation)
	message := err.Message
	if missing, ok := strings.CutPrefix(message, "missing properties: "); ok {
		names := strings.Split(missing, ", ")
		if len(names) == 1 {
			path = append(path, strings.Trim(names[0], `'"`))
			message = "field required"
		}
	}
	return Violation{Path: path, Message: message}
}

func pointerSegments(pointer string) []string {
	pointer = strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	pointer = strings.Trim(pointer, "/")
	if pointer == "" {
		return []string{}
	}
	parts := strings.Split(pointer, "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return parts
}

// normalizeJSON round-trips values through JSON so the validator sees plain
// maps, slices, strings, bools and float64 numbers.
func normalizeJSON(values any) (any, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode converts validated values into a new instance of the model's Go
// type and returns a pointer to it. Schema-only models return the values.
// File payloads encoded with the URL-safe alphabet are rewritten to the
// standard one so byte slice fields decode.
func (m *Model) Decode(values map[string]any) (any, error) {
	if m.goType == nil {
		return values, nil
	}
	prepared := toStdBase64(m.root, m.refs, orEmpty(values))
	raw, err := json.Marshal(prepared)
	if err != nil {
		return nil, fmt.Errorf("model: encode values: %w", err)
	}
	target := reflect.New(m.goType)
	if err := json.Unmarshal(raw, target.Interface()); err != nil {
		return nil, fmt.Errorf("model: decode %s: %w", m.goType, err)
	}
	return target.Interface(), nil
}

func orEmpty(values map[string]any) any {
	if values == nil {
		return map[string]any{}
	}
	return values
}

var urlToStd = strings.NewReplacer("-", "+", "_", "/")

func toStdBase64(node schema.Node, refs schema.References, value any) any {
	if node == nil || value == nil {
		return value
	}
	resolved := node
	if target, err := schema.SingleReference(node, refs); err == nil {
		resolved = target
	}
	if schema.IsSingleFile(resolved) {
		if s, ok := value.(string); ok {
			return urlToStd.Replace(s)
		}
		return value
	}
	switch typed := value.(type) {
	case map[string]any:
		props := resolved.Properties()
		if props == nil {
			return typed
		}
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[key] = toStdBase64(resolved.Property(key), refs, child)
		}
		return out
	case []any:
		item, err := schema.ItemsNode(resolved)
		if err != nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, child := range typed {
			out[i] = toStdBase64(item, refs, child)
		}
		return out
	default:
		return value
	}
}
