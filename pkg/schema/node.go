package schema

import (
	"sort"
	"strings"
)

// PropertyOrderKey stores the declaration order of a node's properties. The
// parser fills it in because decoded maps lose key order.
const PropertyOrderKey = "x-property-order"

// Node is one JSON-Schema-shaped mapping describing a single field.
type Node map[string]any

// References maps definition names to their schema nodes ($defs,
// definitions or OpenAPI components).
type References map[string]Node

// AsNode converts generic decoded values into a Node. It returns nil when the
// value is not an object.
func AsNode(value any) Node {
	switch typed := value.(type) {
	case Node:
		return typed
	case map[string]any:
		return Node(typed)
	default:
		return nil
	}
}

// Clone returns a shallow copy so callers can annotate a node without
// touching shared definitions.
func (n Node) Clone() Node {
	if n == nil {
		return Node{}
	}
	out := make(Node, len(n))
	for key, value := range n {
		out[key] = value
	}
	return out
}

// Has reports whether the key is present, regardless of its value.
func (n Node) Has(key string) bool {
	_, ok := n[key]
	return ok
}

// String returns the string stored under key or "".
func (n Node) String(key string) string {
	if n == nil {
		return ""
	}
	value, _ := n[key].(string)
	return value
}

// Bool returns the bool stored under key or false.
func (n Node) Bool(key string) bool {
	if n == nil {
		return false
	}
	value, _ := n[key].(bool)
	return value
}

// Number returns the numeric value stored under key.
func (n Node) Number(key string) (float64, bool) {
	if n == nil {
		return 0, false
	}
	return ToFloat(n[key])
}

// Int returns the integer stored under key or fallback.
func (n Node) Int(key string, fallback int) int {
	if value, ok := n.Number(key); ok {
		return int(value)
	}
	return fallback
}

func (n Node) Format() string      { return n.String("format") }
func (n Node) Title() string       { return n.String("title") }
func (n Node) Description() string { return n.String("description") }
func (n Node) Ref() string         { return n.String("$ref") }
func (n Node) ReadOnly() bool      { return n.Bool("readOnly") }
func (n Node) WriteOnly() bool     { return n.Bool("writeOnly") }

// Type returns the declared type. For a list of types the first non-null
// entry wins.
func (n Node) Type() string {
	if n == nil {
		return ""
	}
	switch typed := n["type"].(type) {
	case string:
		return typed
	case []any:
		for _, entry := range typed {
			if name, ok := entry.(string); ok && name != "null" {
				return name
			}
		}
	}
	return ""
}

// Enum returns the literal enum values, if any.
func (n Node) Enum() []any {
	if n == nil {
		return nil
	}
	values, _ := n["enum"].([]any)
	return values
}

// Properties returns the properties map of an object node.
func (n Node) Properties() map[string]any {
	if n == nil {
		return nil
	}
	props, _ := n["properties"].(map[string]any)
	return props
}

// Property returns a single property node.
func (n Node) Property(name string) Node {
	return AsNode(n.Properties()[name])
}

// PropertyNames lists property names in declaration order. Names missing from
// the recorded order are appended alphabetically.
func (n Node) PropertyNames() []string {
	props := n.Properties()
	if len(props) == 0 {
		return nil
	}
	names := make([]string, 0, len(props))
	seen := make(map[string]struct{}, len(props))
	if order, ok := n[PropertyOrderKey].([]any); ok {
		for _, raw := range order {
			name, ok := raw.(string)
			if !ok {
				continue
			}
			if _, exists := props[name]; !exists {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	var rest []string
	for name := range props {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Required returns the required property names.
func (n Node) Required() []string {
	raw, _ := n["required"].([]any)
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		if name, ok := entry.(string); ok {
			out = append(out, name)
		}
	}
	return out
}

// IsRequired reports whether name is listed under required.
func (n Node) IsRequired(name string) bool {
	for _, entry := range n.Required() {
		if entry == name {
			return true
		}
	}
	return false
}

// AdditionalProperties returns the value schema of a dict node.
func (n Node) AdditionalProperties() Node {
	return AsNode(n["additionalProperties"])
}

// Discriminator returns discriminator.propertyName when present.
func (n Node) Discriminator() string {
	disc := AsNode(n["discriminator"])
	if disc == nil {
		return ""
	}
	return disc.String("propertyName")
}

// MIMEType returns the media type hint attached to file nodes.
func (n Node) MIMEType() string {
	if value := n.String("mime_type"); value != "" {
		return value
	}
	return n.String("contentMediaType")
}

// Overrides collects properties carrying the reserved prefix with the prefix
// stripped. Values pass through untouched.
func (n Node) Overrides(prefix string) map[string]any {
	if prefix == "" || len(n) == 0 {
		return nil
	}
	var out map[string]any
	for key, value := range n {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		name := strings.TrimPrefix(key, prefix)
		if name == "" {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[name] = value
	}
	return out
}

// ToFloat converts decoded JSON numbers into float64.
func ToFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case interface{ Float64() (float64, error) }:
		f, err := typed.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
