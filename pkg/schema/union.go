package schema

import (
	"reflect"
	"strings"
)

// Variant is one candidate branch of a union.
type Variant struct {
	Name string
	Ref  string
	Node Node
}

// Union is the tagged list of candidate variants behind a oneOf/anyOf node.
// Type inference only ever looks at the first variant (see Flatten), while
// Match works against the full list.
type Union struct {
	Variants      []Variant
	Discriminator string
}

// UnionOf resolves every branch of a union node.
func UnionOf(node Node, refs References) (Union, error) {
	branches := unionBranches(node)
	union := Union{Discriminator: node.Discriminator()}
	for _, raw := range branches {
		branch := AsNode(raw)
		ref := branch.Ref()
		target, err := ResolveReference(ref, refs)
		if err != nil {
			return Union{}, err
		}
		name := target.Title()
		if name == "" {
			name = DefinitionName(ref)
		}
		union.Variants = append(union.Variants, Variant{Name: name, Ref: ref, Node: target})
	}
	return union, nil
}

// Names returns display names for the variants.
func (u Union) Names() []string {
	out := make([]string, len(u.Variants))
	for i, variant := range u.Variants {
		out[i] = NameToTitle(variant.Name)
	}
	return out
}

// Match picks the variant a prior value belongs to. When a discriminator is
// declared only the discriminator path runs; otherwise the runtime type name
// is compared against each variant title. Ties go to the first match and -1
// means no match.
func (u Union) Match(prior any, instanceClass string) int {
	if !Present(prior) {
		return -1
	}
	if u.Discriminator != "" {
		values, ok := prior.(map[string]any)
		if !ok {
			return -1
		}
		want, ok := values[u.Discriminator]
		if !ok {
			return -1
		}
		for i, variant := range u.Variants {
			if variantTag(variant.Node, u.Discriminator, want) {
				return i
			}
		}
		return -1
	}
	if instanceClass == "" {
		return -1
	}
	lowered := strings.ToLower(instanceClass)
	for i, variant := range u.Variants {
		title := strings.ToLower(variant.Node.Title())
		if title == "" {
			title = strings.ToLower(DefinitionName(variant.Ref))
		}
		if title != "" && strings.Contains(lowered, title) {
			return i
		}
	}
	return -1
}

func variantTag(node Node, property string, want any) bool {
	prop := node.Property(property)
	if prop == nil {
		return false
	}
	if enum := prop.Enum(); len(enum) > 0 {
		return len(enum) == 1 && EqualValues(enum[0], want)
	}
	if prop.Has("const") {
		return EqualValues(prop["const"], want)
	}
	return false
}

// Flatten applies the first-branch-wins policy: an untyped node with anyOf
// takes type and additionalProperties from its first branch. The input is
// left untouched; a tuple whose first items entry is empty becomes a list of
// strings.
func Flatten(node Node) Node {
	out := node.Clone()
	if out.Type() == "" {
		if first := firstAnyOf(out); first != nil {
			if t, ok := first["type"]; ok {
				out["type"] = t
			}
			if extra, ok := first["additionalProperties"]; ok {
				out["additionalProperties"] = extra
			}
		}
	}
	if tuple, ok := out["items"].([]any); ok && len(tuple) > 0 {
		if first := AsNode(tuple[0]); len(first) == 0 {
			normalized := make([]any, len(tuple))
			copy(normalized, tuple)
			normalized[0] = map[string]any{"type": "string"}
			out["items"] = normalized
		}
	}
	return out
}

// Present reports whether a value counts as supplied. Nil and the empty
// string are both treated as absent.
func Present(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok {
		return s != ""
	}
	return true
}

// EqualValues compares decoded values, treating numeric kinds as equal when
// their float64 values match and string kinds by their content.
func EqualValues(a, b any) bool {
	if fa, ok := ToFloat(a); ok {
		fb, ok := ToFloat(b)
		return ok && fa == fb
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.IsValid() && rb.IsValid() && ra.Kind() == reflect.String && rb.Kind() == reflect.String {
		return ra.String() == rb.String()
	}
	return false
}
