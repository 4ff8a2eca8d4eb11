package schema

// Predicates classify a node into one of the recognised shapes. They never
// mutate their input, with the single exception of IsListOfObjects which
// normalises the node's items entry.

var primitiveTypes = map[string]struct{}{
	"string":  {},
	"number":  {},
	"integer": {},
	"boolean": {},
}

// IsPrimitiveType reports whether t maps onto a single-value widget.
func IsPrimitiveType(t string) bool {
	_, ok := primitiveTypes[t]
	return ok
}

func IsSingleString(node Node) bool {
	return node.Type() == "string"
}

func IsSingleColor(node Node) bool {
	return node.Type() == "string" && node.Format() == "color"
}

func IsSingleDateTime(node Node) bool {
	if node.Type() != "string" {
		return false
	}
	switch node.Format() {
	case "date-time", "time", "date":
		return true
	default:
		return false
	}
}

func IsSingleBoolean(node Node) bool {
	return node.Type() == "boolean"
}

func IsSingleNumber(node Node) bool {
	switch node.Type() {
	case "integer", "number":
		return true
	default:
		return false
	}
}

// IsSingleFile matches binary string payloads.
func IsSingleFile(node Node) bool {
	if node.Type() != "string" {
		return false
	}
	return isBinary(node)
}

func isBinary(node Node) bool {
	switch node.Format() {
	case "byte", "binary":
		return true
	}
	return node.String("contentEncoding") == "base64"
}

// IsMultiFile matches arrays of binary strings.
func IsMultiFile(node Node) bool {
	if node.Type() != "array" || node["items"] == nil {
		return false
	}
	item, err := ItemsNode(node)
	if err != nil {
		return false
	}
	return isBinary(item)
}

// IsSingleEnum matches a literal enum or a single reference to an enum
// definition. Resolution misses answer false.
func IsSingleEnum(node Node, refs References) bool {
	if len(node.Enum()) > 0 {
		return true
	}
	target, err := SingleReference(node, refs)
	if err != nil {
		return false
	}
	return len(target.Enum()) > 0
}

// IsMultiEnum matches arrays with unique items drawn from an enum.
func IsMultiEnum(node Node, refs References) bool {
	if node.Type() != "array" || !node.Bool("uniqueItems") {
		return false
	}
	item, err := ItemsNode(node)
	if err != nil {
		return false
	}
	if len(item.Enum()) > 0 {
		return true
	}
	if item.Ref() == "" {
		return false
	}
	target, err := ResolveReference(item.Ref(), refs)
	if err != nil {
		return false
	}
	return len(target.Enum()) > 0
}

// IsSingleDict matches objects whose values are described by an
// additionalProperties schema.
func IsSingleDict(node Node) bool {
	if node.Type() != "object" {
		return false
	}
	return node.AdditionalProperties() != nil && node.Properties() == nil
}

// IsSingleReference matches an untyped node that only points elsewhere.
func IsSingleReference(node Node) bool {
	if node.Type() != "" {
		return false
	}
	return node.Ref() != ""
}

// IsSingleObject matches a reference to an object definition with fixed
// properties.
func IsSingleObject(node Node, refs References) bool {
	target, err := SingleReference(node, refs)
	if err != nil {
		return false
	}
	if target.Type() != "object" {
		return false
	}
	return target.Properties() != nil
}

// IsUnion matches oneOf/anyOf declarations where every branch is a bare
// reference.
func IsUnion(node Node) bool {
	branches := unionBranches(node)
	if len(branches) == 0 {
		return false
	}
	for _, branch := range branches {
		if !IsSingleReference(AsNode(branch)) {
			return false
		}
	}
	return true
}

// IsListOfObjects matches arrays rendered as editable lists. Items pointing at
// primitive definitions are rewritten in place to carry the resolved type, so
// item rendering does not resolve the reference again. Items resolving to any
// other non-object type yield a *ClassificationError.
func IsListOfObjects(node Node, refs References) (bool, error) {
	if node.Type() != "array" {
		return false, nil
	}

	source := node
	if node["items"] == nil {
		first := firstAnyOf(node)
		if first == nil || first["items"] == nil {
			return false, nil
		}
		source = first
	}

	item, err := ItemsNode(source)
	if err != nil {
		first := firstAnyOf(node)
		if first == nil {
			return false, nil
		}
		if item, err = ItemsNode(first); err != nil {
			return false, nil
		}
	}

	if ref := item.Ref(); ref != "" {
		target, err := ResolveReference(ref, refs)
		if err != nil {
			return false, nil
		}
		targetType := target.Type()
		switch {
		case IsPrimitiveType(targetType):
			normalized := item.Clone()
			delete(normalized, "$ref")
			normalized["type"] = targetType
			if enum := target.Enum(); len(enum) > 0 {
				normalized["enum"] = enum
			}
			if format := target.Format(); format != "" && !normalized.Has("format") {
				normalized["format"] = format
			}
			node["items"] = map[string]any(normalized)
			return true, nil
		case targetType == "object":
			node["items"] = map[string]any(item)
			return target.Properties() != nil, nil
		default:
			return false, &ClassificationError{Ref: ref, Type: targetType}
		}
	}

	if IsPrimitiveType(item.Type()) {
		node["items"] = map[string]any(item)
		return true, nil
	}
	return false, nil
}

func firstAnyOf(node Node) Node {
	anyOf, _ := node["anyOf"].([]any)
	if len(anyOf) == 0 {
		return nil
	}
	return AsNode(anyOf[0])
}
