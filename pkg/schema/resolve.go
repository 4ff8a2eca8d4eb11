package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvedReference is returned when a $ref is missing from the
	// references table.
	ErrUnresolvedReference = errors.New("schema: unresolved reference")
	// ErrNoReference is returned when a node carries neither $ref nor allOf.
	ErrNoReference = errors.New("schema: node has no reference")
	// ErrUnsupportedItems is returned when "items" is neither an object nor
	// a list of objects.
	ErrUnsupportedItems = errors.New("schema: unsupported items declaration")
	// ErrUnsupportedItemType marks array items that resolve to neither a
	// primitive nor an object definition.
	ErrUnsupportedItemType = errors.New("schema: unsupported array item type")
)

// ClassificationError is the only fatal classification failure: an array
// whose item type has no widget mapping.
type ClassificationError struct {
	Ref  string
	Type string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("schema: type of array-like field not supported: %s (%s)", e.Type, e.Ref)
}

func (e *ClassificationError) Unwrap() error { return ErrUnsupportedItemType }

// DefinitionName returns the last path segment of a reference.
func DefinitionName(ref string) string {
	ref = strings.TrimSpace(ref)
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}

// ResolveReference looks up the definition a reference points to.
func ResolveReference(ref string, refs References) (Node, error) {
	name := DefinitionName(ref)
	if name == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrUnresolvedReference)
	}
	node, ok := refs[name]
	if !ok || node == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedReference, ref)
	}
	return node, nil
}

// SingleReference resolves the node's reference, which sits either directly
// under $ref or in the first allOf entry.
func SingleReference(node Node, refs References) (Node, error) {
	ref := node.Ref()
	if ref == "" {
		allOf, _ := node["allOf"].([]any)
		if len(allOf) == 0 {
			return nil, ErrNoReference
		}
		ref = AsNode(allOf[0]).Ref()
		if ref == "" {
			return nil, ErrNoReference
		}
	}
	return ResolveReference(ref, refs)
}

// ItemsNode returns the items schema. A tuple declaration yields its first
// entry.
func ItemsNode(node Node) (Node, error) {
	switch typed := node["items"].(type) {
	case []any:
		if len(typed) == 0 {
			return nil, ErrUnsupportedItems
		}
		item := AsNode(typed[0])
		if item == nil {
			return Node{}, nil
		}
		return item, nil
	case map[string]any:
		return Node(typed), nil
	case Node:
		return typed, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedItems, node["items"])
	}
}

// unionBranches returns oneOf, falling back to anyOf.
func unionBranches(node Node) []any {
	if branches, ok := node["oneOf"].([]any); ok {
		return branches
	}
	branches, _ := node["anyOf"].([]any)
	return branches
}

// Resolved returns node with every $ref chain followed until a definition
// without $ref is reached. Cycles are reported instead of looping.
func Resolved(node Node, refs References) (Node, error) {
	seen := make(map[string]struct{})
	current := node
	for current.Ref() != "" {
		ref := current.Ref()
		if _, loop := seen[ref]; loop {
			return nil, fmt.Errorf("schema: reference cycle at %s", ref)
		}
		seen[ref] = struct{}{}
		next, err := ResolveReference(ref, refs)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
