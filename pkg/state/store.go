package state

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyPath is returned when a write names no segment.
var ErrEmptyPath = errors.New("state: empty path")

// Store is the nested value tree addressed by dotted paths. "a.b.c" names
// values["a"]["b"]["c"]; numeric segments index into lists.
type Store struct {
	values map[string]any
}

// NewStore seeds a store with a deep copy of prefill.
func NewStore(prefill map[string]any) *Store {
	return &Store{values: cloneMap(prefill)}
}

// Values returns the live value tree.
func (s *Store) Values() map[string]any {
	if s == nil {
		return nil
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return s.values
}

// Snapshot returns a deep copy of the value tree.
func (s *Store) Snapshot() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return cloneMap(s.values)
}

// Get resolves a dotted path. A missing segment anywhere along the way
// reports false; nothing is created on read.
func (s *Store) Get(path string) (any, bool) {
	if s == nil || path == "" {
		return nil, false
	}
	var current any = s.values
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set writes value at path, creating intermediate maps as needed. Existing
// lists are indexed by numeric segments and grown when the index is past the
// end.
func (s *Store) Set(path string, value any) error {
	if s == nil {
		return errors.New("state: store is nil")
	}
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	segments := strings.Split(path, ".")
	updated, err := setIn(s.values, segments, value)
	if err != nil {
		return fmt.Errorf("state: set %q: %w", path, err)
	}
	s.values = updated.(map[string]any)
	return nil
}

// Delete removes the value at path. Missing paths are ignored.
func (s *Store) Delete(path string) {
	if s == nil || path == "" {
		return
	}
	segments := strings.Split(path, ".")
	parentPath := strings.Join(segments[:len(segments)-1], ".")
	last := segments[len(segments)-1]

	var parent any = s.values
	if parentPath != "" {
		var ok bool
		if parent, ok = s.Get(parentPath); !ok {
			return
		}
	}
	if m, ok := parent.(map[string]any); ok {
		delete(m, last)
	}
}

// Clear drops every stored value.
func (s *Store) Clear() {
	if s == nil {
		return
	}
	s.values = make(map[string]any)
}

func setIn(container any, segments []string, value any) (any, error) {
	segment := segments[0]
	last := len(segments) == 1

	switch node := container.(type) {
	case map[string]any:
		if last {
			node[segment] = value
			return node, nil
		}
		child, ok := node[segment]
		if !ok || !isContainer(child) {
			child = make(map[string]any)
		}
		updated, err := setIn(child, segments[1:], value)
		if err != nil {
			return nil, err
		}
		node[segment] = updated
		return node, nil

	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("expected list index, got %q", segment)
		}
		if idx >= len(node) {
			node = append(node, make([]any, idx+1-len(node))...)
		}
		if last {
			node[idx] = value
			return node, nil
		}
		child := node[idx]
		if !isContainer(child) {
			child = make(map[string]any)
		}
		updated, err := setIn(child, segments[1:], value)
		if err != nil {
			return nil, err
		}
		node[idx] = updated
		return node, nil

	default:
		return nil, fmt.Errorf("cannot descend into %T at %q", container, segment)
	}
}

func isContainer(value any) bool {
	switch value.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = DeepCopy(v)
	}
	return out
}

// DeepCopy clones nested maps and lists; other values are shared.
func DeepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = DeepCopy(v)
		}
		return clone
	default:
		return typed
	}
}
