package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a JSON schema payload into a Node, recording the
// declaration order of every "properties" object under PropertyOrderKey.
func ParseJSON(raw []byte) (Node, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("schema: payload is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("schema: parse json: %w", err)
	}
	value, err := readJSONValue(dec, tok)
	if err != nil {
		return nil, fmt.Errorf("schema: parse json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("schema: parse json: trailing data after document")
	}
	node := AsNode(value)
	if node == nil {
		return nil, errors.New("schema: document root is not an object")
	}
	return node, nil
}

func readJSONValue(dec *json.Decoder, tok json.Token) (any, error) {
	switch typed := tok.(type) {
	case json.Delim:
		switch typed {
		case '{':
			return readJSONObject(dec)
		case '[':
			return readJSONArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", typed)
		}
	case json.Number:
		return numberValue(string(typed)), nil
	case float64:
		return typed, nil
	case string, bool, nil:
		return typed, nil
	default:
		return nil, fmt.Errorf("unexpected token %T", tok)
	}
}

func readJSONObject(dec *json.Decoder) (map[string]any, error) {
	out := make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %T", keyTok)
		}
		valueTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if key == "properties" {
			if delim, ok := valueTok.(json.Delim); ok && delim == '{' {
				props, order, err := readOrderedObject(dec)
				if err != nil {
					return nil, err
				}
				out[key] = props
				if _, exists := out[PropertyOrderKey]; !exists {
					out[PropertyOrderKey] = order
				}
				continue
			}
		}
		value, err := readJSONValue(dec, valueTok)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func readOrderedObject(dec *json.Decoder) (map[string]any, []any, error) {
	out := make(map[string]any)
	var order []any
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %T", keyTok)
		}
		valueTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		value, err := readJSONValue(dec, valueTok)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := out[key]; !dup {
			order = append(order, key)
		}
		out[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return out, order, nil
}

func readJSONArray(dec *json.Decoder) ([]any, error) {
	out := make([]any, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		value, err := readJSONValue(dec, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func numberValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// ParseYAML decodes a YAML schema payload, keeping property order the same
// way ParseJSON does.
func ParseYAML(raw []byte) (Node, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("schema: payload is empty")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse yaml: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	value, err := yamlValue(root)
	if err != nil {
		return nil, fmt.Errorf("schema: parse yaml: %w", err)
	}
	node := AsNode(value)
	if node == nil {
		return nil, errors.New("schema: document root is not an object")
	}
	return node, nil
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			valueNode := n.Content[i+1]
			if key == "properties" && valueNode.Kind == yaml.MappingNode {
				order := make([]any, 0, len(valueNode.Content)/2)
				for j := 0; j+1 < len(valueNode.Content); j += 2 {
					order = append(order, valueNode.Content[j].Value)
				}
				if _, exists := out[PropertyOrderKey]; !exists {
					out[PropertyOrderKey] = order
				}
			}
			value, err := yamlValue(valueNode)
			if err != nil {
				return nil, err
			}
			out[key] = value
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			value, err := yamlValue(child)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, errors.New("dangling alias")
		}
		return yamlValue(n.Alias)
	case yaml.ScalarNode:
		var value any
		if err := n.Decode(&value); err != nil {
			return nil, err
		}
		switch typed := value.(type) {
		case int:
			return float64(typed), nil
		case int64:
			return float64(typed), nil
		case uint64:
			return float64(typed), nil
		}
		return value, nil
	default:
		return nil, fmt.Errorf("unsupported yaml node kind %d", n.Kind)
	}
}

// Parse picks ParseJSON or ParseYAML from the payload shape.
func Parse(raw []byte) (Node, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		return ParseJSON(raw)
	}
	return ParseYAML(raw)
}
