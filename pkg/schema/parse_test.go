package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseJSON_RecordsPropertyOrder(t *testing.T) {
	raw := []byte(`{
		"title": "Pet",
		"type": "object",
		"properties": {
			"zeta": {"type": "string"},
			"alpha": {"type": "integer", "minimum": 0},
			"mid": {"type": "object", "properties": {"b": {}, "a": {}}}
		}
	}`)

	node, err := ParseJSON(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, node.PropertyNames()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "a"}, node.Property("mid").PropertyNames()); diff != "" {
		t.Fatalf("nested property order mismatch (-want +got):\n%s", diff)
	}

	min, ok := node.Property("alpha").Number("minimum")
	if !ok || min != 0 {
		t.Fatalf("expected numeric minimum 0, got %v (%v)", min, ok)
	}
	if _, isFloat := node.Property("alpha")["minimum"].(float64); !isFloat {
		t.Fatalf("expected numbers decoded as float64, got %T", node.Property("alpha")["minimum"])
	}
}

func TestParseJSON_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":    "   ",
		"array":    `[1, 2]`,
		"trailing": `{"type": "string"} {}`,
		"broken":   `{"type": `,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseJSON([]byte(raw)); err == nil {
				t.Fatalf("expected error for %q", raw)
			}
		})
	}
}

func TestParseYAML_RecordsPropertyOrder(t *testing.T) {
	raw := []byte(`
type: object
required: [name]
properties:
  name:
    type: string
  age:
    type: integer
    default: 18
`)
	node, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "age"}, node.PropertyNames()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
	if got := node.Property("age")["default"]; got != float64(18) {
		t.Fatalf("expected default 18 as float64, got %#v", got)
	}
	if !node.IsRequired("name") || node.IsRequired("age") {
		t.Fatalf("unexpected required set %v", node.Required())
	}
}

func TestDocumentNode_PicksDecoderFromLocation(t *testing.T) {
	doc := MustNewDocument(SourceFromFile("model.yaml"), []byte("type: string\n"))
	node, err := doc.Node()
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	if node.Type() != "string" {
		t.Fatalf("expected string node, got %v", node)
	}

	if _, err := NewDocument(SourceInline("empty"), nil); err == nil {
		t.Fatalf("expected error for empty document")
	}
}
