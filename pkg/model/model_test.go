package model

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/schema"
)

type address struct {
	Street string `json:"street"`
	City   string `json:"city,omitempty"`
}

type signup struct {
	Name    string   `json:"name" jsonschema:"minLength=1"`
	Age     int      `json:"age,omitempty" jsonschema:"minimum=0,default=18"`
	Address *address `json:"address,omitempty"`
	Avatar  []byte   `json:"avatar,omitempty"`
}

type cat struct {
	Lives int `json:"lives"`
}

type adoption struct {
	Owner string `json:"owner"`
	Pet   any    `json:"pet,omitempty"`
}

type hooked struct {
	Note string `json:"note"`
}

func (h *hooked) RenderInput(_ context.Context, _ host.Host, current map[string]any) (map[string]any, error) {
	return current, nil
}

func TestOfReflectsGoTypes(t *testing.T) {
	m, err := Of[signup]()
	if err != nil {
		t.Fatalf("of: %v", err)
	}

	if diff := cmp.Diff([]string{"name", "age", "address", "avatar"}, m.PropertyNames()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
	if !m.IsRequired("name") || m.IsRequired("age") {
		t.Fatalf("unexpected required set %v", m.Root().Required())
	}
	if got := m.Property("age")["default"]; got != float64(18) {
		t.Fatalf("expected default 18, got %#v", got)
	}
	if _, ok := m.References()["address"]; !ok {
		t.Fatalf("expected address definition, got %v", ComponentNames(m.References()))
	}
	if m.Name() != "Signup" {
		t.Fatalf("expected name from type, got %q", m.Name())
	}
}

func TestOfRejectsNonStructs(t *testing.T) {
	if _, err := Of[string](); !errors.Is(err, ErrNotStruct) {
		t.Fatalf("expected ErrNotStruct, got %v", err)
	}
}

func TestValidateReportsFieldPaths(t *testing.T) {
	m, err := Of[signup]()
	if err != nil {
		t.Fatalf("of: %v", err)
	}

	cases := []struct {
		name   string
		values map[string]any
		want   [][]string
	}{
		{"valid", map[string]any{"name": "Ada", "age": 18}, nil},
		{"empty name", map[string]any{"name": "", "age": 18}, [][]string{{"name"}}},
		{"negative age", map[string]any{"name": "Ada", "age": -1}, [][]string{{"age"}}},
		{"missing name", map[string]any{"age": 18}, [][]string{{"name"}}},
		{"nested", map[string]any{"name": "Ada", "address": map[string]any{"street": 5}}, [][]string{{"address", "street"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			violations, err := m.Validate(tc.values)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			var got [][]string
			for _, v := range violations {
				got = append(got, v.Path)
				if v.Message == "" {
					t.Fatalf("expected a message for %v", v.Path)
				}
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("paths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeBuildsTypedValue(t *testing.T) {
	m, err := Of[signup]()
	if err != nil {
		t.Fatalf("of: %v", err)
	}
	out, err := m.Decode(map[string]any{
		"name":    "Ada",
		"age":     30.0,
		"address": map[string]any{"street": "Main"},
		"avatar":  "_-8=",
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := &signup{Name: "Ada", Age: 30, Address: &address{Street: "Main"}, Avatar: []byte{0xff, 0xef}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestFromInstanceKeepsPriorValues(t *testing.T) {
	m, err := FromInstance(&adoption{Owner: "Ada", Pet: cat{Lives: 9}})
	if err != nil {
		t.Fatalf("from instance: %v", err)
	}
	if !m.HasInstance() {
		t.Fatalf("expected instance")
	}
	if got, _ := m.InstanceValue("owner"); got != "Ada" {
		t.Fatalf("expected owner Ada, got %v", got)
	}
	if diff := cmp.Diff(map[string]any{"lives": 9.0}, mustValue(t, m, "pet")); diff != "" {
		t.Fatalf("pet mismatch (-want +got):\n%s", diff)
	}
	if got := m.InstanceClass("pet"); got != "model.cat" {
		t.Fatalf("expected concrete class, got %q", got)
	}
	if got := m.InstanceClass("owner"); got != "string" {
		t.Fatalf("expected string class, got %q", got)
	}
	field, ok := m.Field("pet")
	if !ok {
		t.Fatalf("expected pet field")
	}
	if _, isCat := field.(cat); !isCat {
		t.Fatalf("expected cat value, got %T", field)
	}
}

func mustValue(t *testing.T, m *Model, name string) any {
	t.Helper()
	value, ok := m.InstanceValue(name)
	if !ok {
		t.Fatalf("missing instance value %s", name)
	}
	return value
}

func TestFromDocumentCollectsDefinitions(t *testing.T) {
	raw := []byte(`{
		"title": "Order",
		"type": "object",
		"properties": {
			"item": {"$ref": "#/$defs/Item"},
			"legacy": {"$ref": "#/definitions/Legacy"}
		},
		"$defs": {"Item": {"type": "object", "properties": {"sku": {"type": "string"}}}},
		"definitions": {"Legacy": {"type": "string"}}
	}`)
	m, err := FromDocument(schema.MustNewDocument(schema.SourceInline("order"), raw))
	if err != nil {
		t.Fatalf("from document: %v", err)
	}
	if diff := cmp.Diff([]string{"Item", "Legacy"}, ComponentNames(m.References())); diff != "" {
		t.Fatalf("definitions mismatch (-want +got):\n%s", diff)
	}
	if m.Name() != "Order" || m.GoType() != nil {
		t.Fatalf("unexpected model %q %v", m.Name(), m.GoType())
	}
	out, err := m.Decode(map[string]any{"legacy": "x"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"legacy": "x"}, out); diff != "" {
		t.Fatalf("schema-only decode mismatch (-want +got):\n%s", diff)
	}

	if _, err := FromNode(schema.Node{"type": "string"}); !errors.Is(err, ErrNoProperties) {
		t.Fatalf("expected ErrNoProperties, got %v", err)
	}
}

const petsOpenAPI = `
openapi: 3.0.3
info:
  title: Pets
  version: "1.0"
paths: {}
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
          minLength: 1
        age:
          type: integer
          minimum: 0
          exclusiveMinimum: true
        owner:
          $ref: '#/components/schemas/Owner'
    Owner:
      type: object
      properties:
        email:
          type: string
`

func TestWithInstanceSeedsSchemaModels(t *testing.T) {
	root := schema.Node{
		"type": "object",
		"properties": map[string]any{
			"owner": map[string]any{"type": "string"},
			"pet":   map[string]any{},
		},
	}
	m, err := FromNode(root, WithInstance(&adoption{Owner: "Ada", Pet: cat{Lives: 7}}))
	if err != nil {
		t.Fatalf("from node: %v", err)
	}
	if !m.HasInstance() {
		t.Fatalf("expected instance")
	}
	if diff := cmp.Diff(map[string]any{"lives": 7.0}, mustValue(t, m, "pet")); diff != "" {
		t.Fatalf("pet mismatch (-want +got):\n%s", diff)
	}
	if got := m.InstanceClass("pet"); got != "model.cat" {
		t.Fatalf("expected concrete class, got %q", got)
	}

	m, err = FromNode(root, WithInstance(map[string]any{"owner": "Bo"}))
	if err != nil {
		t.Fatalf("from node: %v", err)
	}
	if got, _ := m.InstanceValue("owner"); got != "Bo" {
		t.Fatalf("expected owner Bo, got %v", got)
	}
	if got := m.InstanceClass("owner"); got != "" {
		t.Fatalf("maps carry no instance class, got %q", got)
	}

	if _, err := FromNode(root, WithInstance("owner")); err == nil {
		t.Fatalf("expected an error for a non-object instance")
	}
}

func TestFromOpenAPIComponent(t *testing.T) {
	doc := schema.MustNewDocument(schema.SourceFromFile("pets.yaml"), []byte(petsOpenAPI))
	m, err := FromOpenAPI(context.Background(), doc, OpenAPIOptions{Component: "Pet"})
	if err != nil {
		t.Fatalf("from openapi: %v", err)
	}

	if diff := cmp.Diff([]string{"name", "age", "owner"}, m.PropertyNames()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
	age := m.Property("age")
	if age.Has("minimum") || age["exclusiveMinimum"] != float64(0) {
		t.Fatalf("expected numeric exclusiveMinimum, got %v", age)
	}
	if m.Name() != "Pet" {
		t.Fatalf("expected component name as title, got %q", m.Name())
	}

	violations, err := m.Validate(map[string]any{"name": "Rex", "age": 1, "owner": map[string]any{"email": 5}})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(violations) != 1 || cmp.Diff([]string{"owner", "email"}, violations[0].Path) != "" {
		t.Fatalf("expected owner.email violation, got %+v", violations)
	}

	if _, err := FromOpenAPI(context.Background(), doc, OpenAPIOptions{Component: "Nope"}); !errors.Is(err, ErrUnknownComponent) {
		t.Fatalf("expected ErrUnknownComponent, got %v", err)
	}
}

func TestDefaultsDecorator(t *testing.T) {
	m, err := Of[signup](WithDecorators(Defaults(map[string]any{"age": 21})))
	if err != nil {
		t.Fatalf("of: %v", err)
	}
	if got := m.Property("age")["default"]; got != 21 {
		t.Fatalf("expected overridden default, got %#v", got)
	}

	base, _ := Of[signup]()
	if err := base.SetDefault("missing", 1); err == nil {
		t.Fatalf("expected error for unknown property")
	}
}

func TestInputHook(t *testing.T) {
	m, err := Of[hooked]()
	if err != nil {
		t.Fatalf("of: %v", err)
	}
	if _, ok := m.InputHook(); !ok {
		t.Fatalf("expected input hook")
	}
	plain, _ := Of[signup]()
	if _, ok := plain.InputHook(); ok {
		t.Fatalf("unexpected input hook")
	}
}
