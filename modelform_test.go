package modelform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelform/pkg/form"
	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/model"
	"github.com/goliatone/go-modelform/pkg/present"
	"github.com/goliatone/go-modelform/pkg/schema"
	"github.com/goliatone/go-modelform/pkg/state"
	"github.com/goliatone/go-modelform/pkg/testsupport"
)

const petSchemaYAML = `title: Pet
type: object
required: [name]
properties:
  name:
    type: string
  age:
    type: integer
    minimum: 0
`

const petsOpenAPIYAML = `openapi: 3.0.3
info:
  title: Pets
  version: "1.0"
paths: {}
components:
  schemas:
    Pet:
      type: object
      properties:
        name:
          type: string
        tag:
          type: string
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFormFromLoadedSchema(t *testing.T) {
	path := writeFile(t, "pet.yaml", petSchemaYAML)
	m, err := LoadModel(context.Background(), schema.SourceFromFile(path), LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "age"}, m.PropertyNames()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}

	h := testsupport.NewHost().Answer("name", "Rex").Answer("age", 3).Press("", "Submit")
	out, err := Form(testsupport.Context(), h, "pet", m, form.WithRegistry(state.NewRegistry()))
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "Rex", "age": 3}, out); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestInputReturnsRawValues(t *testing.T) {
	path := writeFile(t, "pet.yaml", petSchemaYAML)
	m, err := LoadModel(context.Background(), schema.SourceFromFile(path), LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	h := testsupport.NewHost().Answer("name", "Rex")
	got, err := Input(testsupport.Context(), h, "pet", m, form.WithRegistry(state.NewRegistry()))
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "Rex", "age": 0}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadModelFromOpenAPI(t *testing.T) {
	path := writeFile(t, "pets.yaml", petsOpenAPIYAML)
	src := schema.SourceFromFile(path)

	if _, err := LoadModel(context.Background(), src, LoadOptions{}); err == nil {
		t.Fatalf("expected an error without a component name")
	}

	m, err := LoadModel(context.Background(), src, LoadOptions{Component: "Pet"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Name() != "Pet" {
		t.Fatalf("expected model name Pet, got %q", m.Name())
	}

	if _, err := LoadModel(context.Background(), src, LoadOptions{Component: "Owner"}); !errors.Is(err, model.ErrUnknownComponent) {
		t.Fatalf("expected ErrUnknownComponent, got %v", err)
	}
}

func TestOutputReportsUnrenderableValues(t *testing.T) {
	h := testsupport.NewHost()
	err := Output(context.Background(), h, 42)
	if !errors.Is(err, present.ErrCannotRender) {
		t.Fatalf("expected ErrCannotRender, got %v", err)
	}
	if diff := cmp.Diff([]string{"Cannot render output"}, h.Texts(host.StyleError)); diff != "" {
		t.Fatalf("error text mismatch (-want +got):\n%s", diff)
	}
}
