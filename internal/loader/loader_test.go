package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelform/pkg/schema"
)

const petSchema = `{"title":"Pet","type":"object","properties":{"name":{"type":"string"}}}`

func mustSource(t *testing.T, location string) schema.Source {
	t.Helper()
	src, err := SourceFor(location)
	if err != nil {
		t.Fatalf("source for %q: %v", location, err)
	}
	return src
}

func TestSourceFor(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     schema.SourceKind
		wantErr  bool
	}{
		{name: "file path", location: "schemas/pet.json", want: schema.SourceKindFile},
		{name: "https url", location: "https://example.com/pet.json", want: schema.SourceKindURL},
		{name: "mixed case scheme", location: "HTTP://example.com/pet.json", want: schema.SourceKindURL},
		{name: "space in host", location: "http://a b", wantErr: true},
		{name: "bad escape", location: "https://example.com/%zz", wantErr: true},
		{name: "blank", location: "  ", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src, err := SourceFor(tc.location)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got source %v", src)
				}
				return
			}
			if err != nil {
				t.Fatalf("source for: %v", err)
			}
			if src.Kind() != tc.want {
				t.Fatalf("expected kind %v, got %v", tc.want, src.Kind())
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pet.json")
	if err := os.WriteFile(path, []byte(petSchema), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := New(Options{}).Load(context.Background(), mustSource(t, path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(petSchema, string(doc.Raw())); diff != "" {
		t.Fatalf("raw mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromFS(t *testing.T) {
	files := fstest.MapFS{"schemas/pet.json": {Data: []byte(petSchema)}}

	doc, err := New(Options{FileSystem: files}).Load(context.Background(), schema.SourceFromFS("schemas/pet.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	node, err := doc.Node()
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	if got := node.Title(); got != "Pet" {
		t.Fatalf("expected title Pet, got %q", got)
	}
}

func TestLoadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pet.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(petSchema))
	}))
	defer server.Close()

	if _, err := New(Options{}).Load(context.Background(), mustSource(t, server.URL+"/pet.json")); !errors.Is(err, ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}

	l := New(Options{HTTPClient: server.Client()})
	doc, err := l.Load(context.Background(), mustSource(t, server.URL+"/pet.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != petSchema {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}

	if _, err := l.Load(context.Background(), mustSource(t, server.URL+"/missing.json")); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestLoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Options{}).Load(ctx, schema.SourceFromFile("pet.json")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsOpenAPI(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "json schema", raw: petSchema, want: false},
		{name: "openapi json", raw: `{"openapi":"3.0.3","info":{}}`, want: true},
		{name: "openapi yaml", raw: "openapi: 3.0.3\ninfo:\n  title: Pets\n", want: true},
		{name: "yaml schema", raw: "title: Pet\ntype: object\n", want: false},
		{name: "empty", raw: "  ", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOpenAPI([]byte(tt.raw)); got != tt.want {
				t.Fatalf("IsOpenAPI = %v, want %v", got, tt.want)
			}
		})
	}
}
