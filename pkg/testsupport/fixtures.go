package testsupport

import (
	"context"
	"testing"

	"github.com/goliatone/go-modelform/pkg/schema"
)

// MustParseSchema parses an inline JSON or YAML schema.
func MustParseSchema(t *testing.T, raw string) schema.Node {
	t.Helper()

	node, err := schema.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return node
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
