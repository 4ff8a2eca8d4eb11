// Package modelform generates interactive forms from data-model schemas and
// reassembles the collected input into validated values.
//
// The building blocks live in sub-packages: pkg/model adapts Go types and
// schema documents, pkg/form drives a host.Host through one render pass, and
// pkg/present shows results read-only. The helpers here cover the common
// one-call paths.
package modelform

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-modelform/internal/loader"
	"github.com/goliatone/go-modelform/pkg/form"
	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/model"
	"github.com/goliatone/go-modelform/pkg/present"
	"github.com/goliatone/go-modelform/pkg/schema"
)

// Input renders the form for m and returns the raw nested values without
// validating them.
func Input(ctx context.Context, h host.Host, formID string, m *model.Model, opts ...form.Option) (map[string]any, error) {
	f, err := form.New(formID, m, opts...)
	if err != nil {
		return nil, err
	}
	return f.Render(ctx, h)
}

// Form renders the form with a submit button. It returns the decoded value
// once the button is pressed and the input validates, and nil otherwise.
func Form(ctx context.Context, h host.Host, formID string, m *model.Model, opts ...form.Option) (any, error) {
	f, err := form.New(formID, m, opts...)
	if err != nil {
		return nil, err
	}
	return f.Submit(ctx, h)
}

// Output renders value read-only.
func Output(ctx context.Context, h host.Host, value any, opts ...present.Option) error {
	return present.Render(ctx, h, value, opts...)
}

// LoadOptions configures LoadModel.
type LoadOptions struct {
	// Component selects the components.schemas entry of an OpenAPI document.
	Component string
	// FileSystem resolves schema.SourceKindFS sources.
	FileSystem fs.FS
	// HTTPClient enables URL sources. AllowHTTP falls back to a default
	// client when none is given.
	HTTPClient     *http.Client
	AllowHTTP      bool
	RequestTimeout time.Duration
	// ValidateOpenAPI runs the OpenAPI document validation first.
	ValidateOpenAPI bool
	ModelOptions    []model.Option
}

// LoadModel loads a JSON Schema or OpenAPI document and builds a model from
// it. OpenAPI documents require LoadOptions.Component.
func LoadModel(ctx context.Context, src schema.Source, opts LoadOptions) (*model.Model, error) {
	l := loader.New(loader.Options{
		FileSystem:        opts.FileSystem,
		HTTPClient:        opts.HTTPClient,
		AllowHTTPFallback: opts.AllowHTTP,
		RequestTimeout:    opts.RequestTimeout,
	})
	doc, err := l.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("modelform: load %s: %w", src.Location(), err)
	}
	if loader.IsOpenAPI(doc.Raw()) {
		if opts.Component == "" {
			return nil, fmt.Errorf("modelform: %s is an OpenAPI document; a component name is required", src.Location())
		}
		return model.FromOpenAPI(ctx, doc, model.OpenAPIOptions{
			Component: opts.Component,
			Validate:  opts.ValidateOpenAPI,
		}, opts.ModelOptions...)
	}
	return model.FromDocument(doc, opts.ModelOptions...)
}
