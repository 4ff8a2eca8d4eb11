// Package model adapts the sources a form can be generated from into one
// Model: a root schema node, its references table, an optional prior
// instance and the Go type values are decoded into.
//
// Go types are reflected with github.com/invopop/jsonschema, OpenAPI
// components are read with kin-openapi and validation is delegated to
// github.com/santhosh-tekuri/jsonschema/v5. Types that implement
// InputRenderer, OutputRenderer or OutputWithInputRenderer replace the
// schema-driven rendering for themselves.
package model
