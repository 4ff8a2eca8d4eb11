// Package form turns a model into host widgets and folds what the user entered
// back into nested values.
//
// Every render pass walks the model's properties in order, classifies each
// property node, and asks the host for the widget matching its shape. Values
// live in a state.Session keyed by form ID, so a form rendered again with the
// same ID picks up where the previous pass left off. Submit validates the
// collected values against the model and decodes them into the model's Go
// type when one is known.
package form
