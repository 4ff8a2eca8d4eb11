// Package schema holds the JSON-Schema node model the form engine walks: an
// order-preserving parser, the references table, the shape predicates and the
// fixed-precedence classifier, plus union variant helpers.
//
// Predicates never mutate their input, except IsListOfObjects, which rewrites
// a node's items entry when the referenced item type is a primitive.
package schema
