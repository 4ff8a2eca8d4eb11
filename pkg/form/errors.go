package form

import (
	"errors"
	"strings"
)

// ErrNoModel is returned when a form is created without a model.
var ErrNoModel = errors.New("form: model is required")

// rootMarkers are path segments naming the whole value rather than a field.
var rootMarkers = map[string]struct{}{
	"#":        {},
	"$":        {},
	"__root__": {},
}

// FieldError is one failed validation rule.
type FieldError struct {
	Path    []string
	Message string
}

// DottedPath joins the path segments, dropping root markers.
func (e FieldError) DottedPath() string {
	parts := make([]string, 0, len(e.Path))
	for _, segment := range e.Path {
		if _, root := rootMarkers[segment]; root || segment == "" {
			continue
		}
		parts = append(parts, segment)
	}
	return strings.Join(parts, ".")
}

// String renders "<dotted.path>: <message>", or just the message for errors
// about the whole value.
func (e FieldError) String() string {
	path := e.DottedPath()
	if path == "" {
		return e.Message
	}
	return path + ": " + e.Message
}

// ValidationError reports submitted values the model rejected.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		lines[i] = fe.String()
	}
	return strings.Join(lines, "\n")
}

// Report is the on-screen warning text.
func (e *ValidationError) Report() string {
	return "Input failed validation:\n\n" + e.Error()
}

// Paths lists the dotted paths of every error.
func (e *ValidationError) Paths() []string {
	out := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		out[i] = fe.DottedPath()
	}
	return out
}
