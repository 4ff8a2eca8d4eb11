package model

import (
	"context"
	"reflect"

	"github.com/goliatone/go-modelform/pkg/host"
)

// InputRenderer is implemented by models that draw their own input form. The
// current values are passed in and the returned values replace them.
type InputRenderer interface {
	RenderInput(ctx context.Context, h host.Host, current map[string]any) (map[string]any, error)
}

// OutputRenderer is implemented by values that draw their own output.
type OutputRenderer interface {
	RenderOutput(ctx context.Context, h host.Host) error
}

// OutputWithInputRenderer is an OutputRenderer that also receives the input
// the output was computed from.
type OutputWithInputRenderer interface {
	RenderOutputWithInput(ctx context.Context, h host.Host, input any) error
}

// InputHook returns the model's own input renderer. The prior instance is
// checked first, then a zero value of the Go type.
func (m *Model) InputHook() (InputRenderer, bool) {
	if hook, ok := m.source.(InputRenderer); ok {
		return hook, true
	}
	if m.goType == nil {
		return nil, false
	}
	if hook, ok := reflect.New(m.goType).Interface().(InputRenderer); ok {
		return hook, true
	}
	return nil, false
}
