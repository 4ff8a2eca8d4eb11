package model

// Decorator adjusts a model after it has been built, before any form renders
// it.
type Decorator interface {
	Decorate(*Model) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Model) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(m *Model) error {
	return fn(m)
}

// Defaults returns a decorator replacing the schema default of the named
// top-level properties.
func Defaults(values map[string]any) Decorator {
	return DecoratorFunc(func(m *Model) error {
		for name, value := range values {
			if err := m.SetDefault(name, value); err != nil {
				return err
			}
		}
		return nil
	})
}
