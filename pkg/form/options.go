package form

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-modelform/pkg/state"
)

// Option configures a Form.
type Option func(*Form)

// WithConfig replaces the whole entry configuration.
func WithConfig(cfg Config) Option {
	return func(f *Form) {
		f.cfg = cfg
	}
}

// WithGroupOptionalFields moves non-required fields into an expander or the
// sidebar.
func WithGroupOptionalFields(strategy GroupStrategy) Option {
	return func(f *Form) {
		f.cfg.GroupOptionalFields = strategy
	}
}

// WithLowercaseLabels lowercases every field label.
func WithLowercaseLabels(enabled bool) Option {
	return func(f *Form) {
		f.cfg.LowercaseLabels = enabled
	}
}

// WithIgnoreEmptyValues skips storing empty strings and zero numbers for
// fields that were never set before.
func WithIgnoreEmptyValues(enabled bool) Option {
	return func(f *Form) {
		f.cfg.IgnoreEmptyValues = enabled
	}
}

// WithCustomDefaults overrides schema defaults of top-level properties.
func WithCustomDefaults(values map[string]any) Option {
	return func(f *Form) {
		if len(values) == 0 {
			return
		}
		if f.cfg.CustomDefaults == nil {
			f.cfg.CustomDefaults = make(map[string]any, len(values))
		}
		for k, v := range values {
			f.cfg.CustomDefaults[k] = v
		}
	}
}

// WithSubmitLabel sets the submit button label.
func WithSubmitLabel(label string) Option {
	return func(f *Form) {
		f.cfg.SubmitLabel = label
	}
}

// WithClearOnSubmit resets the session after a successful submit.
func WithClearOnSubmit(enabled bool) Option {
	return func(f *Form) {
		f.cfg.ClearOnSubmit = enabled
	}
}

// WithOverridePrefix changes the prefix marking raw widget overrides.
func WithOverridePrefix(prefix string) Option {
	return func(f *Form) {
		f.cfg.OverridePrefix = prefix
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithRegistry scopes form sessions to registry instead of the package
// registry.
func WithRegistry(registry *state.Registry) Option {
	return func(f *Form) {
		if registry != nil {
			f.registry = registry
		}
	}
}

// WithClock overrides the clock used to seed date and time widgets that have
// no value.
func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		if now != nil {
			f.now = now
		}
	}
}
