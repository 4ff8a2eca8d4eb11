package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/model"
	"github.com/goliatone/go-modelform/pkg/schema"
	"github.com/goliatone/go-modelform/pkg/state"
)

var defaultRegistry = state.NewRegistry()

// Clear tears down the session of formID in the package registry.
func Clear(formID string) {
	defaultRegistry.Clear(formID)
}

// Form renders a model into host widgets and folds the answers back into
// values. A Form is not safe for concurrent renders.
type Form struct {
	id       string
	model    *model.Model
	cfg      Config
	logger   *slog.Logger
	registry *state.Registry
	session  *state.Session
	now      func() time.Time
}

// New creates a form for m. formID must be stable across renders of the same
// logical form and unique among forms sharing a registry.
func New(formID string, m *model.Model, opts ...Option) (*Form, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	f := &Form{
		id:       formID,
		model:    m,
		cfg:      DefaultConfig(),
		logger:   slog.Default(),
		registry: defaultRegistry,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	cfg, err := f.cfg.normalised()
	if err != nil {
		return nil, err
	}
	f.cfg = cfg
	for name := range cfg.CustomDefaults {
		if m.Property(name) == nil {
			return nil, fmt.Errorf("form: custom default for unknown property %q", name)
		}
	}

	session, err := f.registry.Open(formID)
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	f.session = session
	return f, nil
}

// ID returns the form identifier.
func (f *Form) ID() string { return f.id }

// Model returns the model the form renders.
func (f *Form) Model() *model.Model { return f.model }

// Session returns the state session backing the form.
func (f *Form) Session() *state.Session { return f.session }

// Reset clears entered values and advances the render generation.
func (f *Form) Reset() { f.session.Reset() }

// Render runs one pass over the model and returns the current nested values.
func (f *Form) Render(ctx context.Context, h host.Host) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	store := f.session.Store()

	if hook, ok := f.model.InputHook(); ok {
		values, err := hook.RenderInput(ctx, h, store.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("form: custom input renderer: %w", err)
		}
		store.Clear()
		for key, value := range values {
			if err := store.Set(key, value); err != nil {
				return nil, err
			}
		}
		return store.Snapshot(), nil
	}

	p := f.newPass()
	var grouped []string
	for _, name := range f.model.PropertyNames() {
		target := h
		if !f.model.IsRequired(name) {
			switch f.cfg.GroupOptionalFields {
			case GroupSidebar:
				target = h.Sidebar()
			case GroupExpander:
				grouped = append(grouped, name)
				continue
			}
		}
		if err := p.renderTopLevel(ctx, target, name); err != nil {
			return nil, err
		}
	}

	if len(grouped) > 0 {
		expander := h.Expander(OptionalFieldsLabel, false)
		for _, name := range grouped {
			if err := p.renderTopLevel(ctx, expander, name); err != nil {
				return nil, err
			}
		}
	}
	return store.Snapshot(), nil
}

// RenderModel renders one pass and validates the values. Invalid input is
// shown as a warning on h and yields a nil result without an error.
func (f *Form) RenderModel(ctx context.Context, h host.Host) (any, error) {
	values, err := f.Render(ctx, h)
	if err != nil {
		return nil, err
	}
	return f.settle(h, values)
}

// Submit renders one pass followed by the submit button. The values are
// validated only when the button was pressed; a nil result means either no
// submission or invalid input, the latter reported on h.
func (f *Form) Submit(ctx context.Context, h host.Host) (any, error) {
	values, err := f.Render(ctx, h)
	if err != nil {
		return nil, err
	}
	pressed, err := h.Button(ctx, host.Widget{
		Key:   f.session.WidgetKey("", "submit"),
		Label: f.cfg.SubmitLabel,
	})
	if err != nil {
		return nil, err
	}
	if !pressed {
		return nil, nil
	}
	result, err := f.settle(h, values)
	if err != nil || result == nil {
		return result, err
	}
	if f.cfg.ClearOnSubmit {
		f.session.Reset()
	}
	return result, nil
}

func (f *Form) settle(h host.Host, values map[string]any) (any, error) {
	result, err := f.Validate(values)
	var verr *ValidationError
	if errors.As(err, &verr) {
		f.logger.Info("form input failed validation", "form", f.id, "errors", len(verr.Errors))
		h.Text(host.StyleWarning, verr.Report())
		return nil, nil
	}
	return result, err
}

// Validate checks values against the model and decodes them. Rejected values
// yield a *ValidationError.
func (f *Form) Validate(values map[string]any) (any, error) {
	violations, err := f.model.Validate(values)
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	if len(violations) > 0 {
		verr := &ValidationError{Errors: make([]FieldError, len(violations))}
		for i, v := range violations {
			verr.Errors[i] = FieldError{Path: v.Path, Message: v.Message}
		}
		return nil, verr
	}
	out, err := f.model.Decode(values)
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	return out, nil
}

func (f *Form) newPass() *pass {
	return &pass{
		form:    f,
		session: f.session,
		store:   f.session.Store(),
		refs:    f.model.References(),
		cfg:     f.cfg,
		logger:  f.logger.With("form", f.id),
		now:     f.now,
	}
}

func (p *pass) renderTopLevel(ctx context.Context, h host.Host, name string) error {
	m := p.form.model
	node := m.Property(name)
	fc := fieldContext{label: schema.NameToTitle(name)}
	if def, ok := p.cfg.CustomDefaults[name]; ok {
		fc.def, fc.hasDef = def, true
	}
	if init, ok := m.InstanceValue(name); ok && schema.Present(init) {
		fc.init = init
		fc.instanceClass = m.InstanceClass(name)
	}

	value, err := p.dispatch(ctx, h, name, node, fc)
	if err != nil {
		return err
	}
	if p.ignored(name, value) {
		return nil
	}
	return p.store.Set(name, value)
}
