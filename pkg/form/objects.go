package form

import (
	"context"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/schema"
)

// renderObjectRef renders a field pointing at an object definition as a
// titled group of child widgets.
func (p *pass) renderObjectRef(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	label := p.label(node, fc)
	if fc.isItem {
		h.Text(host.StyleCaption, label)
	} else {
		h.Text(host.StyleSubheader, label)
	}
	if help := node.Description(); help != "" {
		h.Text(host.StyleMarkdown, help)
	}

	target, err := schema.SingleReference(node, p.refs)
	if err != nil {
		return nil, err
	}
	parentDefault := fc.def
	if !fc.hasDef {
		parentDefault = node["default"]
	}
	return p.renderObject(ctx, h, path, target, fc.init, parentDefault, fc.readOnly || node.ReadOnly())
}

func (p *pass) renderInlineObject(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	parentDefault := fc.def
	if !fc.hasDef {
		parentDefault = node["default"]
	}
	return p.renderObject(ctx, h, path, node, fc.init, parentDefault, fc.readOnly || node.ReadOnly())
}

// renderObject renders every property of an object node. The parent default,
// given as a map or a JSON object string, seeds children lacking their own
// value.
func (p *pass) renderObject(ctx context.Context, h host.Host, path string, node schema.Node, init, parentDefault any, readOnly bool) (map[string]any, error) {
	initValues, _ := init.(map[string]any)
	defaults := objectDefaults(parentDefault)

	out := make(map[string]any)
	for _, name := range node.PropertyNames() {
		child := node.Property(name)
		fc := fieldContext{
			label:    schema.NameToTitle(name),
			readOnly: readOnly || child.ReadOnly(),
		}
		if value, ok := initValues[name]; ok && schema.Present(value) {
			fc.init = value
		}
		if value, ok := defaults[name]; ok {
			fc.def, fc.hasDef = value, true
		}

		childPath := path + "." + name
		value, err := p.dispatch(ctx, h, childPath, child, fc)
		if err != nil {
			return nil, err
		}
		if p.ignored(childPath, value) {
			continue
		}
		out[name] = value
	}
	return out, nil
}

func objectDefaults(value any) map[string]any {
	switch typed := value.(type) {
	case map[string]any:
		return typed
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(typed), &decoded); err == nil {
			return decoded
		}
	}
	return nil
}

// renderReference follows a bare reference and renders its target in place of
// the field.
func (p *pass) renderReference(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	target, err := schema.Resolved(node, p.refs)
	if err != nil {
		p.logger.Warn("reference cannot be resolved", "key", path, "error", err)
		h.Text(host.StyleWarning, "The reference of the following property cannot be resolved: "+p.label(node, fc))
		return nil, nil
	}
	merged := target.Clone()
	for _, key := range []string{"title", "description", "default", "readOnly"} {
		if value, ok := node[key]; ok {
			merged[key] = value
		}
	}
	return p.dispatch(ctx, h, path, merged, fc)
}

// renderUnion lets the user pick a variant and renders the chosen one.
func (p *pass) renderUnion(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	union, err := schema.UnionOf(node, p.refs)
	if err != nil || len(union.Variants) == 0 {
		p.logger.Warn("union variants cannot be resolved", "key", path, "error", err)
		return p.renderUnsupported(h, path, node, fc)
	}

	matched := -1
	if schema.Present(fc.init) {
		matched = union.Match(fc.init, fc.instanceClass)
	}
	index := matched
	if index < 0 {
		index = 0
	}

	label := p.label(node, fc)
	h.Text(host.StyleSubheader, label)
	if help := node.Description(); help != "" {
		h.Text(host.StyleMarkdown, help)
	}

	w := p.widget(path, node, fc, "options")
	w.Label = label + " - Options"
	picked, err := h.Select(ctx, w, host.SelectConfig{Options: union.Names(), Index: index})
	if err != nil {
		return nil, err
	}
	if picked < 0 || picked >= len(union.Variants) {
		picked = index
	}

	var init any
	if picked == matched {
		init = fc.init
	}
	variant := union.Variants[picked]
	out, err := p.renderObject(ctx, h, path, variant.Node, init, nil, fc.readOnly || node.ReadOnly())
	if err != nil {
		return nil, err
	}
	h.Text(host.StyleDivider, "")
	return out, nil
}
