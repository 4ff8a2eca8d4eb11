package form

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/schema"
	"github.com/goliatone/go-modelform/pkg/state"
)

// pass carries the per-render state shared by every field renderer.
type pass struct {
	form    *Form
	session *state.Session
	store   *state.Store
	refs    schema.References
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

// fieldContext is what a parent hands to the renderer of one field.
type fieldContext struct {
	init          any
	label         string
	isItem        bool
	readOnly      bool
	instanceClass string
	def           any
	hasDef        bool
}

// dispatch classifies node and renders it with the matching widget.
func (p *pass) dispatch(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if node == nil {
		node = schema.Node{}
	}
	node = schema.Flatten(node)

	shape, err := schema.Classify(node, p.refs)
	if err != nil {
		p.logger.Error("field cannot be classified", "key", path, "error", err)
		return nil, err
	}
	p.logger.Debug("render field",
		"key", path,
		"title", p.label(node, fc),
		"type", node.Type(),
		"shape", shape.String(),
	)

	switch shape {
	case schema.ShapeEnum:
		return p.renderEnum(ctx, h, path, node, fc)
	case schema.ShapeMultiEnum:
		return p.renderMultiEnum(ctx, h, path, node, fc)
	case schema.ShapeFile:
		return p.renderFile(ctx, h, path, node, fc)
	case schema.ShapeMultiFile:
		return p.renderMultiFile(ctx, h, path, node, fc)
	case schema.ShapeDateTime:
		return p.renderDateTime(ctx, h, path, node, fc)
	case schema.ShapeColor:
		return p.renderColor(ctx, h, path, node, fc)
	case schema.ShapeBoolean:
		return p.renderBoolean(ctx, h, path, node, fc)
	case schema.ShapeDict:
		return p.renderDict(ctx, h, path, node, fc)
	case schema.ShapeNumber:
		return p.renderNumber(ctx, h, path, node, fc)
	case schema.ShapeString:
		return p.renderString(ctx, h, path, node, fc)
	case schema.ShapeObject:
		return p.renderObjectRef(ctx, h, path, node, fc)
	case schema.ShapeList:
		return p.renderList(ctx, h, path, node, fc)
	case schema.ShapeReference:
		return p.renderReference(ctx, h, path, node, fc)
	case schema.ShapeUnion:
		return p.renderUnion(ctx, h, path, node, fc)
	case schema.ShapeInlineObject:
		return p.renderInlineObject(ctx, h, path, node, fc)
	case schema.ShapeRaw:
		return p.renderRaw(ctx, h, path, node, fc)
	default:
		return p.renderUnsupported(h, path, node, fc)
	}
}

func (p *pass) label(node schema.Node, fc fieldContext) string {
	label := node.Title()
	if label == "" {
		label = fc.label
	}
	if p.cfg.LowercaseLabels {
		label = strings.ToLower(label)
	}
	return label
}

func (p *pass) widget(path string, node schema.Node, fc fieldContext, suffix ...string) host.Widget {
	help := node.Description()
	if help == "" {
		help = node.String("help")
	}
	return host.Widget{
		Key:       p.session.WidgetKey(path, suffix...),
		Path:      path,
		Label:     p.label(node, fc),
		Help:      help,
		Disabled:  fc.readOnly || node.ReadOnly(),
		Overrides: node.Overrides(p.cfg.OverridePrefix),
	}
}

// seed picks the starting value of a widget: the prior value, then the
// default, then the first example. ok is false when none applies.
func (p *pass) seed(node schema.Node, fc fieldContext) (any, bool) {
	if schema.Present(fc.init) {
		return fc.init, true
	}
	if fc.hasDef {
		return fc.def, fc.def != nil
	}
	if value, ok := node["default"]; ok && value != nil {
		return value, true
	}
	if examples, ok := node["examples"].([]any); ok && len(examples) > 0 && examples[0] != nil {
		return examples[0], true
	}
	if value, ok := node["example"]; ok && value != nil {
		return value, true
	}
	return nil, false
}

// ignored reports whether an empty scalar should stay out of the store.
func (p *pass) ignored(path string, value any) bool {
	if !p.cfg.IgnoreEmptyValues {
		return false
	}
	if !isEmptyScalar(value) {
		return false
	}
	_, stored := p.store.Get(path)
	return !stored
}

func isEmptyScalar(value any) bool {
	switch typed := value.(type) {
	case string:
		return typed == ""
	case int:
		return typed == 0
	case float64:
		return typed == 0
	default:
		return false
	}
}

func (p *pass) renderUnsupported(h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	label := p.label(node, fc)
	p.logger.Error("field type not supported", "key", path, "title", label, "type", node.Type())
	h.Text(host.StyleWarning, "The type of the following property is currently not supported: "+label)
	return nil, nil
}
