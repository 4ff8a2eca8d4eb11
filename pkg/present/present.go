// Package present renders result values read-only on a host.
package present

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"reflect"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/model"
	"github.com/goliatone/go-modelform/pkg/schema"
)

var (
	// ErrCannotRender is returned for values that are neither models nor lists.
	ErrCannotRender = errors.New("present: cannot render output")
	// ErrCannotRenderList is returned for lists mixing item types or holding
	// non-model items.
	ErrCannotRenderList = errors.New("present: cannot render output list")
)

const noValue = "No value returned!"

// Option configures a presenter.
type Option func(*presenter)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithInput hands the input a result was computed from to output hooks.
func WithInput(input any) Option {
	return func(p *presenter) {
		p.input = input
	}
}

type presenter struct {
	logger *slog.Logger
	input  any
}

var timeType = reflect.TypeOf(time.Time{})

// Render shows value on h. Values implementing model.OutputRenderer or
// model.OutputWithInputRenderer draw themselves. Structs are shown property by
// property and lists of structs as a table. Anything else shows an error
// indicator on h and returns ErrCannotRender or ErrCannotRenderList.
func Render(ctx context.Context, h host.Host, value any, opts ...Option) error {
	p := &presenter{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if handled, err := p.hook(ctx, h, value); handled {
		return err
	}
	rv := indirect(reflect.ValueOf(value))
	switch {
	case isModel(rv):
		return p.renderModel(ctx, h, rv.Interface())
	case rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array):
		return p.renderList(ctx, h, rv)
	default:
		return p.fail(h, ErrCannotRender, fmt.Sprintf("%T", value))
	}
}

func (p *presenter) fail(h host.Host, err error, detail string) error {
	p.logger.Warn("output cannot be rendered", "value", detail, "error", err)
	message := "Cannot render output"
	if errors.Is(err, ErrCannotRenderList) {
		message = "Cannot render output list"
	}
	h.Text(host.StyleError, message)
	return err
}

func (p *presenter) hook(ctx context.Context, h host.Host, value any) (bool, error) {
	if rv := reflect.ValueOf(value); !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return false, nil
	}
	switch typed := value.(type) {
	case model.OutputWithInputRenderer:
		return true, typed.RenderOutputWithInput(ctx, h, p.input)
	case model.OutputRenderer:
		return true, typed.RenderOutput(ctx, h)
	default:
		return false, nil
	}
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func isModel(rv reflect.Value) bool {
	return rv.IsValid() && rv.Kind() == reflect.Struct && rv.Type() != timeType
}

func (p *presenter) renderModel(ctx context.Context, h host.Host, value any) error {
	m, err := model.FromInstance(value)
	if err != nil {
		return p.fail(h, fmt.Errorf("%w: %v", ErrCannotRender, err), fmt.Sprintf("%T", value))
	}

	for _, name := range m.PropertyNames() {
		if err := ctx.Err(); err != nil {
			return err
		}
		node := m.Property(name).Clone()
		if node.Title() == "" {
			node["title"] = schema.NameToTitle(name)
		}
		field, _ := m.Field(name)
		jsonValue, _ := m.InstanceValue(name)

		if handled, err := p.hook(ctx, h, field); handled {
			if err != nil {
				return err
			}
			continue
		}
		if nested := indirect(reflect.ValueOf(field)); isModel(nested) {
			header(h, node)
			if err := p.renderModel(ctx, h, nested.Interface()); err != nil {
				return err
			}
			continue
		}
		p.renderProperty(h, m.References(), node, field, jsonValue)
	}
	return nil
}

func (p *presenter) renderProperty(h host.Host, refs schema.References, node schema.Node, field, jsonValue any) {
	flat := schema.Flatten(node)
	switch {
	case schema.IsMultiFile(flat):
		item, _ := schema.ItemsNode(flat)
		if item == nil {
			item = schema.Node{}
		}
		fileNode := item.Clone()
		fileNode["title"] = node.Title()
		for _, data := range fileList(field) {
			renderFile(h, fileNode, data)
		}
	case schema.IsSingleFile(flat):
		renderFile(h, node, fileBytes(field))
	case schema.IsSingleString(flat), schema.IsSingleNumber(flat),
		schema.IsSingleDateTime(flat), schema.IsSingleBoolean(flat),
		schema.IsSingleEnum(flat, refs):
		renderText(h, node, jsonValue)
	default:
		// Maps (and map-backed sets) and fixed arrays print as text; slices
		// fall through to the JSON block.
		kind := indirect(reflect.ValueOf(field)).Kind()
		if kind == reflect.Map || kind == reflect.Array {
			renderText(h, node, jsonValue)
			return
		}
		header(h, node)
		h.JSON(node.Title(), jsonValue)
	}
}

func header(h host.Host, node schema.Node) {
	h.Text(host.StyleSubheader, node.Title())
	if description := node.Description(); description != "" {
		h.Text(host.StyleMarkdown, description)
	}
}

func renderText(h host.Host, node schema.Node, value any) {
	header(h, node)
	if !schema.Present(value) {
		h.Text(host.StyleInfo, noValue)
		return
	}
	h.Text(host.StyleCode, display(value))
}

// display formats a decoded JSON value for a text block. Strings print as is;
// containers print as compact JSON.
func display(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case map[string]any, []any:
		raw, err := json.Marshal(typed)
		if err == nil {
			return string(raw)
		}
	}
	return fmt.Sprint(value)
}

func renderFile(h host.Host, node schema.Node, data []byte) {
	header(h, node)
	if len(data) == 0 {
		h.Text(host.StyleInfo, noValue)
		return
	}
	mimeType := node.MIMEType()
	if kind, ok := host.MediaKindOf(mimeType); ok {
		h.Media(kind, mimeType, data)
		return
	}
	h.Download("Download File", DownloadName(node.Title(), mimeType), mimeType, data)
}

// DownloadName builds the file name offered for a file property: the title
// plus the MIME type's extension, lowercased with spaces turned into dashes.
func DownloadName(title, mimeType string) string {
	ext := ""
	if mimeType != "" {
		if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	name := strings.TrimSpace(strings.ToLower(title + ext))
	return strings.ReplaceAll(name, " ", "-")
}

func fileBytes(field any) []byte {
	switch typed := field.(type) {
	case []byte:
		return typed
	case string:
		return []byte(typed)
	case *[]byte:
		if typed != nil {
			return *typed
		}
	}
	return nil
}

func fileList(field any) [][]byte {
	rv := indirect(reflect.ValueOf(field))
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil
	}
	out := make([][]byte, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, fileBytes(rv.Index(i).Interface()))
	}
	return out
}

// renderList shows a list of same-typed structs as a table. Items with their
// own output hook draw themselves and are left out of the table.
func (p *presenter) renderList(ctx context.Context, h host.Host, rv reflect.Value) error {
	var (
		rows    []reflect.Value
		rowType reflect.Type
	)
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		if handled, err := p.hook(ctx, h, item); handled {
			if err != nil {
				return err
			}
			continue
		}
		value := indirect(reflect.ValueOf(item))
		if !isModel(value) {
			return p.fail(h, ErrCannotRenderList, fmt.Sprintf("item %d: %T", i, item))
		}
		if rowType == nil {
			rowType = value.Type()
		} else if value.Type() != rowType {
			return p.fail(h, ErrCannotRenderList, fmt.Sprintf("item %d: %s in list of %s", i, value.Type(), rowType))
		}
		rows = append(rows, value)
	}
	if len(rows) == 0 {
		return nil
	}

	var columns []string
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		m, err := model.FromInstance(row.Interface())
		if err != nil {
			return p.fail(h, fmt.Errorf("%w: %v", ErrCannotRenderList, err), row.Type().String())
		}
		if columns == nil {
			columns = m.PropertyNames()
		}
		cells := make([]string, len(columns))
		for i, name := range columns {
			if value, ok := m.InstanceValue(name); ok && value != nil {
				cells[i] = display(value)
			}
		}
		body = append(body, cells)
	}
	h.Table(columns, body)
	return nil
}
