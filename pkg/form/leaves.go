package form

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"mime"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/schema"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

func (p *pass) renderString(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	cfg := host.TextConfig{
		Value:    p.seedText(node, fc),
		Password: node.WriteOnly(),
	}
	if limit, ok := node.Number("maxLength"); ok {
		cfg.MaxChars = int(limit)
	}
	w := p.widget(path, node, fc)
	if node.Format() == "multi-line" && !node.WriteOnly() {
		return h.TextArea(ctx, w, cfg)
	}
	return h.TextInput(ctx, w, cfg)
}

func (p *pass) seedText(node schema.Node, fc fieldContext) string {
	value, ok := p.seed(node, fc)
	if !ok {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// renderRaw edits untyped values as text. Input that looks like a JSON array
// or object is decoded; anything else is kept as the typed string.
func (p *pass) renderRaw(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	var text string
	if value, ok := p.seed(node, fc); ok {
		switch typed := value.(type) {
		case string:
			text = typed
		default:
			encoded, err := json.Marshal(typed)
			if err != nil {
				return nil, fmt.Errorf("form: encode %s: %w", path, err)
			}
			text = string(encoded)
		}
	}

	out, err := h.TextInput(ctx, p.widget(path, node, fc), host.TextConfig{Value: text})
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(out)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded, nil
		}
	}
	return out, nil
}

func (p *pass) renderColor(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	return h.ColorPicker(ctx, p.widget(path, node, fc), p.seedText(node, fc))
}

func (p *pass) renderBoolean(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	var checked bool
	if value, ok := p.seed(node, fc); ok {
		checked, _ = value.(bool)
	}
	return h.Checkbox(ctx, p.widget(path, node, fc), checked)
}

func (p *pass) renderNumber(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	integer := node.Type() == "integer"
	cfg := host.NumberConfig{Integer: integer, Step: 0.01, Format: node.String("x-number-format")}
	if integer {
		cfg.Step = 1
	}
	if step, ok := node.Number("multipleOf"); ok && step > 0 {
		cfg.Step = step
	}

	if value, ok := node.Number("minimum"); ok {
		cfg.Min = &value
	} else if value, ok := node.Number("exclusiveMinimum"); ok {
		value += cfg.Step
		cfg.Min = &value
	}
	if value, ok := node.Number("maximum"); ok {
		cfg.Max = &value
	} else if value, ok := node.Number("exclusiveMaximum"); ok {
		value -= cfg.Step
		cfg.Max = &value
	}

	switch seed, ok := p.seed(node, fc); {
	case ok && isNumeric(seed):
		cfg.Value, _ = schema.ToFloat(seed)
	case cfg.Min != nil:
		cfg.Value = *cfg.Min
	case integer:
		cfg.Value = 0
	default:
		cfg.Value = cfg.Step
	}
	cfg.Value = math.Max(-math.MaxFloat64, math.Min(math.MaxFloat64, cfg.Value))

	w := p.widget(path, node, fc)
	var (
		out float64
		err error
	)
	if cfg.Min != nil && cfg.Max != nil {
		out, err = h.Slider(ctx, w, cfg)
	} else {
		out, err = h.NumberInput(ctx, w, cfg)
	}
	if err != nil {
		return nil, err
	}
	if integer {
		return int(math.Round(out)), nil
	}
	return out, nil
}

func isNumeric(value any) bool {
	_, ok := schema.ToFloat(value)
	return ok
}

func (p *pass) enumValues(node schema.Node) []any {
	if values := node.Enum(); len(values) > 0 {
		return values
	}
	if target, err := schema.SingleReference(node, p.refs); err == nil {
		return target.Enum()
	}
	return nil
}

func optionLabels(values []any) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = fmt.Sprint(value)
	}
	return out
}

func (p *pass) renderEnum(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	values := p.enumValues(node)
	if len(values) == 1 {
		return values[0], nil
	}

	index := 0
	if seed, ok := p.seed(node, fc); ok {
		for i, value := range values {
			if schema.EqualValues(value, seed) {
				index = i
				break
			}
		}
	}

	picked, err := h.Select(ctx, p.widget(path, node, fc), host.SelectConfig{
		Options: optionLabels(values),
		Index:   index,
	})
	if err != nil {
		return nil, err
	}
	if picked < 0 || picked >= len(values) {
		return nil, fmt.Errorf("form: %s: option index %d out of range", path, picked)
	}
	return values[picked], nil
}

func (p *pass) renderMultiEnum(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	items, err := schema.ItemsNode(node)
	if err != nil {
		return nil, err
	}
	values := p.enumValues(items)

	var defaults []int
	if seed, ok := p.seed(node, fc); ok {
		selected, _ := seed.([]any)
		for i, value := range values {
			for _, chosen := range selected {
				if schema.EqualValues(value, chosen) {
					defaults = append(defaults, i)
					break
				}
			}
		}
	}

	picked, err := h.MultiSelect(ctx, p.widget(path, node, fc), host.SelectConfig{
		Options:  optionLabels(values),
		Defaults: defaults,
	})
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(picked))
	for _, index := range picked {
		if index >= 0 && index < len(values) {
			out = append(out, values[index])
		}
	}
	return out, nil
}

func (p *pass) renderDateTime(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	seed := p.seedTime(node, fc)
	switch node.Format() {
	case "date":
		out, err := h.DateInput(ctx, p.widget(path, node, fc), seed)
		if err != nil {
			return nil, err
		}
		return out.Format(dateLayout), nil
	case "time":
		out, err := h.TimeInput(ctx, p.widget(path, node, fc), seed)
		if err != nil {
			return nil, err
		}
		return out.Format(timeLayout), nil
	}

	w := p.widget(path, node, fc)
	if !fc.isItem {
		h.Text(host.StyleSubheader, w.Label)
	}
	if w.Help != "" {
		h.Text(host.StyleMarkdown, w.Help)
	}
	dateHost, timeHost := h, h
	if !fc.isItem {
		if cols := h.Columns(2); len(cols) == 2 {
			dateHost, timeHost = cols[0], cols[1]
		}
	}

	dateWidget := p.widget(path, node, fc, "date-input")
	dateWidget.Label = "Date"
	day, err := dateHost.DateInput(ctx, dateWidget, seed)
	if err != nil {
		return nil, err
	}
	timeWidget := p.widget(path, node, fc, "time-input")
	timeWidget.Label = "Time"
	clock, err := timeHost.TimeInput(ctx, timeWidget, seed)
	if err != nil {
		return nil, err
	}

	combined := time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, seed.Location())
	return combined.Format(time.RFC3339), nil
}

var seedLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", dateLayout, timeLayout, "15:04"}

func (p *pass) seedTime(node schema.Node, fc fieldContext) time.Time {
	value, ok := p.seed(node, fc)
	if ok {
		switch typed := value.(type) {
		case time.Time:
			return typed
		case string:
			for _, layout := range seedLayouts {
				if parsed, err := time.Parse(layout, typed); err == nil {
					return parsed
				}
			}
		}
	}
	return p.now()
}

func (p *pass) fileConfig(node schema.Node, multiple bool) host.FileConfig {
	cfg := host.FileConfig{Multiple: multiple}
	if mimeType := node.MIMEType(); mimeType != "" {
		if exts, err := mime.ExtensionsByType(mimeType); err == nil {
			cfg.Accept = exts
		}
	}
	return cfg
}

func (p *pass) renderFile(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	files, err := h.FileUpload(ctx, p.widget(path, node, fc), p.fileConfig(node, false))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		if seed, ok := p.seed(node, fc); ok {
			if encoded, ok := seed.(string); ok {
				return encoded, nil
			}
		}
		return "", nil
	}
	file := files[0]
	previewFile(h, file)
	return base64.URLEncoding.EncodeToString(file.Data), nil
}

func (p *pass) renderMultiFile(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	items, err := schema.ItemsNode(node)
	if err != nil {
		return nil, err
	}
	files, err := h.FileUpload(ctx, p.widget(path, node, fc), p.fileConfig(items, true))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		if seed, ok := p.seed(node, fc); ok {
			if prior, ok := seed.([]any); ok {
				return prior, nil
			}
		}
		return []any{}, nil
	}
	out := make([]any, len(files))
	for i, file := range files {
		previewFile(h, file)
		out[i] = base64.URLEncoding.EncodeToString(file.Data)
	}
	return out, nil
}

func previewFile(h host.Host, file host.UploadedFile) {
	mimeType := file.MIMEType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(file.Name))
	}
	if kind, ok := host.MediaKindOf(mimeType); ok {
		h.Media(kind, mimeType, file.Data)
	}
}
