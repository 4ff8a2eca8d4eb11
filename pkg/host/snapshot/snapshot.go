// Package snapshot implements a non-interactive host.Host that records the
// widgets of a render pass and renders them as a static HTML page.
package snapshot

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"sync"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/schema"
	"github.com/goliatone/go-modelform/pkg/state"
)

// Option is one choice in a select element.
type Option struct {
	Label    string
	Selected bool
}

// Element is one recorded widget, message or layout container.
type Element struct {
	Kind     string
	Key      string
	Path     string
	Label    string
	Help     string
	Value    string
	Src      string
	Style    string
	Disabled bool
	Expanded bool
	Cleared  bool
	Options  []Option
	Columns  []string
	Rows     [][]string
	Children []*Element
}

func (e *Element) add(child *Element) *Element {
	e.Children = append(e.Children, child)
	return child
}

// Find returns the first descendant of kind editing path.
func (e *Element) Find(kind, path string) (*Element, bool) {
	for _, child := range e.Children {
		if child.Kind == kind && child.Path == path {
			return child, true
		}
		if found, ok := child.Find(kind, path); ok {
			return found, true
		}
	}
	return nil, false
}

type document struct {
	mu      sync.Mutex
	main    *Element
	sidebar *Element
	title   string
	theme   *theme.RendererConfig
	values  *state.Store
}

// Host records into a shared document. Sub-hosts returned by layout calls
// append into their own container.
type Host struct {
	doc    *document
	parent *Element
}

var _ host.Host = (*Host)(nil)

// HostOption configures a snapshot host.
type HostOption func(*document)

// WithTitle sets the page title.
func WithTitle(title string) HostOption {
	return func(d *document) {
		d.title = title
	}
}

// WithTheme applies a go-theme renderer configuration: CSS variables, theme
// and variant classes, and the "snapshot.stylesheet" asset.
func WithTheme(cfg *theme.RendererConfig) HostOption {
	return func(d *document) {
		d.theme = cfg
	}
}

// WithValues answers widgets from nested values keyed by dotted path, so a
// snapshot can show a filled-in form. Unanswered widgets keep their defaults.
func WithValues(values map[string]any) HostOption {
	return func(d *document) {
		d.values = state.NewStore(values)
	}
}

// New returns an empty snapshot host.
func New(opts ...HostOption) *Host {
	doc := &document{
		main:    &Element{Kind: "root"},
		sidebar: &Element{Kind: "sidebar"},
		title:   "Form",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(doc)
		}
	}
	return &Host{doc: doc, parent: doc.main}
}

// Root returns the main content tree.
func (h *Host) Root() *Element { return h.doc.main }

// SidebarRoot returns the sidebar content tree.
func (h *Host) SidebarRoot() *Element { return h.doc.sidebar }

func (h *Host) record(kind string, w host.Widget, value string) *Element {
	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()
	return h.parent.add(&Element{
		Kind:     kind,
		Key:      w.Key,
		Path:     w.Path,
		Label:    w.Label,
		Help:     w.Help,
		Value:    value,
		Disabled: w.Disabled,
	})
}

func (h *Host) answer(w host.Widget) (any, bool) {
	if h.doc.values == nil || w.Disabled || w.Path == "" {
		return nil, false
	}
	return h.doc.values.Get(w.Path)
}

func (h *Host) TextInput(_ context.Context, w host.Widget, cfg host.TextConfig) (string, error) {
	value := cfg.Value
	if answer, ok := h.answer(w); ok && answer != nil {
		value = fmt.Sprint(answer)
	}
	shown := value
	if cfg.Password && shown != "" {
		shown = "********"
	}
	h.record("text", w, shown)
	return value, nil
}

func (h *Host) TextArea(_ context.Context, w host.Widget, cfg host.TextConfig) (string, error) {
	value := cfg.Value
	if answer, ok := h.answer(w); ok && answer != nil {
		value = fmt.Sprint(answer)
	}
	h.record("textarea", w, value)
	return value, nil
}

func (h *Host) NumberInput(_ context.Context, w host.Widget, cfg host.NumberConfig) (float64, error) {
	return h.number("number", w, cfg), nil
}

func (h *Host) Slider(_ context.Context, w host.Widget, cfg host.NumberConfig) (float64, error) {
	return h.number("slider", w, cfg), nil
}

func (h *Host) number(kind string, w host.Widget, cfg host.NumberConfig) float64 {
	value := cfg.Value
	if answer, ok := h.answer(w); ok {
		if f, ok := schema.ToFloat(answer); ok {
			value = f
		}
	}
	h.record(kind, w, strconv.FormatFloat(value, 'f', -1, 64))
	return value
}

func (h *Host) Checkbox(_ context.Context, w host.Widget, value bool) (bool, error) {
	if answer, ok := h.answer(w); ok {
		if b, ok := answer.(bool); ok {
			value = b
		}
	}
	h.record("checkbox", w, strconv.FormatBool(value))
	return value, nil
}

func (h *Host) Select(_ context.Context, w host.Widget, cfg host.SelectConfig) (int, error) {
	index := cfg.Index
	if answer, ok := h.answer(w); ok {
		for i, option := range cfg.Options {
			if option == fmt.Sprint(answer) {
				index = i
				break
			}
		}
	}
	el := h.record("select", w, "")
	el.Options = options(cfg.Options, []int{index})
	return index, nil
}

func (h *Host) MultiSelect(_ context.Context, w host.Widget, cfg host.SelectConfig) ([]int, error) {
	selected := append([]int(nil), cfg.Defaults...)
	if answer, ok := h.answer(w); ok {
		if values, ok := answer.([]any); ok {
			selected = selected[:0]
			for i, option := range cfg.Options {
				for _, value := range values {
					if option == fmt.Sprint(value) {
						selected = append(selected, i)
						break
					}
				}
			}
		}
	}
	el := h.record("multiselect", w, "")
	el.Options = options(cfg.Options, selected)
	return selected, nil
}

func options(labels []string, selected []int) []Option {
	out := make([]Option, len(labels))
	for i, label := range labels {
		out[i] = Option{Label: label}
	}
	for _, index := range selected {
		if index >= 0 && index < len(out) {
			out[index].Selected = true
		}
	}
	return out
}

func (h *Host) DateInput(_ context.Context, w host.Widget, value time.Time) (time.Time, error) {
	value = h.moment(w, value, "2006-01-02")
	h.record("date", w, value.Format("2006-01-02"))
	return value, nil
}

func (h *Host) TimeInput(_ context.Context, w host.Widget, value time.Time) (time.Time, error) {
	value = h.moment(w, value, "15:04:05")
	h.record("time", w, value.Format("15:04:05"))
	return value, nil
}

func (h *Host) moment(w host.Widget, fallback time.Time, layout string) time.Time {
	answer, ok := h.answer(w)
	if !ok {
		return fallback
	}
	raw, ok := answer.(string)
	if !ok {
		return fallback
	}
	for _, candidate := range []string{time.RFC3339, layout} {
		if parsed, err := time.Parse(candidate, raw); err == nil {
			return parsed
		}
	}
	return fallback
}

// FileUpload records the upload field; snapshots never carry files.
func (h *Host) FileUpload(_ context.Context, w host.Widget, cfg host.FileConfig) ([]host.UploadedFile, error) {
	value := ""
	if len(cfg.Accept) > 0 {
		value = fmt.Sprint(cfg.Accept)
	}
	h.record("file", w, value)
	return nil, nil
}

func (h *Host) ColorPicker(_ context.Context, w host.Widget, value string) (string, error) {
	if answer, ok := h.answer(w); ok {
		if s, ok := answer.(string); ok {
			value = s
		}
	}
	h.record("color", w, value)
	return value, nil
}

// Button records the button; snapshots never press buttons.
func (h *Host) Button(_ context.Context, w host.Widget) (bool, error) {
	h.record("button", w, "")
	return false, nil
}

func (h *Host) push(el *Element) *Element {
	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()
	return h.parent.add(el)
}

func (h *Host) Text(style host.TextStyle, text string) {
	h.push(&Element{Kind: "message", Style: string(style), Value: text})
}

func (h *Host) JSON(label string, value any) {
	h.push(&Element{Kind: "json", Label: label, Value: prettyJSON(value)})
}

func (h *Host) Media(kind host.MediaKind, mimeType string, data []byte) {
	h.push(&Element{Kind: "media", Style: string(kind), Src: dataURI(mimeType, data)})
}

func (h *Host) Download(label, filename, mimeType string, data []byte) {
	h.push(&Element{Kind: "download", Label: label, Value: filename, Src: dataURI(mimeType, data)})
}

func dataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (h *Host) Table(columns []string, rows [][]string) {
	h.push(&Element{Kind: "table", Columns: columns, Rows: rows})
}

func (h *Host) Columns(n int) []host.Host {
	group := h.push(&Element{Kind: "columns"})
	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()
	out := make([]host.Host, n)
	for i := range out {
		out[i] = &Host{doc: h.doc, parent: group.add(&Element{Kind: "column"})}
	}
	return out
}

func (h *Host) Expander(label string, expanded bool) host.Host {
	el := h.push(&Element{Kind: "expander", Label: label, Expanded: expanded})
	return &Host{doc: h.doc, parent: el}
}

func (h *Host) Sidebar() host.Host {
	return &Host{doc: h.doc, parent: h.doc.sidebar}
}

func (h *Host) Placeholder() host.Slot {
	el := h.push(&Element{Kind: "slot"})
	return &slot{Host: &Host{doc: h.doc, parent: el}}
}

type slot struct {
	*Host
}

// Clear hides the slot and everything recorded into it.
func (s *slot) Clear() {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.parent.Cleared = true
}
