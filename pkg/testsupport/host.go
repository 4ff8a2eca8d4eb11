package testsupport

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/schema"
)

// Record is one widget call captured by Host.
type Record struct {
	Kind      string
	Widget    host.Widget
	Container string
	Config    any
}

// Message is one display call captured by Host.
type Message struct {
	Style     host.TextStyle
	Text      string
	Container string
}

type script struct {
	answers  map[string]any
	presses  map[string]int
	failures map[string]error
	records  []Record
	messages []Message
	json     map[string]any
	tables   [][][]string
	media    []host.MediaKind
	cleared  int
}

// Host is a scripted host.Host. Inputs answer from values registered with
// Answer (keyed by dotted path) and fall back to the configured default, so an
// unscripted pass behaves like a user who touched nothing. Buttons report a
// press once per Press call.
type Host struct {
	s         *script
	container string
}

var _ host.Host = (*Host)(nil)

// NewHost returns an empty scripted host.
func NewHost() *Host {
	return &Host{
		s: &script{
			answers:  make(map[string]any),
			presses:  make(map[string]int),
			failures: make(map[string]error),
			json:     make(map[string]any),
		},
		container: "main",
	}
}

// Answer scripts the value returned for widgets editing path. Answers persist
// across passes, like widget state in a live UI.
func (h *Host) Answer(path string, value any) *Host {
	h.s.answers[path] = value
	return h
}

// Forget drops a scripted answer.
func (h *Host) Forget(path string) *Host {
	delete(h.s.answers, path)
	return h
}

// Press queues one press of the button labelled label at path.
func (h *Host) Press(path, label string) *Host {
	h.s.presses[buttonID(path, label)]++
	return h
}

// FailButton makes the button labelled label at path return err.
func (h *Host) FailButton(path, label string, err error) *Host {
	h.s.failures[buttonID(path, label)] = err
	return h
}

// NewPass drops recorded widgets and messages while keeping answers.
func (h *Host) NewPass() *Host {
	h.s.records = nil
	h.s.messages = nil
	h.s.json = make(map[string]any)
	h.s.tables = nil
	h.s.media = nil
	h.s.cleared = 0
	return h
}

// Records returns the widgets seen since the last NewPass.
func (h *Host) Records() []Record {
	return append([]Record(nil), h.s.records...)
}

// Widget returns the last widget of kind recorded for path.
func (h *Host) Widget(kind, path string) (Record, bool) {
	for i := len(h.s.records) - 1; i >= 0; i-- {
		rec := h.s.records[i]
		if rec.Kind == kind && rec.Widget.Path == path {
			return rec, true
		}
	}
	return Record{}, false
}

// Paths lists the paths of recorded widgets of kind, in call order.
func (h *Host) Paths(kind string) []string {
	var out []string
	for _, rec := range h.s.records {
		if rec.Kind == kind {
			out = append(out, rec.Widget.Path)
		}
	}
	return out
}

// Messages returns display calls, optionally filtered by style.
func (h *Host) Messages(styles ...host.TextStyle) []Message {
	if len(styles) == 0 {
		return append([]Message(nil), h.s.messages...)
	}
	var out []Message
	for _, msg := range h.s.messages {
		for _, style := range styles {
			if msg.Style == style {
				out = append(out, msg)
				break
			}
		}
	}
	return out
}

// Texts returns the text of messages with the given style.
func (h *Host) Texts(style host.TextStyle) []string {
	var out []string
	for _, msg := range h.Messages(style) {
		out = append(out, msg.Text)
	}
	return out
}

// JSONValue returns the value passed to JSON under label.
func (h *Host) JSONValue(label string) (any, bool) {
	value, ok := h.s.json[label]
	return value, ok
}

// Tables returns every rendered table body, header row first.
func (h *Host) Tables() [][][]string { return h.s.tables }

// MediaKinds lists previews shown, in order.
func (h *Host) MediaKinds() []host.MediaKind { return h.s.media }

// Cleared reports how many placeholder slots were cleared.
func (h *Host) Cleared() int { return h.s.cleared }

func (h *Host) record(kind string, w host.Widget, cfg any) {
	h.s.records = append(h.s.records, Record{Kind: kind, Widget: w, Container: h.container, Config: cfg})
}

func (h *Host) answer(path string) (any, bool) {
	value, ok := h.s.answers[path]
	return value, ok
}

func (h *Host) TextInput(ctx context.Context, w host.Widget, cfg host.TextConfig) (string, error) {
	h.record("text", w, cfg)
	return h.text(ctx, w, cfg.Value)
}

func (h *Host) TextArea(ctx context.Context, w host.Widget, cfg host.TextConfig) (string, error) {
	h.record("textarea", w, cfg)
	return h.text(ctx, w, cfg.Value)
}

func (h *Host) text(ctx context.Context, w host.Widget, fallback string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, ok := h.answer(w.Path)
	if !ok || w.Disabled {
		return fallback, nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("testsupport: answer for %s is %T, want string", w.Path, value)
	}
	return s, nil
}

func (h *Host) NumberInput(ctx context.Context, w host.Widget, cfg host.NumberConfig) (float64, error) {
	h.record("number", w, cfg)
	return h.number(ctx, w, cfg)
}

func (h *Host) Slider(ctx context.Context, w host.Widget, cfg host.NumberConfig) (float64, error) {
	h.record("slider", w, cfg)
	return h.number(ctx, w, cfg)
}

func (h *Host) number(ctx context.Context, w host.Widget, cfg host.NumberConfig) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	value, ok := h.answer(w.Path)
	if !ok || w.Disabled {
		return cfg.Value, nil
	}
	f, ok := schema.ToFloat(value)
	if !ok {
		return 0, fmt.Errorf("testsupport: answer for %s is %T, want number", w.Path, value)
	}
	return f, nil
}

func (h *Host) Checkbox(ctx context.Context, w host.Widget, value bool) (bool, error) {
	h.record("checkbox", w, value)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	answer, ok := h.answer(w.Path)
	if !ok || w.Disabled {
		return value, nil
	}
	b, ok := answer.(bool)
	if !ok {
		return false, fmt.Errorf("testsupport: answer for %s is %T, want bool", w.Path, answer)
	}
	return b, nil
}

func (h *Host) Select(ctx context.Context, w host.Widget, cfg host.SelectConfig) (int, error) {
	h.record("select", w, cfg)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	answer, ok := h.answer(w.Path)
	if !ok || w.Disabled {
		return cfg.Index, nil
	}
	switch typed := answer.(type) {
	case int:
		return typed, nil
	case string:
		for i, option := range cfg.Options {
			if option == typed {
				return i, nil
			}
		}
		return 0, fmt.Errorf("testsupport: %q is not an option of %s", typed, w.Path)
	default:
		return 0, fmt.Errorf("testsupport: answer for %s is %T, want int or string", w.Path, answer)
	}
}

func (h *Host) MultiSelect(ctx context.Context, w host.Widget, cfg host.SelectConfig) ([]int, error) {
	h.record("multiselect", w, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	answer, ok := h.answer(w.Path)
	if !ok || w.Disabled {
		return append([]int(nil), cfg.Defaults...), nil
	}
	switch typed := answer.(type) {
	case []int:
		return typed, nil
	case []string:
		var out []int
		for _, want := range typed {
			for i, option := range cfg.Options {
				if option == want {
					out = append(out, i)
				}
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("testsupport: answer for %s is %T, want []int or []string", w.Path, answer)
	}
}

func (h *Host) DateInput(ctx context.Context, w host.Widget, value time.Time) (time.Time, error) {
	h.record("date", w, value)
	return h.moment(ctx, w, value)
}

func (h *Host) TimeInput(ctx context.Context, w host.Widget, value time.Time) (time.Time, error) {
	h.record("time", w, value)
	return h.moment(ctx, w, value)
}

func (h *Host) moment(ctx context.Context, w host.Widget, fallback time.Time) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	answer, ok := h.answer(w.Path)
	if !ok || w.Disabled {
		return fallback, nil
	}
	t, ok := answer.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("testsupport: answer for %s is %T, want time.Time", w.Path, answer)
	}
	return t, nil
}

func (h *Host) FileUpload(ctx context.Context, w host.Widget, cfg host.FileConfig) ([]host.UploadedFile, error) {
	h.record("file", w, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	answer, ok := h.answer(w.Path)
	if !ok || w.Disabled {
		return nil, nil
	}
	switch typed := answer.(type) {
	case host.UploadedFile:
		return []host.UploadedFile{typed}, nil
	case []host.UploadedFile:
		return typed, nil
	default:
		return nil, fmt.Errorf("testsupport: answer for %s is %T, want uploaded files", w.Path, answer)
	}
}

func (h *Host) ColorPicker(ctx context.Context, w host.Widget, value string) (string, error) {
	h.record("color", w, value)
	return h.text(ctx, w, value)
}

func (h *Host) Button(ctx context.Context, w host.Widget) (bool, error) {
	h.record("button", w, nil)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	id := buttonID(w.Path, w.Label)
	if err, ok := h.s.failures[id]; ok {
		return false, err
	}
	if h.s.presses[id] == 0 || w.Disabled {
		return false, nil
	}
	h.s.presses[id]--
	return true, nil
}

func (h *Host) Text(style host.TextStyle, text string) {
	h.s.messages = append(h.s.messages, Message{Style: style, Text: text, Container: h.container})
}

func (h *Host) JSON(label string, value any) {
	h.s.json[label] = value
	h.Text(host.StyleCode, label)
}

func (h *Host) Media(kind host.MediaKind, _ string, _ []byte) {
	h.s.media = append(h.s.media, kind)
}

func (h *Host) Download(label, filename, _ string, _ []byte) {
	h.Text(host.StylePlain, label+": "+filename)
}

func (h *Host) Table(columns []string, rows [][]string) {
	body := [][]string{append([]string(nil), columns...)}
	body = append(body, rows...)
	h.s.tables = append(h.s.tables, body)
}

func (h *Host) Columns(n int) []host.Host {
	out := make([]host.Host, n)
	for i := range out {
		out[i] = h
	}
	return out
}

func (h *Host) Expander(label string, _ bool) host.Host {
	return &Host{s: h.s, container: "expander:" + label}
}

func (h *Host) Sidebar() host.Host {
	return &Host{s: h.s, container: "sidebar"}
}

func (h *Host) Placeholder() host.Slot {
	return &slot{Host: h}
}

type slot struct {
	*Host
}

func (s *slot) Clear() {
	s.s.cleared++
}

func buttonID(path, label string) string {
	return path + "|" + label
}
