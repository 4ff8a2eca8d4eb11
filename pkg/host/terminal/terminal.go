// Package terminal implements host.Host with interactive terminal prompts.
// Every render pass prompts for each widget again; the last answer given for
// a widget key becomes the default of the next prompt.
package terminal

import (
	"context"
	"fmt"
	"io"
	"math"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-modelform/pkg/host"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Host prompts through a PromptDriver and writes display content to an
// io.Writer.
type Host struct {
	driver      PromptDriver
	out         io.Writer
	theme       Theme
	pageSize    int
	downloadDir string
	readFile    func(path string) ([]byte, error)
	answers     map[string]any
}

var _ host.Host = (*Host)(nil)

// New returns a terminal host. Without WithPromptDriver prompts go through
// survey.
func New(opts ...Option) *Host {
	h := &Host{
		out:      defaultOutput(),
		theme:    DefaultTheme(),
		readFile: os.ReadFile,
		answers:  make(map[string]any),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.driver == nil {
		h.driver = NewSurveyDriver(h.out)
	}
	return h
}

// Forget drops every remembered answer.
func (h *Host) Forget() {
	h.answers = make(map[string]any)
}

func recall[T any](h *Host, key string, fallback T) T {
	if value, ok := h.answers[key].(T); ok {
		return value
	}
	return fallback
}

func (h *Host) invalid(ctx context.Context, w host.Widget, reason string) {
	_ = h.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", w.Label, reason))
}

func (h *Host) readOnly(w host.Widget, value any) {
	fmt.Fprintf(h.out, "%s: %v\n", w.Label, value)
}

func (h *Host) TextInput(ctx context.Context, w host.Widget, cfg host.TextConfig) (string, error) {
	current := recall(h, w.Key, cfg.Value)
	if w.Disabled {
		h.readOnly(w, cfg.Value)
		return cfg.Value, nil
	}
	for {
		out, err := h.driver.Ask(ctx, Prompt{Message: w.Label, Help: w.Help, Default: current, Secret: cfg.Password})
		if err != nil {
			return "", err
		}
		if cfg.MaxChars > 0 && utf8.RuneCountInString(out) > cfg.MaxChars {
			h.invalid(ctx, w, fmt.Sprintf("at most %d characters", cfg.MaxChars))
			continue
		}
		h.answers[w.Key] = out
		return out, nil
	}
}

func (h *Host) TextArea(ctx context.Context, w host.Widget, cfg host.TextConfig) (string, error) {
	current := recall(h, w.Key, cfg.Value)
	if w.Disabled {
		h.readOnly(w, cfg.Value)
		return cfg.Value, nil
	}
	for {
		out, err := h.driver.Ask(ctx, Prompt{Message: w.Label, Help: w.Help, Default: current, Multiline: true})
		if err != nil {
			return "", err
		}
		if cfg.MaxChars > 0 && utf8.RuneCountInString(out) > cfg.MaxChars {
			h.invalid(ctx, w, fmt.Sprintf("at most %d characters", cfg.MaxChars))
			continue
		}
		h.answers[w.Key] = out
		return out, nil
	}
}

func (h *Host) NumberInput(ctx context.Context, w host.Widget, cfg host.NumberConfig) (float64, error) {
	return h.number(ctx, w, cfg)
}

// Slider prompts like NumberInput; the bounds are part of the message.
func (h *Host) Slider(ctx context.Context, w host.Widget, cfg host.NumberConfig) (float64, error) {
	return h.number(ctx, w, cfg)
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func (h *Host) number(ctx context.Context, w host.Widget, cfg host.NumberConfig) (float64, error) {
	current := recall(h, w.Key, cfg.Value)
	if w.Disabled {
		h.readOnly(w, formatNumber(cfg.Value))
		return cfg.Value, nil
	}
	message := w.Label
	if cfg.Min != nil || cfg.Max != nil {
		lower, upper := "", ""
		if cfg.Min != nil {
			lower = formatNumber(*cfg.Min)
		}
		if cfg.Max != nil {
			upper = formatNumber(*cfg.Max)
		}
		message = fmt.Sprintf("%s [%s..%s]", w.Label, lower, upper)
	}

	for {
		input, err := h.driver.Ask(ctx, Prompt{Message: message, Help: w.Help, Default: formatNumber(current)})
		if err != nil {
			return 0, err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			h.answers[w.Key] = current
			return current, nil
		}
		parsed, err := strconv.ParseFloat(input, 64)
		if err != nil {
			h.invalid(ctx, w, "not a number")
			continue
		}
		if cfg.Integer && parsed != math.Trunc(parsed) {
			h.invalid(ctx, w, "must be a whole number")
			continue
		}
		if cfg.Min != nil && parsed < *cfg.Min {
			h.invalid(ctx, w, "must be >= "+formatNumber(*cfg.Min))
			continue
		}
		if cfg.Max != nil && parsed > *cfg.Max {
			h.invalid(ctx, w, "must be <= "+formatNumber(*cfg.Max))
			continue
		}
		h.answers[w.Key] = parsed
		return parsed, nil
	}
}

func (h *Host) Checkbox(ctx context.Context, w host.Widget, value bool) (bool, error) {
	current := recall(h, w.Key, value)
	if w.Disabled {
		h.readOnly(w, value)
		return value, nil
	}
	out, err := h.driver.Confirm(ctx, Prompt{Message: w.Label, Help: w.Help}, current)
	if err != nil {
		return false, err
	}
	h.answers[w.Key] = out
	return out, nil
}

func (h *Host) Select(ctx context.Context, w host.Widget, cfg host.SelectConfig) (int, error) {
	current := recall(h, w.Key, cfg.Index)
	if w.Disabled || len(cfg.Options) == 0 {
		if cfg.Index >= 0 && cfg.Index < len(cfg.Options) {
			h.readOnly(w, cfg.Options[cfg.Index])
		}
		return cfg.Index, nil
	}
	picked, err := h.driver.Choose(ctx, Prompt{
		Message:  w.Label,
		Help:     w.Help,
		Options:  cfg.Options,
		Selected: []int{current},
		PageSize: h.pageSize,
	})
	if err != nil {
		return 0, err
	}
	out := current
	if len(picked) == 1 && picked[0] >= 0 && picked[0] < len(cfg.Options) {
		out = picked[0]
	}
	h.answers[w.Key] = out
	return out, nil
}

func (h *Host) MultiSelect(ctx context.Context, w host.Widget, cfg host.SelectConfig) ([]int, error) {
	current := recall(h, w.Key, cfg.Defaults)
	if w.Disabled || len(cfg.Options) == 0 {
		h.readOnly(w, strings.Join(optionsAt(cfg.Options, cfg.Defaults), ", "))
		return append([]int(nil), cfg.Defaults...), nil
	}
	out, err := h.driver.Choose(ctx, Prompt{
		Message:  w.Label,
		Help:     w.Help,
		Options:  cfg.Options,
		Selected: current,
		Multiple: true,
		PageSize: h.pageSize,
	})
	if err != nil {
		return nil, err
	}
	h.answers[w.Key] = out
	return out, nil
}

func (h *Host) DateInput(ctx context.Context, w host.Widget, value time.Time) (time.Time, error) {
	return h.moment(ctx, w, value, "2006-01-02")
}

func (h *Host) TimeInput(ctx context.Context, w host.Widget, value time.Time) (time.Time, error) {
	return h.moment(ctx, w, value, "15:04:05", "15:04")
}

// moment prompts for a date or a clock time. The parts of value the layout
// does not cover are kept.
func (h *Host) moment(ctx context.Context, w host.Widget, value time.Time, layouts ...string) (time.Time, error) {
	current := recall(h, w.Key, value)
	if w.Disabled {
		h.readOnly(w, value.Format(layouts[0]))
		return value, nil
	}
	for {
		input, err := h.driver.Ask(ctx, Prompt{
			Message: w.Label + " (" + layouts[0] + ")",
			Help:    w.Help,
			Default: current.Format(layouts[0]),
		})
		if err != nil {
			return time.Time{}, err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return current, nil
		}
		parsed, ok := parseMoment(input, current, layouts)
		if !ok {
			h.invalid(ctx, w, "expected "+layouts[0])
			continue
		}
		h.answers[w.Key] = parsed
		return parsed, nil
	}
}

func parseMoment(input string, base time.Time, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, input)
		if err != nil {
			continue
		}
		if strings.Contains(layout, "2006") {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(),
				base.Hour(), base.Minute(), base.Second(), base.Nanosecond(), base.Location()), true
		}
		return time.Date(base.Year(), base.Month(), base.Day(),
			parsed.Hour(), parsed.Minute(), parsed.Second(), 0, base.Location()), true
	}
	return time.Time{}, false
}

// FileUpload asks for file paths; several paths are separated by commas.
func (h *Host) FileUpload(ctx context.Context, w host.Widget, cfg host.FileConfig) ([]host.UploadedFile, error) {
	if w.Disabled {
		return nil, nil
	}
	message := w.Label + " (path)"
	if cfg.Multiple {
		message = w.Label + " (comma-separated paths)"
	}
	if len(cfg.Accept) > 0 {
		message += " " + strings.Join(cfg.Accept, " ")
	}

	for {
		input, err := h.driver.Ask(ctx, Prompt{
			Message: message,
			Help:    w.Help,
			Default: recall(h, w.Key, ""),
		})
		if err != nil {
			return nil, err
		}
		paths := splitPaths(input, cfg.Multiple)
		files, reason := h.load(paths, cfg.Accept)
		if reason != "" {
			h.invalid(ctx, w, reason)
			continue
		}
		h.answers[w.Key] = strings.TrimSpace(input)
		return files, nil
	}
}

func splitPaths(input string, multiple bool) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if !multiple {
		return []string{input}
	}
	var out []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (h *Host) load(paths, accept []string) ([]host.UploadedFile, string) {
	files := make([]host.UploadedFile, 0, len(paths))
	for _, path := range paths {
		ext := strings.ToLower(filepath.Ext(path))
		if len(accept) > 0 && !containsFold(accept, ext) {
			return nil, fmt.Sprintf("%s is not one of %s", filepath.Base(path), strings.Join(accept, ", "))
		}
		data, err := h.readFile(path)
		if err != nil {
			return nil, err.Error()
		}
		files = append(files, host.UploadedFile{
			Name:     filepath.Base(path),
			MIMEType: mime.TypeByExtension(ext),
			Data:     data,
		})
	}
	return files, ""
}

func containsFold(values []string, want string) bool {
	for _, value := range values {
		if strings.EqualFold(value, want) {
			return true
		}
	}
	return false
}

func (h *Host) ColorPicker(ctx context.Context, w host.Widget, value string) (string, error) {
	current := recall(h, w.Key, value)
	if w.Disabled {
		h.readOnly(w, value)
		return value, nil
	}
	for {
		out, err := h.driver.Ask(ctx, Prompt{Message: w.Label + " (#rrggbb)", Help: w.Help, Default: current})
		if err != nil {
			return "", err
		}
		out = strings.TrimSpace(out)
		if out != "" && !colorPattern.MatchString(out) {
			h.invalid(ctx, w, "expected a hex color like #1a2b3c")
			continue
		}
		h.answers[w.Key] = out
		return out, nil
	}
}

// Button asks for confirmation. Disabled buttons are not offered.
func (h *Host) Button(ctx context.Context, w host.Widget) (bool, error) {
	if w.Disabled {
		return false, nil
	}
	message := w.Label + "?"
	if w.Path != "" {
		message = fmt.Sprintf("%s (%s)?", w.Label, w.Path)
	}
	return h.driver.Confirm(ctx, Prompt{Message: message, Help: w.Help}, false)
}

func (h *Host) Text(style host.TextStyle, text string) {
	switch style {
	case host.StyleSubheader:
		fmt.Fprintln(h.out, h.theme.HeaderPrefix+text)
	case host.StyleCode:
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintln(h.out, "    "+line)
		}
	case host.StyleInfo:
		fmt.Fprintln(h.out, h.theme.InfoPrefix+text)
	case host.StyleWarning:
		fmt.Fprintln(h.out, h.theme.WarningPrefix+text)
	case host.StyleError:
		fmt.Fprintln(h.out, h.theme.ErrorPrefix+text)
	case host.StyleDivider:
		fmt.Fprintln(h.out, strings.Repeat("-", 40))
	default:
		fmt.Fprintln(h.out, text)
	}
}

func (h *Host) JSON(label string, value any) {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		h.Text(host.StyleError, fmt.Sprintf("%s: %v", label, err))
		return
	}
	fmt.Fprintf(h.out, "%s:\n%s\n", label, raw)
}

func (h *Host) Media(kind host.MediaKind, mimeType string, data []byte) {
	fmt.Fprintf(h.out, "[%s %s, %d bytes]\n", kind, mimeType, len(data))
}

func (h *Host) Download(label, filename, _ string, data []byte) {
	if h.downloadDir == "" {
		fmt.Fprintf(h.out, "%s: %s (%d bytes)\n", label, filename, len(data))
		return
	}
	target := filepath.Join(h.downloadDir, filepath.Base(filename))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		h.Text(host.StyleError, fmt.Sprintf("%s: %v", label, err))
		return
	}
	fmt.Fprintf(h.out, "%s: saved %s\n", label, target)
}

func (h *Host) Table(columns []string, rows [][]string) {
	tw := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

// Columns returns the host itself n times; prompts are sequential.
func (h *Host) Columns(n int) []host.Host {
	out := make([]host.Host, n)
	for i := range out {
		out[i] = h
	}
	return out
}

func (h *Host) Expander(label string, _ bool) host.Host {
	h.Text(host.StyleSubheader, label)
	return h
}

func (h *Host) Sidebar() host.Host { return h }

func (h *Host) Placeholder() host.Slot { return slot{h} }

// slot cannot take back lines already written; clearing is a no-op.
type slot struct {
	*Host
}

func (slot) Clear() {}
