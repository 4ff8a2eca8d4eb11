// Package host describes the UI toolkit the form engine drives. The engine
// never draws anything itself; it asks a Host for widgets and reads back the
// values they hold for the current render pass.
package host

import (
	"context"
	"errors"
	"time"
)

// ErrAborted signals the user aborted input (e.g., Ctrl+C).
var ErrAborted = errors.New("host: aborted")

// Widget identifies one widget in a render pass.
type Widget struct {
	// Key is unique per render generation and form.
	Key string
	// Path is the dotted value path the widget edits.
	Path     string
	Label    string
	Help     string
	Disabled bool
	// Overrides carries raw per-field widget configuration taken from
	// prefixed schema properties.
	Overrides map[string]any
}

// TextConfig configures text inputs and text areas.
type TextConfig struct {
	Value       string
	MaxChars    int
	Password    bool
	Placeholder string
}

// NumberConfig configures numeric inputs and sliders.
type NumberConfig struct {
	Value   float64
	Min     *float64
	Max     *float64
	Step    float64
	Integer bool
	Format  string
}

// SelectConfig configures single and multi selects. Index is used by Select,
// Defaults by MultiSelect.
type SelectConfig struct {
	Options  []string
	Index    int
	Defaults []int
}

// FileConfig configures file uploads.
type FileConfig struct {
	Multiple bool
	// Accept lists allowed file extensions including the leading dot.
	Accept []string
}

// UploadedFile is one file returned by FileUpload.
type UploadedFile struct {
	Name     string
	MIMEType string
	Data     []byte
}

// TextStyle selects how Display.Text renders a message.
type TextStyle string

const (
	StylePlain     TextStyle = "plain"
	StyleSubheader TextStyle = "subheader"
	StyleCaption   TextStyle = "caption"
	StyleMarkdown  TextStyle = "markdown"
	StyleCode      TextStyle = "code"
	StyleInfo      TextStyle = "info"
	StyleWarning   TextStyle = "warning"
	StyleError     TextStyle = "error"
	StyleDivider   TextStyle = "divider"
)

// MediaKind selects the preview player for Display.Media.
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Inputs are the interactive widgets. Each call returns the value the widget
// holds for this render pass, which is the configured value when the user has
// not touched it.
type Inputs interface {
	TextInput(ctx context.Context, w Widget, cfg TextConfig) (string, error)
	TextArea(ctx context.Context, w Widget, cfg TextConfig) (string, error)
	NumberInput(ctx context.Context, w Widget, cfg NumberConfig) (float64, error)
	Slider(ctx context.Context, w Widget, cfg NumberConfig) (float64, error)
	Checkbox(ctx context.Context, w Widget, value bool) (bool, error)
	Select(ctx context.Context, w Widget, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, w Widget, cfg SelectConfig) ([]int, error)
	DateInput(ctx context.Context, w Widget, value time.Time) (time.Time, error)
	TimeInput(ctx context.Context, w Widget, value time.Time) (time.Time, error)
	FileUpload(ctx context.Context, w Widget, cfg FileConfig) ([]UploadedFile, error)
	ColorPicker(ctx context.Context, w Widget, value string) (string, error)
	// Button reports whether the button was pressed during this pass.
	Button(ctx context.Context, w Widget) (bool, error)
}

// Display renders read-only content.
type Display interface {
	Text(style TextStyle, text string)
	JSON(label string, value any)
	Media(kind MediaKind, mimeType string, data []byte)
	Download(label, filename, mimeType string, data []byte)
	Table(columns []string, rows [][]string)
}

// Layout nests content. Hosts without a notion of columns or sidebars may
// return themselves.
type Layout interface {
	Columns(n int) []Host
	Expander(label string, expanded bool) Host
	Sidebar() Host
	// Placeholder reserves a slot whose content can be cleared later in the
	// same pass.
	Placeholder() Slot
}

// Host is the full capability surface.
type Host interface {
	Inputs
	Display
	Layout
}

// Slot is a placeholder host.
type Slot interface {
	Host
	Clear()
}
