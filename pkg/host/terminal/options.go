package terminal

import (
	"io"
	"os"
)

// Theme captures optional message prefixes. Keep minimal to avoid coupling
// the host to ANSI specifics.
type Theme struct {
	InfoPrefix    string
	WarningPrefix string
	ErrorPrefix   string
	HeaderPrefix  string
}

// DefaultTheme returns plain-text prefixes.
func DefaultTheme() Theme {
	return Theme{
		InfoPrefix:    "i ",
		WarningPrefix: "! ",
		ErrorPrefix:   "x ",
		HeaderPrefix:  "## ",
	}
}

// Option configures the terminal host.
type Option func(*Host)

// WithPromptDriver overrides the prompt driver used by the host.
func WithPromptDriver(driver PromptDriver) Option {
	return func(h *Host) {
		if driver != nil {
			h.driver = driver
		}
	}
}

// WithOutput sets where display content is written. Defaults to os.Stdout.
func WithOutput(out io.Writer) Option {
	return func(h *Host) {
		if out != nil {
			h.out = out
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(h *Host) {
		h.theme = theme
	}
}

// WithPageSize limits how many select options are shown at once.
func WithPageSize(n int) Option {
	return func(h *Host) {
		h.pageSize = n
	}
}

// WithDownloadDir writes offered downloads into dir instead of only
// announcing them.
func WithDownloadDir(dir string) Option {
	return func(h *Host) {
		h.downloadDir = dir
	}
}

// WithFileReader replaces how uploaded file paths are read. Defaults to
// os.ReadFile.
func WithFileReader(read func(path string) ([]byte, error)) Option {
	return func(h *Host) {
		if read != nil {
			h.readFile = read
		}
	}
}

func defaultOutput() io.Writer { return os.Stdout }
