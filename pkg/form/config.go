package form

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// GroupStrategy decides where optional (non-required) top-level fields go.
type GroupStrategy string

const (
	GroupNone     GroupStrategy = "no"
	GroupExpander GroupStrategy = "expander"
	GroupSidebar  GroupStrategy = "sidebar"
)

// DefaultOverridePrefix marks schema properties passed to the host as raw
// widget configuration.
const DefaultOverridePrefix = "x-widget-"

// OptionalFieldsLabel titles the expander holding optional fields.
const OptionalFieldsLabel = "Optional Parameters"

// Config holds the form entry options. It can be loaded from JSON or YAML.
type Config struct {
	GroupOptionalFields GroupStrategy  `json:"group_optional_fields" yaml:"group_optional_fields"`
	LowercaseLabels     bool           `json:"lowercase_labels" yaml:"lowercase_labels"`
	IgnoreEmptyValues   bool           `json:"ignore_empty_values" yaml:"ignore_empty_values"`
	CustomDefaults      map[string]any `json:"custom_defaults" yaml:"custom_defaults"`
	SubmitLabel         string         `json:"submit_label" yaml:"submit_label"`
	ClearOnSubmit       bool           `json:"clear_on_submit" yaml:"clear_on_submit"`
	OverridePrefix      string         `json:"override_prefix" yaml:"override_prefix"`
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		GroupOptionalFields: GroupNone,
		SubmitLabel:         "Submit",
		OverridePrefix:      DefaultOverridePrefix,
	}
}

func (c Config) normalised() (Config, error) {
	def := DefaultConfig()
	switch c.GroupOptionalFields {
	case "":
		c.GroupOptionalFields = def.GroupOptionalFields
	case GroupNone, GroupExpander, GroupSidebar:
	default:
		return Config{}, fmt.Errorf("form: unknown group_optional_fields strategy %q", c.GroupOptionalFields)
	}
	if strings.TrimSpace(c.SubmitLabel) == "" {
		c.SubmitLabel = def.SubmitLabel
	}
	if c.OverridePrefix == "" {
		c.OverridePrefix = def.OverridePrefix
	}
	return c, nil
}

// LoadConfig reads a JSON or YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("form: read config: %w", err)
	}
	return ParseConfig(data, path)
}

// LoadConfigFS reads a configuration file from fsys.
func LoadConfigFS(fsys fs.FS, name string) (Config, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Config{}, fmt.Errorf("form: read config %s: %w", name, err)
	}
	return ParseConfig(data, name)
}

// ParseConfig decodes a configuration payload. Files ending in .json are
// decoded as JSON; anything else is tried as JSON first, then YAML.
func ParseConfig(data []byte, source string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, fmt.Errorf("form: config %s is empty", source)
	}

	cfg := DefaultConfig()
	jsonErr := json.Unmarshal(data, &cfg)
	if jsonErr != nil {
		if strings.EqualFold(filepath.Ext(source), ".json") {
			return Config{}, fmt.Errorf("form: parse %s: %w", source, jsonErr)
		}
		cfg = DefaultConfig()
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("form: parse %s: invalid JSON or YAML", source)
		}
	}
	return cfg.normalised()
}
