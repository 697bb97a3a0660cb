package config

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OptionType represents the expected type of a configuration option value.
type OptionType string

const (
	// TypeString is a plain string value (the default for all config values).
	TypeString OptionType = "string"
	// TypeBool is a boolean value (true/false/yes/no/1/0/on/off).
	TypeBool OptionType = "bool"
	// TypeInt is an integer value.
	TypeInt OptionType = "int"
	// TypeDuration is a Go time.Duration value (e.g. "100ms", "2s").
	TypeDuration OptionType = "duration"
)

// ConfigOption declares a single configuration option.
type ConfigOption struct {
	// Key is the option name as it appears in the config file.
	Key string
	// Type is the expected value type for validation.
	Type OptionType
	// Default is the default value as a string, or "" for no default.
	Default string
	// Description is a human-readable description of the option.
	Description string
	// Section is "" for global options, or a command name.
	Section string
	// EnvVar is the environment variable that overrides this option, or "".
	EnvVar string
	// Choices restricts string values, if non-empty.
	Choices []string
}

// ConfigSchema declares the expected configuration options for the
// application. It drives validation, help output, typed getters and env
// var overrides.
type ConfigSchema struct {
	options   []*ConfigOption
	byKey     map[string]*ConfigOption
	bySection map[string]map[string]*ConfigOption
}

// NewSchema creates a new empty ConfigSchema.
func NewSchema() *ConfigSchema {
	return &ConfigSchema{
		byKey:     make(map[string]*ConfigOption),
		bySection: make(map[string]map[string]*ConfigOption),
	}
}

// Register adds a ConfigOption to the schema. The last registration of a
// key within a section wins.
func (s *ConfigSchema) Register(opt ConfigOption) {
	ref := new(ConfigOption)
	*ref = opt
	s.options = append(s.options, ref)
	if opt.Section == "" {
		s.byKey[opt.Key] = ref
		return
	}
	if s.bySection[opt.Section] == nil {
		s.bySection[opt.Section] = make(map[string]*ConfigOption)
	}
	s.bySection[opt.Section][opt.Key] = ref
}

// RegisterAll adds multiple ConfigOptions to the schema.
func (s *ConfigSchema) RegisterAll(opts []ConfigOption) {
	for _, opt := range opts {
		s.Register(opt)
	}
}

// Lookup returns the ConfigOption for a key in a given section ("" for
// global), or nil.
func (s *ConfigSchema) Lookup(section, key string) *ConfigOption {
	if section == "" {
		return s.byKey[key]
	}
	return s.bySection[section][key]
}

// IsKnown reports whether key is registered in section. Global keys are known
// in every section.
func (s *ConfigSchema) IsKnown(section, key string) bool {
	if section != "" && s.bySection[section][key] != nil {
		return true
	}
	return s.byKey[key] != nil
}

// GlobalOptions returns all registered global options.
func (s *ConfigSchema) GlobalOptions() []ConfigOption {
	return s.SectionOptions("")
}

// SectionOptions returns all registered options for a specific section, in
// registration order.
func (s *ConfigSchema) SectionOptions(section string) []ConfigOption {
	var out []ConfigOption
	for _, o := range s.options {
		if o.Section == section {
			out = append(out, *o)
		}
	}
	return out
}

// Sections returns the sorted non-empty section names.
func (s *ConfigSchema) Sections() []string {
	out := make([]string, 0, len(s.bySection))
	for sec := range s.bySection {
		out = append(out, sec)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the effective value for a global key: the declared env var,
// then the config value, then the schema default.
func (s *ConfigSchema) Resolve(c *Config, key string) string {
	return s.ResolveSection(c, "", key)
}

// ResolveSection returns the effective value for key as seen by a command:
// the declared env var, the [section] value, the global value, then the
// schema default (section-specific first).
func (s *ConfigSchema) ResolveSection(c *Config, section, key string) string {
	opt := s.Lookup(section, key)
	if opt == nil && section != "" {
		opt = s.Lookup("", key)
	}
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	if c != nil {
		var (
			v  string
			ok bool
		)
		if section == "" {
			v, ok = c.GetGlobalOption(key)
		} else {
			v, ok = c.GetCommandOption(section, key)
		}
		if ok {
			return v
		}
	}
	if opt != nil {
		return opt.Default
	}
	return ""
}

// Duration resolves key in section as a duration, falling back to the schema
// default when the configured value does not parse.
func (s *ConfigSchema) Duration(c *Config, section, key string) (time.Duration, error) {
	v := s.ResolveSection(c, section, key)
	d, err := time.ParseDuration(v)
	if err != nil {
		return s.defaultDuration(section, key), fmt.Errorf("option %q: expected duration, got %q", key, v)
	}
	return d, nil
}

// Int resolves key in section as an int, falling back to the schema default
// when the configured value does not parse.
func (s *ConfigSchema) Int(c *Config, section, key string) (int, error) {
	v := s.ResolveSection(c, section, key)
	i, err := strconv.Atoi(v)
	if err != nil {
		def, _ := strconv.Atoi(s.defaultValue(section, key))
		return def, fmt.Errorf("option %q: expected int, got %q", key, v)
	}
	return i, nil
}

// Bool resolves key in section as a bool, falling back to the schema default
// when the configured value does not parse.
func (s *ConfigSchema) Bool(c *Config, section, key string) (bool, error) {
	v := s.ResolveSection(c, section, key)
	b, err := parseBool(v)
	if err != nil {
		def, _ := parseBool(s.defaultValue(section, key))
		return def, fmt.Errorf("option %q: expected bool, got %q", key, v)
	}
	return b, nil
}

func (s *ConfigSchema) defaultValue(section, key string) string {
	opt := s.Lookup(section, key)
	if opt == nil {
		opt = s.Lookup("", key)
	}
	if opt == nil {
		return ""
	}
	return opt.Default
}

func (s *ConfigSchema) defaultDuration(section, key string) time.Duration {
	d, _ := time.ParseDuration(s.defaultValue(section, key))
	return d
}

// ValidateConfig checks a loaded Config against the schema and returns a
// sorted list of human-readable issues (empty if the config is valid).
func ValidateConfig(c *Config, s *ConfigSchema) []string {
	var issues []string

	for key, value := range c.Global {
		opt := s.Lookup("", key)
		if opt == nil {
			issues = append(issues, fmt.Sprintf("unknown global option: %q (value: %q)", key, value))
			continue
		}
		if err := validateValue(opt, value); err != nil {
			issues = append(issues, fmt.Sprintf("global option %q: %v", key, err))
		}
	}

	for section, opts := range c.Commands {
		for key, value := range opts {
			if !s.IsKnown(section, key) {
				issues = append(issues, fmt.Sprintf("unknown option for command %q: %q (value: %q)", section, key, value))
				continue
			}
			opt := s.Lookup(section, key)
			if opt == nil {
				opt = s.Lookup("", key)
			}
			if err := validateValue(opt, value); err != nil {
				issues = append(issues, fmt.Sprintf("option %q in [%s]: %v", key, section, err))
			}
		}
	}

	sort.Strings(issues)
	return issues
}

func validateValue(opt *ConfigOption, value string) error {
	switch opt.Type {
	case TypeString, "":
		if len(opt.Choices) != 0 && !slices.Contains(opt.Choices, strings.ToLower(value)) {
			return fmt.Errorf("expected one of %s, got %q", strings.Join(opt.Choices, ", "), value)
		}
	case TypeBool:
		if _, err := parseBool(value); err != nil {
			return fmt.Errorf("expected bool, got %q", value)
		}
	case TypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("expected int, got %q", value)
		}
	case TypeDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("expected duration, got %q", value)
		}
	default:
		return fmt.Errorf("unknown option type %q", opt.Type)
	}
	return nil
}

// FormatHelp returns a human-readable reference of all registered options,
// grouped by section.
func (s *ConfigSchema) FormatHelp() string {
	var b strings.Builder

	if globals := s.GlobalOptions(); len(globals) > 0 {
		b.WriteString("Global Options:\n")
		for _, o := range globals {
			writeOptionHelp(&b, o)
		}
	}

	for _, sec := range s.Sections() {
		opts := s.SectionOptions(sec)
		if len(opts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n[%s] Options:\n", sec)
		for _, o := range opts {
			writeOptionHelp(&b, o)
		}
	}

	return b.String()
}

func writeOptionHelp(b *strings.Builder, o ConfigOption) {
	fmt.Fprintf(b, "  %-20s %s", o.Key, o.Description)
	parts := make([]string, 0, 4)
	if o.Type != "" && o.Type != TypeString {
		parts = append(parts, "type: "+string(o.Type))
	}
	if len(o.Choices) != 0 {
		parts = append(parts, "one of: "+strings.Join(o.Choices, "|"))
	}
	if o.Default != "" {
		parts = append(parts, "default: "+o.Default)
	}
	if o.EnvVar != "" {
		parts = append(parts, "env: "+o.EnvVar)
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
}

// Option keys shared with the commands.
const (
	KeyResizeDebounce = "resize.debounce"
	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
	KeyLogMaxSizeMB   = "log.max-size-mb"
	KeyLogMaxFiles    = "log.max-files"
)

// [demo] and [run] sections.
const (
	SectionDemo     = "demo"
	KeyDemoSections = "sections"
	KeyDemoLines    = "section-lines"
	KeyDemoOffset   = "offset"
	KeyDemoMouse    = "mouse"

	SectionRun    = "run"
	KeyRunTimeout = "timeout"
)

// DefaultSchema returns the schema declaring every known scrollmon option.
func DefaultSchema() *ConfigSchema {
	s := NewSchema()
	s.RegisterAll([]ConfigOption{
		{Key: KeyResizeDebounce, Type: TypeDuration, Default: "100ms", Description: "Quiet period before a resize recalculates watchers", EnvVar: "SCROLLMON_RESIZE_DEBOUNCE"},
		{Key: KeyLogLevel, Type: TypeString, Default: "info", Description: "Log level", EnvVar: "SCROLLMON_LOG_LEVEL", Choices: []string{"debug", "info", "warn", "error"}},
		{Key: KeyLogFile, Type: TypeString, Description: "Log file path (JSON output, rotated)", EnvVar: "SCROLLMON_LOG_FILE"},
		{Key: KeyLogMaxSizeMB, Type: TypeInt, Default: "10", Description: "Max log file size in MB before rotation"},
		{Key: KeyLogMaxFiles, Type: TypeInt, Default: "5", Description: "Max number of rotated log backup files"},

		{Key: KeyDemoSections, Section: SectionDemo, Type: TypeInt, Default: "12", Description: "Number of watched sections"},
		{Key: KeyDemoLines, Section: SectionDemo, Type: TypeInt, Default: "6", Description: "Body lines per section"},
		{Key: KeyDemoOffset, Section: SectionDemo, Type: TypeInt, Default: "0", Description: "Uniform watcher offset in lines"},
		{Key: KeyDemoMouse, Section: SectionDemo, Type: TypeBool, Default: "true", Description: "Enable mouse support"},

		{Key: KeyRunTimeout, Section: SectionRun, Type: TypeDuration, Default: "0s", Description: "Abort scripts that run longer than this (0 disables)"},
	})
	return s
}
