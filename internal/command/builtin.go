package command

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/joeycumines/scroll-monitor/internal/config"
)

// HelpCommand displays help information for commands.
type HelpCommand struct {
	*BaseCommand
	registry *Registry
}

// NewHelpCommand creates a new help command.
func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{
		BaseCommand: NewBaseCommand(
			"help",
			"Display help information for commands",
			"help [command]",
		),
		registry: registry,
	}
}

// Execute displays help information.
func (c *HelpCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, "scrollmon - watch regions of scrollable content enter and leave the viewport")
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Usage: scrollmon <command> [options] [args...]")
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Available commands:")

		w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
		for _, name := range c.registry.List() {
			cmd, err := c.registry.Get(name)
			if err != nil {
				continue
			}
			label := name
			if aliases := c.registry.Aliases(name); len(aliases) > 0 {
				label += " (" + strings.Join(aliases, ", ") + ")"
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\n", label, cmd.Description())
		}
		_ = w.Flush()

		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Use 'scrollmon help <command>' for more information about a specific command (includes flags).")
		return nil
	}

	cmd, err := c.registry.Get(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		return err
	}

	_, _ = fmt.Fprintf(stdout, "Command: %s\n", cmd.Name())
	_, _ = fmt.Fprintf(stdout, "Description: %s\n", cmd.Description())
	_, _ = fmt.Fprintf(stdout, "Usage: scrollmon %s\n", cmd.Usage())

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	var buf bytes.Buffer
	fs.SetOutput(&buf)
	cmd.SetupFlags(fs)
	fs.PrintDefaults()
	if buf.Len() > 0 {
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Flags:")
		_, _ = fmt.Fprint(stdout, buf.String())
	}
	return nil
}

// VersionCommand displays version information.
type VersionCommand struct {
	*BaseCommand
	version string
}

// NewVersionCommand creates a new version command.
func NewVersionCommand(version string) *VersionCommand {
	return &VersionCommand{
		BaseCommand: NewBaseCommand("version", "Display version information", "version"),
		version:     version,
	}
}

// Execute displays version information.
func (c *VersionCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if err := noArgs(args, stderr); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "scrollmon version %s\n", c.version)
	return nil
}

// ConfigCommand reads, writes and validates configuration.
type ConfigCommand struct {
	*BaseCommand
	config     *config.Config
	configPath string
	section    string
	showAll    bool
}

// NewConfigCommand creates a new config command. An empty configPath skips
// persisting set values to disk.
func NewConfigCommand(cfg *config.Config, configPath string) *ConfigCommand {
	return &ConfigCommand{
		BaseCommand: NewBaseCommand(
			"config",
			"Manage configuration settings",
			"config [options] [key [value] | validate | schema | path]",
		),
		config:     cfg,
		configPath: configPath,
	}
}

// SetupFlags configures the flags for the config command.
func (c *ConfigCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.section, "section", "", "Command section to read or write (e.g. demo)")
	fs.BoolVar(&c.showAll, "all", false, "Show the effective value of every known option")
}

// Execute manages configuration.
func (c *ConfigCommand) Execute(args []string, stdout, stderr io.Writer) error {
	schema := config.DefaultSchema()

	if len(args) == 0 {
		if c.showAll {
			c.printAll(schema, stdout)
			return nil
		}
		_, _ = fmt.Fprintln(stdout, "Configuration management:")
		_, _ = fmt.Fprintln(stdout, "  config <key>                  - Get the effective value")
		_, _ = fmt.Fprintln(stdout, "  config <key> <value>          - Set a value")
		_, _ = fmt.Fprintln(stdout, "  config -section demo <key>    - Get or set a [demo] value")
		_, _ = fmt.Fprintln(stdout, "  config -all                   - Show every effective value")
		_, _ = fmt.Fprintln(stdout, "  config validate               - Validate configuration")
		_, _ = fmt.Fprintln(stdout, "  config schema                 - Show configuration schema")
		_, _ = fmt.Fprintln(stdout, "  config path                   - Show the configuration file path")
		return nil
	}

	switch args[0] {
	case "validate":
		return c.executeValidate(stdout)
	case "schema":
		_, _ = fmt.Fprint(stdout, schema.FormatHelp())
		return nil
	case "path":
		_, _ = fmt.Fprintln(stdout, c.configPath)
		return nil
	}

	key := args[0]
	switch len(args) {
	case 1:
		if !schema.IsKnown(c.section, key) {
			if _, ok := c.config.GetCommandOption(c.section, key); !ok {
				_, _ = fmt.Fprintf(stdout, "Configuration key '%s' not found\n", key)
				return nil
			}
		}
		_, _ = fmt.Fprintf(stdout, "%s: %s\n", key, schema.ResolveSection(c.config, c.section, key))
		return nil

	case 2:
		value := args[1]
		if c.section == "" {
			c.config.SetGlobalOption(key, value)
		} else {
			c.config.SetCommandOption(c.section, key, value)
		}
		if c.configPath != "" {
			if err := config.SetKeyInFile(c.configPath, c.section, key, value); err != nil {
				_, _ = fmt.Fprintf(stderr, "Warning: failed to persist config to disk: %v\n", err)
			}
		}
		for _, issue := range config.ValidateConfig(c.config, schema) {
			if strings.Contains(issue, fmt.Sprintf("%q", key)) {
				_, _ = fmt.Fprintf(stderr, "Warning: %s\n", issue)
			}
		}
		_, _ = fmt.Fprintf(stdout, "Set configuration: %s = %s\n", qualified(c.section, key), value)
		return nil
	}

	_, _ = fmt.Fprintln(stderr, "Invalid number of arguments")
	return fmt.Errorf("invalid arguments")
}

func (c *ConfigCommand) printAll(schema *config.ConfigSchema, stdout io.Writer) {
	w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	for _, opt := range schema.GlobalOptions() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", opt.Key, schema.Resolve(c.config, opt.Key))
	}
	for _, section := range schema.Sections() {
		for _, opt := range schema.SectionOptions(section) {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", qualified(section, opt.Key), schema.ResolveSection(c.config, section, opt.Key))
		}
	}
	// unknown keys are still shown so typos are visible
	var extra []string
	for key, value := range c.config.Global {
		if schema.Lookup("", key) == nil {
			extra = append(extra, fmt.Sprintf("%s\t%s (unknown)\n", key, value))
		}
	}
	sort.Strings(extra)
	for _, line := range extra {
		_, _ = fmt.Fprint(w, line)
	}
	_ = w.Flush()
}

func qualified(section, key string) string {
	if section == "" {
		return key
	}
	return "[" + section + "] " + key
}

func (c *ConfigCommand) executeValidate(stdout io.Writer) error {
	issues := config.ValidateConfig(c.config, config.DefaultSchema())
	if len(issues) == 0 {
		_, _ = fmt.Fprintln(stdout, "Configuration is valid.")
		return nil
	}
	_, _ = fmt.Fprintf(stdout, "Configuration has %d issue(s):\n", len(issues))
	for _, issue := range issues {
		_, _ = fmt.Fprintf(stdout, "  - %s\n", issue)
	}
	return nil
}

// InitCommand writes a commented default configuration file.
type InitCommand struct {
	*BaseCommand
	configPath string
	force      bool
}

// NewInitCommand creates a new init command writing to configPath.
func NewInitCommand(configPath string) *InitCommand {
	return &InitCommand{
		BaseCommand: NewBaseCommand("init", "Create a default configuration file", "init [options]"),
		configPath:  configPath,
	}
}

// SetupFlags configures the flags for the init command.
func (c *InitCommand) SetupFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "Overwrite an existing configuration")
}

const defaultConfig = `# scrollmon configuration file
# Format: optionName remainingLineIsTheValue
# Use [command] sections for command-specific options.
# Run 'scrollmon config schema' for every option.

resize.debounce 100ms
log.level info
# log.file ~/.scrollmon/scrollmon.log

[demo]
sections 12
section-lines 6
offset 0
mouse true

[run]
timeout 0s
`

// Execute writes the configuration file.
func (c *InitCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if err := noArgs(args, stderr); err != nil {
		return err
	}
	if c.configPath == "" {
		return fmt.Errorf("no configuration path")
	}

	if _, err := os.Stat(c.configPath); err == nil && !c.force {
		_, _ = fmt.Fprintf(stdout, "Configuration already exists at: %s\n", c.configPath)
		_, _ = fmt.Fprintln(stdout, "Use -force to overwrite existing configuration")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.configPath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cfg, err := config.LoadFromPath(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load created config: %w", err)
	}
	if cfg.HasWarnings() {
		_, _ = fmt.Fprintf(stderr, "Warning: created config has %d issue(s)\n", len(cfg.GetWarnings()))
	}

	_, _ = fmt.Fprintf(stdout, "Initialized scrollmon configuration at: %s\n", c.configPath)
	return nil
}
