package command

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/joeycumines/scroll-monitor/internal/config"
	"github.com/joeycumines/scroll-monitor/internal/scripting"
)

// RunCommand executes JavaScript programs that use the scrollmon modules.
type RunCommand struct {
	*BaseCommand
	config     *config.Config
	ctxFactory contextFactory

	logFlags
	code           string
	resizeDebounce string
	timeout        string
}

// NewRunCommand creates a new run command.
func NewRunCommand(cfg *config.Config) *RunCommand {
	return &RunCommand{
		BaseCommand: NewBaseCommand(
			"run",
			"Run a JavaScript program against the scrollmon modules",
			"run [options] <script.js>... | run -e <code>",
		),
		config:     cfg,
		ctxFactory: signalContext,
	}
}

// SetupFlags configures the flags for the run command.
func (c *RunCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.code, "e", "", "Execute the given code instead of script files")
	fs.StringVar(&c.resizeDebounce, "resize-debounce", "", "Default resize debounce for monitors (e.g. 100ms)")
	fs.StringVar(&c.timeout, "timeout", "", "Abort each script after this duration (0 disables)")
	c.logFlags.setup(fs)
}

// Execute runs each script in order on a shared runtime, stopping at the
// first failure.
func (c *RunCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if c.code == "" && len(args) == 0 {
		_, _ = fmt.Fprintln(stderr, "Usage: scrollmon "+c.Usage())
		return errors.New("no script given")
	}
	if c.code != "" && len(args) > 0 {
		_, _ = fmt.Fprintln(stderr, "cannot combine -e with script files")
		return errors.New("both -e and script files given")
	}

	schema := config.DefaultSchema()
	debounce, err := c.duration(schema, c.resizeDebounce, "", config.KeyResizeDebounce)
	if err != nil {
		return err
	}
	timeout, err := c.duration(schema, c.timeout, config.SectionRun, config.KeyRunTimeout)
	if err != nil {
		return err
	}

	logger, closer, err := c.logFlags.resolve(c.config, config.SectionRun, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	rt := scripting.NewRuntime(scripting.Options{
		Logger:         logger,
		Stdout:         stdout,
		Stderr:         stderr,
		ResizeDebounce: debounce,
		Timeout:        timeout,
	})
	defer rt.Close()

	ctx, cancel := c.ctxFactory()
	defer cancel()

	if c.code != "" {
		return rt.Execute(ctx, "<eval>", c.code)
	}
	for _, path := range args {
		logger.Debug("run: executing script", "path", path)
		if err := rt.ExecuteFile(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// duration parses flagValue, or resolves key from the config when the flag
// is unset.
func (c *RunCommand) duration(schema *config.ConfigSchema, flagValue, section, key string) (time.Duration, error) {
	if flagValue == "" {
		d, err := schema.Duration(c.config, section, key)
		if err != nil {
			return 0, fmt.Errorf("config: %w", err)
		}
		return d, nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", flagValue, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", flagValue)
	}
	return d, nil
}
