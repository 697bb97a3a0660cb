package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joeycumines/scroll-monitor/internal/config"
	"github.com/joeycumines/scroll-monitor/internal/termui/scrollview"
	"golang.org/x/term"
)

// DemoCommand runs the interactive scroll view, reporting section
// visibility as the viewport scrolls.
type DemoCommand struct {
	*BaseCommand
	config     *config.Config
	ctxFactory contextFactory

	// input, output and isTerminal default to the process terminal.
	input      io.Reader
	output     io.Writer
	isTerminal func() bool

	logFlags
	sections       int
	lines          int
	offset         int
	mouse          bool
	resizeDebounce time.Duration
}

// NewDemoCommand creates a new demo command.
func NewDemoCommand(cfg *config.Config) *DemoCommand {
	return &DemoCommand{
		BaseCommand: NewBaseCommand(
			"demo",
			"Scroll through watched sections in the terminal",
			"demo [options]",
		),
		config:     cfg,
		ctxFactory: signalContext,
		input:      os.Stdin,
		output:     os.Stdout,
		isTerminal: stdioIsTerminal,
	}
}

func stdioIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// SetupFlags configures the flags for the demo command. Defaults come from
// the [demo] section of the config.
func (c *DemoCommand) SetupFlags(fs *flag.FlagSet) {
	schema := config.DefaultSchema()
	// invalid values fall back to the defaults, load already warned
	sections, _ := schema.Int(c.config, config.SectionDemo, config.KeyDemoSections)
	lines, _ := schema.Int(c.config, config.SectionDemo, config.KeyDemoLines)
	offset, _ := schema.Int(c.config, config.SectionDemo, config.KeyDemoOffset)
	mouse, _ := schema.Bool(c.config, config.SectionDemo, config.KeyDemoMouse)
	debounce, _ := schema.Duration(c.config, config.SectionDemo, config.KeyResizeDebounce)

	fs.IntVar(&c.sections, "sections", sections, "Number of watched sections")
	fs.IntVar(&c.lines, "section-lines", lines, "Body lines per section")
	fs.IntVar(&c.offset, "offset", offset, "Uniform watcher offset in lines")
	fs.BoolVar(&c.mouse, "mouse", mouse, "Enable mouse support")
	fs.DurationVar(&c.resizeDebounce, "resize-debounce", debounce, "Quiet period before a resize recalculates watchers")
	c.logFlags.setup(fs)
}

// Execute runs the demo until the user quits or the process is signalled.
func (c *DemoCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if err := noArgs(args, stderr); err != nil {
		return err
	}
	if c.sections <= 0 || c.lines <= 0 {
		_, _ = fmt.Fprintln(stderr, "-sections and -section-lines must be positive")
		return errors.New("invalid demo size")
	}
	if c.resizeDebounce < 0 {
		_, _ = fmt.Fprintln(stderr, "-resize-debounce must not be negative")
		return errors.New("invalid resize debounce")
	}
	if !c.isTerminal() {
		_, _ = fmt.Fprintln(stderr, "demo requires an interactive terminal")
		return errors.New("not a terminal")
	}

	// the program owns the terminal, so logs only go to a file
	logger, closer, err := c.logFlags.resolve(c.config, config.SectionDemo, nil)
	if err != nil {
		return err
	}
	defer closer.Close()

	model, err := scrollview.New(scrollview.Config{
		Sections:       scrollview.DemoSections(c.sections, c.lines),
		Offset:         float64(c.offset),
		ResizeDebounce: c.resizeDebounce,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	ctx, cancel := c.ctxFactory()
	defer cancel()

	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(c.input),
		tea.WithOutput(c.output),
		tea.WithAltScreen(),
	}
	if c.mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	logger.Info("demo: starting", "sections", c.sections, "offset", c.offset)
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			logger.Info("demo: interrupted", "cause", context.Cause(ctx))
			return nil
		}
		return fmt.Errorf("demo: %w", err)
	}
	logger.Info("demo: finished")
	return nil
}
