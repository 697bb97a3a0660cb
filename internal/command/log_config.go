package command

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/joeycumines/scroll-monitor/internal/config"
	"github.com/joeycumines/scroll-monitor/internal/logging"
)

// logFlags are the logging flags shared by the commands that host monitors.
type logFlags struct {
	file  string
	level string
}

func (f *logFlags) setup(fs *flag.FlagSet) {
	fs.StringVar(&f.file, "log-file", "", "Path to log file (JSON output, rotated)")
	fs.StringVar(&f.level, "log-level", "", "Log level (debug, info, warn, error)")
}

// resolve builds the logger for a command. Each setting comes from the flag,
// then the environment and config (see config.DefaultSchema), then the
// default. Without a log file, records go to fallback. The caller must close
// the returned closer.
func (f *logFlags) resolve(cfg *config.Config, section string, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	schema := config.DefaultSchema()
	lc := logging.Config{
		Level:    f.level,
		File:     f.file,
		Fallback: fallback,
	}
	if lc.Level == "" {
		lc.Level = schema.ResolveSection(cfg, section, config.KeyLogLevel)
	}
	if lc.File == "" {
		lc.File = schema.ResolveSection(cfg, section, config.KeyLogFile)
	}
	// invalid values fall back to the defaults, load already warned
	lc.MaxSizeMB, _ = schema.Int(cfg, section, config.KeyLogMaxSizeMB)
	lc.MaxFiles, _ = schema.Int(cfg, section, config.KeyLogMaxFiles)

	logger, closer, err := logging.New(lc)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	return logger, closer, nil
}
