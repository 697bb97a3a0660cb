package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/scroll-monitor/internal/config"
	"github.com/joeycumines/scroll-monitor/internal/scripting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunCommand(cfg *config.Config) *RunCommand {
	cmd := NewRunCommand(cfg)
	cmd.ctxFactory = func() (context.Context, context.CancelFunc) {
		return context.WithCancel(context.Background())
	}
	return cmd
}

const monitorScript = `
	const scrollMonitor = require('scrollmon:monitor');
	const page = {y: 0};
	const monitor = scrollMonitor.create({
		scrollTop: () => page.y,
		viewportHeight: () => 100,
		contentHeight: () => 1000,
	});
	const w = monitor.watch({top: 150, bottom: 170});
	w.enterViewport((event) => console.log('enter', event));
	page.y = 100;
	monitor.handleScroll('down');
`

func TestRunCommand_Eval(t *testing.T) {
	stdout, stderr, err := executeWithFlags(t, newTestRunCommand(config.NewConfig()), "-e", monitorScript)
	require.NoError(t, err)
	assert.Equal(t, "enter down\n", stdout)
	assert.Empty(t, stderr)
}

func TestRunCommand_Files(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.js")
	second := filepath.Join(dir, "second.js")
	require.NoError(t, os.WriteFile(first, []byte(monitorScript), 0644))
	require.NoError(t, os.WriteFile(second, []byte(`console.log('second');`), 0644))

	stdout, _, err := executeWithFlags(t, newTestRunCommand(config.NewConfig()), first, second)
	require.NoError(t, err)
	assert.Equal(t, "enter down\nsecond\n", stdout)
}

func TestRunCommand_StopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.js")
	good := filepath.Join(dir, "good.js")
	require.NoError(t, os.WriteFile(bad, []byte(`throw new Error('boom');`), 0644))
	require.NoError(t, os.WriteFile(good, []byte(`console.log('unreachable');`), 0644))

	stdout, _, err := executeWithFlags(t, newTestRunCommand(config.NewConfig()), bad, good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, stdout)
}

func TestRunCommand_Timeout(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetCommandOption(config.SectionRun, config.KeyRunTimeout, "50ms")

	_, _, err := executeWithFlags(t, newTestRunCommand(cfg), "-e", `setInterval(() => {}, 10);`)
	require.ErrorIs(t, err, scripting.ErrAborted)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunCommand_TimeoutFlagOverridesConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetCommandOption(config.SectionRun, config.KeyRunTimeout, "1h")

	_, _, err := executeWithFlags(t, newTestRunCommand(cfg), "-timeout", "20ms", "-e", `setInterval(() => {}, 10);`)
	require.ErrorIs(t, err, scripting.ErrAborted)
}

func TestRunCommand_LogsToStderr(t *testing.T) {
	_, stderr, err := executeWithFlags(t, newTestRunCommand(config.NewConfig()), "-log-level", "debug", "-e", `log.warn('careful', {n: 1});`)
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=WARN msg=careful n=1")
}

func TestRunCommand_InvalidArguments(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{"no script", nil, "no script given"},
		{"eval and files", []string{"-e", "1", "a.js"}, "both -e and script files"},
		{"bad debounce flag", []string{"-resize-debounce", "later", "-e", "1"}, `invalid duration "later"`},
		{"negative timeout", []string{"-timeout", "-1s", "-e", "1"}, "must not be negative"},
		{"missing file", []string{"missing.js"}, "failed to read script"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := executeWithFlags(t, newTestRunCommand(config.NewConfig()), tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRunCommand_InvalidConfigDebounce(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetGlobalOption(config.KeyResizeDebounce, "later")
	_, _, err := executeWithFlags(t, newTestRunCommand(cfg), "-e", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected duration, got "later"`)
}
