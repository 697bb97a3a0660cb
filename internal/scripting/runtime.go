// Package scripting hosts scrollmon JavaScript programs on a goja_nodejs
// event loop with the scrollmon native modules available through require.
package scripting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"
	"github.com/joeycumines/scroll-monitor/internal/builtin"
)

// Options configures a Runtime.
type Options struct {
	// Logger backs the global log object and the monitors' debug output.
	Logger *slog.Logger
	// Stdout and Stderr back the global console object. They default to
	// os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	// ResizeDebounce is the default quiet period for monitors created by
	// scripts.
	ResizeDebounce time.Duration
	// Timeout aborts Execute after the given duration, if positive.
	Timeout time.Duration
}

// Runtime executes scripts on an event loop. Execute blocks the calling
// goroutine, which becomes the loop goroutine, until the script and every
// timer it scheduled have finished.
//
// A Runtime is not safe for concurrent use.
type Runtime struct {
	loop     *eventloop.EventLoop
	registry *require.Registry
	modules  builtin.RegisterResult
	logger   *slog.Logger
	stdout   io.Writer
	stderr   io.Writer
	timeout  time.Duration

	installed bool
	timers    *timerSet
	current   *execution
}

// execution tracks a single Execute call.
type execution struct {
	name     string
	aborted  bool
	asyncErr error
}

// ErrAborted is returned by Execute when the context ends before the script
// finishes.
var ErrAborted = errors.New("script aborted")

// NewRuntime creates a Runtime. The event loop is not started until
// Execute.
func NewRuntime(opts Options) *Runtime {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	registry := require.NewRegistry()
	loop := eventloop.NewEventLoop(
		eventloop.WithRegistry(registry),
		eventloop.EnableConsole(false),
	)
	rt := &Runtime{
		loop:     loop,
		registry: registry,
		modules:  builtin.Register(registry, loop, opts.Logger, opts.ResizeDebounce),
		logger:   opts.Logger,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
		timeout:  opts.Timeout,
	}
	rt.modules.Monitors.OnUncaught(rt.onTimerError)
	return rt
}

// Modules returns the managers of the registered native modules.
func (rt *Runtime) Modules() builtin.RegisterResult { return rt.modules }

// ExecuteFile reads and executes the script at path.
func (rt *Runtime) ExecuteFile(ctx context.Context, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return rt.Execute(ctx, path, string(code))
}

// Execute compiles and runs code, then keeps the loop running until no
// timers remain. Cancelling ctx interrupts running JavaScript, clears every
// pending timer and disposes every monitor the script created.
//
// An exception thrown by a timer callback, or by a listener during a
// debounced resize, aborts the execution the same way and is returned.
func (rt *Runtime) Execute(ctx context.Context, name, code string) error {
	prg, err := goja.Compile(name, code, true)
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", name, err)
	}

	if rt.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.timeout)
		defer cancel()
	}

	exec := &execution{name: name}
	rt.current = exec
	defer func() { rt.current = nil }()

	var (
		runErr      error
		stop        = func() bool { return true }
		interrupted = make(chan struct{})
	)
	rt.loop.Run(func(vm *goja.Runtime) {
		vm.ClearInterrupt()
		if err := rt.install(vm); err != nil {
			runErr = err
			return
		}
		stop = context.AfterFunc(ctx, func() {
			defer close(interrupted)
			vm.Interrupt(ErrAborted)
			rt.loop.RunOnLoop(func(vm *goja.Runtime) {
				if rt.current == exec {
					rt.abort(vm, exec)
				}
			})
		})
		if _, err := vm.RunProgram(prg); err != nil {
			runErr = err
			rt.abort(vm, exec)
		}
	})
	if !stop() {
		// the interrupt must land before the next Execute clears it
		<-interrupted
	}

	switch {
	case exec.aborted && ctx.Err() != nil:
		return fmt.Errorf("%s: %w: %w", name, ErrAborted, context.Cause(ctx))
	case exec.asyncErr != nil:
		return fmt.Errorf("uncaught exception in %s: %w", name, exec.asyncErr)
	case runErr != nil:
		return fmt.Errorf("failed to run %s: %w", name, runErr)
	}
	return nil
}

// abort clears every pending timer and disposes the monitors so the loop
// drains. It must run on the loop goroutine.
func (rt *Runtime) abort(vm *goja.Runtime, exec *execution) {
	if exec.aborted {
		return
	}
	exec.aborted = true
	vm.ClearInterrupt()
	rt.timers.clear()
	rt.modules.Monitors.DisposeAll()
	rt.logger.Debug("scripting: execution aborted", slog.String("script", exec.name))
}

// Close disposes the monitors left behind by previous executions.
func (rt *Runtime) Close() error {
	rt.loop.Run(func(*goja.Runtime) {
		rt.modules.Monitors.DisposeAll()
	})
	return nil
}

func (rt *Runtime) install(vm *goja.Runtime) error {
	if rt.installed {
		return nil
	}
	timers, err := newTimerSet(vm, rt.onTimerError)
	if err != nil {
		return err
	}
	if err := vm.Set("console", newConsole(vm, rt.stdout, rt.stderr)); err != nil {
		return err
	}
	if err := vm.Set("log", newLogObject(vm, rt.logger)); err != nil {
		return err
	}
	rt.timers = timers
	rt.installed = true
	return nil
}

func (rt *Runtime) onTimerError(vm *goja.Runtime, err error) {
	exec := rt.current
	if exec == nil || exec.aborted {
		return
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return
	}
	rt.logger.Error("scripting: uncaught exception in timer", slog.String("script", exec.name), slog.Any("error", err))
	exec.asyncErr = err
	rt.abort(vm, exec)
}
