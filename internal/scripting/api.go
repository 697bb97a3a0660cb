package scripting

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/dop251/goja"
)

// newConsole builds the global console object: log, info and debug write
// to stdout, warn and error to stderr.
func newConsole(vm *goja.Runtime, stdout, stderr io.Writer) *goja.Object {
	obj := vm.NewObject()
	printer := func(w io.Writer) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			_, _ = fmt.Fprintln(w, strings.Join(parts, " "))
			return goja.Undefined()
		}
	}
	for _, name := range []string{"log", "info", "debug"} {
		_ = obj.Set(name, printer(stdout))
	}
	for _, name := range []string{"warn", "error"} {
		_ = obj.Set(name, printer(stderr))
	}
	return obj
}

// newLogObject builds the global log object, which forwards to logger:
//
//	log.info('entered', {watcher: 3});
func newLogObject(vm *goja.Runtime, logger *slog.Logger) *goja.Object {
	obj := vm.NewObject()
	for name, level := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		_ = obj.Set(name, func(call goja.FunctionCall) goja.Value {
			logger.LogAttrs(context.Background(), level, call.Argument(0).String(), logAttrs(call.Argument(1))...)
			return goja.Undefined()
		})
	}
	return obj
}

func logAttrs(v goja.Value) []slog.Attr {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return []slog.Attr{slog.Any("value", v.Export())}
	}
	keys := obj.Keys()
	slices.Sort(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, obj.Get(k).Export()))
	}
	return attrs
}
