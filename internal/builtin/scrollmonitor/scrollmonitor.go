// Package scrollmonitor provides JavaScript bindings for
// github.com/joeycumines/scroll-monitor/internal/scrollmonitor.
//
// The module is exposed as "scrollmon:monitor".
//
// # JavaScript API
//
//	const scrollMonitor = require('scrollmon:monitor');
//
//	// The root viewport; every property may be a number or a function.
//	const monitor = scrollMonitor.create({
//	    scrollTop: () => vp.yOffset(),
//	    viewportHeight: () => vp.height(),
//	    contentHeight: () => vp.totalLineCount(),
//	}, { resizeDebounce: 100 });
//
//	// Targets: an element with getBoundingClientRect(), a number (an offset
//	// from the top, or from the bottom of the content when <= 0), or an
//	// object with top and bottom.
//	const watcher = monitor.watch(element, { top: 0, bottom: 10 });
//	watcher.enterViewport(function (event) { log(this.top); });
//	watcher.on('exitViewport', fn);
//	watcher.off('exitViewport', fn);
//	watcher.one('fullyEnterViewport', fn);
//	watcher.isInViewport; // true
//
//	monitor.handleScroll(event);
//	monitor.handleResize(event); // debounced on the event loop
//	monitor.update();
//	monitor.recalculateLocations();
//	monitor.dispose();
//
// A watcher listener that throws aborts the current pass and the exception
// propagates to the caller of the operation that started it.
package scrollmonitor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/joeycumines/scroll-monitor/internal/scrollmonitor"
)

// Manager holds the host wiring shared by every monitor created from JS in
// one runtime.
type Manager struct {
	loop           *eventloop.EventLoop
	logger         *slog.Logger
	resizeDebounce time.Duration
	monitors       []*scrollmonitor.Monitor
	onUncaught     func(vm *goja.Runtime, err error)
}

// NewManager creates a manager. loop may be nil, in which case resize events
// are measured without debouncing.
func NewManager(loop *eventloop.EventLoop, logger *slog.Logger, resizeDebounce time.Duration) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{loop: loop, logger: logger, resizeDebounce: resizeDebounce}
}

// DisposeAll disposes every monitor created through the manager, cancelling
// their pending resize timers. It must run on the loop goroutine.
func (m *Manager) DisposeAll() {
	monitors := m.monitors
	m.monitors = nil
	for _, mon := range monitors {
		mon.Dispose()
	}
}

// OnUncaught sets the handler for exceptions thrown by listeners during a
// debounced resize pass. Without one they are logged.
func (m *Manager) OnUncaught(fn func(vm *goja.Runtime, err error)) {
	m.onUncaught = fn
}

// Len returns the number of monitors created and not yet released by
// DisposeAll.
func (m *Manager) Len() int { return len(m.monitors) }

func (m *Manager) scheduler() scrollmonitor.Scheduler {
	if m.loop == nil {
		return immediateScheduler
	}
	return loopScheduler{loop: m.loop, onPanic: func(vm *goja.Runtime, r any) {
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("%v", r)
		}
		if m.onUncaught != nil {
			m.onUncaught(vm, err)
			return
		}
		m.logger.Error("scrollmon: uncaught exception in resize listener", slog.Any("error", err))
	}}
}

// Require returns a CommonJS native module under "scrollmon:monitor".
func Require(manager *Manager) func(runtime *goja.Runtime, module *goja.Object) {
	return func(runtime *goja.Runtime, module *goja.Object) {
		exports := runtime.NewObject()
		_ = module.Set("exports", exports)

		_ = exports.Set("create", func(call goja.FunctionCall) goja.Value {
			root := viewportArg(runtime, call.Argument(0), "create")
			debounce := manager.resizeDebounce
			if opts := call.Argument(1); !goja.IsUndefined(opts) && !goja.IsNull(opts) {
				if v := opts.ToObject(runtime).Get("resizeDebounce"); v != nil && !goja.IsUndefined(v) {
					debounce = time.Duration(v.ToFloat() * float64(time.Millisecond))
				}
			}
			mon, err := scrollmonitor.New(root,
				scrollmonitor.WithLogger(manager.logger),
				scrollmonitor.WithScheduler(manager.scheduler()),
				scrollmonitor.WithResizeDebounce(debounce),
			)
			if err != nil {
				throw(runtime, err)
			}
			manager.monitors = append(manager.monitors, mon)
			b := &monitorBinding{
				runtime:   runtime,
				monitor:   mon,
				viewports: map[*goja.Object]*jsViewport{root.obj: root},
			}
			return b.object()
		})

		kinds := runtime.NewObject()
		for _, kind := range scrollmonitor.EventKinds() {
			_ = kinds.Set(kind.String(), kind.String())
		}
		_ = exports.Set("events", kinds)
	}
}

func viewportArg(runtime *goja.Runtime, v goja.Value, fn string) *jsViewport {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		panic(runtime.NewTypeError(fn + ": viewport must be an object"))
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		panic(runtime.NewTypeError(fn + ": viewport must be an object"))
	}
	return &jsViewport{runtime: runtime, obj: obj}
}

type monitorBinding struct {
	runtime *goja.Runtime
	monitor *scrollmonitor.Monitor
	// the same JS object always maps to the same container
	viewports map[*goja.Object]*jsViewport
}

func (b *monitorBinding) object() *goja.Object {
	runtime := b.runtime
	obj := runtime.NewObject()
	_ = obj.Set("_type", "scrollmon/monitor")
	_ = obj.Set("_monitor", b.monitor)

	_ = obj.Set("watch", func(call goja.FunctionCall) goja.Value {
		target := b.target(call.Argument(0))
		var opts []scrollmonitor.WatchOption
		if o := call.Argument(1); !goja.IsUndefined(o) && !goja.IsNull(o) {
			opts = append(opts, scrollmonitor.WithOffsets(b.offsets(o)))
		}
		if c := call.Argument(2); !goja.IsUndefined(c) && !goja.IsNull(c) {
			opts = append(opts, scrollmonitor.InContainer(b.viewport(c)))
		}
		w, err := b.monitor.Watch(target, opts...)
		if err != nil {
			throw(runtime, err)
		}
		return newWatcherBinding(runtime, w).obj
	})

	_ = obj.Set("update", func(goja.FunctionCall) goja.Value {
		b.monitor.Update()
		return goja.Undefined()
	})
	_ = obj.Set("recalculateLocations", func(goja.FunctionCall) goja.Value {
		b.monitor.RecalculateLocations()
		return goja.Undefined()
	})
	_ = obj.Set("handleScroll", func(call goja.FunctionCall) goja.Value {
		b.monitor.HandleScroll(call.Argument(0))
		return goja.Undefined()
	})
	_ = obj.Set("handleResize", func(call goja.FunctionCall) goja.Value {
		b.monitor.HandleResize(call.Argument(0))
		return goja.Undefined()
	})
	_ = obj.Set("dispose", func(goja.FunctionCall) goja.Value {
		b.monitor.Dispose()
		return goja.Undefined()
	})

	root := b.monitor.Root()
	getters := map[string]func() any{
		"viewportTop":    func() any { return root.ViewportTop() },
		"viewportBottom": func() any { return root.ViewportBottom() },
		"viewportHeight": func() any { return root.ViewportHeight() },
		"documentHeight": func() any { return root.ContentHeight() },
		"ready":          func() any { return b.monitor.Ready() },
		"disposed":       func() any { return b.monitor.Disposed() },
		"resizePending":  func() any { return b.monitor.ResizePending() },
		"watcherCount":   func() any { return len(b.monitor.Watchers()) },
	}
	defineGetters(runtime, obj, getters)
	return obj
}

func (b *monitorBinding) viewport(v goja.Value) *jsViewport {
	vp := viewportArg(b.runtime, v, "watch")
	if known, ok := b.viewports[vp.obj]; ok {
		return known
	}
	b.viewports[vp.obj] = vp
	return vp
}

func (b *monitorBinding) target(v goja.Value) scrollmonitor.Target {
	runtime := b.runtime
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		panic(runtime.NewTypeError("watch: target is required"))
	}
	if isNumber(v) {
		return scrollmonitor.OffsetTarget(v.ToFloat())
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		panic(runtime.NewTypeError("watch: target must be an element, a number or {top, bottom}"))
	}
	if _, ok := goja.AssertFunction(obj.Get("getBoundingClientRect")); ok {
		return scrollmonitor.ElementTarget(&jsElement{runtime: runtime, obj: obj})
	}
	top, bottom := obj.Get("top"), obj.Get("bottom")
	if top == nil || bottom == nil || goja.IsUndefined(top) || goja.IsUndefined(bottom) {
		panic(runtime.NewTypeError("watch: target must be an element, a number or {top, bottom}"))
	}
	return scrollmonitor.BoundsTarget(top.ToFloat(), bottom.ToFloat())
}

func (b *monitorBinding) offsets(v goja.Value) scrollmonitor.Offsets {
	if isNumber(v) {
		return scrollmonitor.UniformOffsets(v.ToFloat())
	}
	obj := v.ToObject(b.runtime)
	return scrollmonitor.Offsets{
		Top:    number(b.runtime, obj, "top"),
		Bottom: number(b.runtime, obj, "bottom"),
	}
}

func isNumber(v goja.Value) bool {
	switch v.Export().(type) {
	case int64, float64:
		return true
	default:
		return false
	}
}

func defineGetters(runtime *goja.Runtime, obj *goja.Object, getters map[string]func() any) {
	for name, get := range getters {
		_ = obj.DefineAccessorProperty(name,
			runtime.ToValue(func(goja.FunctionCall) goja.Value { return runtime.ToValue(get()) }),
			nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
}
