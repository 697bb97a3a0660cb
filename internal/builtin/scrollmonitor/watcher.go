package scrollmonitor

import (
	"github.com/dop251/goja"
	"github.com/joeycumines/scroll-monitor/internal/scrollmonitor"
)

type jsListener struct {
	fn goja.Value
	id scrollmonitor.ListenerID
}

type watcherBinding struct {
	runtime   *goja.Runtime
	watcher   *scrollmonitor.Watcher
	obj       *goja.Object
	listeners map[scrollmonitor.EventKind][]*jsListener
}

func newWatcherBinding(runtime *goja.Runtime, w *scrollmonitor.Watcher) *watcherBinding {
	b := &watcherBinding{
		runtime:   runtime,
		watcher:   w,
		obj:       runtime.NewObject(),
		listeners: make(map[scrollmonitor.EventKind][]*jsListener),
	}
	obj := b.obj
	_ = obj.Set("_type", "scrollmon/watcher")

	_ = obj.Set("on", func(call goja.FunctionCall) goja.Value {
		return b.on(call.Argument(0), call.Argument(1), call.Argument(2).ToBoolean())
	})
	_ = obj.Set("one", func(call goja.FunctionCall) goja.Value {
		return b.on(call.Argument(0), call.Argument(1), true)
	})
	_ = obj.Set("off", func(call goja.FunctionCall) goja.Value {
		b.off(call.Argument(0), call.Argument(1))
		return obj
	})
	for _, kind := range scrollmonitor.EventKinds() {
		name := runtime.ToValue(kind.String())
		_ = obj.Set(kind.String(), func(call goja.FunctionCall) goja.Value {
			return b.on(name, call.Argument(0), call.Argument(1).ToBoolean())
		})
	}

	_ = obj.Set("lock", func(goja.FunctionCall) goja.Value {
		w.Lock()
		return obj
	})
	_ = obj.Set("unlock", func(goja.FunctionCall) goja.Value {
		w.Unlock()
		return obj
	})
	_ = obj.Set("recalculateLocation", func(goja.FunctionCall) goja.Value {
		w.RecalculateLocation()
		return obj
	})
	_ = obj.Set("recalculateSize", func(goja.FunctionCall) goja.Value {
		w.RecalculateSize()
		return obj
	})
	_ = obj.Set("destroy", func(goja.FunctionCall) goja.Value {
		w.Destroy()
		clear(b.listeners)
		return goja.Undefined()
	})

	defineGetters(runtime, obj, map[string]func() any{
		"isInViewport":      func() any { return w.IsInViewport() },
		"isFullyInViewport": func() any { return w.IsFullyInViewport() },
		"isAboveViewport":   func() any { return w.IsAboveViewport() },
		"isBelowViewport":   func() any { return w.IsBelowViewport() },
		"top":               func() any { return w.Top() },
		"bottom":            func() any { return w.Bottom() },
		"height":            func() any { return w.Height() },
		"locked":            func() any { return w.Locked() },
		"destroyed":         func() any { return w.Destroyed() },
		"container":         func() any { return w.Container().ID() },
	})
	return b
}

func (b *watcherBinding) kind(v goja.Value) scrollmonitor.EventKind {
	kind, err := scrollmonitor.ParseEventKind(v.String())
	if err != nil {
		panic(b.runtime.NewTypeError(err.Error()))
	}
	return kind
}

func (b *watcherBinding) on(kindValue, fnValue goja.Value, once bool) goja.Value {
	kind := b.kind(kindValue)
	fn, ok := goja.AssertFunction(fnValue)
	if !ok {
		panic(b.runtime.NewTypeError("callback must be a function"))
	}
	var entry *jsListener
	cb := func(_ *scrollmonitor.Watcher, event any) {
		if once && entry != nil {
			b.forget(kind, entry)
		}
		if _, err := fn(b.obj, b.event(event), b.obj); err != nil {
			throw(b.runtime, err)
		}
	}
	register := b.watcher.On
	if once {
		register = b.watcher.One
	}
	id, err := register(kind, cb)
	if err != nil {
		throw(b.runtime, err)
	}
	if id != 0 {
		entry = &jsListener{fn: fnValue, id: id}
		b.listeners[kind] = append(b.listeners[kind], entry)
	}
	return b.obj
}

// off removes the oldest registration of fn for the kind.
func (b *watcherBinding) off(kindValue, fnValue goja.Value) {
	kind := b.kind(kindValue)
	for _, l := range b.listeners[kind] {
		if l.fn.SameAs(fnValue) {
			_ = b.watcher.Off(kind, l.id)
			b.forget(kind, l)
			return
		}
	}
}

func (b *watcherBinding) forget(kind scrollmonitor.EventKind, entry *jsListener) {
	list := b.listeners[kind]
	for i, l := range list {
		if l == entry {
			b.listeners[kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

func (b *watcherBinding) event(event any) goja.Value {
	switch e := event.(type) {
	case nil:
		return goja.Undefined()
	case goja.Value:
		return e
	default:
		return b.runtime.ToValue(e)
	}
}
