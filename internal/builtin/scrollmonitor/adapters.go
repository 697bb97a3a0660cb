package scrollmonitor

import (
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/joeycumines/scroll-monitor/internal/scrollmonitor"
)

// jsViewport reads container geometry from a JS object. Each property may be
// a number or a function returning one.
//
//	{ scrollTop: () => y, viewportHeight: 24, contentHeight: () => lines.length }
type jsViewport struct {
	runtime *goja.Runtime
	obj     *goja.Object
}

func (v *jsViewport) ScrollTop() float64      { return number(v.runtime, v.obj, "scrollTop") }
func (v *jsViewport) ViewportHeight() float64 { return number(v.runtime, v.obj, "viewportHeight") }
func (v *jsViewport) ContentHeight() float64  { return number(v.runtime, v.obj, "contentHeight") }

// jsElement is a watch target measured through getBoundingClientRect. A
// style.display of "none" marks it hidden.
type jsElement struct {
	runtime *goja.Runtime
	obj     *goja.Object
}

var (
	_ scrollmonitor.HiddenElement = (*jsElement)(nil)
	_ scrollmonitor.Sizer         = (*jsElement)(nil)
)

func (e *jsElement) BoundingRect() scrollmonitor.Rect {
	fn, ok := goja.AssertFunction(e.obj.Get("getBoundingClientRect"))
	if !ok {
		panic(e.runtime.NewTypeError("element.getBoundingClientRect is not a function"))
	}
	res, err := fn(e.obj)
	if err != nil {
		throw(e.runtime, err)
	}
	if goja.IsUndefined(res) || goja.IsNull(res) {
		panic(e.runtime.NewTypeError("element.getBoundingClientRect returned no rect"))
	}
	rect := res.ToObject(e.runtime)
	return scrollmonitor.Rect{
		Top:    number(e.runtime, rect, "top"),
		Bottom: number(e.runtime, rect, "bottom"),
	}
}

func (e *jsElement) style() *goja.Object {
	v := e.obj.Get("style")
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.ToObject(e.runtime)
}

func (e *jsElement) IsHidden() bool {
	s := e.style()
	if s == nil {
		return false
	}
	v := s.Get("display")
	return v != nil && v.String() == "none"
}

func (e *jsElement) SetHidden(hidden bool) {
	s := e.style()
	if s == nil {
		return
	}
	display := ""
	if hidden {
		display = "none"
	}
	_ = s.Set("display", display)
}

func (e *jsElement) OffsetHeight() float64 {
	if v := e.obj.Get("offsetHeight"); v != nil && !goja.IsUndefined(v) {
		return number(e.runtime, e.obj, "offsetHeight")
	}
	return e.BoundingRect().Height()
}

func number(runtime *goja.Runtime, obj *goja.Object, name string) float64 {
	v := obj.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	if fn, ok := goja.AssertFunction(v); ok {
		res, err := fn(obj)
		if err != nil {
			throw(runtime, err)
		}
		return res.ToFloat()
	}
	return v.ToFloat()
}

// throw rethrows err as a JS exception.
func throw(runtime *goja.Runtime, err error) {
	if ex, ok := err.(*goja.Exception); ok {
		panic(ex)
	}
	panic(runtime.NewGoError(err))
}

// loopScheduler runs debounced callbacks as event loop timeouts, so they
// execute on the loop goroutine that owns the runtime.
type loopScheduler struct {
	loop    *eventloop.EventLoop
	onPanic func(vm *goja.Runtime, r any)
}

func (s loopScheduler) AfterFunc(d time.Duration, fn func()) scrollmonitor.Timer {
	t := s.loop.SetTimeout(func(vm *goja.Runtime) {
		defer func() {
			if r := recover(); r != nil {
				s.onPanic(vm, r)
			}
		}()
		fn()
	}, d)
	return loopTimer{loop: s.loop, timer: t}
}

type loopTimer struct {
	loop  *eventloop.EventLoop
	timer *eventloop.Timer
}

func (t loopTimer) Stop() bool {
	t.loop.ClearTimeout(t.timer)
	return true
}

// immediateScheduler is used without an event loop: a resize is measured at
// once.
var immediateScheduler = scrollmonitor.SchedulerFunc(func(_ time.Duration, fn func()) scrollmonitor.Timer {
	fn()
	return immediateTimer{}
})

type immediateTimer struct{}

func (immediateTimer) Stop() bool { return false }
