package scripting

import (
	"github.com/dop251/goja"
)

// timerSet interposes on the event loop's timer globals so that pending
// timers can be cleared and callback exceptions observed.
type timerSet struct {
	vm      *goja.Runtime
	pending map[any]pendingTimer
	onError func(vm *goja.Runtime, err error)
}

type pendingTimer struct {
	handle goja.Value
	clear  goja.Callable
}

func newTimerSet(vm *goja.Runtime, onError func(vm *goja.Runtime, err error)) (*timerSet, error) {
	t := &timerSet{vm: vm, pending: make(map[any]pendingTimer), onError: onError}
	for _, pair := range [...]struct {
		set, clear string
		once       bool
	}{
		{"setTimeout", "clearTimeout", true},
		{"setInterval", "clearInterval", false},
		{"setImmediate", "clearImmediate", true},
	} {
		if err := t.wrap(pair.set, pair.clear, pair.once); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// wrap replaces the named globals. Globals the loop does not provide are
// left alone.
func (t *timerSet) wrap(set, clear string, once bool) error {
	setFn, ok := goja.AssertFunction(t.vm.Get(set))
	if !ok {
		return nil
	}
	clearFn, ok := goja.AssertFunction(t.vm.Get(clear))
	if !ok {
		return nil
	}

	if err := t.vm.Set(set, func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(t.vm.NewTypeError("%s: callback must be a function", set))
		}
		var handle goja.Value
		callback := t.vm.ToValue(func(inner goja.FunctionCall) goja.Value {
			if once {
				t.forget(handle)
			}
			if _, err := fn(goja.Undefined(), inner.Arguments...); err != nil {
				t.onError(t.vm, err)
			}
			return goja.Undefined()
		})
		args := append([]goja.Value{callback}, call.Arguments[1:]...)
		h, err := setFn(goja.Undefined(), args...)
		if err != nil {
			panic(err)
		}
		handle = h
		t.pending[h.Export()] = pendingTimer{handle: h, clear: clearFn}
		return h
	}); err != nil {
		return err
	}

	return t.vm.Set(clear, func(call goja.FunctionCall) goja.Value {
		t.forget(call.Argument(0))
		if _, err := clearFn(goja.Undefined(), call.Arguments...); err != nil {
			panic(err)
		}
		return goja.Undefined()
	})
}

func (t *timerSet) forget(handle goja.Value) {
	if handle == nil || goja.IsUndefined(handle) || goja.IsNull(handle) {
		return
	}
	delete(t.pending, handle.Export())
}

// Len returns the number of timers not yet fired or cleared.
func (t *timerSet) Len() int { return len(t.pending) }

// clear cancels every pending timer.
func (t *timerSet) clear() {
	if t == nil {
		return
	}
	pending := t.pending
	t.pending = make(map[any]pendingTimer)
	for _, p := range pending {
		_, _ = p.clear(goja.Undefined(), p.handle)
	}
}
