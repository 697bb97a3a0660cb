package scrollmonitor

import "slices"

// Callback receives notifications from a [Watcher]. event is the value
// passed to the scroll or resize handler that started the pass, or nil for
// programmatic updates.
type Callback func(w *Watcher, event any)

// ListenerID identifies a registered listener for [Watcher.Off]. The zero
// value refers to no listener.
type ListenerID uint64

type listener struct {
	id      ListenerID
	fn      Callback
	once    bool
	removed bool
}

type flags struct {
	above bool
	below bool
	in    bool
	fully bool
}

// Watcher is the visibility state machine for one watch item.
type Watcher struct {
	monitor   *Monitor
	container *Container
	target    Target
	offsets   Offsets

	top    float64
	bottom float64
	height float64

	located         bool
	locationChanged bool
	locked          bool
	destroyed       bool

	cur  flags
	prev flags

	listeners [numEventKinds][]*listener
	nextID    ListenerID
}

func newWatcher(m *Monitor, c *Container, target Target, offsets Offsets) *Watcher {
	w := &Watcher{
		monitor:   m,
		container: c,
		target:    target,
		offsets:   offsets,
	}
	w.RecalculateLocation()
	w.update()
	w.prev = w.cur
	return w
}

// Container returns the container the watcher is measured against.
func (w *Watcher) Container() *Container { return w.container }

// Target returns the watched target.
func (w *Watcher) Target() Target { return w.target }

// Offsets returns the configured offsets.
func (w *Watcher) Offsets() Offsets { return w.offsets }

// Top returns the top bound in content coordinates, offsets applied.
func (w *Watcher) Top() float64 { return w.top }

// Bottom returns the bottom bound in content coordinates, offsets applied.
func (w *Watcher) Bottom() float64 { return w.bottom }

// Height returns Bottom - Top.
func (w *Watcher) Height() float64 { return w.height }

// IsAboveViewport reports whether the item starts above the viewport.
func (w *Watcher) IsAboveViewport() bool { return w.cur.above }

// IsBelowViewport reports whether the item ends below the viewport.
func (w *Watcher) IsBelowViewport() bool { return w.cur.below }

// IsInViewport reports whether any part of the item is visible.
func (w *Watcher) IsInViewport() bool { return w.cur.in }

// IsFullyInViewport reports whether the item is entirely visible, or covers
// the entire viewport.
func (w *Watcher) IsFullyInViewport() bool { return w.cur.fully }

// Lock freezes the bounds: RecalculateLocation and RecalculateSize become
// no-ops until Unlock.
func (w *Watcher) Lock() { w.locked = true }

// Unlock reverses Lock.
func (w *Watcher) Unlock() { w.locked = false }

// Locked reports whether the watcher is locked.
func (w *Watcher) Locked() bool { return w.locked }

// Destroyed reports whether Destroy has been called.
func (w *Watcher) Destroyed() bool { return w.destroyed }

// RecalculateLocation recomputes the bounds from the target. A change of
// either bound, other than the initial computation, queues a LocationChange
// notification for the next pass.
func (w *Watcher) RecalculateLocation() {
	if w.locked {
		return
	}
	prevTop, prevBottom := w.top, w.bottom

	r := w.target.locate(w.container)
	w.setBounds(r.Top-w.offsets.Top, r.Bottom+w.offsets.Bottom)

	if w.located && (w.top != prevTop || w.bottom != prevBottom) {
		w.locationChanged = true
	}
	w.located = true
}

// RecalculateSize recomputes the height of an element target from its
// layout height, keeping the top bound. It is a no-op for targets that do
// not implement [Sizer].
func (w *Watcher) RecalculateSize() {
	if w.locked {
		return
	}
	s, ok := w.target.element.(Sizer)
	if !ok {
		return
	}
	prevBottom := w.bottom
	w.setBounds(w.top, w.top+s.OffsetHeight()+w.offsets.Top+w.offsets.Bottom)
	if w.bottom != prevBottom {
		w.locationChanged = true
	}
}

// setBounds stores the bounds, raising bottom to top when a negative offset
// or layout height would invert them, so Height is never negative.
func (w *Watcher) setBounds(top, bottom float64) {
	if bottom < top {
		bottom = top
	}
	w.top = top
	w.bottom = bottom
	w.height = bottom - top
}

// update derives the flags from the bounds and the container geometry.
func (w *Watcher) update() {
	top, bottom := w.container.top, w.container.bottom
	w.cur.above = w.top < top
	w.cur.below = w.bottom > bottom
	w.cur.in = w.top <= bottom && w.bottom >= top
	w.cur.fully = (w.top >= top && w.bottom <= bottom) || (w.cur.above && w.cur.below)
}

// triggerCallbacks fires the listeners for every transition since the
// previous pass, then commits the current flags as the new snapshot.
func (w *Watcher) triggerCallbacks(event any) {
	cur, was := w.cur, w.prev
	// committed first, so a pass started by a listener sees no stale transition
	w.prev = cur

	if w.locationChanged {
		w.locationChanged = false
		w.fire(LocationChange, event)
	}

	if cur.in && !was.in {
		w.fire(EnterViewport, event)
	}
	if cur.fully && !was.fully {
		w.fire(FullyEnterViewport, event)
	}

	// Jumped from one side of the viewport to the other in a single pass.
	if cur.above != was.above && cur.below != was.below {
		w.fire(VisibilityChange, event)
		if !was.fully && !cur.fully {
			w.fire(FullyEnterViewport, event)
			w.fire(PartiallyExitViewport, event)
		}
		if !was.in && !cur.in {
			w.fire(EnterViewport, event)
			w.fire(ExitViewport, event)
		}
	}

	if !cur.fully && was.fully {
		w.fire(PartiallyExitViewport, event)
	}
	if !cur.in && was.in {
		w.fire(ExitViewport, event)
	}
	if cur.in != was.in {
		w.fire(VisibilityChange, event)
	}
	if cur != was {
		w.fire(StateChange, event)
	}
}

// fire invokes the listeners of kind newest first. The list is copied so
// listeners may add or remove listeners, including themselves.
func (w *Watcher) fire(kind EventKind, event any) {
	list := w.listeners[kind]
	if len(list) == 0 {
		return
	}
	list = slices.Clone(list)
	for i := len(list) - 1; i >= 0; i-- {
		l := list[i]
		if l.removed {
			continue
		}
		l.fn(w, event)
		if l.once {
			w.remove(kind, l)
		}
	}
}

// On registers fn for kind. If the kind already applies to the current
// state, fn is called before On returns; a fire-once registration is then
// complete and the returned ID is zero. A nil fn fails with
// [ErrNilCallback].
func (w *Watcher) On(kind EventKind, fn Callback) (ListenerID, error) {
	return w.on(kind, fn, false)
}

// One is On for a listener that is removed after its first invocation.
func (w *Watcher) One(kind EventKind, fn Callback) (ListenerID, error) {
	return w.on(kind, fn, true)
}

func (w *Watcher) on(kind EventKind, fn Callback, once bool) (ListenerID, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	if fn == nil {
		return 0, ErrNilCallback
	}
	if w.applies(kind) {
		fn(w, w.monitor.latestEvent)
		if once {
			return 0, nil
		}
	}
	if w.destroyed {
		return 0, nil
	}
	w.nextID++
	l := &listener{id: w.nextID, fn: fn, once: once}
	w.listeners[kind] = append(w.listeners[kind], l)
	return l.id, nil
}

// applies reports whether kind describes the current state, for the
// immediate invocation performed by On.
func (w *Watcher) applies(kind EventKind) bool {
	switch kind {
	case VisibilityChange:
		return !w.cur.in && w.cur.above
	case EnterViewport:
		return w.cur.in
	case FullyEnterViewport:
		return w.cur.fully
	case ExitViewport:
		return w.cur.above && !w.cur.in
	case PartiallyExitViewport:
		return w.cur.above
	default:
		return false
	}
}

// Off removes a listener. Unknown IDs are ignored.
func (w *Watcher) Off(kind EventKind, id ListenerID) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	for _, l := range w.listeners[kind] {
		if l.id == id {
			w.remove(kind, l)
			break
		}
	}
	return nil
}

func (w *Watcher) remove(kind EventKind, target *listener) {
	target.removed = true
	w.listeners[kind] = slices.DeleteFunc(w.listeners[kind], func(l *listener) bool {
		return l == target
	})
}

// Listeners returns the number of listeners registered for kind.
func (w *Watcher) Listeners(kind EventKind) int {
	if !kind.Valid() {
		return 0
	}
	return len(w.listeners[kind])
}

// Destroy removes the watcher from its monitor and drops every listener.
func (w *Watcher) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.monitor.forget(w)
	for kind := range w.listeners {
		for _, l := range w.listeners[kind] {
			l.removed = true
		}
		w.listeners[kind] = nil
	}
}

// OnVisibilityChange registers fn for VisibilityChange.
func (w *Watcher) OnVisibilityChange(fn Callback) (ListenerID, error) {
	return w.On(VisibilityChange, fn)
}

// OnEnterViewport registers fn for EnterViewport.
func (w *Watcher) OnEnterViewport(fn Callback) (ListenerID, error) {
	return w.On(EnterViewport, fn)
}

// OnFullyEnterViewport registers fn for FullyEnterViewport.
func (w *Watcher) OnFullyEnterViewport(fn Callback) (ListenerID, error) {
	return w.On(FullyEnterViewport, fn)
}

// OnExitViewport registers fn for ExitViewport.
func (w *Watcher) OnExitViewport(fn Callback) (ListenerID, error) {
	return w.On(ExitViewport, fn)
}

// OnPartiallyExitViewport registers fn for PartiallyExitViewport.
func (w *Watcher) OnPartiallyExitViewport(fn Callback) (ListenerID, error) {
	return w.On(PartiallyExitViewport, fn)
}

// OnLocationChange registers fn for LocationChange.
func (w *Watcher) OnLocationChange(fn Callback) (ListenerID, error) {
	return w.On(LocationChange, fn)
}

// OnStateChange registers fn for StateChange.
func (w *Watcher) OnStateChange(fn Callback) (ListenerID, error) {
	return w.On(StateChange, fn)
}
