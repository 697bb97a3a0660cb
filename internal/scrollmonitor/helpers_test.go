package scrollmonitor

import (
	"time"
)

// pageViewport is a scriptable root viewport.
type pageViewport struct {
	scroll  float64
	height  float64
	content float64
}

func (p *pageViewport) ScrollTop() float64      { return p.scroll }
func (p *pageViewport) ViewportHeight() float64 { return p.height }
func (p *pageViewport) ContentHeight() float64  { return p.content }

// box is an element positioned in content coordinates of its viewport.
type box struct {
	vp          *pageViewport
	top, bottom float64

	hidden       bool
	measured     []bool // hidden state observed at each measurement
	offsetHeight float64
}

func (b *box) BoundingRect() Rect {
	b.measured = append(b.measured, b.hidden)
	if b.hidden {
		return Rect{}
	}
	return Rect{Top: b.top - b.vp.scroll, Bottom: b.bottom - b.vp.scroll}
}

func (b *box) IsHidden() bool       { return b.hidden }
func (b *box) SetHidden(hidden bool) { b.hidden = hidden }
func (b *box) OffsetHeight() float64 { return b.offsetHeight }

// recorder collects event kinds in firing order.
type recorder struct {
	kinds  []EventKind
	events []any
}

func (r *recorder) attach(w *Watcher) {
	for _, kind := range EventKinds() {
		kind := kind
		if _, err := w.On(kind, func(_ *Watcher, event any) {
			r.kinds = append(r.kinds, kind)
			r.events = append(r.events, event)
		}); err != nil {
			panic(err)
		}
	}
}

func (r *recorder) reset() {
	r.kinds = nil
	r.events = nil
}

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, k := range r.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

// manualScheduler holds scheduled callbacks until the test runs them.
type manualScheduler struct {
	timers []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{delay: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) active() []*manualTimer {
	var out []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

func (s *manualScheduler) fireAll() {
	for _, t := range s.active() {
		t.fired = true
		t.fn()
	}
}
