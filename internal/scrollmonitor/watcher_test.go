package scrollmonitor

import (
	"errors"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(t *testing.T, vp Viewport, opts ...Option) *Monitor {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	m, err := New(vp, opts...)
	require.NoError(t, err)
	t.Cleanup(m.Dispose)
	return m
}

func TestWatcher_ScrollIntoViewport(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)

	w, err := m.Watch(BoundsTarget(1100, 1200))
	require.NoError(t, err)
	assert.False(t, w.IsInViewport())
	assert.False(t, w.IsAboveViewport())
	assert.True(t, w.IsBelowViewport())
	assert.False(t, w.IsFullyInViewport())

	var rec recorder
	rec.attach(w)
	require.Empty(t, rec.kinds)

	page.scroll = 150
	m.Update()
	assert.Equal(t, []EventKind{EnterViewport, VisibilityChange, StateChange}, rec.kinds)
	assert.True(t, w.IsInViewport())
	assert.False(t, w.IsFullyInViewport())

	rec.reset()
	page.scroll = 300
	m.Update()
	assert.Equal(t, []EventKind{FullyEnterViewport, StateChange}, rec.kinds)
	assert.True(t, w.IsFullyInViewport())
	assert.False(t, w.IsBelowViewport())
}

func TestWatcher_ScrollOutOfViewport(t *testing.T) {
	page := &pageViewport{scroll: 300, height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(1100, 1200))
	require.NoError(t, err)
	require.True(t, w.IsFullyInViewport())

	var rec recorder
	rec.attach(w)
	rec.reset()

	page.scroll = 1150
	m.Update()
	assert.Equal(t, []EventKind{PartiallyExitViewport, StateChange}, rec.kinds)
	assert.True(t, w.IsAboveViewport())
	assert.True(t, w.IsInViewport())

	rec.reset()
	page.scroll = 1300
	m.Update()
	assert.Equal(t, []EventKind{ExitViewport, VisibilityChange, StateChange}, rec.kinds)
}

func TestWatcher_SkipThroughSynthesizesPairs(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(1100, 1200))
	require.NoError(t, err)

	var rec recorder
	rec.attach(w)

	page.scroll = 2000
	m.Update()

	assert.True(t, w.IsAboveViewport())
	assert.False(t, w.IsBelowViewport())
	assert.Equal(t, []EventKind{
		VisibilityChange,
		FullyEnterViewport,
		PartiallyExitViewport,
		EnterViewport,
		ExitViewport,
		StateChange,
	}, rec.kinds)
	assert.Equal(t, 1, rec.count(StateChange))
}

func TestWatcher_Straddling(t *testing.T) {
	page := &pageViewport{scroll: 500, height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(100, 2000))
	require.NoError(t, err)

	assert.True(t, w.IsAboveViewport())
	assert.True(t, w.IsBelowViewport())
	assert.True(t, w.IsInViewport())
	assert.True(t, w.IsFullyInViewport())
}

func TestWatcher_OnFiresWhenAlreadyApplicable(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(100, 200))
	require.NoError(t, err)
	require.True(t, w.IsInViewport())

	calls := 0
	id, err := w.On(EnterViewport, func(got *Watcher, event any) {
		assert.Same(t, w, got)
		assert.Nil(t, event)
		calls++
	})
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, 1, calls, "must fire synchronously during registration")
	assert.Equal(t, 1, w.Listeners(EnterViewport))

	// leave and re-enter: the persistent registration fires again
	page.scroll = 3000
	m.Update()
	page.scroll = 0
	m.Update()
	assert.Equal(t, 2, calls)
}

func TestWatcher_OneFiresImmediatelyWithoutRegistering(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(100, 200))
	require.NoError(t, err)

	calls := 0
	id, err := w.One(FullyEnterViewport, func(*Watcher, any) { calls++ })
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.Equal(t, 1, calls)
	assert.Zero(t, w.Listeners(FullyEnterViewport))
}

func TestWatcher_ApplicableOnRegistration(t *testing.T) {
	page := &pageViewport{scroll: 1000, height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	above, err := m.Watch(BoundsTarget(100, 200))
	require.NoError(t, err)
	partial, err := m.Watch(BoundsTarget(900, 1100))
	require.NoError(t, err)

	fired := func(w *Watcher, kind EventKind) bool {
		called := false
		_, err := w.One(kind, func(*Watcher, any) { called = true })
		require.NoError(t, err)
		return called
	}

	assert.True(t, fired(above, VisibilityChange))
	assert.True(t, fired(above, ExitViewport))
	assert.True(t, fired(above, PartiallyExitViewport))
	assert.False(t, fired(above, EnterViewport))
	assert.False(t, fired(above, FullyEnterViewport))
	assert.False(t, fired(above, LocationChange))
	assert.False(t, fired(above, StateChange))

	assert.True(t, fired(partial, EnterViewport))
	assert.True(t, fired(partial, PartiallyExitViewport))
	assert.False(t, fired(partial, ExitViewport))
	assert.False(t, fired(partial, VisibilityChange))
}

func TestWatcher_InvalidEventKind(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(OffsetTarget(10))
	require.NoError(t, err)

	_, err = w.On(EventKind(99), func(*Watcher, any) {})
	var kindErr *InvalidEventKindError
	require.True(t, errors.As(err, &kindErr))

	err = w.Off(EventKind(-3), 1)
	require.True(t, errors.As(err, &kindErr))
}

func TestWatcher_OffUnknownIsNoop(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(1100, 1200))
	require.NoError(t, err)

	calls := 0
	_, err = w.OnEnterViewport(func(*Watcher, any) { calls++ })
	require.NoError(t, err)

	require.NoError(t, w.Off(EnterViewport, 12345))
	require.NoError(t, w.Off(ExitViewport, 1))
	assert.Equal(t, 1, w.Listeners(EnterViewport))

	page.scroll = 500
	m.Update()
	assert.Equal(t, 1, calls)
}

func TestWatcher_Off(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(1100, 1200))
	require.NoError(t, err)

	calls := 0
	id, err := w.OnEnterViewport(func(*Watcher, any) { calls++ })
	require.NoError(t, err)
	require.NoError(t, w.Off(EnterViewport, id))

	page.scroll = 500
	m.Update()
	assert.Zero(t, calls)
}

func TestWatcher_ReverseOrderAndFireOnceRemoval(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(1100, 1200))
	require.NoError(t, err)

	var order []string
	add := func(name string, once bool) {
		fn := func(*Watcher, any) { order = append(order, name) }
		if once {
			_, err = w.One(VisibilityChange, fn)
		} else {
			_, err = w.On(VisibilityChange, fn)
		}
		require.NoError(t, err)
	}
	add("a", false)
	add("b", true)
	add("c", false)

	page.scroll = 500
	m.Update()
	assert.Equal(t, []string{"c", "b", "a"}, order)
	assert.Equal(t, 2, w.Listeners(VisibilityChange))

	order = nil
	page.scroll = 0
	m.Update()
	assert.Equal(t, []string{"c", "a"}, order)
}

func TestWatcher_ListenerRemovingItselfAndOthers(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(1100, 1200))
	require.NoError(t, err)

	var order []string
	first, err := w.OnStateChange(func(*Watcher, any) { order = append(order, "first") })
	require.NoError(t, err)
	var self ListenerID
	self, err = w.OnStateChange(func(w *Watcher, _ any) {
		order = append(order, "self")
		require.NoError(t, w.Off(StateChange, self))
		require.NoError(t, w.Off(StateChange, first))
	})
	require.NoError(t, err)

	page.scroll = 500
	m.Update()
	assert.Equal(t, []string{"self"}, order)
	assert.Zero(t, w.Listeners(StateChange))
}

func TestWatcher_Lock(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	b := &box{vp: page, top: 100, bottom: 150}
	w, err := m.Watch(ElementTarget(b))
	require.NoError(t, err)
	require.Equal(t, 100.0, w.Top())

	w.Lock()
	assert.True(t, w.Locked())
	b.top, b.bottom = 400, 480
	w.RecalculateLocation()
	assert.Equal(t, 100.0, w.Top())
	assert.Equal(t, 150.0, w.Bottom())

	w.Unlock()
	w.RecalculateLocation()
	assert.Equal(t, 400.0, w.Top())
	assert.Equal(t, 480.0, w.Bottom())
	assert.Equal(t, 80.0, w.Height())
}

func TestWatcher_LocationChangeIsQueuedForNextPass(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	b := &box{vp: page, top: 100, bottom: 150}
	w, err := m.Watch(ElementTarget(b))
	require.NoError(t, err)

	var rec recorder
	rec.attach(w)
	rec.reset()

	b.top, b.bottom = 120, 170
	w.RecalculateLocation()
	assert.Empty(t, rec.kinds, "location change waits for the notification pass")

	m.Update()
	assert.Equal(t, []EventKind{LocationChange}, rec.kinds)

	rec.reset()
	m.Update()
	assert.Empty(t, rec.kinds)
}

func TestWatcher_Offsets(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)

	uniform, err := m.Watch(BoundsTarget(100, 200), WithUniformOffset(10))
	require.NoError(t, err)
	assert.Equal(t, 90.0, uniform.Top())
	assert.Equal(t, 210.0, uniform.Bottom())
	assert.Equal(t, 120.0, uniform.Height())

	split, err := m.Watch(BoundsTarget(100, 200), WithOffsets(Offsets{Top: 50, Bottom: -20}))
	require.NoError(t, err)
	assert.Equal(t, 50.0, split.Top())
	assert.Equal(t, 180.0, split.Bottom())

	collapsed, err := m.Watch(BoundsTarget(100, 110), WithUniformOffset(-20))
	require.NoError(t, err)
	assert.Equal(t, 120.0, collapsed.Top())
	assert.Equal(t, 120.0, collapsed.Bottom())
	assert.Zero(t, collapsed.Height())
}

func TestWatcher_RecalculateSize(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	b := &box{vp: page, top: 100, bottom: 150, offsetHeight: 50}
	w, err := m.Watch(ElementTarget(b), WithUniformOffset(5))
	require.NoError(t, err)
	require.Equal(t, 95.0, w.Top())
	require.Equal(t, 155.0, w.Bottom())

	b.offsetHeight = 90
	w.RecalculateSize()
	assert.Equal(t, 95.0, w.Top())
	assert.Equal(t, 100.0, w.Height())
	assert.Equal(t, 195.0, w.Bottom())

	bounds, err := m.Watch(BoundsTarget(1, 2))
	require.NoError(t, err)
	bounds.RecalculateSize()
	assert.Equal(t, 1.0, bounds.Height())
}

func TestWatcher_Destroy(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(1100, 1200))
	require.NoError(t, err)

	calls := 0
	_, err = w.OnEnterViewport(func(*Watcher, any) { calls++ })
	require.NoError(t, err)

	w.Destroy()
	assert.True(t, w.Destroyed())
	assert.Empty(t, m.Watchers())
	for _, kind := range EventKinds() {
		assert.Zero(t, w.Listeners(kind))
	}

	page.scroll = 500
	m.Update()
	assert.Zero(t, calls)
	w.Destroy()
}

func TestWatcher_DestroyFromListener(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(1100, 1200))
	require.NoError(t, err)

	var order []EventKind
	_, err = w.OnStateChange(func(*Watcher, any) { order = append(order, StateChange) })
	require.NoError(t, err)
	_, err = w.OnEnterViewport(func(w *Watcher, _ any) {
		order = append(order, EnterViewport)
		w.Destroy()
	})
	require.NoError(t, err)

	page.scroll = 500
	m.Update()
	assert.Equal(t, []EventKind{EnterViewport}, order)
}

func TestWatcher_FlagInvariants(t *testing.T) {
	page := &pageViewport{height: 400, content: 10000}
	m := newTestMonitor(t, page)
	rng := rand.New(rand.NewSource(1))

	var watchers []*Watcher
	for i := 0; i < 50; i++ {
		top := rng.Float64() * 9000
		w, err := m.Watch(BoundsTarget(top, top+rng.Float64()*1200), WithUniformOffset(rng.Float64()*40-20))
		require.NoError(t, err)
		watchers = append(watchers, w)
	}

	for i := 0; i < 200; i++ {
		page.scroll = float64(rng.Intn(9600))
		if i%10 == 0 {
			page.height = float64(200 + rng.Intn(600))
		}
		m.Update()

		root := m.Root()
		require.Equal(t, root.ViewportHeight(), root.ViewportBottom()-root.ViewportTop())
		for _, w := range watchers {
			require.GreaterOrEqual(t, w.Bottom(), w.Top())
			require.Equal(t, w.Bottom()-w.Top(), w.Height())
			if w.IsFullyInViewport() && !w.IsInViewport() {
				require.True(t, w.IsAboveViewport() && w.IsBelowViewport(), "fully without in must be straddling")
			}
		}
	}
}

func TestWatcher_NestedUpdateFromListener(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(1100, 1200))
	require.NoError(t, err)

	var rec recorder
	rec.attach(w)
	// an infinite scroll handler re-measures from inside the pass
	nested := 0
	_, err = w.OnEnterViewport(func(*Watcher, any) {
		nested++
		m.Update()
	})
	require.NoError(t, err)

	page.scroll = 150
	m.Update()
	assert.Equal(t, 1, nested)
	assert.Equal(t, 1, rec.count(EnterViewport))
	assert.Equal(t, 1, rec.count(VisibilityChange))
	assert.Equal(t, 1, rec.count(StateChange))

	rec.reset()
	m.Update()
	assert.Empty(t, rec.kinds)
}

func TestWatcher_NilCallback(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)
	w, err := m.Watch(BoundsTarget(100, 200))
	require.NoError(t, err)

	_, err = w.On(EnterViewport, nil)
	require.ErrorIs(t, err, ErrNilCallback)
	_, err = w.One(StateChange, nil)
	require.ErrorIs(t, err, ErrNilCallback)
}

func TestWatcher_InvertedBounds(t *testing.T) {
	page := &pageViewport{height: 1000, content: 5000}
	m := newTestMonitor(t, page)

	w, err := m.Watch(BoundsTarget(1200, 1100))
	require.NoError(t, err)
	assert.Equal(t, 1100.0, w.Top())
	assert.Equal(t, 1200.0, w.Bottom())
	assert.Equal(t, 100.0, w.Height())

	// a negative top offset larger than the span collapses it onto top
	w, err = m.Watch(BoundsTarget(100, 120), WithOffsets(Offsets{Top: -50}))
	require.NoError(t, err)
	assert.Equal(t, 150.0, w.Top())
	assert.Equal(t, 150.0, w.Bottom())
	assert.Equal(t, 0.0, w.Height())
	assert.True(t, w.IsFullyInViewport())
}
