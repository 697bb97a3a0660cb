package scrollmonitor

import (
	"log/slog"
	"slices"
	"time"
)

// Monitor owns the containers and watchers of one host and drives the
// two-phase update: every watcher's flags are updated before any listener
// runs.
type Monitor struct {
	logger     *slog.Logger
	containers containerRegistry
	root       *Container
	watchers   []*Watcher

	// latestEvent is handed to listeners; nil for programmatic updates.
	latestEvent any
	resizeEvent any
	resize      debouncer

	ready    bool
	disposed bool
}

type options struct {
	logger         *slog.Logger
	scheduler      Scheduler
	resizeDebounce time.Duration
}

// Option configures a [Monitor].
type Option func(*options)

// WithLogger sets the logger used for diagnostics. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithScheduler sets the scheduler used to debounce resize events. Defaults
// to [TimeScheduler].
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithResizeDebounce sets the quiet period after the last resize event.
// Non-positive values keep [DefaultResizeDebounce].
func WithResizeDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.resizeDebounce = d
		}
	}
}

// New creates a monitor whose root container is backed by root.
//
// If root implements [Readier] and is not ready, the initial geometry pass
// is deferred until a [ReadyNotifier] signals readiness; a viewport that
// cannot signal fails with [ErrGeometryUnavailable].
func New(root Viewport, opts ...Option) (*Monitor, error) {
	if root == nil {
		return nil, ErrNilTarget
	}
	o := options{
		logger:         slog.Default(),
		scheduler:      TimeScheduler,
		resizeDebounce: DefaultResizeDebounce,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ready := true
	var notifier ReadyNotifier
	if r, ok := root.(Readier); ok && !r.Ready() {
		n, ok := root.(ReadyNotifier)
		if !ok {
			return nil, ErrGeometryUnavailable
		}
		ready = false
		notifier = n
	}

	m := &Monitor{
		logger: o.logger,
		ready:  ready,
	}
	m.resize = debouncer{
		scheduler: o.scheduler,
		delay:     o.resizeDebounce,
		fn:        m.recalculateAndTrigger,
	}
	m.root = m.register(RootContainerID, root)

	if notifier != nil {
		m.logger.Debug("scrollmonitor: deferring initial geometry pass until the viewport is ready")
		notifier.OnReady(m.onReady)
		return m, nil
	}
	m.refreshContainers()
	return m, nil
}

// onReady runs the deferred initial pass. Watchers registered before the
// host was ready take their first real measurement as their initial state,
// so no events fire for it.
func (m *Monitor) onReady() {
	if m.ready || m.disposed {
		return
	}
	m.ready = true
	m.refreshContainers()
	for _, w := range m.watchers {
		w.locationChanged = false
		w.update()
		w.prev = w.cur
	}
	m.logger.Debug("scrollmonitor: viewport ready", slog.Int("watchers", len(m.watchers)))
}

// Ready reports whether the initial geometry pass has happened.
func (m *Monitor) Ready() bool { return m.ready }

// Root returns the default container.
func (m *Monitor) Root() *Container { return m.root }

// Containers returns every registered container, root first.
func (m *Monitor) Containers() []*Container {
	return slices.Clone(m.containers.order)
}

// Container returns the container registered for v, or nil.
func (m *Monitor) Container(v Viewport) *Container {
	c, _ := m.containers.lookup(v)
	return c
}

// Watchers returns the live watchers in registration order.
func (m *Monitor) Watchers() []*Watcher {
	return slices.Clone(m.watchers)
}

func (m *Monitor) register(id string, v Viewport) *Container {
	c := m.containers.add(id, v)
	if obs, ok := v.(Observable); ok {
		c.unsubscribe = obs.Subscribe(m.HandleScroll, m.HandleResize)
	}
	m.logger.Debug("scrollmonitor: container registered", slog.String("container", c.id))
	return c
}

func (m *Monitor) containerFor(v Viewport) (*Container, error) {
	c, err := m.containers.lookup(v)
	if err != nil || c != nil {
		return c, err
	}
	c = m.register("", v)
	if m.ready {
		c.refresh()
	}
	return c, nil
}

type watchOptions struct {
	offsets  Offsets
	viewport Viewport
}

// WatchOption configures a single [Monitor.Watch] call.
type WatchOption func(*watchOptions)

// WithOffsets sets distinct top and bottom offsets.
func WithOffsets(o Offsets) WatchOption {
	return func(wo *watchOptions) { wo.offsets = o }
}

// WithUniformOffset applies v to both edges.
func WithUniformOffset(v float64) WatchOption {
	return func(wo *watchOptions) { wo.offsets = UniformOffsets(v) }
}

// InContainer measures the target against v instead of the root container.
// The container is registered on first use.
func InContainer(v Viewport) WatchOption {
	return func(wo *watchOptions) { wo.viewport = v }
}

// Watch starts tracking target. Its bounds and flags are computed at once;
// no events fire for the initial state.
func (m *Monitor) Watch(target Target, opts ...WatchOption) (*Watcher, error) {
	if m.disposed {
		return nil, ErrDisposed
	}
	if !target.valid() {
		return nil, ErrNilTarget
	}
	var o watchOptions
	for _, opt := range opts {
		opt(&o)
	}
	c := m.root
	if o.viewport != nil {
		var err error
		if c, err = m.containerFor(o.viewport); err != nil {
			return nil, err
		}
	}
	w := newWatcher(m, c, target, o.offsets)
	m.watchers = append(m.watchers, w)
	return w, nil
}

func (m *Monitor) forget(w *Watcher) {
	m.watchers = slices.DeleteFunc(m.watchers, func(x *Watcher) bool { return x == w })
}

// Update forces a full geometry and notification pass. Listeners receive a
// nil event.
func (m *Monitor) Update() {
	m.latestEvent = nil
	m.pass()
}

// RecalculateLocations marks the content height of every container stale,
// so every watcher recomputes its bounds, then runs [Monitor.Update]. Use it
// after changes to the content the monitor cannot observe.
func (m *Monitor) RecalculateLocations() {
	for _, c := range m.containers.order {
		c.markStale()
	}
	m.Update()
}

// HandleScroll runs a pass immediately, handing event to the listeners.
func (m *Monitor) HandleScroll(event any) {
	m.latestEvent = event
	m.pass()
}

// HandleResize schedules a recalculation once resize events have been quiet
// for the debounce period. Only the last event of a burst is delivered.
func (m *Monitor) HandleResize(event any) {
	if m.disposed {
		return
	}
	m.resizeEvent = event
	m.resize.trigger()
}

// ResizePending reports whether a debounced resize recalculation is
// scheduled.
func (m *Monitor) ResizePending() bool {
	return m.resize.pending()
}

func (m *Monitor) recalculateAndTrigger() {
	m.latestEvent = m.resizeEvent
	m.resizeEvent = nil
	m.pass()
}

func (m *Monitor) pass() {
	if m.disposed || !m.ready {
		return
	}
	m.refreshContainers()
	m.updateAndTrigger()
}

// refreshContainers re-reads every container. A changed content height
// invalidates the bounds of every watcher, e.g. offsets measured from the
// bottom of the content.
func (m *Monitor) refreshContainers() {
	changed := false
	for _, c := range m.containers.order {
		if c.refresh() {
			changed = true
		}
	}
	if !changed {
		return
	}
	m.logger.Debug("scrollmonitor: content height changed, recalculating locations",
		slog.Int("watchers", len(m.watchers)))
	for _, w := range m.watchers {
		w.RecalculateLocation()
	}
}

// updateAndTrigger updates every watcher, then notifies every watcher.
func (m *Monitor) updateAndTrigger() {
	watchers := slices.Clone(m.watchers)
	for _, w := range watchers {
		w.update()
	}
	event := m.latestEvent
	for _, w := range watchers {
		if w.destroyed {
			continue
		}
		w.triggerCallbacks(event)
	}
}

// Dispose destroys every watcher, cancels a pending resize recalculation and
// unsubscribes from observable viewports. The monitor cannot be reused.
func (m *Monitor) Dispose() {
	if m.disposed {
		return
	}
	m.resize.cancel()
	for _, w := range slices.Clone(m.watchers) {
		w.Destroy()
	}
	m.disposed = true
	for _, c := range m.containers.order {
		if c.unsubscribe != nil {
			c.unsubscribe()
			c.unsubscribe = nil
		}
	}
	m.logger.Debug("scrollmonitor: disposed")
}

// Disposed reports whether Dispose has been called.
func (m *Monitor) Disposed() bool { return m.disposed }
