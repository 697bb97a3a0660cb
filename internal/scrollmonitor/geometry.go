package scrollmonitor

// Rect is the vertical extent of an element. Coordinates of a rect returned
// by [Element.BoundingRect] are relative to the visible top of the element's
// container, the same way a browser bounding client rect is.
type Rect struct {
	Top    float64
	Bottom float64
}

// Height returns Bottom - Top.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Viewport is the geometry provider for one scrollable region.
//
// Implementations used as containers other than the root are also used as
// the container identity, so they must be comparable (pointer types).
type Viewport interface {
	// ScrollTop returns the current scroll offset.
	ScrollTop() float64
	// ViewportHeight returns the visible height.
	ViewportHeight() float64
	// ContentHeight returns the total height of the scrollable content.
	ContentHeight() float64
}

// Element is a measurable watch item.
type Element interface {
	BoundingRect() Rect
}

// HiddenElement is implemented by elements that may be hidden from layout.
// Hidden elements are shown for the duration of a measurement so they report
// their real rectangle instead of an empty one.
type HiddenElement interface {
	Element
	IsHidden() bool
	SetHidden(hidden bool)
}

// Sizer is implemented by elements that can report their layout height
// without a full measurement. See [Watcher.RecalculateSize].
type Sizer interface {
	OffsetHeight() float64
}

// Readier is implemented by viewports that may not be measurable yet.
type Readier interface {
	Ready() bool
}

// ReadyNotifier is a [Readier] that can signal readiness. [New] defers the
// initial geometry pass until fn is called instead of failing.
type ReadyNotifier interface {
	Readier
	OnReady(fn func())
}

// Observable is implemented by viewports that emit their own scroll and
// resize events. A monitor subscribes when the container is registered and
// unsubscribes on [Monitor.Dispose].
type Observable interface {
	Subscribe(onScroll, onResize func(event any)) (unsubscribe func())
}
