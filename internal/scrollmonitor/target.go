package scrollmonitor

import "math"

type targetKind int

const (
	targetElement targetKind = iota + 1
	targetOffset
	targetBounds
)

// Target is the thing a [Watcher] tracks. The variant is fixed at
// construction; use [ElementTarget], [OffsetTarget] or [BoundsTarget].
type Target struct {
	kind    targetKind
	element Element
	offset  float64
	bounds  Rect
}

// ElementTarget watches a measurable element. Its bounds are re-measured
// whenever locations are recalculated.
func ElementTarget(e Element) Target {
	return Target{kind: targetElement, element: e}
}

// OffsetTarget watches a single position in content coordinates. A positive
// value is a distance from the top of the content; any other value is a
// distance from the bottom of the content.
func OffsetTarget(v float64) Target {
	return Target{kind: targetOffset, offset: v}
}

// BoundsTarget watches a fixed span in content coordinates. The arguments
// are swapped if bottom is above top.
func BoundsTarget(top, bottom float64) Target {
	if bottom < top {
		top, bottom = bottom, top
	}
	return Target{kind: targetBounds, bounds: Rect{Top: top, Bottom: bottom}}
}

// Element returns the watched element, or nil for other variants.
func (t Target) Element() Element {
	return t.element
}

func (t Target) valid() bool {
	switch t.kind {
	case targetElement:
		return t.element != nil
	case targetOffset, targetBounds:
		return true
	default:
		return false
	}
}

// locate resolves the raw bounds of the target in content coordinates.
func (t Target) locate(c *Container) Rect {
	switch t.kind {
	case targetElement:
		r := measure(t.element)
		return Rect{Top: r.Top + c.top, Bottom: r.Bottom + c.top}
	case targetOffset:
		v := t.offset
		if v <= 0 {
			v = c.contentHeight - math.Abs(v)
		}
		return Rect{Top: v, Bottom: v}
	default:
		return t.bounds
	}
}

func measure(e Element) Rect {
	if h, ok := e.(HiddenElement); ok && h.IsHidden() {
		h.SetHidden(false)
		defer h.SetHidden(true)
	}
	r := e.BoundingRect()
	if r.Bottom < r.Top {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	return r
}

// Offsets grow (positive) or shrink (negative) the effective bounds of a
// watch item relative to its raw bounds.
type Offsets struct {
	Top    float64
	Bottom float64
}

// UniformOffsets applies v to both edges.
func UniformOffsets(v float64) Offsets {
	return Offsets{Top: v, Bottom: v}
}
