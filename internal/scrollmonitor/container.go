package scrollmonitor

import (
	"reflect"

	"github.com/google/uuid"
)

// RootContainerID is the identity of the container created by [New].
const RootContainerID = "root"

// Container caches the geometry of one scrollable region.
type Container struct {
	id       string
	viewport Viewport

	top           float64
	bottom        float64
	height        float64
	contentHeight float64

	// contentKnown is false until the first refresh, and again after
	// RecalculateLocations marks the content height stale.
	contentKnown bool
	unsubscribe  func()
}

// ID returns the container identity.
func (c *Container) ID() string { return c.id }

// Viewport returns the geometry provider backing the container.
func (c *Container) Viewport() Viewport { return c.viewport }

// ViewportTop returns the cached scroll offset.
func (c *Container) ViewportTop() float64 { return c.top }

// ViewportBottom returns ViewportTop + ViewportHeight.
func (c *Container) ViewportBottom() float64 { return c.bottom }

// ViewportHeight returns the cached visible height.
func (c *Container) ViewportHeight() float64 { return c.height }

// ContentHeight returns the cached content height.
func (c *Container) ContentHeight() float64 { return c.contentHeight }

// refresh re-reads the viewport and reports whether the content height
// changed since the previous refresh.
func (c *Container) refresh() bool {
	c.height = c.viewport.ViewportHeight()
	c.top = c.viewport.ScrollTop()
	c.bottom = c.top + c.height

	contentHeight := c.viewport.ContentHeight()
	changed := !c.contentKnown || contentHeight != c.contentHeight
	c.contentHeight = contentHeight
	c.contentKnown = true
	return changed
}

func (c *Container) markStale() {
	c.contentKnown = false
}

// containerRegistry maps viewports to containers, keeping registration order
// so refreshes are deterministic.
type containerRegistry struct {
	order []*Container
}

func (r *containerRegistry) lookup(v Viewport) (*Container, error) {
	if v == nil {
		return nil, ErrNilTarget
	}
	if !reflect.TypeOf(v).Comparable() {
		return nil, ErrNonComparableViewport
	}
	for _, c := range r.order {
		if c.viewport == v {
			return c, nil
		}
	}
	return nil, nil
}

func (r *containerRegistry) add(id string, v Viewport) *Container {
	if id == "" {
		id = uuid.NewString()
	}
	c := &Container{id: id, viewport: v}
	r.order = append(r.order, c)
	return c
}
