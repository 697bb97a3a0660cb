// Package scrollmonitor tracks registered watch items against one or more
// scrollable viewports and notifies listeners about visibility transitions.
//
// A [Monitor] owns every container and watcher. Each pass first refreshes
// container geometry, then updates the flags of every watcher, and only then
// fires listeners, so a listener never observes a stale flag on another
// watcher.
//
// # Usage
//
//	m, err := scrollmonitor.New(page)
//	if err != nil { ... }
//	defer m.Dispose()
//
//	w, err := m.Watch(scrollmonitor.BoundsTarget(1100, 1200))
//	if err != nil { ... }
//	_, _ = w.OnEnterViewport(func(w *scrollmonitor.Watcher, event any) {
//		// load more content
//	})
//
//	// from the host's scroll handler
//	m.HandleScroll(event)
//
// Bounds are normalized: [BoundsTarget] swaps an inverted span, and when
// offsets would put bottom above top, bottom is raised to top so a watcher's
// height is never negative.
//
// Listeners may start another pass, for example by calling [Monitor.Update]
// after loading more content. A transition is reported once, by the pass
// that observed it.
//
// A Monitor is not safe for concurrent use. All calls, including the
// callbacks of its [Scheduler], must happen on the goroutine that owns it.
package scrollmonitor
