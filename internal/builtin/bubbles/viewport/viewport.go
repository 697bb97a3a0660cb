// Package viewport provides JavaScript bindings for
// github.com/charmbracelet/bubbles/viewport, shaped so that a viewport can
// be handed straight to scrollmon:monitor as a container.
//
// The module is exposed as "scrollmon:bubbles/viewport".
//
// # JavaScript API
//
//	const viewport = require('scrollmon:bubbles/viewport');
//	const scrollMonitor = require('scrollmon:monitor');
//
//	const vp = viewport.new(80, 10).setContent(lines.join('\n'));
//	const monitor = scrollMonitor.create(vp);
//
//	// A line span [top, bottom) of the content, measured like a DOM element
//	// relative to the viewport's visible top.
//	const watcher = monitor.watch(vp.element(20, 25));
//
//	vp.scrollDown(3);           // also lineDown, pageDown, halfPageDown, ...
//	monitor.handleScroll();
//
//	vp.scrollTop();      // == yOffset()
//	vp.viewportHeight(); // == height()
//	vp.contentHeight();  // == totalLineCount()
//	vp.view();
package viewport

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/dop251/goja"
)

// Manager holds the viewport models created by one runtime.
type Manager struct {
	mu     sync.RWMutex
	nextID atomic.Uint64
	models map[uint64]*viewport.Model
}

// NewManager creates a new viewport manager.
func NewManager() *Manager {
	return &Manager{models: make(map[uint64]*viewport.Model)}
}

func (m *Manager) add(model *viewport.Model) uint64 {
	id := m.nextID.Add(1)
	m.mu.Lock()
	m.models[id] = model
	m.mu.Unlock()
	return id
}

func (m *Manager) get(id uint64) *viewport.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.models[id]
}

func (m *Manager) remove(id uint64) {
	m.mu.Lock()
	delete(m.models, id)
	m.mu.Unlock()
}

// Len returns the number of live models.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.models)
}

// Require returns a CommonJS native module under "scrollmon:bubbles/viewport".
func Require(manager *Manager) func(runtime *goja.Runtime, module *goja.Object) {
	return func(runtime *goja.Runtime, module *goja.Object) {
		exports := runtime.NewObject()
		_ = module.Set("exports", exports)

		_ = exports.Set("new", func(call goja.FunctionCall) goja.Value {
			width, height := 80, 24
			if v := call.Argument(0); !goja.IsUndefined(v) {
				width = int(v.ToInteger())
			}
			if v := call.Argument(1); !goja.IsUndefined(v) {
				height = int(v.ToInteger())
			}
			model := viewport.New(width, height)
			return newObject(runtime, manager, manager.add(&model))
		})
	}
}

func newObject(runtime *goja.Runtime, manager *Manager, id uint64) *goja.Object {
	obj := runtime.NewObject()
	_ = obj.Set("_id", id)
	_ = obj.Set("_type", "bubbles/viewport")

	model := func() *viewport.Model {
		vp := manager.get(id)
		if vp == nil {
			panic(runtime.NewTypeError("viewport: model has been closed"))
		}
		return vp
	}

	// mutators return the object for chaining
	mutate := func(fn func(vp *viewport.Model, call goja.FunctionCall)) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			fn(model(), call)
			return obj
		}
	}
	lines := func(call goja.FunctionCall) int {
		if v := call.Argument(0); !goja.IsUndefined(v) {
			return int(v.ToInteger())
		}
		return 1
	}

	_ = obj.Set("setContent", mutate(func(vp *viewport.Model, call goja.FunctionCall) {
		content := call.Argument(0)
		var s string
		if arr, ok := content.Export().([]any); ok {
			parts := make([]string, len(arr))
			for i, v := range arr {
				parts[i] = runtime.ToValue(v).String()
			}
			s = strings.Join(parts, "\n")
		} else if !goja.IsUndefined(content) {
			s = content.String()
		}
		vp.SetContent(s)
		clampYOffset(vp)
	}))
	_ = obj.Set("setWidth", mutate(func(vp *viewport.Model, call goja.FunctionCall) {
		vp.Width = int(call.Argument(0).ToInteger())
	}))
	_ = obj.Set("setHeight", mutate(func(vp *viewport.Model, call goja.FunctionCall) {
		vp.Height = int(call.Argument(0).ToInteger())
		clampYOffset(vp)
	}))
	_ = obj.Set("setYOffset", mutate(func(vp *viewport.Model, call goja.FunctionCall) {
		vp.SetYOffset(int(call.Argument(0).ToInteger()))
	}))
	_ = obj.Set("mouseWheelEnabled", mutate(func(vp *viewport.Model, call goja.FunctionCall) {
		vp.MouseWheelEnabled = goja.IsUndefined(call.Argument(0)) || call.Argument(0).ToBoolean()
	}))
	_ = obj.Set("setMouseWheelDelta", mutate(func(vp *viewport.Model, call goja.FunctionCall) {
		vp.MouseWheelDelta = int(call.Argument(0).ToInteger())
	}))

	for name, fn := range map[string]func(vp *viewport.Model, call goja.FunctionCall){
		"scrollDown":   func(vp *viewport.Model, call goja.FunctionCall) { vp.ScrollDown(lines(call)) },
		"scrollUp":     func(vp *viewport.Model, call goja.FunctionCall) { vp.ScrollUp(lines(call)) },
		"lineDown":     func(vp *viewport.Model, call goja.FunctionCall) { vp.ScrollDown(lines(call)) },
		"lineUp":       func(vp *viewport.Model, call goja.FunctionCall) { vp.ScrollUp(lines(call)) },
		"gotoTop":      func(vp *viewport.Model, _ goja.FunctionCall) { vp.GotoTop() },
		"gotoBottom":   func(vp *viewport.Model, _ goja.FunctionCall) { vp.GotoBottom() },
		"pageUp":       func(vp *viewport.Model, _ goja.FunctionCall) { vp.PageUp() },
		"pageDown":     func(vp *viewport.Model, _ goja.FunctionCall) { vp.PageDown() },
		"halfPageUp":   func(vp *viewport.Model, _ goja.FunctionCall) { vp.HalfPageUp() },
		"halfPageDown": func(vp *viewport.Model, _ goja.FunctionCall) { vp.HalfPageDown() },
	} {
		_ = obj.Set(name, mutate(fn))
	}

	for name, fn := range map[string]func(vp *viewport.Model) any{
		"width":            func(vp *viewport.Model) any { return vp.Width },
		"height":           func(vp *viewport.Model) any { return vp.Height },
		"yOffset":          func(vp *viewport.Model) any { return vp.YOffset },
		"scrollPercent":    func(vp *viewport.Model) any { return vp.ScrollPercent() },
		"atTop":            func(vp *viewport.Model) any { return vp.AtTop() },
		"atBottom":         func(vp *viewport.Model) any { return vp.AtBottom() },
		"pastBottom":       func(vp *viewport.Model) any { return vp.PastBottom() },
		"totalLineCount":   func(vp *viewport.Model) any { return vp.TotalLineCount() },
		"visibleLineCount": func(vp *viewport.Model) any { return vp.VisibleLineCount() },
		"view":             func(vp *viewport.Model) any { return vp.View() },
		// container geometry read by scrollmon:monitor
		"scrollTop":      func(vp *viewport.Model) any { return vp.YOffset },
		"viewportHeight": func(vp *viewport.Model) any { return vp.Height },
		"contentHeight":  func(vp *viewport.Model) any { return vp.TotalLineCount() },
	} {
		_ = obj.Set(name, func(goja.FunctionCall) goja.Value {
			return runtime.ToValue(fn(model()))
		})
	}

	_ = obj.Set("element", func(call goja.FunctionCall) goja.Value {
		top := call.Argument(0).ToFloat()
		bottom := top + 1
		if v := call.Argument(1); !goja.IsUndefined(v) {
			bottom = v.ToFloat()
		}
		return lineSpan(runtime, model, top, bottom)
	})

	_ = obj.Set("close", func(goja.FunctionCall) goja.Value {
		manager.remove(id)
		return goja.Undefined()
	})

	return obj
}

// lineSpan builds an element-like object for the content lines [top, bottom).
func lineSpan(runtime *goja.Runtime, model func() *viewport.Model, top, bottom float64) *goja.Object {
	el := runtime.NewObject()
	_ = el.Set("getBoundingClientRect", func(goja.FunctionCall) goja.Value {
		y := float64(model().YOffset)
		rect := runtime.NewObject()
		_ = rect.Set("top", top-y)
		_ = rect.Set("bottom", bottom-y)
		_ = rect.Set("height", bottom-top)
		return rect
	})
	_ = el.Set("offsetHeight", bottom-top)
	_ = el.Set("lineTop", top)
	_ = el.Set("lineBottom", bottom)
	return el
}

// clampYOffset keeps YOffset within [0, max(0, total-height)].
func clampYOffset(vp *viewport.Model) {
	maxOffset := max(vp.TotalLineCount()-vp.Height, 0)
	if vp.YOffset > maxOffset {
		vp.SetYOffset(maxOffset)
	}
	if vp.YOffset < 0 {
		vp.SetYOffset(0)
	}
}
