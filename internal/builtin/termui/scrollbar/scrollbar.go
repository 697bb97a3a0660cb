// Package scrollbar provides JavaScript bindings for
// github.com/joeycumines/scroll-monitor/internal/termui/scrollbar.
//
// The module is exposed as "scrollmon:termui/scrollbar":
//
//	const scrollbar = require('scrollmon:termui/scrollbar');
//	const sb = scrollbar.new(24);
//	sb.sync(monitor);            // geometry and markers from a scrollmon:monitor
//	sb.setMarkers([{top: 3, bottom: 8, active: true}]);
//	sb.setChars(' ', '│', '┃');
//	const rendered = sb.view();
package scrollbar

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/dop251/goja"
	"github.com/joeycumines/scroll-monitor/internal/scrollmonitor"
	termuisb "github.com/joeycumines/scroll-monitor/internal/termui/scrollbar"
)

// Manager holds the scrollbar models created by one runtime.
type Manager struct {
	mu     sync.RWMutex
	nextID atomic.Uint64
	models map[uint64]*termuisb.Model
}

// NewManager creates a new scrollbar manager for a runtime.
func NewManager() *Manager {
	return &Manager{models: make(map[uint64]*termuisb.Model)}
}

func (m *Manager) register(model *termuisb.Model) uint64 {
	id := m.nextID.Add(1)
	m.mu.Lock()
	m.models[id] = model
	m.mu.Unlock()
	return id
}

func (m *Manager) get(id uint64) *termuisb.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.models[id]
}

// Require returns a CommonJS native module under "scrollmon:termui/scrollbar".
func Require(manager *Manager) func(runtime *goja.Runtime, module *goja.Object) {
	return func(runtime *goja.Runtime, module *goja.Object) {
		exports := runtime.NewObject()
		_ = module.Set("exports", exports)

		_ = exports.Set("new", func(call goja.FunctionCall) goja.Value {
			model := termuisb.New()
			if h := call.Argument(0); !goja.IsUndefined(h) {
				model.ViewportHeight = max(int(h.ToInteger()), 0)
			}
			return newObject(runtime, manager, manager.register(&model))
		})
	}
}

func newObject(runtime *goja.Runtime, manager *Manager, id uint64) *goja.Object {
	obj := runtime.NewObject()
	_ = obj.Set("_id", id)
	_ = obj.Set("_type", "termui/scrollbar")

	// with runs fn against the model, returning obj for chaining.
	with := func(fn func(m *termuisb.Model)) goja.Value {
		if m := manager.get(id); m != nil {
			fn(m)
		}
		return obj
	}
	intArg := func(call goja.FunctionCall) int {
		return int(call.Argument(0).ToInteger())
	}

	_ = obj.Set("setViewportHeight", func(call goja.FunctionCall) goja.Value {
		return with(func(m *termuisb.Model) { m.ViewportHeight = max(intArg(call), 0) })
	})
	_ = obj.Set("setContentHeight", func(call goja.FunctionCall) goja.Value {
		return with(func(m *termuisb.Model) { m.ContentHeight = max(intArg(call), 0) })
	})
	_ = obj.Set("setYOffset", func(call goja.FunctionCall) goja.Value {
		return with(func(m *termuisb.Model) { m.YOffset = intArg(call) })
	})
	_ = obj.Set("setChars", func(call goja.FunctionCall) goja.Value {
		return with(func(m *termuisb.Model) {
			m.ThumbChar = call.Argument(0).String()
			m.TrackChar = call.Argument(1).String()
			if marker := call.Argument(2); !goja.IsUndefined(marker) {
				m.MarkerChar = marker.String()
			}
		})
	})
	_ = obj.Set("setThumbBackground", func(call goja.FunctionCall) goja.Value {
		return with(func(m *termuisb.Model) {
			m.ThumbStyle = m.ThumbStyle.Background(lipgloss.Color(call.Argument(0).String()))
		})
	})
	_ = obj.Set("setTrackForeground", func(call goja.FunctionCall) goja.Value {
		return with(func(m *termuisb.Model) {
			m.TrackStyle = m.TrackStyle.Foreground(lipgloss.Color(call.Argument(0).String()))
		})
	})
	_ = obj.Set("setMarkerForeground", func(call goja.FunctionCall) goja.Value {
		return with(func(m *termuisb.Model) {
			m.MarkerStyle = m.MarkerStyle.Foreground(lipgloss.Color(call.Argument(0).String()))
			if active := call.Argument(1); !goja.IsUndefined(active) {
				m.ActiveMarkerStyle = m.ActiveMarkerStyle.Foreground(lipgloss.Color(active.String()))
			}
		})
	})

	_ = obj.Set("setMarkers", func(call goja.FunctionCall) goja.Value {
		var markers []termuisb.Marker
		if arr, ok := call.Argument(0).(*goja.Object); ok {
			n := int(arr.Get("length").ToInteger())
			for i := range n {
				item := arr.Get(strconv.Itoa(i)).ToObject(runtime)
				markers = append(markers, termuisb.Marker{
					Top:    int(item.Get("top").ToInteger()),
					Bottom: int(item.Get("bottom").ToInteger()),
					Active: item.Get("active") != nil && item.Get("active").ToBoolean(),
				})
			}
		}
		return with(func(m *termuisb.Model) { m.Markers = markers })
	})

	// sync copies the root geometry and the watchers of a scrollmon:monitor.
	_ = obj.Set("sync", func(call goja.FunctionCall) goja.Value {
		mon := monitorArg(runtime, call.Argument(0))
		return with(func(m *termuisb.Model) {
			m.Sync(mon.Root())
			m.SetMarkers(mon.Watchers())
		})
	})

	_ = obj.Set("view", func(goja.FunctionCall) goja.Value {
		if m := manager.get(id); m != nil {
			return runtime.ToValue(m.View())
		}
		return runtime.ToValue("")
	})
	return obj
}

func monitorArg(runtime *goja.Runtime, v goja.Value) *scrollmonitor.Monitor {
	if obj, ok := v.(*goja.Object); ok {
		if raw := obj.Get("_monitor"); raw != nil {
			if mon, ok := raw.Export().(*scrollmonitor.Monitor); ok {
				return mon
			}
		}
	}
	panic(runtime.NewTypeError("sync: argument must be a monitor created by scrollmon:monitor"))
}
