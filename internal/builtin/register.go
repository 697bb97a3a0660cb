// Package builtin wires the native scrollmon JavaScript modules into a
// require registry.
package builtin

import (
	"log/slog"
	"time"

	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"
	viewportmod "github.com/joeycumines/scroll-monitor/internal/builtin/bubbles/viewport"
	monitormod "github.com/joeycumines/scroll-monitor/internal/builtin/scrollmonitor"
	scrollbarmod "github.com/joeycumines/scroll-monitor/internal/builtin/termui/scrollbar"
)

// Prefix is prepended to every module name.
const Prefix = "scrollmon:"

// RegisterResult contains references to managers created during registration.
type RegisterResult struct {
	Monitors  *monitormod.Manager
	Viewports *viewportmod.Manager
	Scrollbar *scrollbarmod.Manager
}

// Register registers all native modules with registry. Monitors created by
// scripts schedule their debounced resize work on loop, which may be nil to
// measure resizes immediately.
func Register(registry *require.Registry, loop *eventloop.EventLoop, logger *slog.Logger, resizeDebounce time.Duration) RegisterResult {
	result := RegisterResult{
		Monitors:  monitormod.NewManager(loop, logger, resizeDebounce),
		Viewports: viewportmod.NewManager(),
		Scrollbar: scrollbarmod.NewManager(),
	}
	registry.RegisterNativeModule(Prefix+"monitor", monitormod.Require(result.Monitors))
	registry.RegisterNativeModule(Prefix+"bubbles/viewport", viewportmod.Require(result.Viewports))
	registry.RegisterNativeModule(Prefix+"termui/scrollbar", scrollbarmod.Require(result.Scrollbar))
	return result
}
