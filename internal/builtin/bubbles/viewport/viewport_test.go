package viewport

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/dop251/goja"
	monitormod "github.com/joeycumines/scroll-monitor/internal/builtin/scrollmonitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRuntime(t *testing.T, manager *Manager) *goja.Runtime {
	t.Helper()
	rt := goja.New()
	modules := map[string]func(*goja.Runtime, *goja.Object){
		"scrollmon:bubbles/viewport": Require(manager),
		"scrollmon:monitor":          monitormod.Require(monitormod.NewManager(nil, slog.New(slog.DiscardHandler), 0)),
	}
	require.NoError(t, rt.Set("require", func(call goja.FunctionCall) goja.Value {
		loader, ok := modules[call.Argument(0).String()]
		if !ok {
			return goja.Undefined()
		}
		mod := rt.NewObject()
		loader(rt, mod)
		return mod.Get("exports")
	}))
	_, err := rt.RunString(`
		const viewport = require('scrollmon:bubbles/viewport');
		const lines = [];
		for (let i = 0; i < 30; i++) lines.push('line ' + i);
	`)
	require.NoError(t, err)
	return rt
}

func run(t *testing.T, rt *goja.Runtime, script string) goja.Value {
	t.Helper()
	v, err := rt.RunString(script)
	require.NoError(t, err)
	return v
}

func TestJS_Geometry(t *testing.T) {
	manager := NewManager()
	rt := setupRuntime(t, manager)
	run(t, rt, `const vp = viewport.new(20, 10).setContent(lines);`)
	assert.Equal(t, 1, manager.Len())

	assert.Equal(t, int64(30), run(t, rt, `vp.contentHeight()`).ToInteger())
	assert.Equal(t, int64(10), run(t, rt, `vp.viewportHeight()`).ToInteger())
	assert.Equal(t, int64(0), run(t, rt, `vp.scrollTop()`).ToInteger())
	assert.True(t, run(t, rt, `vp.atTop()`).ToBoolean())

	assert.Equal(t, int64(10), run(t, rt, `vp.pageDown().scrollTop()`).ToInteger())
	assert.Equal(t, int64(5), run(t, rt, `vp.halfPageUp().yOffset()`).ToInteger())
	assert.Equal(t, int64(20), run(t, rt, `vp.gotoBottom().yOffset()`).ToInteger())
	assert.True(t, run(t, rt, `vp.atBottom()`).ToBoolean())
	assert.Equal(t, int64(18), run(t, rt, `vp.lineUp(2).yOffset()`).ToInteger())

	view := run(t, rt, `vp.view()`).String()
	assert.True(t, strings.HasPrefix(view, "line 18"))
	assert.Len(t, strings.Split(view, "\n"), 10)

	// shrinking the content clamps the offset
	assert.Equal(t, int64(2), run(t, rt, `vp.setContent(lines.slice(0, 12)).yOffset()`).ToInteger())
	assert.Equal(t, int64(0), run(t, rt, `vp.setHeight(20).yOffset()`).ToInteger())

	run(t, rt, `vp.close()`)
	assert.Equal(t, 0, manager.Len())
	_, err := rt.RunString(`vp.yOffset()`)
	var exc *goja.Exception
	require.ErrorAs(t, err, &exc)
	assert.Contains(t, exc.Error(), "model has been closed")
}

func TestJS_MonitorContainer(t *testing.T) {
	rt := setupRuntime(t, NewManager())
	v := run(t, rt, `
		const log = [];
		const vp = viewport.new(20, 10).setContent(lines);
		const root = require('scrollmon:monitor').create(vp);
		const w = root.watch(vp.element(20, 25));
		w.enterViewport(() => log.push('enter'));
		w.fullyEnterViewport(() => log.push('fully'));
		w.exitViewport(() => log.push('exit'));
		vp.scrollDown(15);
		root.handleScroll();
		vp.gotoTop();
		root.handleScroll();
		[log.join(','), w.top, w.bottom, w.height, root.documentHeight].join('|');
	`)
	assert.Equal(t, "enter,fully,exit|20|25|5|30", v.String())
}

func TestJS_ElementDefaultsToOneLine(t *testing.T) {
	rt := setupRuntime(t, NewManager())
	v := run(t, rt, `
		const vp = viewport.new(20, 5).setContent(lines).setYOffset(4);
		const r = vp.element(7).getBoundingClientRect();
		[r.top, r.bottom, r.height].join(',');
	`)
	assert.Equal(t, "3,4,1", v.String())
}

func TestClampYOffset(t *testing.T) {
	vp := viewport.New(10, 5)
	vp.SetContent(strings.Repeat("x\n", 9) + "x")
	vp.SetYOffset(5)
	require.Equal(t, 5, vp.YOffset)

	vp.Height = 8
	clampYOffset(&vp)
	assert.Equal(t, 2, vp.YOffset)

	vp.Height = 20
	clampYOffset(&vp)
	assert.Equal(t, 0, vp.YOffset)
}
