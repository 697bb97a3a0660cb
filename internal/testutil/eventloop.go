// Package testutil provides helpers shared by the scrollmon tests.
package testutil

import (
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"
)

// LoopTimeout bounds every OnLoop call.
const LoopTimeout = 5 * time.Second

// EventLoop is a started goja_nodejs event loop, stopped on test cleanup.
type EventLoop struct {
	*eventloop.EventLoop
	Registry *require.Registry
}

// NewEventLoop starts an event loop with a fresh require registry. register,
// if non-nil, runs before the loop starts so native modules can be added.
func NewEventLoop(t testing.TB, register func(registry *require.Registry, loop *eventloop.EventLoop)) *EventLoop {
	t.Helper()
	registry := require.NewRegistry()
	loop := eventloop.NewEventLoop(eventloop.WithRegistry(registry))
	if register != nil {
		register(registry, loop)
	}
	loop.Start()
	t.Cleanup(func() { loop.Stop() })
	return &EventLoop{EventLoop: loop, Registry: registry}
}

// OnLoop runs fn on the loop goroutine and waits for it, failing the test
// on error or timeout.
func (l *EventLoop) OnLoop(t testing.TB, fn func(vm *goja.Runtime) error) {
	t.Helper()
	done := make(chan error, 1)
	if !l.RunOnLoop(func(vm *goja.Runtime) { done <- fn(vm) }) {
		t.Fatal("event loop is not running")
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(LoopTimeout):
		t.Fatalf("event loop job timed out after %v", LoopTimeout)
	}
}
