package testutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll(t *testing.T) {
	t.Parallel()
	var n atomic.Int32
	err := Poll(context.Background(), func() bool { return n.Add(1) >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int32(3), n.Load())
}

func TestPoll_Timeout(t *testing.T) {
	t.Parallel()
	err := Poll(context.Background(), func() bool { return false }, 20*time.Millisecond, 5*time.Millisecond)
	require.EqualError(t, err, "timeout waiting for target state (type bool, threshold: 20ms)")
}

func TestWaitForState_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, err := WaitForState(ctx, func() int { return 1 }, func(i int) bool { return i > 1 }, time.Second, time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, v)
}

func TestEventLoop_OnLoop(t *testing.T) {
	t.Parallel()
	loop := NewEventLoop(t, nil)
	var got int64
	loop.OnLoop(t, func(vm *goja.Runtime) error {
		v, err := vm.RunString(`6 * 7`)
		if err != nil {
			return err
		}
		got = v.ToInteger()
		return nil
	})
	assert.Equal(t, int64(42), got)
}
