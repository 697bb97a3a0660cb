package scrollmonitor

import "time"

// DefaultResizeDebounce is the quiet period after the last resize before
// locations are recalculated.
const DefaultResizeDebounce = 100 * time.Millisecond

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop prevents the callback from running, reporting whether it was
	// still pending.
	Stop() bool
}

// Scheduler runs fn after d. fn must be invoked on the goroutine that owns
// the monitor: hosts with an event loop post it back onto the loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SchedulerFunc adapts a function to [Scheduler].
type SchedulerFunc func(d time.Duration, fn func()) Timer

// AfterFunc implements Scheduler.
func (f SchedulerFunc) AfterFunc(d time.Duration, fn func()) Timer {
	return f(d, fn)
}

// TimeScheduler schedules with [time.AfterFunc]. The callback runs on its own
// goroutine, so it is only suitable for hosts that serialize monitor access
// themselves.
var TimeScheduler Scheduler = SchedulerFunc(func(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
})

// debouncer runs fn once the trigger has been quiet for delay. Every trigger
// cancels the pending run and schedules a new one.
type debouncer struct {
	scheduler  Scheduler
	delay      time.Duration
	fn         func()
	timer      Timer
	generation uint64
}

func (d *debouncer) trigger() {
	d.cancel()
	gen := d.generation
	t := d.scheduler.AfterFunc(d.delay, func() {
		// a Stop that lost the race still must not run a stale callback
		if gen != d.generation {
			return
		}
		d.timer = nil
		d.generation++
		d.fn()
	})
	if gen == d.generation {
		d.timer = t
	}
}

func (d *debouncer) cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
}

func (d *debouncer) pending() bool {
	return d.timer != nil
}
