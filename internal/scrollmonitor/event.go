package scrollmonitor

import (
	"errors"
	"fmt"
	"strings"
)

// EventKind identifies one of the notifications a [Watcher] can emit.
type EventKind int

const (
	VisibilityChange EventKind = iota
	EnterViewport
	FullyEnterViewport
	ExitViewport
	PartiallyExitViewport
	LocationChange
	StateChange

	numEventKinds = iota
)

var eventKindNames = [numEventKinds]string{
	VisibilityChange:      "visibilityChange",
	EnterViewport:         "enterViewport",
	FullyEnterViewport:    "fullyEnterViewport",
	ExitViewport:          "exitViewport",
	PartiallyExitViewport: "partiallyExitViewport",
	LocationChange:        "locationChange",
	StateChange:           "stateChange",
}

// String returns the wire name of the kind, e.g. "enterViewport".
func (k EventKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k EventKind) Valid() bool {
	return k >= 0 && k < numEventKinds
}

// EventKinds returns every kind in declaration order.
func EventKinds() []EventKind {
	kinds := make([]EventKind, numEventKinds)
	for i := range kinds {
		kinds[i] = EventKind(i)
	}
	return kinds
}

// ParseEventKind resolves a wire name into an EventKind.
func ParseEventKind(name string) (EventKind, error) {
	for i, n := range eventKindNames {
		if n == name {
			return EventKind(i), nil
		}
	}
	return 0, &InvalidEventKindError{Kind: name}
}

// InvalidEventKindError is returned when a listener is added or removed for
// a kind outside the closed set.
type InvalidEventKindError struct {
	Kind string
}

func (e *InvalidEventKindError) Error() string {
	return fmt.Sprintf("scrollmonitor: invalid event kind %q, valid kinds are: %s",
		e.Kind, strings.Join(eventKindNames[:], ", "))
}

var (
	// ErrGeometryUnavailable is returned by [New] when the root viewport is
	// not ready and offers no way to be notified once it is.
	ErrGeometryUnavailable = errors.New("scrollmonitor: geometry unavailable, delay initialization until the host is ready")

	// ErrDisposed is returned when registering against a disposed monitor.
	ErrDisposed = errors.New("scrollmonitor: monitor disposed")

	// ErrNilTarget is returned when watching a nil element or viewport.
	ErrNilTarget = errors.New("scrollmonitor: nil target")

	// ErrNilCallback is returned when registering a nil listener.
	ErrNilCallback = errors.New("scrollmonitor: nil callback")

	// ErrNonComparableViewport is returned when a container viewport cannot
	// be used as an identity (e.g. a map or slice based implementation).
	ErrNonComparableViewport = errors.New("scrollmonitor: viewport implementation is not comparable")
)

func checkKind(k EventKind) error {
	if !k.Valid() {
		return &InvalidEventKindError{Kind: k.String()}
	}
	return nil
}
