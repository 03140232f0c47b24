package timing

import (
	"time"

	"github.com/rs/xid"

	"github.com/sarchlab/slotlink/sim/hooking"
)

// VTime is a point on the simulated timeline, measured from the moment the
// engine was created. It shares its representation with time.Duration so
// that lease lengths and margins can be added to it directly.
type VTime = time.Duration

// Priority orders events that fire at the same VTime. Like an interrupt
// controller, a smaller number is more urgent; PriorityHighest runs first.
type Priority int

// PriorityHighest is the most urgent priority level.
const PriorityHighest Priority = 0

// An Event is something going to happen in the future.
type Event interface {
	// ID returns a unique identifier of the event.
	ID() string

	// Time returns the time that the event should happen.
	Time() VTime

	// Handler returns the handler that should handle the event.
	Handler() Handler

	// Priority tells which of the same-time events runs first.
	Priority() Priority
}

// HookPosBeforeEvent is a hook position that triggers before handling an event.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after handling an event.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

// EventBase provides the basic fields and getters for other events.
type EventBase struct {
	id       string
	time     VTime
	handler  Handler
	priority Priority
}

// MakeEventBase creates an EventBase to embed, with a fresh ID and the given
// priority.
func MakeEventBase(t VTime, handler Handler, priority Priority) EventBase {
	return EventBase{
		id:       xid.New().String(),
		time:     t,
		handler:  handler,
		priority: priority,
	}
}

// ID returns the ID of the event.
func (e EventBase) ID() string {
	return e.id
}

// Time return the time that the event is going to happen.
func (e EventBase) Time() VTime {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// Priority returns the priority of the event.
func (e EventBase) Priority() Priority {
	return e.priority
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}
