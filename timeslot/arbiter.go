package timeslot

import (
	"fmt"
	"time"
)

// SignalCallback receives the slot-level signals of a session. It runs at
// the highest priority and must return promptly.
type SignalCallback interface {
	HandleSignal(sig Signal) Action
}

// SessionEvent is a lifecycle notification of the arbiter, delivered outside
// of slots at a lower priority than signals.
type SessionEvent int

// Lifecycle events.
const (
	SessionEventBlocked SessionEvent = iota
	SessionEventCanceled
	SessionEventIdle
	SessionEventClosed
	SessionEventInvalidCallbackReturn
	SessionEventFlashOpSuccess
	SessionEventFlashOpError
)

var sessionEventNames = map[SessionEvent]string{
	SessionEventBlocked:               "Blocked",
	SessionEventCanceled:              "Canceled",
	SessionEventIdle:                  "SessionIdle",
	SessionEventClosed:                "SessionClosed",
	SessionEventInvalidCallbackReturn: "InvalidCallbackReturn",
	SessionEventFlashOpSuccess:        "FlashOpSuccess",
	SessionEventFlashOpError:          "FlashOpError",
}

func (e SessionEvent) String() string {
	if name, ok := sessionEventNames[e]; ok {
		return name
	}

	return fmt.Sprintf("SessionEvent(%d)", int(e))
}

// SessionEventHandler consumes arbiter lifecycle events.
type SessionEventHandler interface {
	OnSessionEvent(evt SessionEvent)
}

// RequestKind selects how the arbiter places a lease.
type RequestKind int

// RequestEarliest asks for the first free window within a timeout.
const RequestEarliest RequestKind = iota

// RequestPriority is the priority the arbiter gives a lease request.
type RequestPriority int

// Request priorities.
const (
	RequestPriorityNormal RequestPriority = iota
	RequestPriorityHigh
)

// HFClockSource tells the arbiter which clock must be running in the slot.
type HFClockSource int

// Clock sources.
const (
	HFClockXtalGuaranteed HFClockSource = iota
	HFClockNoGuarantee
)

// LeaseRequest describes the lease the link asks for.
type LeaseRequest struct {
	Kind     RequestKind
	HFClock  HFClockSource
	Priority RequestPriority
	Length   time.Duration
	Timeout  time.Duration
}

// Arbiter is the external scheduler that owns the radio.
type Arbiter interface {
	// OpenSession starts a session whose signals go to cb.
	OpenSession(cb SignalCallback) error

	// CloseSession ends the session. The arbiter confirms with
	// SessionEventClosed.
	CloseSession() error

	// RequestLease asks for a lease. At most one request is outstanding.
	RequestLease(req LeaseRequest) error
}
