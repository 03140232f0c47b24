package timeslot

import (
	"fmt"
	"time"
)

// Signal is a slot-level notification delivered by the arbiter to the
// SignalCallback of the open session.
type Signal int

// The set of signals is closed. Any other value is treated as a protocol
// violation.
const (
	SignalSlotStart Signal = iota
	SignalRadioActivity
	SignalTimerSafetyDeadline
	SignalTimerExtendDeadline
	SignalExtendSucceeded
	SignalExtendFailed
)

var signalNames = map[Signal]string{
	SignalSlotStart:           "SlotStart",
	SignalRadioActivity:       "RadioActivity",
	SignalTimerSafetyDeadline: "TimerSafetyDeadline",
	SignalTimerExtendDeadline: "TimerExtendDeadline",
	SignalExtendSucceeded:     "ExtendSucceeded",
	SignalExtendFailed:        "ExtendFailed",
}

func (s Signal) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}

	return fmt.Sprintf("Signal(%d)", int(s))
}

// ActionKind tells the arbiter what to do after a signal was handled.
type ActionKind int

// Actions a SignalCallback may return.
const (
	// ActionNone continues the slot unchanged.
	ActionNone ActionKind = iota
	// ActionExtend asks for the current lease to be lengthened.
	ActionExtend
	// ActionRequestAndEnd ends the slot and queues the next lease request.
	ActionRequestAndEnd
	// ActionEnd ends the slot without asking for another one.
	ActionEnd
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "None"
	case ActionExtend:
		return "Extend"
	case ActionRequestAndEnd:
		return "RequestAndEnd"
	case ActionEnd:
		return "End"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is the response of a SignalCallback.
type Action struct {
	Kind ActionKind

	// ExtendBy is set for ActionExtend.
	ExtendBy time.Duration

	// Next is set for ActionRequestAndEnd.
	Next *LeaseRequest
}

// NoAction continues the slot.
func NoAction() Action {
	return Action{Kind: ActionNone}
}

// ExtendAction asks for the lease to be extended by d.
func ExtendAction(d time.Duration) Action {
	return Action{Kind: ActionExtend, ExtendBy: d}
}

// RequestAndEndAction ends the slot and requests the next one.
func RequestAndEndAction(next LeaseRequest) Action {
	return Action{Kind: ActionRequestAndEnd, Next: &next}
}

// EndAction ends the slot.
func EndAction() Action {
	return Action{Kind: ActionEnd}
}
