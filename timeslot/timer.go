package timeslot

import "time"

// LeaseTimer is a countdown timer with two compare channels, both measured
// from the start of the slot. The safety channel marks the point at which
// the slot must be surrendered. The extend channel marks the point at which
// an extension should be asked for.
//
// When a channel fires, the arbiter delivers SignalTimerSafetyDeadline or
// SignalTimerExtendDeadline to the session's callback.
type LeaseTimer interface {
	// Arm clears the counter, programs both channels and starts counting.
	Arm(safety, extend time.Duration)

	// Start resumes counting.
	Start()

	// Stop freezes the counter.
	Stop()

	// Shift moves both channels later by delta.
	Shift(delta time.Duration)

	// ClearPending disarms both channels so that no stale deadline fires
	// after the slot was surrendered.
	ClearPending()

	// Elapsed returns the counter value.
	Elapsed() time.Duration
}

// Lease is the currently granted window. Deadlines are relative to the start
// of the slot.
type Lease struct {
	Active         bool
	Length         time.Duration
	SafetyDeadline time.Duration
	ExtendDeadline time.Duration

	// Extended is the cumulative length added by extensions since the last
	// slot-end.
	Extended time.Duration
}

// ExtendCeiling bounds the cumulative extension of a lease.
const ExtendCeiling = 128 * time.Second
