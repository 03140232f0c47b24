// Package arbiter simulates the scheduler that owns the radio and lends it
// out in slots.
package arbiter

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sarchlab/slotlink/sim/hwtimer"
	"github.com/sarchlab/slotlink/sim/timing"
	"github.com/sarchlab/slotlink/timeslot"
)

var (
	// ErrSessionOpen is returned by OpenSession when a session exists.
	ErrSessionOpen = errors.New("arbiter: session already open")

	// ErrNoSession is returned by calls that need an open session.
	ErrNoSession = errors.New("arbiter: no session")

	// ErrRequestPending is returned when a request or a slot is already
	// outstanding.
	ErrRequestPending = errors.New("arbiter: request already pending")

	// ErrInvalidLength is returned for slot lengths the arbiter cannot
	// place.
	ErrInvalidLength = errors.New("arbiter: invalid slot length")
)

// Stats counts what the arbiter did.
type Stats struct {
	Requests       uint64
	Grants         uint64
	Blocked        uint64
	Canceled       uint64
	Extensions     uint64
	ExtendFailures uint64
	Signals        uint64
	InvalidReturns uint64
	Overruns       uint64
	StrayIRQs      uint64
	Idle           uint64
}

// Arbiter implements timeslot.Arbiter.
//
// Slot signals run at the signal priority. Lifecycle events are delivered
// as separate events at the event priority. The callback is never invoked
// with the lock held.
type Arbiter struct {
	name           string
	engine         timing.EventScheduler
	timer          *hwtimer.Timer
	cfg            Config
	signalPriority timing.Priority
	eventPriority  timing.Priority
	logger         zerolog.Logger

	lock       sync.Mutex
	rand       *rand.Rand
	cb         timeslot.SignalCallback
	open       bool
	requested  bool
	reqGen     uint64
	slotActive bool
	slotGen    uint64
	slotStart  timing.VTime
	slotLength time.Duration
	extended   time.Duration
	stats      Stats
}

// Name returns the name of the arbiter.
func (a *Arbiter) Name() string {
	return a.name
}

// Stats returns a snapshot of the counters.
func (a *Arbiter) Stats() Stats {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.stats
}

// InSlot tells if a slot is in progress.
func (a *Arbiter) InSlot() bool {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.slotActive
}

// OpenSession starts a session. If cb also implements
// timeslot.SessionEventHandler it receives the lifecycle events.
func (a *Arbiter) OpenSession(cb timeslot.SignalCallback) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.open {
		return ErrSessionOpen
	}

	a.cb = cb
	a.open = true

	return nil
}

// CloseSession ends the session. An outstanding request is dropped and
// SessionEventClosed follows.
func (a *Arbiter) CloseSession() error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if !a.open {
		return ErrNoSession
	}

	a.open = false
	a.requested = false
	a.reqGen++
	a.endSlotLocked()
	a.notifyLocked(timeslot.SessionEventClosed)

	return nil
}

// RequestLease asks for a slot.
func (a *Arbiter) RequestLease(req timeslot.LeaseRequest) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if !a.open {
		return ErrNoSession
	}

	if a.requested || a.slotActive {
		return ErrRequestPending
	}

	return a.requestLocked(req)
}

func (a *Arbiter) requestLocked(req timeslot.LeaseRequest) error {
	if req.Length < MinSlotLength || req.Length > MaxSlotLength {
		return fmt.Errorf("%w: %s", ErrInvalidLength, req.Length)
	}

	a.stats.Requests++
	a.requested = true
	a.reqGen++

	gap := a.cfg.MinGap
	if spread := a.cfg.MaxGap - a.cfg.MinGap; spread > 0 {
		gap += time.Duration(a.rand.Int63n(int64(spread) + 1))
	}

	now := a.engine.Now()
	if a.rand.Float64() < a.cfg.BlockProbability ||
		(req.Timeout > 0 && gap > req.Timeout) {
		a.engine.Schedule(&blockEvent{
			EventBase: timing.MakeEventBase(
				now+a.cfg.MinGap, a, a.signalPriority),
			gen: a.reqGen,
		})

		return nil
	}

	a.engine.Schedule(&grantEvent{
		EventBase: timing.MakeEventBase(now+gap, a, a.signalPriority),
		gen:       a.reqGen,
		length:    req.Length,
	})

	return nil
}

// OnCompare turns a lease timer match into a signal.
func (a *Arbiter) OnCompare(ch hwtimer.Channel) {
	sig := timeslot.SignalTimerExtendDeadline
	if ch == hwtimer.ChannelSafety {
		sig = timeslot.SignalTimerSafetyDeadline
	}

	a.signalInSlot(sig)
}

// RaiseRadioIRQ forwards radio activity to the slot owner.
func (a *Arbiter) RaiseRadioIRQ() {
	a.signalInSlot(timeslot.SignalRadioActivity)
}

func (a *Arbiter) signalInSlot(sig timeslot.Signal) {
	a.lock.Lock()
	active := a.slotActive
	if !active && sig == timeslot.SignalRadioActivity {
		a.stats.StrayIRQs++
	}
	a.lock.Unlock()

	if active {
		a.signal(sig)
	}
}

// signal delivers sig to the session and carries out the returned action.
func (a *Arbiter) signal(sig timeslot.Signal) {
	a.lock.Lock()
	cb := a.cb
	a.stats.Signals++
	a.lock.Unlock()

	if cb == nil {
		return
	}

	action := cb.HandleSignal(sig)

	a.logger.Trace().
		Stringer("signal", sig).
		Stringer("action", action.Kind).
		Msg("signal")

	a.apply(action)
}

func (a *Arbiter) apply(action timeslot.Action) {
	switch action.Kind {
	case timeslot.ActionNone:
	case timeslot.ActionExtend:
		a.extend(action.ExtendBy)
	case timeslot.ActionRequestAndEnd:
		a.requestAndEnd(action.Next)
	case timeslot.ActionEnd:
		a.end()
	default:
		a.reject(fmt.Sprintf("unknown action %s", action.Kind))
	}
}

func (a *Arbiter) extend(by time.Duration) {
	a.lock.Lock()

	if !a.slotActive || by <= 0 ||
		a.extended+by > timeslot.ExtendCeiling {
		a.lock.Unlock()
		a.reject(fmt.Sprintf("extension by %s", by))

		return
	}

	if a.rand.Float64() < a.cfg.ExtendFailProbability {
		a.stats.ExtendFailures++
		a.lock.Unlock()
		a.signal(timeslot.SignalExtendFailed)

		return
	}

	a.stats.Extensions++
	a.extended += by
	a.slotLength += by
	a.scheduleOverrunLocked()
	a.lock.Unlock()

	a.signal(timeslot.SignalExtendSucceeded)
}

func (a *Arbiter) requestAndEnd(next *timeslot.LeaseRequest) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.endSlotLocked()

	if next == nil {
		a.rejectLocked("request and end without a request")
		return
	}

	if !a.open {
		return
	}

	if err := a.requestLocked(*next); err != nil {
		a.rejectLocked(err.Error())
	}
}

func (a *Arbiter) end() {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.endSlotLocked()

	if a.open && !a.requested {
		a.stats.Idle++
		a.notifyLocked(timeslot.SessionEventIdle)
	}
}

func (a *Arbiter) reject(reason string) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.endSlotLocked()
	a.rejectLocked(reason)
}

func (a *Arbiter) rejectLocked(reason string) {
	a.stats.InvalidReturns++
	a.logger.Warn().Str("reason", reason).Msg("invalid callback return")
	a.notifyLocked(timeslot.SessionEventInvalidCallbackReturn)
}

func (a *Arbiter) endSlotLocked() {
	a.slotActive = false
	a.slotGen++
}

func (a *Arbiter) scheduleOverrunLocked() {
	a.slotGen++
	a.engine.Schedule(&overrunEvent{
		EventBase: timing.MakeEventBase(
			a.slotStart+a.slotLength, a, a.signalPriority),
		gen: a.slotGen,
	})
}

func (a *Arbiter) notifyLocked(evt timeslot.SessionEvent) {
	a.engine.Schedule(&sessionEvent{
		EventBase: timing.MakeEventBase(a.engine.Now(), a, a.eventPriority),
		evt:       evt,
		cb:        a.cb,
	})
}

// Handle processes the arbiter's own events.
func (a *Arbiter) Handle(e timing.Event) error {
	switch evt := e.(type) {
	case *grantEvent:
		a.handleGrant(evt)
	case *blockEvent:
		a.handleBlock(evt)
	case *overrunEvent:
		a.handleOverrun(evt)
	case *sessionEvent:
		a.handleSessionEvent(evt)
	default:
		return fmt.Errorf("arbiter: cannot handle %T", e)
	}

	return nil
}

func (a *Arbiter) handleGrant(evt *grantEvent) {
	a.lock.Lock()

	if evt.gen != a.reqGen || !a.requested || !a.open {
		a.lock.Unlock()
		return
	}

	a.requested = false

	if a.rand.Float64() < a.cfg.CancelProbability {
		a.stats.Canceled++
		a.notifyLocked(timeslot.SessionEventCanceled)
		a.lock.Unlock()

		return
	}

	a.stats.Grants++
	a.slotActive = true
	a.slotStart = a.engine.Now()
	a.slotLength = evt.length
	a.extended = 0
	a.scheduleOverrunLocked()
	a.lock.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer.ClearPending()
	}

	a.signal(timeslot.SignalSlotStart)
}

func (a *Arbiter) handleBlock(evt *blockEvent) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if evt.gen != a.reqGen || !a.requested || !a.open {
		return
	}

	a.requested = false
	a.stats.Blocked++
	a.notifyLocked(timeslot.SessionEventBlocked)
}

// handleOverrun takes the radio back from a session that kept it past the
// end of its slot.
func (a *Arbiter) handleOverrun(evt *overrunEvent) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if evt.gen != a.slotGen || !a.slotActive {
		return
	}

	a.stats.Overruns++
	a.logger.Error().
		Dur("length", a.slotLength).
		Msg("session overran its slot")
	a.endSlotLocked()
	a.notifyLocked(timeslot.SessionEventCanceled)
}

func (a *Arbiter) handleSessionEvent(evt *sessionEvent) {
	a.lock.Lock()
	if evt.evt == timeslot.SessionEventClosed && !a.open {
		a.cb = nil
	}
	a.lock.Unlock()

	h, ok := evt.cb.(timeslot.SessionEventHandler)
	if !ok {
		return
	}

	a.logger.Debug().Stringer("session_event", evt.evt).Msg("session event")
	h.OnSessionEvent(evt.evt)
}

type grantEvent struct {
	timing.EventBase
	gen    uint64
	length time.Duration
}

type blockEvent struct {
	timing.EventBase
	gen uint64
}

type overrunEvent struct {
	timing.EventBase
	gen uint64
}

type sessionEvent struct {
	timing.EventBase
	evt timeslot.SessionEvent
	cb  timeslot.SignalCallback
}
