package timeslot

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sarchlab/slotlink/sim/hooking"
	"github.com/sarchlab/slotlink/sim/irq"
)

// Positions at which a Link invokes its hooks. Item carries the Lease, the
// Payload or the SessionEvent concerned.
var (
	HookPosLeaseRequested = &hooking.HookPos{Name: "LeaseRequested"}
	HookPosSlotStart      = &hooking.HookPos{Name: "SlotStart"}
	HookPosLeaseExtended  = &hooking.HookPos{Name: "LeaseExtended"}
	HookPosSlotEnd        = &hooking.HookPos{Name: "SlotEnd"}
	HookPosLeaseLost      = &hooking.HookPos{Name: "LeaseLost"}
	HookPosTxAttempt      = &hooking.HookPos{Name: "TxAttempt"}
	HookPosTxDelivered    = &hooking.HookPos{Name: "TxDelivered"}
	HookPosTxDropped      = &hooking.HookPos{Name: "TxDropped"}
	HookPosRxDelivered    = &hooking.HookPos{Name: "RxDelivered"}
)

// LinkState tells what the link driver was last told to do.
type LinkState int

// Link states.
const (
	LinkIdle LinkState = iota
	LinkReceiving
	LinkTransmitting
)

func (s LinkState) String() string {
	switch s {
	case LinkIdle:
		return "Idle"
	case LinkReceiving:
		return "Receiving"
	case LinkTransmitting:
		return "Transmitting"
	default:
		return fmt.Sprintf("LinkState(%d)", int(s))
	}
}

// SessionState tells whether the link holds a session with the arbiter.
type SessionState int

// Session states.
const (
	SessionClosed SessionState = iota
	SessionOpen
)

func (s SessionState) String() string {
	if s == SessionOpen {
		return "Open"
	}

	return "Closed"
}

// RxHandler receives packets delivered by the link, in arrival order.
type RxHandler interface {
	OnReceive(p Payload)
}

// RxHandlerFunc adapts a function to RxHandler.
type RxHandlerFunc func(p Payload)

// OnReceive calls f(p).
func (f RxHandlerFunc) OnReceive(p Payload) {
	f(p)
}

// Stats is a snapshot of the link counters.
type Stats struct {
	Session       SessionState
	State         LinkState
	Halted        bool
	QueueSize     int
	QueueCapacity int
	Attempts      int
	Lease         Lease

	Slots          uint64
	Extensions     uint64
	ExtendDenied   uint64
	ExtendFailed   uint64
	Blocked        uint64
	Canceled       uint64
	LeasesLost     uint64
	TxAttempts     uint64
	TxDelivered    uint64
	TxFailed       uint64
	TxDropped      uint64
	RxDelivered    uint64
	LeaseRequested uint64
}

// Link multiplexes a packet link onto leased radio time.
//
// A Link is built once with a Builder and used through Start, Send and Stop
// by the application, HandleSignal by the arbiter, OnSessionEvent by the
// arbiter's event dispatcher and the LinkEventHandler by the link driver.
type Link struct {
	hooking.HookableBase

	name   string
	cfg    Config
	logger zerolog.Logger

	arbiter Arbiter
	driver  LinkDriver
	radio   Radio
	timer   LeaseTimer
	rx      RxHandler
	fatal   FatalHandler

	slotBegin  *irq.Line
	slotEnd    *irq.Line
	rxDelivery *irq.Line

	// Everything below is guarded by cs.
	cs      irq.CriticalRegion
	state   LinkState
	session SessionState
	queue   *TxQueue
	lease   Lease
	addr    Addressing
	halted  bool
	stats   Stats
}

// Name returns the name of the link.
func (l *Link) Name() string {
	return l.name
}

// Config returns the configuration the link was built with.
func (l *Link) Config() Config {
	return l.cfg
}

// State returns the current link state.
func (l *Link) State() LinkState {
	l.cs.Enter()
	defer l.cs.Exit()

	return l.state
}

// Stats returns a snapshot of the counters.
func (l *Link) Stats() Stats {
	l.cs.Enter()
	defer l.cs.Exit()

	s := l.stats
	s.Session = l.session
	s.State = l.state
	s.Halted = l.halted
	s.QueueSize = l.queue.Size()
	s.QueueCapacity = l.queue.Capacity()
	s.Attempts = l.queue.Attempts()
	s.Lease = l.lease

	return s
}

func (l *Link) earliestRequest() LeaseRequest {
	return LeaseRequest{
		Kind:     RequestEarliest,
		HFClock:  HFClockXtalGuaranteed,
		Priority: RequestPriorityNormal,
		Length:   l.cfg.SlotLength,
		Timeout:  l.cfg.RequestTimeout,
	}
}

func (l *Link) isHalted() bool {
	l.cs.Enter()
	defer l.cs.Exit()

	return l.halted
}

// halt stops all further progress and reports err once. It must be called
// outside of the critical region.
func (l *Link) halt(op string, err error) {
	l.cs.Enter()
	if l.halted {
		l.cs.Exit()
		return
	}
	l.halted = true
	l.lease.Active = false
	discarded := l.queue.Size()
	l.queue.Clear()
	l.cs.Exit()

	l.slotBegin.Disable()
	l.slotEnd.Disable()
	l.rxDelivery.Disable()

	fatalErr := &FatalError{Link: l.name, Op: op, Err: err}
	l.logger.Error().
		Err(err).
		Str("op", op).
		Int("discarded", discarded).
		Msg("link halted")
	l.fatal(fatalErr)
}

func (l *Link) invokeHook(pos *hooking.HookPos, item, detail interface{}) {
	if l.NumHooks() == 0 {
		return
	}

	l.InvokeHook(hooking.HookCtx{
		Domain: l,
		Pos:    pos,
		Item:   item,
		Detail: detail,
	})
}
