package timeslot

import (
	"github.com/rs/zerolog"

	"github.com/sarchlab/slotlink/sim/irq"
	"github.com/sarchlab/slotlink/sim/timing"
)

// Execution priorities. Signals from the arbiter preempt everything. The
// slot-begin and slot-end phases share one level and never run while a
// signal is being handled. Receive delivery runs last.
const (
	SignalPriority   timing.Priority = 0
	PhasePriority    timing.Priority = 2
	DeliveryPriority timing.Priority = 3
)

// Builder can build links.
type Builder struct {
	engine  timing.EventScheduler
	cfg     Config
	logger  zerolog.Logger
	arbiter Arbiter
	driver  LinkDriver
	radio   Radio
	timer   LeaseTimer
	rx      RxHandler
	fatal   FatalHandler
}

// MakeBuilder creates a builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg:    DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithEngine sets the engine that runs the phases.
func (b Builder) WithEngine(engine timing.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithConfig sets the timing and link parameters.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger zerolog.Logger) Builder {
	b.logger = logger
	return b
}

// WithArbiter sets the arbiter that grants leases.
func (b Builder) WithArbiter(a Arbiter) Builder {
	b.arbiter = a
	return b
}

// WithLinkDriver sets the packet driver.
func (b Builder) WithLinkDriver(d LinkDriver) Builder {
	b.driver = d
	return b
}

// WithRadio sets the radio power domain.
func (b Builder) WithRadio(r Radio) Builder {
	b.radio = r
	return b
}

// WithLeaseTimer sets the timer that tracks the lease deadlines.
func (b Builder) WithLeaseTimer(t LeaseTimer) Builder {
	b.timer = t
	return b
}

// WithRxHandler sets where received packets go.
func (b Builder) WithRxHandler(h RxHandler) Builder {
	b.rx = h
	return b
}

// WithFatalHandler sets what happens when the link halts. By default the
// process exits through ExitOnFatal.
func (b Builder) WithFatalHandler(h FatalHandler) Builder {
	b.fatal = h
	return b
}

// Build creates a link.
func (b Builder) Build(name string) *Link {
	b.mustBeComplete()

	if err := b.cfg.Validate(); err != nil {
		panic(err)
	}

	l := &Link{
		name:    name,
		cfg:     b.cfg,
		logger:  b.logger.With().Str("link", name).Logger(),
		arbiter: b.arbiter,
		driver:  b.driver,
		radio:   b.radio,
		timer:   b.timer,
		rx:      b.rx,
		fatal:   b.fatal,
		queue:   NewTxQueue(name+".TxQueue", b.cfg.QueueCapacity),
		addr:    b.cfg.Address,
	}

	if l.fatal == nil {
		l.fatal = ExitOnFatal(l.logger)
	}

	ctrl := irq.NewController(b.engine)
	l.slotBegin = ctrl.NewLine(name+".SlotBegin", PhasePriority, l.runSlotBegin)
	l.slotEnd = ctrl.NewLine(name+".SlotEnd", PhasePriority, l.runSlotEnd)
	l.rxDelivery = ctrl.NewLine(
		name+".RxDelivery", DeliveryPriority, l.runRxDelivery)

	for _, line := range ctrl.Lines() {
		line.ClearPending()
		line.Enable()
	}

	return l
}

func (b Builder) mustBeComplete() {
	switch {
	case b.engine == nil:
		panic("timeslot: engine is not set")
	case b.arbiter == nil:
		panic("timeslot: arbiter is not set")
	case b.driver == nil:
		panic("timeslot: link driver is not set")
	case b.radio == nil:
		panic("timeslot: radio is not set")
	case b.timer == nil:
		panic("timeslot: lease timer is not set")
	}
}
