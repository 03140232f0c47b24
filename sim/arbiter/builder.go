package arbiter

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/sarchlab/slotlink/sim/hwtimer"
	"github.com/sarchlab/slotlink/sim/timing"
)

// Builder can build arbiters.
type Builder struct {
	engine         timing.EventScheduler
	timer          *hwtimer.Timer
	cfg            Config
	signalPriority timing.Priority
	eventPriority  timing.Priority
	logger         zerolog.Logger
}

// MakeBuilder creates a builder with the default config. Signals run at
// the highest priority and lifecycle events one level below.
func MakeBuilder() Builder {
	return Builder{
		cfg:            DefaultConfig(),
		signalPriority: timing.PriorityHighest,
		eventPriority:  timing.PriorityHighest + 1,
		logger:         zerolog.Nop(),
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine timing.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithLeaseTimer sets the timer whose matches become signals.
func (b Builder) WithLeaseTimer(t *hwtimer.Timer) Builder {
	b.timer = t
	return b
}

// WithConfig sets the config.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithPriorities sets the priorities of signals and lifecycle events.
func (b Builder) WithPriorities(signal, event timing.Priority) Builder {
	b.signalPriority = signal
	b.eventPriority = event
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger zerolog.Logger) Builder {
	b.logger = logger
	return b
}

// Build creates an arbiter.
func (b Builder) Build(name string) *Arbiter {
	if b.engine == nil {
		panic("arbiter: engine is not set")
	}

	if err := b.cfg.Validate(); err != nil {
		panic(err)
	}

	a := &Arbiter{
		name:           name,
		engine:         b.engine,
		timer:          b.timer,
		cfg:            b.cfg,
		signalPriority: b.signalPriority,
		eventPriority:  b.eventPriority,
		logger:         b.logger.With().Str("arbiter", name).Logger(),
		rand:           rand.New(rand.NewSource(b.cfg.Seed)),
	}

	if b.timer != nil {
		b.timer.SetSink(a)
	}

	return a
}
