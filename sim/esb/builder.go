package esb

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/sarchlab/slotlink/sim/timing"
)

// Builder can build drivers.
type Builder struct {
	engine   timing.EventScheduler
	irq      IRQRaiser
	cfg      Config
	priority timing.Priority
	logger   zerolog.Logger
}

// MakeBuilder creates a builder with the default config.
func MakeBuilder() Builder {
	return Builder{
		cfg:    DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine timing.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithIRQRaiser sets who is told about radio interrupts.
func (b Builder) WithIRQRaiser(irq IRQRaiser) Builder {
	b.irq = irq
	return b
}

// WithConfig sets the air interface parameters.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithPriority sets the priority radio activity completes at.
func (b Builder) WithPriority(p timing.Priority) Builder {
	b.priority = p
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger zerolog.Logger) Builder {
	b.logger = logger
	return b
}

// Build creates a driver.
func (b Builder) Build(name string) *Driver {
	if b.engine == nil {
		panic("esb: engine is not set")
	}

	if err := b.cfg.Validate(); err != nil {
		panic(err)
	}

	return &Driver{
		name:     name,
		engine:   b.engine,
		irq:      b.irq,
		cfg:      b.cfg,
		priority: b.priority,
		logger:   b.logger.With().Str("driver", name).Logger(),
		rand:     rand.New(rand.NewSource(b.cfg.Seed)),
	}
}
