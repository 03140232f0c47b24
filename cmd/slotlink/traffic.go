package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/sarchlab/slotlink/sim/timing"
	"github.com/sarchlab/slotlink/timeslot"
)

// appPriority places the application below every link context.
const appPriority = timeslot.DeliveryPriority + 1

type sender interface {
	Send(data []byte) error
}

type sendEvent struct {
	timing.EventBase
}

// trafficGenerator offers the link a numbered packet at a fixed interval.
type trafficGenerator struct {
	engine   timing.EventScheduler
	link     sender
	interval time.Duration
	size     int

	seq      uint64
	accepted uint64
	rejected uint64
	stopped  bool
}

func newTrafficGenerator(
	engine timing.EventScheduler,
	link sender,
	interval time.Duration,
	size int,
) *trafficGenerator {
	return &trafficGenerator{
		engine:   engine,
		link:     link,
		interval: interval,
		size:     size,
	}
}

func (g *trafficGenerator) Name() string {
	return "Traffic"
}

func (g *trafficGenerator) start() {
	if g.interval == 0 {
		return
	}

	g.scheduleNext()
}

func (g *trafficGenerator) scheduleNext() {
	g.engine.Schedule(&sendEvent{
		EventBase: timing.MakeEventBase(
			g.engine.Now()+g.interval, g, appPriority),
	})
}

// Handle sends one packet. Packets refused because the queue is full are
// counted and not retried.
func (g *trafficGenerator) Handle(e timing.Event) error {
	if _, ok := e.(*sendEvent); !ok {
		return fmt.Errorf("traffic: unexpected event %T", e)
	}

	err := g.link.Send(g.packet())

	switch {
	case err == nil:
		g.accepted++
	case errors.Is(err, timeslot.ErrQueueFull):
		g.rejected++
	case errors.Is(err, timeslot.ErrHalted):
		g.stopped = true
		return nil
	default:
		return fmt.Errorf("traffic: send: %w", err)
	}

	g.seq++
	g.scheduleNext()

	return nil
}

func (g *trafficGenerator) packet() []byte {
	data := make([]byte, g.size)
	for i := range data {
		data[i] = byte(g.seq >> (8 * (i % 8)))
	}

	return data
}
