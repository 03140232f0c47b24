// Package irq models software-triggered interrupt lines on top of the event
// engine.
//
// A Line is an execution context with a fixed priority. Pending a line asks
// for its handler to run at the current time. The engine orders same-time
// events by priority, so a handler pended from a more urgent context runs
// only after that context returns, and before any less urgent line that is
// also pending. Pending a line that is already pending has no extra effect,
// the same as setting an interrupt pending bit twice.
package irq

import (
	"sync"

	"github.com/sarchlab/slotlink/sim/timing"
)

// Controller owns a set of lines that share one engine.
type Controller struct {
	engine timing.EventScheduler

	lock  sync.Mutex
	lines []*Line
}

// NewController creates a controller that schedules on the given engine.
func NewController(engine timing.EventScheduler) *Controller {
	return &Controller{engine: engine}
}

// NewLine registers a line. The line starts disabled with nothing pending.
func (c *Controller) NewLine(
	name string,
	priority timing.Priority,
	handler func(),
) *Line {
	l := &Line{
		name:     name,
		priority: priority,
		handler:  handler,
		ctrl:     c,
	}

	c.lock.Lock()
	c.lines = append(c.lines, l)
	c.lock.Unlock()

	return l
}

// Lines returns all the registered lines.
func (c *Controller) Lines() []*Line {
	c.lock.Lock()
	defer c.lock.Unlock()

	lines := make([]*Line, len(c.lines))
	copy(lines, c.lines)

	return lines
}

// A Line is a software-triggered execution context.
type Line struct {
	name     string
	priority timing.Priority
	handler  func()
	ctrl     *Controller

	lock      sync.Mutex
	enabled   bool
	pending   bool
	scheduled bool
	runs      uint64
}

// Name returns the name of the line.
func (l *Line) Name() string {
	return l.name
}

// Priority returns the priority the line runs at.
func (l *Line) Priority() timing.Priority {
	return l.priority
}

// Enable allows the handler to run. A line pended while disabled runs as
// soon as it is enabled.
func (l *Line) Enable() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.enabled = true
	if l.pending {
		l.scheduleLocked()
	}
}

// Disable keeps the handler from running. Pending requests are retained.
func (l *Line) Disable() {
	l.lock.Lock()
	l.enabled = false
	l.lock.Unlock()
}

// Pend requests the handler to run.
func (l *Line) Pend() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.pending = true
	if l.enabled {
		l.scheduleLocked()
	}
}

// ClearPending withdraws an outstanding request.
func (l *Line) ClearPending() {
	l.lock.Lock()
	l.pending = false
	l.lock.Unlock()
}

// IsPending tells if the line is waiting to run.
func (l *Line) IsPending() bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.pending
}

// Runs returns how many times the handler has run.
func (l *Line) Runs() uint64 {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.runs
}

func (l *Line) scheduleLocked() {
	if l.scheduled {
		return
	}

	l.scheduled = true
	now := l.ctrl.engine.Now()
	l.ctrl.engine.Schedule(&triggerEvent{
		EventBase: timing.MakeEventBase(now, l, l.priority),
	})
}

// Handle runs the handler if the line is still pending and enabled.
func (l *Line) Handle(_ timing.Event) error {
	l.lock.Lock()
	l.scheduled = false

	if !l.pending || !l.enabled {
		l.lock.Unlock()
		return nil
	}

	l.pending = false
	l.runs++
	l.lock.Unlock()

	l.handler()

	return nil
}

type triggerEvent struct {
	timing.EventBase
}
