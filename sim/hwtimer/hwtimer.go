// Package hwtimer simulates the lease timer, a free-running counter with two
// compare channels.
package hwtimer

import (
	"sync"
	"time"

	"github.com/sarchlab/slotlink/sim/timing"
)

// Channel identifies a compare channel.
type Channel int

// The two channels of the lease timer.
const (
	ChannelSafety Channel = iota
	ChannelExtend
	numChannels
)

func (c Channel) String() string {
	if c == ChannelSafety {
		return "Safety"
	}

	return "Extend"
}

// A CompareSink is told when a channel matches.
type CompareSink interface {
	OnCompare(ch Channel)
}

// Timer implements timeslot.LeaseTimer on top of the engine's clock.
//
// A match is raised as an event at the timer's priority. A channel matches
// once per programmed compare value. Stopping, shifting or re-arming the
// timer invalidates every match already scheduled.
type Timer struct {
	name     string
	engine   timing.EventScheduler
	priority timing.Priority

	lock    sync.Mutex
	sink    CompareSink
	running bool
	base    timing.VTime
	frozen  time.Duration
	compare [numChannels]time.Duration
	armed   [numChannels]bool
	matched [numChannels]bool
	gen     uint64
	matches [numChannels]uint64
}

// NewTimer creates a stopped timer.
func NewTimer(
	name string,
	engine timing.EventScheduler,
	priority timing.Priority,
) *Timer {
	return &Timer{
		name:     name,
		engine:   engine,
		priority: priority,
	}
}

// Name returns the name of the timer.
func (t *Timer) Name() string {
	return t.name
}

// SetSink sets where compare matches go.
func (t *Timer) SetSink(sink CompareSink) {
	t.lock.Lock()
	t.sink = sink
	t.lock.Unlock()
}

// Arm clears the counter, programs both channels and starts counting.
func (t *Timer) Arm(safety, extend time.Duration) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.compare[ChannelSafety] = safety
	t.compare[ChannelExtend] = extend
	t.armed[ChannelSafety] = true
	t.armed[ChannelExtend] = true
	t.matched = [numChannels]bool{}
	t.frozen = 0
	t.base = t.engine.Now()
	t.running = true

	t.rescheduleLocked()
}

// Start resumes counting from where Stop left the counter.
func (t *Timer) Start() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.running {
		return
	}

	t.base = t.engine.Now() - t.frozen
	t.running = true

	t.rescheduleLocked()
}

// Stop freezes the counter.
func (t *Timer) Stop() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.running {
		return
	}

	t.frozen = t.engine.Now() - t.base
	t.running = false
	t.gen++
}

// Shift moves both compare values later by delta.
func (t *Timer) Shift(delta time.Duration) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for ch := range t.compare {
		t.compare[ch] += delta
	}

	if delta != 0 {
		t.matched = [numChannels]bool{}
	}

	if t.running {
		t.rescheduleLocked()
	}
}

// ClearPending disarms both channels.
func (t *Timer) ClearPending() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.armed = [numChannels]bool{}
	t.gen++
}

// Elapsed returns the counter value.
func (t *Timer) Elapsed() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.elapsedLocked()
}

// Matches returns how many times a channel has matched.
func (t *Timer) Matches(ch Channel) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.matches[ch]
}

func (t *Timer) elapsedLocked() time.Duration {
	if !t.running {
		return t.frozen
	}

	return t.engine.Now() - t.base
}

func (t *Timer) rescheduleLocked() {
	t.gen++
	elapsed := t.elapsedLocked()

	for ch := Channel(0); ch < numChannels; ch++ {
		if !t.armed[ch] || t.matched[ch] || t.compare[ch] < elapsed {
			continue
		}

		t.engine.Schedule(&compareEvent{
			EventBase: timing.MakeEventBase(
				t.base+t.compare[ch], t, t.priority),
			channel: ch,
			gen:     t.gen,
		})
	}
}

// Handle raises a match if the event still reflects the programmed state.
func (t *Timer) Handle(e timing.Event) error {
	evt := e.(*compareEvent)

	t.lock.Lock()
	if evt.gen != t.gen || !t.running || !t.armed[evt.channel] {
		t.lock.Unlock()
		return nil
	}

	t.matched[evt.channel] = true
	t.matches[evt.channel]++
	sink := t.sink
	t.lock.Unlock()

	if sink != nil {
		sink.OnCompare(evt.channel)
	}

	return nil
}

type compareEvent struct {
	timing.EventBase
	channel Channel
	gen     uint64
}
