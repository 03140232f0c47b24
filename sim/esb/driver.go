// Package esb simulates an Enhanced ShockBurst packet driver, the radio
// it runs on and the peer it talks to.
package esb

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sarchlab/slotlink/sim/timing"
	"github.com/sarchlab/slotlink/timeslot"
)

var (
	// ErrNotInitialized is returned by calls made before Init.
	ErrNotInitialized = errors.New("esb: driver not initialized")

	// ErrAlreadyInitialized is returned by Init on a running driver.
	ErrAlreadyInitialized = errors.New("esb: driver already initialized")

	// ErrBusy is returned when the radio is doing something else.
	ErrBusy = errors.New("esb: radio busy")

	// ErrInvalidState is returned by StopRx when the driver is not listening.
	ErrInvalidState = errors.New("esb: invalid state")

	// ErrTxFull is returned when the TX FIFO has no room.
	ErrTxFull = errors.New("esb: tx fifo full")
)

// maxChannel is the highest RF channel of the 2.4 GHz band plan.
const maxChannel = 100

// An IRQRaiser forwards the radio interrupt to whoever owns the radio.
type IRQRaiser interface {
	RaiseRadioIRQ()
}

type mode int

const (
	modeIdle mode = iota
	modeRx
	modeTx
)

// Driver implements timeslot.LinkDriver.
//
// Radio activity completes as events on the engine. Each completion queues
// a link event and raises the radio interrupt; the events reach the
// handler given to Init when HandleRadioIRQ runs.
type Driver struct {
	name     string
	engine   timing.EventScheduler
	irq      IRQRaiser
	cfg      Config
	priority timing.Priority
	logger   zerolog.Logger

	lock        sync.Mutex
	rand        *rand.Rand
	initialized bool
	link        timeslot.LinkConfig
	addr        timeslot.Addressing
	mode        mode
	gen         uint64
	txFIFO      []timeslot.Payload
	rxFIFO      []timeslot.Payload
	retransmits int
	pending     []timeslot.LinkEvent
	peerSeq     byte
	stats       Stats
	delivered   []timeslot.Payload
}

// Stats counts what happened on the air.
type Stats struct {
	Attempts   uint64
	Acked      uint64
	Failed     uint64
	Aborted    uint64
	Received   uint64
	RxOverflow uint64
}

// Name returns the name of the driver.
func (d *Driver) Name() string {
	return d.name
}

// Init prepares the driver for a slot.
func (d *Driver) Init(cfg timeslot.LinkConfig) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.initialized {
		return ErrAlreadyInitialized
	}

	if cfg.PayloadLength < 1 || cfg.PayloadLength > timeslot.MaxPayloadLength {
		return fmt.Errorf("esb: payload length %d out of range",
			cfg.PayloadLength)
	}

	d.link = cfg
	d.initialized = true
	d.mode = modeIdle
	d.retransmits = 0
	d.pending = nil
	d.gen++

	return nil
}

// SetAddressing sets the channel and the pipe addresses.
func (d *Driver) SetAddressing(addr timeslot.Addressing) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if !d.initialized {
		return ErrNotInitialized
	}

	if addr.Channel > maxChannel {
		return fmt.Errorf("esb: channel %d above %d", addr.Channel, maxChannel)
	}

	d.addr = addr

	return nil
}

// Addressing returns the address set in use.
func (d *Driver) Addressing() timeslot.Addressing {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.addr
}

// StartRx starts listening.
func (d *Driver) StartRx() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if !d.initialized {
		return ErrNotInitialized
	}

	if d.mode != modeIdle {
		return ErrBusy
	}

	d.mode = modeRx
	d.gen++
	d.schedulePeerLocked()

	return nil
}

// StopRx stops listening.
func (d *Driver) StopRx() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.mode != modeRx {
		return ErrInvalidState
	}

	d.mode = modeIdle
	d.gen++

	return nil
}

// WriteTxPayload queues a packet and starts sending if the radio is free.
func (d *Driver) WriteTxPayload(p timeslot.Payload) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	switch {
	case !d.initialized:
		return ErrNotInitialized
	case d.mode == modeRx:
		return ErrBusy
	case p.Len() > timeslot.MaxPayloadLength:
		return timeslot.ErrPayloadTooLarge
	case len(d.txFIFO) >= d.cfg.FIFODepth:
		return ErrTxFull
	}

	d.txFIFO = append(d.txFIFO, p)

	if d.mode == modeIdle {
		d.startTxLocked()
	}

	return nil
}

// FlushTx empties the TX FIFO and abandons a transmission in progress.
func (d *Driver) FlushTx() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if !d.initialized {
		return ErrNotInitialized
	}

	d.txFIFO = nil
	if d.mode == modeTx {
		d.abortLocked()
	}

	return nil
}

// FlushRx empties the RX FIFO.
func (d *Driver) FlushRx() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if !d.initialized {
		return ErrNotInitialized
	}

	d.rxFIFO = nil

	return nil
}

// Disable turns the driver off. Undelivered link events are discarded.
func (d *Driver) Disable() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if !d.initialized {
		return ErrNotInitialized
	}

	if d.mode == modeTx {
		d.abortLocked()
	}

	d.initialized = false
	d.mode = modeIdle
	d.pending = nil
	d.gen++

	return nil
}

// IsIdle tells if the radio is neither sending nor listening.
func (d *Driver) IsIdle() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.mode == modeIdle
}

// ReadRxPayload pops the oldest received packet.
func (d *Driver) ReadRxPayload() (timeslot.Payload, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if len(d.rxFIFO) == 0 {
		return timeslot.Payload{}, timeslot.ErrRxEmpty
	}

	p := d.rxFIFO[0]
	d.rxFIFO = d.rxFIFO[1:]

	return p, nil
}

// HandleRadioIRQ reports the queued link events to the handler given to
// Init.
func (d *Driver) HandleRadioIRQ() {
	d.lock.Lock()
	events := d.pending
	d.pending = nil
	handler := d.link.EventHandler
	d.lock.Unlock()

	if handler == nil {
		return
	}

	for _, evt := range events {
		handler(evt)
	}
}

// Stats returns a snapshot of the counters.
func (d *Driver) Stats() Stats {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.stats
}

// Delivered returns the packets the peer acknowledged, in order.
func (d *Driver) Delivered() []timeslot.Payload {
	d.lock.Lock()
	defer d.lock.Unlock()

	out := make([]timeslot.Payload, len(d.delivered))
	copy(out, d.delivered)

	return out
}

// abort stops any radio activity. The FIFOs are kept.
func (d *Driver) abort() {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.mode == modeTx {
		d.abortLocked()
	}

	d.mode = modeIdle
	d.gen++
}

func (d *Driver) abortLocked() {
	d.stats.Aborted++
	d.mode = modeIdle
	d.retransmits = 0
	d.gen++
}

func (d *Driver) startTxLocked() {
	d.mode = modeTx
	d.retransmits = 0
	d.gen++
	d.scheduleAttemptLocked(d.engine.Now() + d.cfg.Airtime)
}

func (d *Driver) scheduleAttemptLocked(at timing.VTime) {
	d.stats.Attempts++
	d.engine.Schedule(&attemptEvent{
		EventBase: timing.MakeEventBase(at, d, d.priority),
		gen:       d.gen,
	})
}

func (d *Driver) schedulePeerLocked() {
	if d.cfg.RxInterval == 0 {
		return
	}

	d.engine.Schedule(&peerEvent{
		EventBase: timing.MakeEventBase(
			d.engine.Now()+d.cfg.RxInterval, d, d.priority),
		gen: d.gen,
	})
}

// Handle completes radio activity.
func (d *Driver) Handle(e timing.Event) error {
	var raise bool

	switch evt := e.(type) {
	case *attemptEvent:
		raise = d.completeAttempt(evt)
	case *peerEvent:
		raise = d.receiveFromPeer(evt)
	default:
		return fmt.Errorf("esb: cannot handle %T", e)
	}

	if raise && d.irq != nil {
		d.irq.RaiseRadioIRQ()
	}

	return nil
}

func (d *Driver) completeAttempt(evt *attemptEvent) bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	if evt.gen != d.gen || d.mode != modeTx || len(d.txFIFO) == 0 {
		return false
	}

	if d.rand.Float64() >= d.cfg.LossProbability {
		d.stats.Acked++
		d.delivered = append(d.delivered, d.txFIFO[0])
		d.txFIFO = d.txFIFO[1:]
		d.mode = modeIdle
		d.pending = append(d.pending, timeslot.LinkEventTxSuccess)

		d.logger.Trace().Int("retransmits", d.retransmits).Msg("tx acked")

		return true
	}

	if d.retransmits < d.link.RetransmitCount {
		d.retransmits++
		d.scheduleAttemptLocked(
			d.engine.Now() + d.cfg.RetransmitDelay + d.cfg.Airtime)

		return false
	}

	d.stats.Failed++
	d.mode = modeIdle
	d.pending = append(d.pending, timeslot.LinkEventTxFailed)

	d.logger.Trace().Int("retransmits", d.retransmits).Msg("tx failed")

	return true
}

func (d *Driver) receiveFromPeer(evt *peerEvent) bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	if evt.gen != d.gen || d.mode != modeRx {
		return false
	}

	d.schedulePeerLocked()

	if len(d.rxFIFO) >= d.cfg.FIFODepth {
		d.stats.RxOverflow++
		return false
	}

	d.peerSeq++
	d.rxFIFO = append(d.rxFIFO, timeslot.Payload{
		Pipe: d.link.TxPipe,
		Data: []byte{d.peerSeq, byte(d.addr.Channel)},
	})
	d.stats.Received++
	d.pending = append(d.pending, timeslot.LinkEventRxReceived)

	return true
}

type attemptEvent struct {
	timing.EventBase
	gen uint64
}

type peerEvent struct {
	timing.EventBase
	gen uint64
}
