package timeslot

import (
	"github.com/sarchlab/slotlink/sim/hooking"
)

// HookPosQueuePush marks when a packet is appended to the transmit queue.
var HookPosQueuePush = &hooking.HookPos{Name: "Queue Push"}

// HookPosQueuePop marks when the head packet leaves the transmit queue.
var HookPosQueuePop = &hooking.HookPos{Name: "Queue Pop"}

// TxQueue is a bounded FIFO of packets waiting for air-time.
//
// Only the head packet is ever in flight, so a single attempt counter serves
// the whole queue. It grows while a packet stays at the head and returns to
// zero whenever the head is removed.
//
// TxQueue is not safe for concurrent use. The Link guards it with its
// critical region.
type TxQueue struct {
	hooking.HookableBase

	name     string
	capacity int
	packets  []Payload
	attempts int
}

// NewTxQueue creates an empty queue that holds up to capacity packets.
func NewTxQueue(name string, capacity int) *TxQueue {
	if capacity < 1 {
		panic("transmit queue capacity must be at least 1")
	}

	return &TxQueue{
		name:     name,
		capacity: capacity,
		packets:  make([]Payload, 0, capacity),
	}
}

// Name returns the name of the queue.
func (q *TxQueue) Name() string {
	return q.name
}

// CanPush tells if one more packet fits.
func (q *TxQueue) CanPush() bool {
	return len(q.packets) < q.capacity
}

// Push appends a packet. A full queue is left untouched and ErrQueueFull is
// returned.
func (q *TxQueue) Push(p Payload) error {
	if !q.CanPush() {
		return ErrQueueFull
	}

	q.packets = append(q.packets, p)

	if q.NumHooks() > 0 {
		q.InvokeHook(hooking.HookCtx{
			Domain: q,
			Pos:    HookPosQueuePush,
			Item:   p,
		})
	}

	return nil
}

// Peek returns the head packet without removing it.
func (q *TxQueue) Peek() (Payload, bool) {
	if len(q.packets) == 0 {
		return Payload{}, false
	}

	return q.packets[0], true
}

// Pop removes the head packet and resets the attempt counter.
func (q *TxQueue) Pop() (Payload, bool) {
	if len(q.packets) == 0 {
		return Payload{}, false
	}

	p := q.packets[0]
	q.packets[0] = Payload{}
	q.packets = q.packets[1:]
	q.attempts = 0

	if q.NumHooks() > 0 {
		q.InvokeHook(hooking.HookCtx{
			Domain: q,
			Pos:    HookPosQueuePop,
			Item:   p,
		})
	}

	return p, true
}

// Attempts returns how many times the head packet has been handed to the
// link driver.
func (q *TxQueue) Attempts() int {
	return q.attempts
}

// CountAttempt records one more attempt for the head packet and returns the
// new count. It is a no-op on an empty queue.
func (q *TxQueue) CountAttempt() int {
	if len(q.packets) > 0 {
		q.attempts++
	}

	return q.attempts
}

// Capacity returns the maximum number of packets.
func (q *TxQueue) Capacity() int {
	return q.capacity
}

// Size returns the number of queued packets.
func (q *TxQueue) Size() int {
	return len(q.packets)
}

// Clear removes every packet.
func (q *TxQueue) Clear() {
	q.packets = q.packets[:0]
	q.attempts = 0
}
