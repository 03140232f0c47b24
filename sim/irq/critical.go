package irq

import "sync"

// CriticalRegion guards state shared between execution contexts. Holding it
// is the equivalent of masking interrupts for the duration of the block:
// code in other contexts that also enters the region waits until it is left.
//
// The region is not reentrant. A handler must not call back into code that
// enters the same region.
type CriticalRegion struct {
	mu sync.Mutex
}

// Enter starts the critical region.
func (r *CriticalRegion) Enter() {
	r.mu.Lock()
}

// Exit ends the critical region.
func (r *CriticalRegion) Exit() {
	r.mu.Unlock()
}

// Do runs fn inside the critical region.
func (r *CriticalRegion) Do(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn()
}
