package esb

import "sync"

// Radio implements timeslot.Radio for a Driver.
type Radio struct {
	driver *Driver

	lock          sync.Mutex
	powerCycles   uint64
	forceDisables uint64
}

// NewRadio creates the power domain the driver runs on.
func NewRadio(driver *Driver) *Radio {
	return &Radio{driver: driver}
}

// PowerCycle resets the radio. Anything in progress is lost.
func (r *Radio) PowerCycle() {
	r.lock.Lock()
	r.powerCycles++
	r.lock.Unlock()

	r.driver.abort()
}

// ForceDisable stops the radio immediately.
func (r *Radio) ForceDisable() {
	r.lock.Lock()
	r.forceDisables++
	r.lock.Unlock()

	r.driver.abort()
}

// PowerCycles returns how many times the radio was power cycled.
func (r *Radio) PowerCycles() uint64 {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.powerCycles
}

// ForceDisables returns how many times the radio was forced off.
func (r *Radio) ForceDisables() uint64 {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.forceDisables
}
