// Package timeslot shares one radio between an arbiter that owns most of the
// air-time and a packet link that only runs inside leased time slots.
//
// A Link negotiates leases with the Arbiter, tracks each lease with a
// two-deadline LeaseTimer, and decides inside every slot whether to send the
// packet at the head of its transmit queue or to listen. Work is split over
// three execution contexts of decreasing urgency:
//
//   - the arbiter's signal callback (HandleSignal), which must return fast;
//   - the slot-begin and slot-end phases, which drive the LinkDriver;
//   - receive delivery, which hands packets to the application.
//
// The Link never runs two phases at once and never touches the radio after
// the lease is surrendered. All collaborators are interfaces so that the
// same Link runs against hardware or against the simulated arbiter, timer
// and driver in the sim packages.
package timeslot
