package timeslot

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tebeka/atexit"
)

var (
	// ErrAlreadyOpen is returned by Start while a session is open.
	ErrAlreadyOpen = errors.New("timeslot: session already open")

	// ErrNotOpen is returned by Stop when there is no session.
	ErrNotOpen = errors.New("timeslot: session not open")

	// ErrNotSupported is returned by Stop while a lease is in use.
	ErrNotSupported = errors.New("timeslot: stopping during an active lease is not supported")

	// ErrQueueFull is returned by Send when the transmit queue has no room.
	ErrQueueFull = errors.New("timeslot: transmit queue full")

	// ErrPayloadTooLarge is returned by Send for packets longer than
	// MaxPayloadLength.
	ErrPayloadTooLarge = errors.New("timeslot: payload too large")

	// ErrRxEmpty is returned by LinkDriver.ReadRxPayload when nothing was
	// received.
	ErrRxEmpty = errors.New("timeslot: no received payload")

	// ErrUnknownSignal marks a signal outside the known set.
	ErrUnknownSignal = errors.New("timeslot: unknown signal")

	// ErrInvalidCallbackReturn marks an action the arbiter rejected.
	ErrInvalidCallbackReturn = errors.New("timeslot: arbiter rejected callback action")

	// ErrHalted is returned by entry points after a fatal error.
	ErrHalted = errors.New("timeslot: link halted")
)

// FatalError reports a condition the link cannot recover from.
type FatalError struct {
	Link string
	Op   string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("timeslot: %s: fatal in %s: %v", e.Link, e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// FatalHandler is called once when the link halts.
type FatalHandler func(err error)

// ExitOnFatal returns a handler that logs the error and exits the process
// after running the handlers registered with atexit.
func ExitOnFatal(logger zerolog.Logger) FatalHandler {
	return func(err error) {
		logger.Error().Err(err).Msg("unrecoverable link error")
		atexit.Exit(1)
	}
}
