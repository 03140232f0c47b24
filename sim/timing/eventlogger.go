package timing

import (
	"reflect"

	"github.com/rs/zerolog"

	"github.com/sarchlab/slotlink/sim/hooking"
)

// EventLogger is a hook that writes every dispatched event to a logger at
// trace level.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger returns a new EventLogger which will write into the logger.
func NewEventLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

type named interface {
	Name() string
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	entry := h.logger.Trace().
		Dur("vtime", evt.Time()).
		Int("priority", int(evt.Priority())).
		Str("event", reflect.TypeOf(evt).String())

	if n, ok := evt.Handler().(named); ok {
		entry = entry.Str("handler", n.Name())
	}

	entry.Msg("event")
}
