package tracing

import (
	"fmt"
	"reflect"

	"github.com/rs/xid"

	"github.com/sarchlab/slotlink/sim/hooking"
	"github.com/sarchlab/slotlink/timeslot"
)

// NamedHookable represent something both have a name and can be hooked
type NamedHookable interface {
	hooking.Hookable
	Name() string
}

// CollectTrace lets the tracer collect the slots, requests, transmissions
// and receptions of a link.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := &traceHook{t: tracer, where: domain.Name()}
	domain.AcceptHook(h)
}

// A traceHook pairs the hook positions of a link into tasks.
type traceHook struct {
	t     Tracer
	where string

	slot    *Task
	request *Task
	tx      *Task
}

// Func turns one hook invocation into task starts and ends.
func (h *traceHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case timeslot.HookPosLeaseRequested:
		h.endRequest("superseded")
		h.request = h.start(KindRequest, "earliest", "", ctx.Item)
	case timeslot.HookPosSlotStart:
		h.endRequest("granted")
		h.endSlot("superseded")
		h.slot = h.start(KindSlot, "lease", "", ctx.Item)
	case timeslot.HookPosLeaseExtended:
		if h.slot != nil {
			h.t.StepTask(Task{ID: h.slot.ID, Kind: KindSlot, What: "extended"})
		}
	case timeslot.HookPosSlotEnd:
		h.endTx("aborted")
		h.endSlot("released")
	case timeslot.HookPosLeaseLost:
		h.endRequest(fmt.Sprint(ctx.Item))
	case timeslot.HookPosTxAttempt:
		h.endTx("retried")
		h.tx = h.start(KindTx, fmt.Sprintf("attempt %v", ctx.Detail),
			h.slotID(), ctx.Item)
	case timeslot.HookPosTxDelivered:
		h.endTx("delivered")
	case timeslot.HookPosTxDropped:
		h.endTx("dropped")
	case timeslot.HookPosRxDelivered:
		rx := h.start(KindRx, "received", h.slotID(), ctx.Item)
		rx.Outcome = "delivered"
		h.t.EndTask(*rx)
	}
}

func (h *traceHook) start(kind, what, parent string, detail interface{}) *Task {
	task := &Task{
		ID:       xid.New().String(),
		ParentID: parent,
		Kind:     kind,
		What:     what,
		Where:    h.where,
		Detail:   detail,
	}
	h.t.StartTask(*task)

	return task
}

func (h *traceHook) slotID() string {
	if h.slot == nil {
		return ""
	}

	return h.slot.ID
}

func (h *traceHook) endSlot(what string) {
	h.end(&h.slot, what)
}

func (h *traceHook) endRequest(what string) {
	h.end(&h.request, what)
}

func (h *traceHook) endTx(what string) {
	h.end(&h.tx, what)
}

func (h *traceHook) end(task **Task, what string) {
	if *task == nil {
		return
	}

	t := **task
	t.Outcome = what
	h.t.EndTask(t)
	*task = nil
}
