package tracing

import "github.com/sarchlab/slotlink/sim/timing"

// Task kinds recorded from a link.
const (
	KindSlot    = "slot"
	KindRequest = "request"
	KindTx      = "tx"
	KindRx      = "rx"
)

// A TaskStep represents a milestone in the processing of task, such as the
// extension of a slot.
type TaskStep struct {
	Time timing.VTime `json:"time"`
	What string       `json:"what"`
}

// A Task is something a link spends time on: a slot, a pending request, a
// transmission. Receptions are tasks without duration.
type Task struct {
	ID        string       `json:"id"`
	ParentID  string       `json:"parent_id"`
	Kind      string       `json:"kind"`
	What      string       `json:"what"`
	Where     string       `json:"where"`
	StartTime timing.VTime `json:"start_time"`
	EndTime   timing.VTime `json:"end_time"`
	Outcome   string       `json:"outcome"`
	Steps     []TaskStep   `json:"steps"`
	Detail    interface{}  `json:"-"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// KindFilter keeps the tasks of one kind.
func KindFilter(kind string) TaskFilter {
	return func(t Task) bool {
		return t.Kind == kind
	}
}
