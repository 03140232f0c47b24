package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/slotlink/sim/timing"
)

type taskTimeStartEnd struct {
	start, end timing.VTime
}

// BusyTimeTracer measures how long a domain spends on a kind of task. Time
// covered by overlapping tasks is counted once. Applied to slots it gives
// the time the link held the radio.
type BusyTimeTracer struct {
	timeTeller timing.TimeTeller
	filter     TaskFilter

	lock      sync.Mutex
	inflight  map[string]timing.VTime
	completed []taskTimeStartEnd
	count     int
}

// NewBusyTimeTracer creates a new BusyTimeTracer
func NewBusyTimeTracer(
	timeTeller timing.TimeTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	return &BusyTimeTracer{
		timeTeller: timeTeller,
		filter:     filter,
		inflight:   make(map[string]timing.VTime),
	}
}

// StartTask records the task start time
func (t *BusyTimeTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflight[task.ID] = t.timeTeller.Now()
	t.lock.Unlock()
}

// StepTask does nothing
func (t *BusyTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask records the end of the task
func (t *BusyTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.inflight[task.ID]
	if !ok {
		return
	}

	delete(t.inflight, task.ID)
	t.completed = append(t.completed, taskTimeStartEnd{
		start: start,
		end:   t.timeTeller.Now(),
	})
	t.count++
}

// TaskCount returns how many tasks have completed.
func (t *BusyTimeTracer) TaskCount() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// BusyTime returns the total time spent on completed tasks. Tasks still in
// flight count up to now.
func (t *BusyTimeTracer) BusyTime() timing.VTime {
	t.lock.Lock()
	defer t.lock.Unlock()

	now := t.timeTeller.Now()
	spans := make([]taskTimeStartEnd, 0, len(t.completed)+len(t.inflight))
	spans = append(spans, t.completed...)
	for _, start := range t.inflight {
		spans = append(spans, taskTimeStartEnd{start: start, end: now})
	}

	return unionLength(spans)
}

func unionLength(spans []taskTimeStartEnd) timing.VTime {
	sort.Slice(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})

	var (
		busy timing.VTime
		cur  taskTimeStartEnd
		open bool
	)

	for _, s := range spans {
		switch {
		case !open:
			cur, open = s, true
		case s.start <= cur.end:
			if s.end > cur.end {
				cur.end = s.end
			}
		default:
			busy += cur.end - cur.start
			cur = s
		}
	}

	if open {
		busy += cur.end - cur.start
	}

	return busy
}
