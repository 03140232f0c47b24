// Package tracing turns the hooks of a link into tasks and keeps them.
package tracing

// A Tracer can collect task traces
type Tracer interface {
	StartTask(task Task)
	StepTask(task Task)
	EndTask(task Task)
}
