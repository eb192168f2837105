// Package trace provides the append-only event stream emitted by the
// scheduler core. This package has no dependencies on sim/ — it stores pure
// data types plus their CSV rendering.
package trace

// EventType names a scheduler state transition.
type EventType string

const (
	EventAdmit    EventType = "ADMIT"
	EventEnqueue  EventType = "ENQUEUE"
	EventDispatch EventType = "DISPATCH"
	EventRun      EventType = "RUN"
	EventPreempt  EventType = "PREEMPT"
	EventComplete EventType = "COMPLETE"
)

// NoCore marks a record emitted outside any core context (ADMIT, ENQUEUE).
const NoCore = -1

// Record captures a single scheduler event.
// Quantum 0 means "not yet sized"; Score 0 means "unscored" (baseline runs
// never score tasks). Both render as empty CSV cells.
type Record struct {
	Time      int64
	Event     EventType
	Core      int // NoCore when the event has no core context
	PID       int
	Name      string
	Scheduler string
	Subqueue  string
	Remaining int64
	Quantum   int64
	Vruntime  float64
	Score     float64
	Reason    string // PREEMPT reason; empty otherwise
}
