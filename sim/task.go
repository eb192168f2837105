// Defines the Task struct that models one traced process in the simulation.
// Tracks arrival, remaining work, CFS virtual runtime, classification labels,
// and the scheduler assignment chosen at admission.

package sim

import "strings"

// Classification label values. The capabilities in sim/classify only produce
// these; the façade passes through whatever a decoder returns, and unknown
// labels score as Medium-equivalents in the policy mapper.
const (
	ResourceCPUBound = "CPU-bound"
	ResourceMixed    = "Mixed"
	ResourceIOBound  = "IO-bound"

	InteractivityRealTime    = "Real-time"
	InteractivityInteractive = "Interactive"
	InteractivityOther       = "Other"
	InteractivityBackground  = "Background"
	InteractivityBatch       = "Batch"

	ExecutionShort  = "Short"
	ExecutionMedium = "Medium"
	ExecutionLong   = "Long"

	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Unset marks a timestamp that has not been recorded yet.
const Unset = int64(-1)

// Task models a single process's lifecycle in the simulation.
type Task struct {
	PID      int
	Name     string
	Features FeatureMap

	ArrivalTime int64
	TotalTime   int64 // initial work in ticks

	Remaining      int64 // ticks left; Remaining + TotalRun == TotalTime
	TotalRun       int64 // ticks actually consumed
	FirstStart     int64 // tick of first dispatch; Unset until then
	CompletionTime int64 // tick at which Remaining reached 0; Unset until then

	ResourceType   string
	Interactivity  string
	PriorityClass  string
	ExecutionClass string

	SubqueueScore     float64 // 0 until scored (AI variant only)
	AssignedScheduler SchedClass
	Subqueue          string
	Quantum           int64

	Vruntime float64
	Weight   float64
}

// NewTask builds a task from one input row. Total work prefers a positive
// Total_Time_Ticks, then se.sum_exec_runtime, then one tick.
func NewTask(pid int, name string, arrival int64, features FeatureMap) *Task {
	total := int64(features.Float("Total_Time_Ticks", 0))
	if total <= 0 {
		total = int64(features.Float("se.sum_exec_runtime", 0))
	}
	if total <= 0 {
		total = 1
	}
	return &Task{
		PID:            pid,
		Name:           name,
		Features:       features,
		ArrivalTime:    arrival,
		TotalTime:      total,
		Remaining:      total,
		FirstStart:     Unset,
		CompletionTime: Unset,
		Vruntime:       features.Float("se.vruntime", 0),
		Weight:         features.Float("se.load.weight", NICE0Weight),
	}
}

// Completed reports whether the task has finished all its work.
func (t *Task) Completed() bool {
	return t.CompletionTime != Unset
}

// schedPolicyCodes encodes the Scheduling_Policy categorical for feature
// vectors. Unknown policies (including SCHED_BATCH) encode as 0.
var schedPolicyCodes = map[string]float64{
	"SCHED_OTHER": 0,
	"SCHED_FIFO":  1,
	"SCHED_RR":    2,
	"SCHED_IDLE":  3,
}

// stateCodes encodes the State categorical for feature vectors.
var stateCodes = map[string]float64{
	"RUNNING":  0,
	"SLEEPING": 1,
	"STOPPED":  2,
	"ZOMBIE":   3,
}

// FeatureVector extracts the named features in order, applying the two
// categorical encodings and coercing everything else to float64. Missing or
// non-numeric cells become 0.
func (t *Task) FeatureVector(names []string) []float64 {
	vec := make([]float64, len(names))
	for i, name := range names {
		switch name {
		case "Scheduling_Policy":
			vec[i] = schedPolicyCodes[strings.ToUpper(t.Features.Str(name))]
		case "State":
			vec[i] = stateCodes[strings.ToUpper(t.Features.Str(name))]
		default:
			vec[i] = t.Features.Float(name, 0)
		}
	}
	return vec
}

// weightOr returns w when positive, NICE0Weight otherwise. The trace may
// carry a zero or missing se.load.weight.
func weightOr(w float64) float64 {
	if w > 0 {
		return w
	}
	return NICE0Weight
}
