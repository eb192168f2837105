// Maps classification labels to a combined subqueue score and chooses a
// scheduler class for each admitted task.

package sim

import "strings"

// SchedClass is the scheduler class a task is assigned to. The set is closed:
// each class has its own quantum formula at dispatch and its own requeue
// policy on preemption.
type SchedClass string

const (
	SchedFIFO SchedClass = "FIFO"
	SchedRR   SchedClass = "RR"
	SchedCFS  SchedClass = "CFS"
	SchedIDLE SchedClass = "IDLE"
)

// SchedClasses lists all classes in default core priority order.
var SchedClasses = []SchedClass{SchedFIFO, SchedRR, SchedCFS, SchedIDLE}

// Default subqueue names per class.
const (
	SubqueueFIFO = "fifo_1"
	SubqueueRR   = "rr_1"
	SubqueueCFS  = "cfs_1"
	SubqueueIDLE = "idle"
)

// Variant selects which scheduling policy family a run uses.
type Variant string

const (
	// VariantBaseline respects only the explicit Linux Scheduling_Policy.
	VariantBaseline Variant = "baseline"
	// VariantAI additionally classifies tasks and uses the labels to choose
	// a policy class and size time slices.
	VariantAI Variant = "ai"
)

// validVariants maps accepted variant names. Empty defaults to baseline.
var validVariants = map[Variant]bool{VariantBaseline: true, VariantAI: true, "": true}

// IsValidVariant returns true if name is a recognized variant.
func IsValidVariant(name string) bool { return validVariants[Variant(name)] }

// FileStem returns the output-file stem used for this variant's CSVs.
func (v Variant) FileStem() string {
	if v == VariantAI {
		return "ai_scheduler"
	}
	return "linux_baseline"
}

// Numeric label encodings. Unknown labels score 2 in every dimension.
var (
	resourceScores = map[string]float64{
		ResourceCPUBound: 3, ResourceMixed: 2, ResourceIOBound: 1,
	}
	interactivityScores = map[string]float64{
		InteractivityRealTime: 4, InteractivityInteractive: 3,
		InteractivityOther: 2, InteractivityBackground: 1.5, InteractivityBatch: 1,
	}
	executionScores = map[string]float64{
		ExecutionShort: 3, ExecutionMedium: 2, ExecutionLong: 1,
	}
	priorityScores = map[string]float64{
		PriorityHigh: 3, PriorityMedium: 2, PriorityLow: 1,
	}
)

func labelScore(table map[string]float64, label string) float64 {
	if s, ok := table[label]; ok {
		return s
	}
	return 2
}

// Subqueue score weights.
const (
	scoreWeightResource      = 0.20
	scoreWeightInteractivity = 0.35
	scoreWeightExecution     = 0.20
	scoreWeightPriority      = 0.30
)

// SubqueueScore combines the four label encodings into one weighted score,
// range [1.05, 3.5].
func SubqueueScore(t *Task) float64 {
	r := labelScore(resourceScores, t.ResourceType)
	i := labelScore(interactivityScores, t.Interactivity)
	e := labelScore(executionScores, t.ExecutionClass)
	p := labelScore(priorityScores, t.PriorityClass)
	return scoreWeightResource*r + scoreWeightInteractivity*i +
		scoreWeightExecution*e + scoreWeightPriority*p
}

// rrPromotionScore is the subqueue score above which the AI variant promotes
// a task to RR regardless of its individual labels.
const rrPromotionScore = 2.6

// AssignClass sets the task's scheduler class and subqueue. Explicit Linux
// policies win for both variants; the AI variant then applies label rules,
// while the baseline sends everything else (SCHED_BATCH included) to CFS.
func AssignClass(t *Task, variant Variant) {
	switch strings.ToUpper(t.Features.Str("Scheduling_Policy")) {
	case "SCHED_FIFO":
		t.AssignedScheduler, t.Subqueue = SchedFIFO, SubqueueFIFO
		return
	case "SCHED_RR":
		t.AssignedScheduler, t.Subqueue = SchedRR, SubqueueRR
		return
	case "SCHED_IDLE":
		t.AssignedScheduler, t.Subqueue = SchedIDLE, SubqueueIDLE
		return
	}

	if variant != VariantAI {
		t.AssignedScheduler, t.Subqueue = SchedCFS, SubqueueCFS
		return
	}

	if t.Interactivity == InteractivityRealTime {
		t.AssignedScheduler, t.Subqueue = SchedFIFO, SubqueueFIFO
		return
	}
	promoted := t.Interactivity == InteractivityInteractive &&
		t.ExecutionClass == ExecutionShort &&
		t.PriorityClass == PriorityHigh
	if promoted || t.SubqueueScore > rrPromotionScore {
		t.AssignedScheduler, t.Subqueue = SchedRR, SubqueueRR
		return
	}
	t.AssignedScheduler, t.Subqueue = SchedCFS, SubqueueCFS
}
