// sim/scheduler.go
//
// The tick-driven multi-queue dispatcher: per-core pick/dispatch/run/preempt
// state machine, CFS virtual-runtime bookkeeping, and class-specific quantum
// sizing, shared by the baseline and AI variants.

package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/KHDhanu/AVIOS--AI-augmented-Linux-like-Scheduler/sim/trace"
)

// CoreState is one simulated core: the running task (nil when idle) and the
// ticks left in its current quantum.
type CoreState struct {
	Running  *Task
	TimeLeft int64
}

// AI RR quantum interpolation: below rrBaseScore the slice is rrBaseQuantum,
// above rrMaxScore it is rrMaxQuantum, linear in between.
const (
	rrBaseScore   = 2.5
	rrMaxScore    = 3.15
	rrBaseQuantum = 100
	rrMaxQuantum  = 200
)

// execution-class scaling of the AI CFS slice
var execFactors = map[string]float64{
	ExecutionShort:  1.0,
	ExecutionMedium: 1.5,
	ExecutionLong:   2.0,
}

// Scheduler owns all mutable simulation state: queues, cores, the virtual
// clock, the event log, and the task registry. It is single-threaded; a tick
// is atomic.
type Scheduler struct {
	cfg        Config
	variant    Variant
	classifier *Classifier

	queues *ReadyQueues
	cores  []CoreState
	clock  int64

	log       *trace.Log
	tasks     map[int]*Task
	admitted  []int // pids in admission order, for deterministic export
	completed map[int]*Task

	contextSwitches int64
}

// NewScheduler builds a scheduler for one run. classifier may be nil for the
// baseline variant; the AI variant with a nil classifier labels every task
// with the per-category defaults.
func NewScheduler(cfg Config, variant Variant, classifier *Classifier) *Scheduler {
	if variant == VariantAI && classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &Scheduler{
		cfg:        cfg,
		variant:    variant,
		classifier: classifier,
		queues:     NewReadyQueues(),
		cores:      make([]CoreState, cfg.NumCores),
		log:        trace.NewLog(),
		tasks:      make(map[int]*Task),
		completed:  make(map[int]*Task),
	}
}

// Clock returns the current virtual time.
func (s *Scheduler) Clock() int64 { return s.clock }

// Variant returns the policy family this scheduler runs.
func (s *Scheduler) Variant() Variant { return s.variant }

// Log returns the run's event stream.
func (s *Scheduler) Log() *trace.Log { return s.log }

// ContextSwitches returns the number of dispatches so far.
func (s *Scheduler) ContextSwitches() int64 { return s.contextSwitches }

// NumCores returns the simulated core count.
func (s *Scheduler) NumCores() int { return len(s.cores) }

// Core returns a copy of one core's state.
func (s *Scheduler) Core(id int) CoreState { return s.cores[id] }

// Task looks up an admitted task by pid.
func (s *Scheduler) Task(pid int) *Task { return s.tasks[pid] }

// TasksAdmitted returns the number of tasks admitted so far.
func (s *Scheduler) TasksAdmitted() int { return len(s.tasks) }

// TasksCompleted returns the number of tasks completed so far.
func (s *Scheduler) TasksCompleted() int { return len(s.completed) }

// Idle reports whether every queue is empty and every core is free.
func (s *Scheduler) Idle() bool {
	if !s.queues.AllEmpty() {
		return false
	}
	for i := range s.cores {
		if s.cores[i].Running != nil {
			return false
		}
	}
	return true
}

// AdvanceClock moves virtual time forward without running cores, so that
// admissions performed between ticks are logged at the tick they belong to.
func (s *Scheduler) AdvanceClock(t int64) {
	if t > s.clock {
		s.clock = t
	}
}

// Admit registers a newly arrived task: classify (AI variant), score, choose
// a scheduler class, size the initial RR quantum, and enqueue.
func (s *Scheduler) Admit(t *Task) {
	if t.ArrivalTime < 0 {
		t.ArrivalTime = s.clock
	}
	s.tasks[t.PID] = t
	s.admitted = append(s.admitted, t.PID)

	if s.variant == VariantAI {
		s.classifier.Classify(t)
		t.SubqueueScore = SubqueueScore(t)
	}
	AssignClass(t, s.variant)

	if t.AssignedScheduler == SchedRR {
		if s.variant == VariantAI {
			t.Quantum = s.rrQuantum(t.SubqueueScore)
		} else {
			t.Quantum = max(s.cfg.MinGranularity, s.cfg.RRQuantum)
		}
	}

	s.logEvent(trace.EventAdmit, t, trace.NoCore, "")
	s.queues.Enqueue(t)
	s.logEvent(trace.EventEnqueue, t, trace.NoCore, "")
}

// Tick runs one unit of virtual time. Cores are processed sequentially in
// ascending id order: an idle core picks and dispatches, then runs one tick.
func (s *Scheduler) Tick(t int64) {
	s.clock = t
	for cid := range s.cores {
		if s.cores[cid].Running == nil {
			if class, subqueue, ok := s.pick(cid); ok {
				s.dispatch(cid, class, subqueue)
			}
		}
		s.runOneTick(cid)
	}
}

// pick iterates the core's priority order and returns the first non-empty
// (class, subqueue). No task is removed at pick time.
func (s *Scheduler) pick(core int) (SchedClass, string, bool) {
	for _, class := range s.cfg.PriorityOrder(core) {
		for _, subqueue := range s.queues.Subqueues(class) {
			if s.queues.Len(class, subqueue) > 0 {
				return class, subqueue, true
			}
		}
	}
	return "", "", false
}

// dispatch pops the next task from the chosen subqueue, sizes its quantum,
// and installs it on the core.
func (s *Scheduler) dispatch(core int, class SchedClass, subqueue string) *Task {
	t := s.queues.Dequeue(class, subqueue)
	if t == nil {
		return nil
	}
	t.Quantum = s.sizeQuantum(t, class)
	s.cores[core] = CoreState{Running: t, TimeLeft: t.Quantum}
	if t.FirstStart == Unset {
		t.FirstStart = s.clock
	}
	s.contextSwitches++
	s.logEvent(trace.EventDispatch, t, core, "")
	logrus.Debugf("[tick %07d] core %d dispatch pid=%d %s/%s quantum=%d",
		s.clock, core, t.PID, class, subqueue, t.Quantum)
	return t
}

// sizeQuantum computes the time slice granted at dispatch.
func (s *Scheduler) sizeQuantum(t *Task, class SchedClass) int64 {
	switch class {
	case SchedFIFO, SchedIDLE:
		return max(1, t.Remaining)
	case SchedRR:
		if s.variant == VariantAI {
			return s.rrQuantum(t.SubqueueScore)
		}
		return max(s.cfg.MinGranularity, s.cfg.RRQuantum)
	default: // CFS
		return s.cfsQuantum(t)
	}
}

// rrQuantum sizes the AI round-robin slice, piecewise-linear in the
// subqueue score.
func (s *Scheduler) rrQuantum(score float64) int64 {
	var q int64
	switch {
	case score <= rrBaseScore:
		q = rrBaseQuantum
	case score >= rrMaxScore:
		q = rrMaxQuantum
	default:
		frac := (score - rrBaseScore) / (rrMaxScore - rrBaseScore)
		q = int64(rrBaseQuantum + frac*(rrMaxQuantum-rrBaseQuantum))
	}
	return max(s.cfg.MinGranularity, q)
}

// cfsQuantum sizes the CFS slice proportionally to the task's weight within
// the runnable set (the queued CFS tasks plus the one being dispatched).
func (s *Scheduler) cfsQuantum(t *Task) int64 {
	weight := weightOr(t.Weight)
	denom := s.queues.CFSWeightSum() + weight
	if denom <= 0 {
		denom = weight
	}
	base := int64(float64(s.cfg.SchedLatency) * weight / denom)
	if s.variant != VariantAI {
		return max(s.cfg.MinGranularity, base)
	}
	execScale, ok := execFactors[t.ExecutionClass]
	if !ok {
		execScale = execFactors[ExecutionMedium]
	}
	scoreScale := 1.0 + 0.2*(t.SubqueueScore-2.0)
	return max(s.cfg.MinGranularity, int64(float64(base)*execScale*scoreScale))
}

// runOneTick executes one unit of work on a core: decrement remaining,
// account total run, burn quantum, update vruntime for CFS, then check
// completion and quantum expiry.
func (s *Scheduler) runOneTick(core int) {
	c := &s.cores[core]
	t := c.Running
	if t == nil {
		return
	}

	if t.Remaining > 0 {
		t.Remaining--
	}
	t.TotalRun++
	if c.TimeLeft > 0 {
		c.TimeLeft--
	}
	if t.AssignedScheduler == SchedCFS {
		s.updateVruntime(t)
	}
	s.logEvent(trace.EventRun, t, core, "")

	if t.Remaining <= 0 {
		t.CompletionTime = s.clock
		s.completed[t.PID] = t
		s.logEvent(trace.EventComplete, t, core, "")
		logrus.Debugf("[tick %07d] core %d complete pid=%d", s.clock, core, t.PID)
		c.Running, c.TimeLeft = nil, 0
		return
	}

	if c.TimeLeft <= 0 {
		s.preempt(core, t)
		c.Running, c.TimeLeft = nil, 0
	}
}

// preempt requeues a task whose quantum expired: RR to the back of its
// subqueue, CFS back into the heap with its current vruntime, FIFO and IDLE
// to the front (safety path; their quantum equals remaining work, so expiry
// normally coincides with completion).
func (s *Scheduler) preempt(core int, t *Task) {
	switch t.AssignedScheduler {
	case SchedRR:
		s.logEvent(trace.EventPreempt, t, core, "quantum_expired")
		s.queues.Enqueue(t)
	case SchedCFS:
		s.logEvent(trace.EventPreempt, t, core, "cfs_quantum_expired")
		s.queues.Enqueue(t)
	case SchedFIFO:
		s.logEvent(trace.EventPreempt, t, core, "fifo_preempt")
		s.queues.EnqueueFront(t)
	default:
		s.logEvent(trace.EventPreempt, t, core, "idle_preempt")
		s.queues.EnqueueFront(t)
	}
}

// updateVruntime advances a CFS task's virtual runtime by one tick's worth.
// The AI variant scales the increment down for high-score tasks, which gives
// them a nonlinear service advantage.
func (s *Scheduler) updateVruntime(t *Task) {
	if t.Weight <= 0 {
		t.Weight = 1.0
	}
	inc := NICE0Weight / t.Weight
	if s.variant == VariantAI {
		inc *= 2.0 / math.Max(0.5, t.SubqueueScore)
	}
	t.Vruntime += inc
}

func (s *Scheduler) logEvent(ev trace.EventType, t *Task, core int, reason string) {
	s.log.Append(trace.Record{
		Time:      s.clock,
		Event:     ev,
		Core:      core,
		PID:       t.PID,
		Name:      t.Name,
		Scheduler: string(t.AssignedScheduler),
		Subqueue:  t.Subqueue,
		Remaining: t.Remaining,
		Quantum:   t.Quantum,
		Vruntime:  t.Vruntime,
		Score:     t.SubqueueScore,
		Reason:    reason,
	})
}

// AuditState cross-checks the scheduler's bookkeeping: work conservation per
// task, single placement across queues and cores, and the dispatch counter
// against the event log. Intended for tests and debugging between ticks.
func (s *Scheduler) AuditState() error {
	for pid, t := range s.tasks {
		if t.Remaining+t.TotalRun != t.TotalTime {
			return fmt.Errorf("pid %d: remaining %d + run %d != total %d",
				pid, t.Remaining, t.TotalRun, t.TotalTime)
		}
		if t.FirstStart != Unset && t.FirstStart < t.ArrivalTime {
			return fmt.Errorf("pid %d: first start %d before arrival %d",
				pid, t.FirstStart, t.ArrivalTime)
		}
	}
	seen := make(map[int]int)
	s.queues.Walk(func(t *Task) { seen[t.PID]++ })
	for i := range s.cores {
		if t := s.cores[i].Running; t != nil {
			seen[t.PID]++
		}
	}
	for pid, n := range seen {
		if n > 1 {
			return fmt.Errorf("pid %d placed %d times", pid, n)
		}
		if s.completed[pid] != nil {
			return fmt.Errorf("completed pid %d still placed", pid)
		}
	}
	if got := int64(s.log.Count(trace.EventDispatch)); got != s.contextSwitches {
		return fmt.Errorf("context switches %d != dispatch events %d", s.contextSwitches, got)
	}
	return nil
}

