// Implements the ready-queue set: four scheduler classes, each with named
// subqueues. FIFO/RR/IDLE subqueues are insertion-order deques; CFS is a
// min-heap keyed by vruntime with lazy invalidation of stale entries.

package sim

import (
	"container/heap"
	"math"
)

// staleTolerance bounds the drift between a heap entry's snapshot vruntime
// and the task's live vruntime before the entry is treated as stale.
const staleTolerance = 1e-6

// TaskQueue represents a FIFO deque of ready tasks within one subqueue.
type TaskQueue struct {
	queue []*Task
}

// Enqueue adds a task to the back of the queue.
func (q *TaskQueue) Enqueue(t *Task) {
	q.queue = append(q.queue, t)
}

// PushFront inserts a task at the front of the queue. Used by the forced
// FIFO/IDLE preemption safety path.
func (q *TaskQueue) PushFront(t *Task) {
	q.queue = append([]*Task{t}, q.queue...)
}

// Dequeue removes and returns the front task, or nil when empty.
func (q *TaskQueue) Dequeue() *Task {
	if len(q.queue) == 0 {
		return nil
	}
	t := q.queue[0]
	q.queue = q.queue[1:]
	return t
}

// Peek returns the front task without removing it, or nil when empty.
func (q *TaskQueue) Peek() *Task {
	if len(q.queue) == 0 {
		return nil
	}
	return q.queue[0]
}

// Len returns the number of queued tasks.
func (q *TaskQueue) Len() int {
	return len(q.queue)
}

// cfsEntry is one heap element: a vruntime snapshot taken at insertion time
// plus a monotone sequence number and pid for deterministic tie-breaks.
type cfsEntry struct {
	vruntime float64
	seq      uint64
	pid      int
	task     *Task
}

// cfsHeap implements heap.Interface ordered by (vruntime, seq, pid).
// See the canonical container/heap example: https://pkg.go.dev/container/heap
type cfsHeap []cfsEntry

func (h cfsHeap) Len() int { return len(h) }
func (h cfsHeap) Less(i, j int) bool {
	if h[i].vruntime != h[j].vruntime {
		return h[i].vruntime < h[j].vruntime
	}
	if h[i].seq != h[j].seq {
		return h[i].seq < h[j].seq
	}
	return h[i].pid < h[j].pid
}
func (h cfsHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cfsHeap) Push(x any) {
	*h = append(*h, x.(cfsEntry))
}

func (h *cfsHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// CFSQueue is one CFS subqueue. The authoritative vruntime lives on the
// task; entries hold snapshots and are reconciled lazily on pop.
type CFSQueue struct {
	entries cfsHeap
}

// Len returns the number of heap entries.
func (q *CFSQueue) Len() int {
	return len(q.entries)
}

// Push inserts a fresh entry snapshotting the task's live vruntime.
func (q *CFSQueue) Push(t *Task, seq uint64) {
	heap.Push(&q.entries, cfsEntry{vruntime: t.Vruntime, seq: seq, pid: t.PID, task: t})
}

// PopMin removes and returns the task with the lowest live vruntime.
// A popped entry whose snapshot no longer matches the task's live vruntime
// is stale: a fresh entry is reinserted and popping continues. The loop
// terminates because every reinsertion produces a matching snapshot.
func (q *CFSQueue) PopMin(nextSeq func() uint64) *Task {
	for len(q.entries) > 0 {
		e := heap.Pop(&q.entries).(cfsEntry)
		if math.Abs(e.task.Vruntime-e.vruntime) < staleTolerance {
			return e.task
		}
		heap.Push(&q.entries, cfsEntry{
			vruntime: e.task.Vruntime,
			seq:      nextSeq(),
			pid:      e.pid,
			task:     e.task,
		})
	}
	return nil
}

// Peek returns the task at the heap root without validation. Acceptable
// because peeks only decide whether the subqueue is non-empty.
func (q *CFSQueue) Peek() *Task {
	if len(q.entries) == 0 {
		return nil
	}
	return q.entries[0].task
}

// WeightSum sums the (clamped) weights of all queued entries.
func (q *CFSQueue) WeightSum() float64 {
	sum := 0.0
	for _, e := range q.entries {
		sum += weightOr(e.task.Weight)
	}
	return sum
}

// ReadyQueues holds the per-class subqueues of ready tasks.
type ReadyQueues struct {
	subqueues map[SchedClass][]string // declared subqueue order per class
	deques    map[SchedClass]map[string]*TaskQueue
	cfs       map[string]*CFSQueue
	seq       uint64 // insertion counter shared by all CFS subqueues
}

// NewReadyQueues builds the default queue layout: one subqueue per class.
func NewReadyQueues() *ReadyQueues {
	rq := &ReadyQueues{
		subqueues: map[SchedClass][]string{
			SchedFIFO: {SubqueueFIFO},
			SchedRR:   {SubqueueRR},
			SchedCFS:  {SubqueueCFS},
			SchedIDLE: {SubqueueIDLE},
		},
		deques: map[SchedClass]map[string]*TaskQueue{
			SchedFIFO: {SubqueueFIFO: &TaskQueue{}},
			SchedRR:   {SubqueueRR: &TaskQueue{}},
			SchedIDLE: {SubqueueIDLE: &TaskQueue{}},
		},
		cfs: map[string]*CFSQueue{SubqueueCFS: {}},
	}
	return rq
}

func (rq *ReadyQueues) nextSeq() uint64 {
	s := rq.seq
	rq.seq++
	return s
}

// Subqueues returns the declared subqueue names for a class, in order.
func (rq *ReadyQueues) Subqueues(class SchedClass) []string {
	return rq.subqueues[class]
}

// Len returns the number of tasks in one subqueue.
func (rq *ReadyQueues) Len(class SchedClass, subqueue string) int {
	if class == SchedCFS {
		if q := rq.cfs[subqueue]; q != nil {
			return q.Len()
		}
		return 0
	}
	if q := rq.deques[class][subqueue]; q != nil {
		return q.Len()
	}
	return 0
}

// Enqueue places a task at the back of its assigned subqueue (heap insert
// for CFS).
func (rq *ReadyQueues) Enqueue(t *Task) {
	if t.AssignedScheduler == SchedCFS {
		rq.cfs[t.Subqueue].Push(t, rq.nextSeq())
		return
	}
	rq.deques[t.AssignedScheduler][t.Subqueue].Enqueue(t)
}

// EnqueueFront places a task at the front of its assigned subqueue. For CFS
// this is an ordinary heap insert: position follows from vruntime.
func (rq *ReadyQueues) EnqueueFront(t *Task) {
	if t.AssignedScheduler == SchedCFS {
		rq.cfs[t.Subqueue].Push(t, rq.nextSeq())
		return
	}
	rq.deques[t.AssignedScheduler][t.Subqueue].PushFront(t)
}

// Dequeue removes and returns the next task from one subqueue, or nil.
func (rq *ReadyQueues) Dequeue(class SchedClass, subqueue string) *Task {
	if class == SchedCFS {
		if q := rq.cfs[subqueue]; q != nil {
			return q.PopMin(rq.nextSeq)
		}
		return nil
	}
	if q := rq.deques[class][subqueue]; q != nil {
		return q.Dequeue()
	}
	return nil
}

// CFSWeightSum sums clamped task weights across all CFS subqueues.
func (rq *ReadyQueues) CFSWeightSum() float64 {
	sum := 0.0
	for _, name := range rq.subqueues[SchedCFS] {
		sum += rq.cfs[name].WeightSum()
	}
	return sum
}

// AllEmpty reports whether every subqueue of every class is empty.
func (rq *ReadyQueues) AllEmpty() bool {
	for _, class := range SchedClasses {
		for _, name := range rq.subqueues[class] {
			if rq.Len(class, name) > 0 {
				return false
			}
		}
	}
	return true
}

// Walk calls fn for every queued task, classes in priority order.
func (rq *ReadyQueues) Walk(fn func(*Task)) {
	for _, class := range SchedClasses {
		for _, name := range rq.subqueues[class] {
			if class == SchedCFS {
				for _, e := range rq.cfs[name].entries {
					fn(e.task)
				}
				continue
			}
			for _, t := range rq.deques[class][name].queue {
				fn(t)
			}
		}
	}
}
