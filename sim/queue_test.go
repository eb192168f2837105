package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cfsTask(pid int, vruntime float64) *Task {
	t := NewTask(pid, "cfs", 0, FeatureMap{})
	t.AssignedScheduler = SchedCFS
	t.Subqueue = SubqueueCFS
	t.Vruntime = vruntime
	return t
}

func TestTaskQueue_FIFOOrder(t *testing.T) {
	// GIVEN a queue with tasks [A, B, C]
	q := &TaskQueue{}
	a := NewTask(1, "A", 0, FeatureMap{})
	b := NewTask(2, "B", 0, FeatureMap{})
	c := NewTask(3, "C", 0, FeatureMap{})
	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)

	// THEN service is strictly first-in-first-out
	assert.Equal(t, a, q.Peek())
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, a, q.Dequeue())
	assert.Equal(t, b, q.Dequeue())
	assert.Equal(t, c, q.Dequeue())
	assert.Nil(t, q.Dequeue())
	assert.Nil(t, q.Peek())
}

func TestTaskQueue_PushFront(t *testing.T) {
	q := &TaskQueue{}
	a := NewTask(1, "A", 0, FeatureMap{})
	b := NewTask(2, "B", 0, FeatureMap{})
	q.Enqueue(a)
	q.PushFront(b)

	assert.Equal(t, b, q.Dequeue())
	assert.Equal(t, a, q.Dequeue())
}

func TestCFSQueue_PopsByVruntime(t *testing.T) {
	rq := NewReadyQueues()
	q := rq.cfs[SubqueueCFS]
	q.Push(cfsTask(1, 30), rq.nextSeq())
	q.Push(cfsTask(2, 10), rq.nextSeq())
	q.Push(cfsTask(3, 20), rq.nextSeq())

	assert.Equal(t, 2, q.PopMin(rq.nextSeq).PID)
	assert.Equal(t, 3, q.PopMin(rq.nextSeq).PID)
	assert.Equal(t, 1, q.PopMin(rq.nextSeq).PID)
	assert.Nil(t, q.PopMin(rq.nextSeq))
}

func TestCFSQueue_EqualVruntimeBreaksTiesByInsertion(t *testing.T) {
	rq := NewReadyQueues()
	q := rq.cfs[SubqueueCFS]
	first := cfsTask(9, 5)
	second := cfsTask(2, 5)
	q.Push(first, rq.nextSeq())
	q.Push(second, rq.nextSeq())

	// first-inserted wins despite the larger pid
	assert.Equal(t, 9, q.PopMin(rq.nextSeq).PID)
	assert.Equal(t, 2, q.PopMin(rq.nextSeq).PID)
}

func TestCFSQueue_LazyInvalidationOnPop(t *testing.T) {
	// GIVEN entries for A(vr=10) and B(vr=5)
	rq := NewReadyQueues()
	q := rq.cfs[SubqueueCFS]
	a := cfsTask(1, 10)
	b := cfsTask(2, 5)
	q.Push(a, rq.nextSeq())
	q.Push(b, rq.nextSeq())

	// WHEN B's live vruntime moves past A while queued
	b.Vruntime = 20

	// THEN pop discards B's stale entry, reinserts it fresh, and returns A;
	// the popped snapshot always matches the task's live vruntime
	got := q.PopMin(rq.nextSeq)
	assert.Equal(t, 1, got.PID)
	assert.Equal(t, 1, q.Len())

	got = q.PopMin(rq.nextSeq)
	assert.Equal(t, 2, got.PID)
	assert.Equal(t, 0, q.Len())
}

func TestCFSQueue_WeightSumClampsNonPositiveWeights(t *testing.T) {
	rq := NewReadyQueues()
	q := rq.cfs[SubqueueCFS]
	heavy := cfsTask(1, 0)
	heavy.Weight = 2048
	zero := cfsTask(2, 0)
	zero.Weight = 0
	q.Push(heavy, rq.nextSeq())
	q.Push(zero, rq.nextSeq())

	assert.Equal(t, 2048+NICE0Weight, q.WeightSum())
}

func TestReadyQueues_EnqueueRoutesByAssignment(t *testing.T) {
	rq := NewReadyQueues()

	fifo := NewTask(1, "f", 0, FeatureMap{})
	fifo.AssignedScheduler, fifo.Subqueue = SchedFIFO, SubqueueFIFO
	rr := NewTask(2, "r", 0, FeatureMap{})
	rr.AssignedScheduler, rr.Subqueue = SchedRR, SubqueueRR
	cfs := cfsTask(3, 1)
	idle := NewTask(4, "i", 0, FeatureMap{})
	idle.AssignedScheduler, idle.Subqueue = SchedIDLE, SubqueueIDLE

	assert.True(t, rq.AllEmpty())
	for _, task := range []*Task{fifo, rr, cfs, idle} {
		rq.Enqueue(task)
	}
	assert.False(t, rq.AllEmpty())

	assert.Equal(t, 1, rq.Len(SchedFIFO, SubqueueFIFO))
	assert.Equal(t, 1, rq.Len(SchedRR, SubqueueRR))
	assert.Equal(t, 1, rq.Len(SchedCFS, SubqueueCFS))
	assert.Equal(t, 1, rq.Len(SchedIDLE, SubqueueIDLE))

	var pids []int
	rq.Walk(func(t *Task) { pids = append(pids, t.PID) })
	assert.Equal(t, []int{1, 2, 3, 4}, pids)

	assert.Equal(t, fifo, rq.Dequeue(SchedFIFO, SubqueueFIFO))
	assert.Equal(t, rr, rq.Dequeue(SchedRR, SubqueueRR))
	assert.Equal(t, cfs, rq.Dequeue(SchedCFS, SubqueueCFS))
	assert.Equal(t, idle, rq.Dequeue(SchedIDLE, SubqueueIDLE))
	assert.True(t, rq.AllEmpty())
}

func TestReadyQueues_EnqueueFront(t *testing.T) {
	rq := NewReadyQueues()
	a := NewTask(1, "a", 0, FeatureMap{})
	a.AssignedScheduler, a.Subqueue = SchedFIFO, SubqueueFIFO
	b := NewTask(2, "b", 0, FeatureMap{})
	b.AssignedScheduler, b.Subqueue = SchedFIFO, SubqueueFIFO

	rq.Enqueue(a)
	rq.EnqueueFront(b)
	assert.Equal(t, b, rq.Dequeue(SchedFIFO, SubqueueFIFO))
	assert.Equal(t, a, rq.Dequeue(SchedFIFO, SubqueueFIFO))
}
