// Per-task metrics and run aggregates derived from the completed set and
// the event log.

package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/KHDhanu/AVIOS--AI-augmented-Linux-like-Scheduler/sim/trace"
)

// jainEpsilon avoids division by zero in the fairness index.
const jainEpsilon = 1e-9

// TaskMetrics is one completed task's derived timing metrics.
type TaskMetrics struct {
	PID           int
	Name          string
	Arrival       int64
	FirstStart    int64
	Completion    int64
	ExecutionTime int64 // ticks actually consumed
	Waiting       int64 // first start − arrival
	Turnaround    int64 // completion − arrival
	Response      int64 // == waiting, by convention
	Stretch       float64
	Scheduler     SchedClass
	Subqueue      string
}

// TaskMetricsColumns is the per-task metrics CSV header, in order.
var TaskMetricsColumns = []string{
	"pid", "name", "arrival", "first_start", "completion", "execution_time",
	"waiting", "turnaround", "response", "stretch", "scheduler", "subqueue",
}

// TaskMetrics derives metrics for every completed task, in admission order.
func (s *Scheduler) TaskMetrics() []TaskMetrics {
	rows := make([]TaskMetrics, 0, len(s.completed))
	for _, pid := range s.admitted {
		t, ok := s.completed[pid]
		if !ok {
			continue
		}
		waiting := t.FirstStart - t.ArrivalTime
		turnaround := t.CompletionTime - t.ArrivalTime
		stretch := 0.0
		if t.TotalRun > 0 {
			stretch = float64(turnaround) / float64(t.TotalRun)
		}
		rows = append(rows, TaskMetrics{
			PID:           t.PID,
			Name:          t.Name,
			Arrival:       t.ArrivalTime,
			FirstStart:    t.FirstStart,
			Completion:    t.CompletionTime,
			ExecutionTime: t.TotalRun,
			Waiting:       waiting,
			Turnaround:    turnaround,
			Response:      waiting,
			Stretch:       stretch,
			Scheduler:     t.AssignedScheduler,
			Subqueue:      t.Subqueue,
		})
	}
	return rows
}

// Aggregate holds run-level summary metrics.
type Aggregate struct {
	AvgTurnaround    float64
	MedianTurnaround float64
	AvgResponse      float64
	P95Response      float64
	FairnessIndex    float64 // Jain index over per-task execution time
	CoreUtilization  []float64
	ContextSwitches  int64
	TasksTotal       int
	TasksCompleted   int
}

// Aggregate computes run-level metrics from the completed set and the event
// log. Utilization divides each core's RUN events by the elapsed time.
func (s *Scheduler) Aggregate() Aggregate {
	rows := s.TaskMetrics()
	agg := Aggregate{
		ContextSwitches: s.contextSwitches,
		TasksTotal:      len(s.tasks),
		TasksCompleted:  len(s.completed),
		CoreUtilization: make([]float64, len(s.cores)),
	}

	elapsed := float64(max(int64(1), s.clock))
	for cid := range s.cores {
		runs := s.log.CountOnCore(trace.EventRun, cid)
		agg.CoreUtilization[cid] = float64(runs) / elapsed
	}

	if len(rows) == 0 {
		return agg
	}

	turnarounds := make([]float64, len(rows))
	responses := make([]float64, len(rows))
	execSum, execSqSum := 0.0, 0.0
	for i, r := range rows {
		turnarounds[i] = float64(r.Turnaround)
		responses[i] = float64(r.Response)
		e := float64(r.ExecutionTime)
		execSum += e
		execSqSum += e * e
	}
	agg.AvgTurnaround = Mean(turnarounds)
	agg.MedianTurnaround = Percentile(turnarounds, 50)
	agg.AvgResponse = Mean(responses)
	agg.P95Response = Percentile(responses, 95)
	agg.FairnessIndex = execSum * execSum / (float64(len(rows))*execSqSum + jainEpsilon)
	return agg
}

// LogSummary reports the aggregate at info level.
func (a Aggregate) LogSummary() {
	logrus.Infof("simulation summary: %d/%d tasks finished, %d context switches",
		a.TasksCompleted, a.TasksTotal, a.ContextSwitches)
	if a.TasksCompleted > 0 {
		logrus.Infof("avg turnaround %.2f, median turnaround %.2f, avg response %.2f, p95 response %.2f, fairness %.4f",
			a.AvgTurnaround, a.MedianTurnaround, a.AvgResponse, a.P95Response, a.FairnessIndex)
	}
	for cid, u := range a.CoreUtilization {
		logrus.Infof("core %d utilization %.3f", cid, u)
	}
}

// WriteTaskMetricsCSV renders per-task metrics as CSV, one row per task.
func WriteTaskMetricsCSV(w io.Writer, rows []TaskMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TaskMetricsColumns); err != nil {
		return fmt.Errorf("writing task metrics header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.PID),
			r.Name,
			strconv.FormatInt(r.Arrival, 10),
			strconv.FormatInt(r.FirstStart, 10),
			strconv.FormatInt(r.Completion, 10),
			strconv.FormatInt(r.ExecutionTime, 10),
			strconv.FormatInt(r.Waiting, 10),
			strconv.FormatInt(r.Turnaround, 10),
			strconv.FormatInt(r.Response, 10),
			strconv.FormatFloat(r.Stretch, 'g', -1, 64),
			string(r.Scheduler),
			r.Subqueue,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing task metrics row pid=%d: %w", r.PID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
