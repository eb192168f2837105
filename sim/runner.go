// Simulation driver: loads the input table, buckets tasks by arrival tick,
// advances the tick loop until the system drains or the safety cap fires,
// and exports the run's CSVs.

package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

// requiredColumns must be present in the input CSV. One of the two total-time
// columns is additionally required (checked separately).
var requiredColumns = []string{"PID", "Name", "Arrival_Sec", "Scheduling_Policy"}

// LoadTasks reads the simulator input CSV and returns tasks sorted stably by
// arrival tick. Every column becomes a feature; missing cells stay missing.
func LoadTasks(path string) ([]*Task, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input csv: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only file; close error is not actionable

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("input csv missing required column %q", name)
		}
	}
	_, hasTicks := index["Total_Time_Ticks"]
	_, hasRuntime := index["se.sum_exec_runtime"]
	if !hasTicks && !hasRuntime {
		return nil, fmt.Errorf("input csv needs Total_Time_Ticks or se.sum_exec_runtime")
	}

	var tasks []*Task
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading csv at row %d: %w", row, err)
		}

		features := make(FeatureMap, len(header))
		for name, i := range index {
			if i < len(record) {
				features[name] = ParseValue(record[i])
			}
		}

		pid, err := strconv.Atoi(record[index["PID"]])
		if err != nil {
			return nil, fmt.Errorf("invalid PID at row %d: %w", row, err)
		}
		arrival := int64(features.Float("Arrival_Sec", 0))
		tasks = append(tasks, NewTask(pid, record[index["Name"]], arrival, features))
		row++
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].ArrivalTime < tasks[j].ArrivalTime
	})
	return tasks, nil
}

// Runner drives one scheduler over a task list.
type Runner struct {
	sched *Scheduler
	tasks []*Task
}

// NewRunner pairs a scheduler with its workload.
func NewRunner(sched *Scheduler, tasks []*Task) *Runner {
	return &Runner{sched: sched, tasks: tasks}
}

// Scheduler returns the underlying scheduler (for metrics after Run).
func (r *Runner) Scheduler() *Scheduler { return r.sched }

// Run executes the tick loop. Arrivals at tick t are admitted before tick t
// runs, so they are visible to that tick's pick phase. The loop ends when
// the system drains after the last arrival, or at the safety cap.
func (r *Runner) Run() {
	buckets := make(map[int64][]*Task, len(r.tasks))
	lastArrival := int64(-1)
	for _, t := range r.tasks {
		buckets[t.ArrivalTime] = append(buckets[t.ArrivalTime], t)
		if t.ArrivalTime > lastArrival {
			lastArrival = t.ArrivalTime
		}
	}

	maxTicks := r.sched.cfg.MaxTicks
	for tick := int64(0); ; tick++ {
		if tick >= maxTicks {
			logrus.Warnf("halting at safety cap of %d ticks with %d/%d tasks completed",
				maxTicks, r.sched.TasksCompleted(), r.sched.TasksAdmitted())
			return
		}
		r.sched.AdvanceClock(tick)
		for _, t := range buckets[tick] {
			r.sched.Admit(t)
		}
		if tick > lastArrival && r.sched.Idle() {
			logrus.Infof("[tick %07d] simulation drained", tick)
			return
		}
		r.sched.Tick(tick)
	}
}

// WriteOutputs writes <variant>_logs.csv and <variant>_task_metrics.csv
// under dir, creating it if needed.
func (r *Runner) WriteOutputs(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	stem := r.sched.variant.FileStem()

	logsPath := filepath.Join(dir, stem+"_logs.csv")
	if err := writeFile(logsPath, r.sched.log.WriteCSV); err != nil {
		return err
	}
	metricsPath := filepath.Join(dir, stem+"_task_metrics.csv")
	return writeFile(metricsPath, func(w io.Writer) error {
		return WriteTaskMetricsCSV(w, r.sched.TaskMetrics())
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
