package sim

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTasks_SortsByArrival(t *testing.T) {
	// GIVEN rows out of arrival order
	path := writeCSV(t, strings.Join([]string{
		"PID,Name,Arrival_Sec,Scheduling_Policy,Total_Time_Ticks,se.vruntime",
		"30,late,9,SCHED_OTHER,5,1.5",
		"10,early,0,SCHED_FIFO,7,",
		"20,mid,3,SCHED_RR,2,0.25",
	}, "\n") + "\n")

	// WHEN loaded
	tasks, err := LoadTasks(path)
	require.NoError(t, err)

	// THEN tasks come back sorted stably by arrival tick
	require.Len(t, tasks, 3)
	assert.Equal(t, []int{10, 20, 30}, []int{tasks[0].PID, tasks[1].PID, tasks[2].PID})
	assert.Equal(t, "early", tasks[0].Name)
	assert.Equal(t, int64(0), tasks[0].ArrivalTime)
	assert.Equal(t, int64(7), tasks[0].TotalTime)
	assert.Equal(t, "SCHED_FIFO", tasks[0].Features.Str("Scheduling_Policy"))
	assert.Equal(t, 1.5, tasks[2].Vruntime)
}

func TestLoadTasks_MissingRequiredColumnFailsFast(t *testing.T) {
	path := writeCSV(t, "PID,Name,Scheduling_Policy,Total_Time_Ticks\n1,a,SCHED_OTHER,5\n")
	_, err := LoadTasks(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Arrival_Sec")
}

func TestLoadTasks_NeedsOneTotalTimeColumn(t *testing.T) {
	path := writeCSV(t, "PID,Name,Arrival_Sec,Scheduling_Policy\n1,a,0,SCHED_OTHER\n")
	_, err := LoadTasks(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Total_Time_Ticks")
}

func TestLoadTasks_AcceptsSumExecRuntimeAlone(t *testing.T) {
	path := writeCSV(t, "PID,Name,Arrival_Sec,Scheduling_Policy,se.sum_exec_runtime\n1,a,0,SCHED_OTHER,42.7\n")
	tasks, err := LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(42), tasks[0].TotalTime)
}

func TestLoadTasks_InvalidPID(t *testing.T) {
	path := writeCSV(t, "PID,Name,Arrival_Sec,Scheduling_Policy,Total_Time_Ticks\nxyz,a,0,SCHED_OTHER,5\n")
	_, err := LoadTasks(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PID")
}

func TestRunner_DrainAndStop(t *testing.T) {
	// GIVEN 100 short tasks arriving two per tick over [0, 50)
	cfg := testConfig(4)
	cfg.MaxTicks = 10000
	s := NewScheduler(cfg, VariantBaseline, nil)
	tasks := make([]*Task, 0, 100)
	for i := 0; i < 100; i++ {
		task := NewTask(i+1, fmt.Sprintf("t%d", i+1), int64(i/2), FeatureMap{
			"Scheduling_Policy": StringValue("SCHED_OTHER"),
			"Total_Time_Ticks":  IntValue(5),
		})
		tasks = append(tasks, task)
	}

	// WHEN the driver runs
	NewRunner(s, tasks).Run()

	// THEN the loop terminates after the last arrival with everything done
	assert.Equal(t, 100, s.TasksCompleted())
	assert.Equal(t, 100, s.TasksAdmitted())
	assert.True(t, s.Idle())
	assert.Greater(t, s.Clock(), int64(49))
	assert.Less(t, s.Clock(), cfg.MaxTicks)
	require.NoError(t, s.AuditState())
}

func TestRunner_SafetyCapHaltsRunawayRuns(t *testing.T) {
	// GIVEN more work than the cap allows
	cfg := testConfig(1)
	cfg.MaxTicks = 10
	s := NewScheduler(cfg, VariantBaseline, nil)
	task := policyTask(1, 100, "SCHED_FIFO")

	// WHEN the driver runs
	NewRunner(s, []*Task{task}).Run()

	// THEN it halts at the cap with collected state intact
	assert.Equal(t, 0, s.TasksCompleted())
	assert.Equal(t, int64(10), task.TotalRun)
	require.NoError(t, s.AuditState())
}

func TestRunner_LateArrivalsKeepTheLoopAlive(t *testing.T) {
	// a gap before the only arrival must not terminate the loop early
	cfg := testConfig(1)
	s := NewScheduler(cfg, VariantBaseline, nil)
	task := NewTask(1, "late", 40, FeatureMap{
		"Scheduling_Policy": StringValue("SCHED_FIFO"),
		"Total_Time_Ticks":  IntValue(3),
	})

	NewRunner(s, []*Task{task}).Run()

	assert.Equal(t, 1, s.TasksCompleted())
	assert.Equal(t, int64(40), task.FirstStart)
	assert.Equal(t, int64(42), task.CompletionTime)
}

func TestRunner_WriteOutputs(t *testing.T) {
	s := NewScheduler(testConfig(1), VariantBaseline, nil)
	r := NewRunner(s, []*Task{policyTask(1, 3, "SCHED_FIFO")})
	r.Run()

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, r.WriteOutputs(dir))

	logs, err := os.ReadFile(filepath.Join(dir, "linux_baseline_logs.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(logs), "time,event,core,pid,name"))

	metrics, err := os.ReadFile(filepath.Join(dir, "linux_baseline_task_metrics.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(metrics), "pid,name,arrival"))
	assert.Contains(t, string(metrics), "FIFO")
}
