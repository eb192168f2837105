package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/KHDhanu/AVIOS--AI-augmented-Linux-like-Scheduler/sim"
	"github.com/KHDhanu/AVIOS--AI-augmented-Linux-like-Scheduler/sim/stats"
)

var (
	workloadName string
	statsSeed    int64
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run both variants over one trace and write the paired statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		variants := []sim.Variant{sim.VariantBaseline, sim.VariantAI}
		metricsByVariant := make(map[sim.Variant][]sim.TaskMetrics, len(variants))
		for _, variant := range variants {
			// each run mutates its tasks, so load fresh per variant
			tasks, err := sim.LoadTasks(inputCSV)
			if err != nil {
				return err
			}
			runner, err := buildRunner(cfg, variant, tasks)
			if err != nil {
				return err
			}
			logrus.Infof("Running %s variant over %s (%d tasks)", variant, inputCSV, len(tasks))
			runner.Run()
			if err := runner.WriteOutputs(outDir); err != nil {
				return err
			}
			runner.Scheduler().Aggregate().LogSummary()
			metricsByVariant[variant] = runner.Scheduler().TaskMetrics()
		}

		rows, err := summarize(workloadName, metricsByVariant[sim.VariantBaseline], metricsByVariant[sim.VariantAI])
		if err != nil {
			return err
		}
		summaryPath := filepath.Join(outDir, "stat_summary.csv")
		if err := stats.AppendSummary(summaryPath, rows); err != nil {
			return err
		}
		logrus.Infof("Saved %s", summaryPath)
		return nil
	},
}

// summarize pairs per-task metrics by pid (tasks completed in both runs) and
// produces one summary row per compared metric.
func summarize(workload string, baseline, ai []sim.TaskMetrics) ([]stats.Summary, error) {
	aiByPID := make(map[int]sim.TaskMetrics, len(ai))
	for _, m := range ai {
		aiByPID[m.PID] = m
	}

	var baseTurn, aiTurn, baseResp, aiResp []float64
	for _, b := range baseline {
		a, ok := aiByPID[b.PID]
		if !ok {
			continue
		}
		baseTurn = append(baseTurn, float64(b.Turnaround))
		aiTurn = append(aiTurn, float64(a.Turnaround))
		baseResp = append(baseResp, float64(b.Response))
		aiResp = append(aiResp, float64(a.Response))
	}
	if len(baseTurn) == 0 {
		return nil, fmt.Errorf("no tasks completed in both runs; nothing to compare")
	}

	turn, err := stats.Compare(workload, "turnaround", baseTurn, aiTurn, statsSeed)
	if err != nil {
		return nil, err
	}
	resp, err := stats.Compare(workload, "response", baseResp, aiResp, statsSeed)
	if err != nil {
		return nil, err
	}
	return []stats.Summary{turn, resp}, nil
}

func init() {
	addSchedulerFlags(compareCmd)
	compareCmd.Flags().StringVar(&workloadName, "workload", "workload", "Workload name for the summary rows")
	compareCmd.Flags().Int64Var(&statsSeed, "seed", 42, "Bootstrap resampling seed")
	if err := compareCmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(compareCmd)
}
