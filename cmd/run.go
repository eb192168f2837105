package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/KHDhanu/AVIOS--AI-augmented-Linux-like-Scheduler/sim"
	"github.com/KHDhanu/AVIOS--AI-augmented-Linux-like-Scheduler/sim/classify"
)

var (
	inputCSV       string
	variantName    string
	numCores       int
	rrQuantum      int64
	schedLatency   int64
	minGranularity int64
	maxTicks       int64
	outDir         string
	configPath     string
	modelsDir      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scheduler variant over a recorded trace",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, variant, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		tasks, err := sim.LoadTasks(inputCSV)
		if err != nil {
			return err
		}
		logrus.Infof("Starting %s simulation: %d tasks, %d cores, rr_quantum=%d, max_ticks=%d",
			variant, len(tasks), cfg.NumCores, cfg.RRQuantum, cfg.MaxTicks)

		runner, err := buildRunner(cfg, variant, tasks)
		if err != nil {
			return err
		}
		runner.Run()
		if err := runner.WriteOutputs(outDir); err != nil {
			return err
		}
		runner.Scheduler().Aggregate().LogSummary()
		return nil
	},
}

// resolveConfig merges defaults, the optional YAML bundle, and explicit
// flags (flags win). Returns the validated config and variant.
func resolveConfig(cmd *cobra.Command) (sim.Config, sim.Variant, error) {
	cfg := sim.DefaultConfig()

	variant := sim.Variant(variantName)
	if configPath != "" {
		bundle, err := sim.LoadBundle(configPath)
		if err != nil {
			return cfg, "", err
		}
		bundle.Apply(&cfg)
		if bundle.Variant != "" && !cmd.Flags().Changed("variant") {
			variant = sim.Variant(bundle.Variant)
		}
	}
	if !sim.IsValidVariant(string(variant)) {
		return cfg, "", fmt.Errorf("unknown variant %q (valid: baseline, ai)", variant)
	}
	if variant == "" {
		variant = sim.VariantBaseline
	}

	if cmd.Flags().Changed("cores") {
		cfg.NumCores = numCores
	}
	if cmd.Flags().Changed("rr-quantum") {
		cfg.RRQuantum = rrQuantum
	}
	if cmd.Flags().Changed("sched-latency") {
		cfg.SchedLatency = schedLatency
	}
	if cmd.Flags().Changed("min-granularity") {
		cfg.MinGranularity = minGranularity
	}
	if cmd.Flags().Changed("max-ticks") {
		cfg.MaxTicks = maxTicks
	}
	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}
	return cfg, variant, nil
}

// buildRunner constructs the scheduler (with its classifier capability for
// the AI variant) and pairs it with the workload.
func buildRunner(cfg sim.Config, variant sim.Variant, tasks []*sim.Task) (*sim.Runner, error) {
	var classifier *sim.Classifier
	if variant == sim.VariantAI {
		capability := classify.Builtin()
		if modelsDir != "" {
			loaded, err := classify.Load(modelsDir)
			if err != nil {
				return nil, err
			}
			capability = loaded
		}
		classifier = sim.NewClassifier(capability)
	}
	sched := sim.NewScheduler(cfg, variant, classifier)
	return sim.NewRunner(sched, tasks), nil
}

func init() {
	addSchedulerFlags(runCmd)
	runCmd.Flags().StringVar(&variantName, "variant", "baseline", "Scheduler variant (baseline, ai)")
	if err := runCmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(runCmd)
}

func addSchedulerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&inputCSV, "input", "", "Input trace CSV")
	cmd.Flags().IntVar(&numCores, "cores", sim.DefaultNumCores, "Number of simulated cores")
	cmd.Flags().Int64Var(&rrQuantum, "rr-quantum", sim.DefaultRRQuantum, "Baseline round-robin quantum in ticks")
	cmd.Flags().Int64Var(&schedLatency, "sched-latency", sim.DefaultSchedLatency, "CFS scheduling latency window in ticks")
	cmd.Flags().Int64Var(&minGranularity, "min-granularity", sim.DefaultMinGranularity, "Minimum quantum in ticks")
	cmd.Flags().Int64Var(&maxTicks, "max-ticks", sim.DefaultMaxTicks, "Safety cap on simulated ticks")
	cmd.Flags().StringVar(&outDir, "outdir", "results", "Output directory for CSVs")
	cmd.Flags().StringVar(&configPath, "config", "", "Optional YAML scheduler config bundle")
	cmd.Flags().StringVar(&modelsDir, "models", "", "Directory with classifier model artifacts (AI variant)")
}
