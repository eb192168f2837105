package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KHDhanu/AVIOS--AI-augmented-Linux-like-Scheduler/collector"
)

var (
	collectInterval float64
	collectOut      string
	collectSamples  int
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Sample per-process features from /proc into a trace CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := collector.New(collector.Options{
			Interval: time.Duration(collectInterval * float64(time.Second)),
			Out:      collectOut,
			Samples:  collectSamples,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logrus.Infof("Starting collector, writing to %s (Ctrl-C to stop)", collectOut)
		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logrus.Info("Stopping collector.")
		return nil
	},
}

func init() {
	collectCmd.Flags().Float64Var(&collectInterval, "interval", 1.0, "Sampling interval in seconds")
	collectCmd.Flags().StringVar(&collectOut, "out", "linux_dataset.csv", "Output CSV path")
	collectCmd.Flags().IntVar(&collectSamples, "samples", 0, "Number of sweeps (0 = run until interrupted)")
	rootCmd.AddCommand(collectCmd)
}
