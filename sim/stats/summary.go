package stats

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Summary is one row of the cross-run comparison: a single metric for a
// single workload.
type Summary struct {
	Workload     string
	Metric       string
	BaselineMean float64
	AIMean       float64
	MeanDiff     float64
	CohenD       float64
	PairedTP     float64
	WilcoxonP    float64
	CILow        float64
	CIHigh       float64
}

// SummaryColumns is the stat_summary.csv header, in order.
var SummaryColumns = []string{
	"Workload", "Metric", "Baseline_Mean", "AI_Mean", "Mean_Diff",
	"Cohen_d", "Paired_ttest_p", "Wilcoxon_p", "95%CI_low", "95%CI_high",
}

// DefaultBootstrapResamples is the bootstrap resample count used by Compare.
const DefaultBootstrapResamples = 1000

// defaultAlpha is the CI significance level (95% interval).
const defaultAlpha = 0.05

// Compare computes one summary row from paired per-task samples: baseline
// values against AI values for the same pids, in the same order.
func Compare(workload, metric string, baseline, ai []float64, seed int64) (Summary, error) {
	diffs, err := Diffs(baseline, ai)
	if err != nil {
		return Summary{}, fmt.Errorf("comparing %s/%s: %w", workload, metric, err)
	}
	_, pT, err := PairedTTest(baseline, ai)
	if err != nil {
		return Summary{}, fmt.Errorf("comparing %s/%s: %w", workload, metric, err)
	}
	_, pW := Wilcoxon(diffs)
	lo, hi := BootstrapCI(diffs, DefaultBootstrapResamples, defaultAlpha, seed)
	return Summary{
		Workload:     workload,
		Metric:       metric,
		BaselineMean: stat.Mean(baseline, nil),
		AIMean:       stat.Mean(ai, nil),
		MeanDiff:     stat.Mean(diffs, nil),
		CohenD:       CohenD(diffs),
		PairedTP:     pT,
		WilcoxonP:    pW,
		CILow:        lo,
		CIHigh:       hi,
	}, nil
}

// AppendSummary appends rows to the summary CSV at path, writing the header
// only when the file does not exist yet.
func AppendSummary(path string, rows []Summary) error {
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // flushed and checked below

	cw := csv.NewWriter(file)
	if writeHeader {
		if err := cw.Write(SummaryColumns); err != nil {
			return fmt.Errorf("writing summary header: %w", err)
		}
	}
	for _, r := range rows {
		record := []string{
			r.Workload,
			r.Metric,
			formatFloat(r.BaselineMean),
			formatFloat(r.AIMean),
			formatFloat(r.MeanDiff),
			formatFloat(r.CohenD),
			formatFloat(r.PairedTP),
			formatFloat(r.WilcoxonP),
			formatFloat(r.CILow),
			formatFloat(r.CIHigh),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing summary row %s/%s: %w", r.Workload, r.Metric, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
