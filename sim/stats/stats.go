// Package stats implements the paired statistical comparison between a
// baseline and an AI run over the same workload: paired t-test, Wilcoxon
// signed-rank (normal approximation), Cohen's d, and a bootstrap CI of the
// mean difference.
package stats

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Diffs returns the paired differences x[i] − y[i].
func Diffs(x, y []float64) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("paired samples differ in length: %d vs %d", len(x), len(y))
	}
	d := make([]float64, len(x))
	for i := range x {
		d[i] = x[i] - y[i]
	}
	return d, nil
}

// PairedTTest runs a two-sided paired t-test and returns the t statistic and
// p-value. The p-value is NaN when the differences have zero variance.
func PairedTTest(x, y []float64) (tStat, p float64, err error) {
	d, err := Diffs(x, y)
	if err != nil {
		return 0, 0, err
	}
	n := len(d)
	if n < 2 {
		return 0, 0, fmt.Errorf("paired t-test needs at least 2 pairs, got %d", n)
	}
	mean := stat.Mean(d, nil)
	sd := stat.StdDev(d, nil)
	if sd == 0 {
		return math.NaN(), math.NaN(), nil
	}
	tStat = mean / (sd / math.Sqrt(float64(n)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	p = 2 * dist.CDF(-math.Abs(tStat))
	return tStat, p, nil
}

// Wilcoxon runs the two-sided Wilcoxon signed-rank test on the paired
// differences using the normal approximation, with average ranks for ties.
// Zero differences are discarded; if every difference is zero the statistic
// is undefined and both returns are NaN.
func Wilcoxon(diffs []float64) (w, p float64) {
	nonzero := make([]float64, 0, len(diffs))
	for _, d := range diffs {
		if d != 0 {
			nonzero = append(nonzero, d)
		}
	}
	n := len(nonzero)
	if n == 0 {
		return math.NaN(), math.NaN()
	}

	type ranked struct {
		abs  float64
		sign float64
	}
	rs := make([]ranked, n)
	for i, d := range nonzero {
		rs[i] = ranked{abs: math.Abs(d), sign: math.Copysign(1, d)}
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].abs < rs[j].abs })

	// average ranks across ties
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && rs[j].abs == rs[i].abs {
			j++
		}
		avg := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[k] = avg
		}
		i = j
	}

	wPlus, wMinus := 0.0, 0.0
	for i, r := range rs {
		if r.sign > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}
	w = math.Min(wPlus, wMinus)

	nf := float64(n)
	mu := nf * (nf + 1) / 4
	sigma := math.Sqrt(nf * (nf + 1) * (2*nf + 1) / 24)
	if sigma == 0 {
		return w, math.NaN()
	}
	z := (w - mu) / sigma
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	p = 2 * normal.CDF(-math.Abs(z))
	if p > 1 {
		p = 1
	}
	return w, p
}

// CohenD returns the paired-samples effect size mean(d)/std(d), with the
// sample (n−1) standard deviation. NaN when the differences are constant.
func CohenD(diffs []float64) float64 {
	sd := stat.StdDev(diffs, nil)
	if sd == 0 {
		return math.NaN()
	}
	return stat.Mean(diffs, nil) / sd
}

// BootstrapCI returns the percentile bootstrap confidence interval of the
// mean of data. Deterministic for a fixed seed.
func BootstrapCI(data []float64, nBoot int, alpha float64, seed int64) (lo, hi float64) {
	if len(data) == 0 || nBoot <= 0 {
		return math.NaN(), math.NaN()
	}
	rng := rand.New(rand.NewSource(seed))
	means := make([]float64, nBoot)
	sample := make([]float64, len(data))
	for b := 0; b < nBoot; b++ {
		for i := range sample {
			sample[i] = data[rng.Intn(len(data))]
		}
		means[b] = stat.Mean(sample, nil)
	}
	sort.Float64s(means)
	lo = stat.Quantile(alpha/2, stat.LinInterp, means, nil)
	hi = stat.Quantile(1-alpha/2, stat.LinInterp, means, nil)
	return lo, hi
}
