package sim

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/banachtech/sleevesim/portfolio"
	"gonum.org/v1/gonum/stat"
)

// PathResult is one completed path with its score.
type PathResult struct {
	Index    int                 `json:"path"`
	States   []portfolio.State   `json:"states"`
	Warnings []portfolio.Warning `json:"warnings,omitempty"`
	Metrics  portfolio.Metrics   `json:"metrics"`
}

// PathWarning ties a warning to the path it occurred on.
type PathWarning struct {
	Path int `json:"path"`
	portfolio.Warning
}

// Series is a per-month statistic band across paths.
type Series struct {
	Mean []float64 `json:"mean"`
	P05  []float64 `json:"p05"`
	P25  []float64 `json:"p25"`
	P50  []float64 `json:"p50"`
	P75  []float64 `json:"p75"`
	P95  []float64 `json:"p95"`
}

// Quantiles summarizes the cross-path distribution of one terminal metric.
// NaN entries marshal as null.
type Quantiles struct {
	Mean float64 `json:"mean"`
	P05  float64 `json:"p05"`
	P25  float64 `json:"p25"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P95  float64 `json:"p95"`
}

func (q Quantiles) MarshalJSON() ([]byte, error) {
	f := func(v float64) interface{} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	}
	return json.Marshal(map[string]interface{}{
		"mean": f(q.Mean),
		"p05":  f(q.P05),
		"p25":  f(q.P25),
		"p50":  f(q.P50),
		"p75":  f(q.P75),
		"p95":  f(q.P95),
	})
}

// Aggregate holds the cross-path reduction, present when num_paths > 1.
type Aggregate struct {
	Total       Series               `json:"total"`
	MeanPublic  []float64            `json:"mean_public"`
	MeanPrivate []float64            `json:"mean_private"`
	MeanCash    []float64            `json:"mean_cash"`
	Metrics     map[string]Quantiles `json:"metrics"`
}

// Result is the engine's sole output: per-path trajectories and metrics,
// the cross-path aggregate, and every non-fatal notice collected along the
// way. Partial marks a cancelled run that returned only completed paths.
type Result struct {
	Paths     []PathResult  `json:"paths"`
	Aggregate *Aggregate    `json:"aggregate,omitempty"`
	Warnings  []PathWarning `json:"warnings,omitempty"`
	Partial   bool          `json:"partial,omitempty"`
}

// quantiles works over the full collected sample, never a running
// approximation, so the reduction is independent of path arrival order.
// NaN samples are dropped first; an empty sample yields all-NaN.
func quantiles(xs []float64) Quantiles {
	vals := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		nan := math.NaN()
		return Quantiles{Mean: nan, P05: nan, P25: nan, P50: nan, P75: nan, P95: nan}
	}
	sort.Float64s(vals)
	q := func(p float64) float64 { return stat.Quantile(p, stat.Empirical, vals, nil) }
	return Quantiles{
		Mean: stat.Mean(vals, nil),
		P05:  q(0.05),
		P25:  q(0.25),
		P50:  q(0.50),
		P75:  q(0.75),
		P95:  q(0.95),
	}
}

// aggregate reduces completed paths into per-month bands and terminal metric
// distributions.
func aggregate(paths []PathResult) *Aggregate {
	months := len(paths[0].States)
	agg := &Aggregate{
		Total: Series{
			Mean: make([]float64, months),
			P05:  make([]float64, months),
			P25:  make([]float64, months),
			P50:  make([]float64, months),
			P75:  make([]float64, months),
			P95:  make([]float64, months),
		},
		MeanPublic:  make([]float64, months),
		MeanPrivate: make([]float64, months),
		MeanCash:    make([]float64, months),
	}

	totals := make([]float64, len(paths))
	for m := 0; m < months; m++ {
		var pub, prv, cash float64
		for i, p := range paths {
			totals[i] = p.States[m].Total
			pub += p.States[m].Public
			prv += p.States[m].Private
			cash += p.States[m].Cash
		}
		q := quantiles(totals)
		agg.Total.Mean[m] = q.Mean
		agg.Total.P05[m] = q.P05
		agg.Total.P25[m] = q.P25
		agg.Total.P50[m] = q.P50
		agg.Total.P75[m] = q.P75
		agg.Total.P95[m] = q.P95
		n := float64(len(paths))
		agg.MeanPublic[m] = pub / n
		agg.MeanPrivate[m] = prv / n
		agg.MeanCash[m] = cash / n
	}

	pick := func(f func(portfolio.Metrics) float64) []float64 {
		out := make([]float64, len(paths))
		for i, p := range paths {
			out[i] = f(p.Metrics)
		}
		return out
	}
	agg.Metrics = map[string]Quantiles{
		"cagr":              quantiles(pick(func(m portfolio.Metrics) float64 { return m.CAGR })),
		"volatility":        quantiles(pick(func(m portfolio.Metrics) float64 { return m.Volatility })),
		"sharpe":            quantiles(pick(func(m portfolio.Metrics) float64 { return m.Sharpe })),
		"max_drawdown":      quantiles(pick(func(m portfolio.Metrics) float64 { return m.MaxDrawdown })),
		"cumulative_return": quantiles(pick(func(m portfolio.Metrics) float64 { return m.CumulativeReturn })),
		"irr":               quantiles(pick(func(m portfolio.Metrics) float64 { return m.IRR })),
	}
	return agg
}
