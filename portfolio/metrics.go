package portfolio

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Metrics are the scalar statistics of one completed trajectory. Undefined
// values (zero volatility, non-positive starting wealth, no IRR root) are
// NaN and marshal as null rather than erroring.
type Metrics struct {
	CAGR             float64 `json:"cagr"`
	Volatility       float64 `json:"volatility"`
	Sharpe           float64 `json:"sharpe"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	CumulativeReturn float64 `json:"cumulative_return"`
	IRR              float64 `json:"irr"`
	PublicPct        float64 `json:"final_public_pct"`
	PrivatePct       float64 `json:"final_private_pct"`
	CashPct          float64 `json:"final_cash_pct"`
}

// Compute scores a completed path. riskFree is the annual risk-free rate
// used for the Sharpe ratio.
func Compute(p Path, riskFree float64) Metrics {
	total := p.Totals()
	n := len(total) - 1
	var m Metrics

	m.CAGR = math.NaN()
	m.CumulativeReturn = math.NaN()
	if total[0] > 0 && n > 0 {
		m.CAGR = math.Pow(total[n]/total[0], 12.0/float64(n)) - 1.0
		m.CumulativeReturn = total[n]/total[0] - 1.0
	}

	rets := monthlyReturns(total)
	_, std := stat.MeanStdDev(rets, nil)
	m.Volatility = std * math.Sqrt(12.0)

	m.Sharpe = math.NaN()
	if m.Volatility > 0 && !math.IsNaN(m.CAGR) {
		m.Sharpe = (m.CAGR - riskFree) / m.Volatility
	}

	m.MaxDrawdown = maxDrawdown(total)

	m.IRR = irr(total)

	last := p.States[n]
	m.PublicPct = math.NaN()
	m.PrivatePct = math.NaN()
	m.CashPct = math.NaN()
	if last.Total > 0 {
		m.PublicPct = last.Public / last.Total
		m.PrivatePct = last.Private / last.Total
		m.CashPct = last.Cash / last.Total
	}
	return m
}

// Degenerate reports whether any risk statistic came out undefined.
func (m Metrics) Degenerate() bool {
	return m.Volatility == 0 || math.IsNaN(m.Volatility) || math.IsNaN(m.Sharpe)
}

func (m Metrics) MarshalJSON() ([]byte, error) {
	f := func(v float64) interface{} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	}
	return json.Marshal(map[string]interface{}{
		"cagr":              f(m.CAGR),
		"volatility":        f(m.Volatility),
		"sharpe":            f(m.Sharpe),
		"max_drawdown":      f(m.MaxDrawdown),
		"cumulative_return": f(m.CumulativeReturn),
		"irr":               f(m.IRR),
		"final_public_pct":  f(m.PublicPct),
		"final_private_pct": f(m.PrivatePct),
		"final_cash_pct":    f(m.CashPct),
	})
}

func monthlyReturns(total []float64) []float64 {
	out := make([]float64, 0, len(total)-1)
	for i := 1; i < len(total); i++ {
		if total[i-1] == 0 {
			out = append(out, 0.0)
			continue
		}
		out = append(out, total[i]/total[i-1]-1.0)
	}
	return out
}

// maxDrawdown is the largest peak-to-trough decline, as a negative fraction
// (0 when the series never falls below a prior peak).
func maxDrawdown(x []float64) float64 {
	mdd := 0.0
	peak := x[0]
	for _, v := range x {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if d := v/peak - 1.0; d < mdd {
				mdd = d
			}
		}
	}
	return mdd
}

// irr solves for the monthly internal rate of return of the trajectory's
// cash-flow view (initial outlay, then monthly value changes) and annualizes
// it. The root search minimizes squared NPV over r = expm1(p), keeping the
// rate above -100%. NaN when no root is found.
func irr(total []float64) float64 {
	if len(total) < 2 || total[0] <= 0 {
		return math.NaN()
	}
	flows := make([]float64, len(total))
	flows[0] = -total[0]
	for i := 1; i < len(total); i++ {
		flows[i] = total[i] - total[i-1]
	}
	scale := math.Abs(flows[0])

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			v := npv(flows, math.Expm1(p[0]))
			return v * v
		},
	}
	res, err := optimize.Minimize(problem, []float64{0.0}, nil, &optimize.NelderMead{})
	if err != nil || math.Sqrt(res.F) > 1e-3*scale {
		return math.NaN()
	}
	r := math.Expm1(res.X[0])
	return math.Pow(1.0+r, 12.0) - 1.0
}

func npv(flows []float64, r float64) float64 {
	v := 0.0
	df := 1.0
	for _, f := range flows {
		v += f * df
		df /= 1.0 + r
	}
	return v
}
