package portfolio

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func pathFromTotals(totals []float64) Path {
	var p Path
	for _, v := range totals {
		p.States = append(p.States, State{Public: v, Total: v})
	}
	return p
}

func compounding(start, r float64, n int) []float64 {
	out := make([]float64, n+1)
	out[0] = start
	for i := 1; i <= n; i++ {
		out[i] = out[i-1] * (1.0 + r)
	}
	return out
}

func TestCAGRConstantGrowth(t *testing.T) {
	m := Compute(pathFromTotals(compounding(100000.0, 0.01, 12)), 0.0)
	require.InDelta(t, math.Pow(1.01, 12)-1.0, m.CAGR, 1e-12)
	require.InDelta(t, math.Pow(1.01, 12)-1.0, m.CumulativeReturn, 1e-12)
	require.Zero(t, m.MaxDrawdown)
}

func TestZeroVolatilityIsDegenerate(t *testing.T) {
	m := Compute(pathFromTotals(compounding(1000.0, 0.01, 24)), 0.02)
	require.InDelta(t, 0.0, m.Volatility, 1e-12)
	require.True(t, math.IsNaN(m.Sharpe))
	require.True(t, m.Degenerate())
}

func TestMaxDrawdown(t *testing.T) {
	m := Compute(pathFromTotals([]float64{100, 120, 90, 130, 110}), 0.0)
	require.InDelta(t, 90.0/120.0-1.0, m.MaxDrawdown, 1e-12)
	require.Negative(t, m.MaxDrawdown)
}

func TestUndefinedOnNonPositiveStart(t *testing.T) {
	m := Compute(pathFromTotals([]float64{0, 10, 20}), 0.0)
	require.True(t, math.IsNaN(m.CAGR))
	require.True(t, math.IsNaN(m.IRR))
}

func TestSharpe(t *testing.T) {
	m := Compute(pathFromTotals([]float64{100, 102, 101, 104, 103, 107}), 0.02)
	require.False(t, math.IsNaN(m.Sharpe))
	require.Greater(t, m.Volatility, 0.0)
	require.InDelta(t, (m.CAGR-0.02)/m.Volatility, m.Sharpe, 1e-12)
}

func TestIRRFinite(t *testing.T) {
	m := Compute(pathFromTotals(compounding(100000.0, 0.005, 60)), 0.0)
	require.False(t, math.IsNaN(m.IRR))
	require.Greater(t, m.IRR, -1.0)
}

func TestFinalAllocation(t *testing.T) {
	p := Path{States: []State{
		{Public: 50, Private: 30, Cash: 20, Total: 100},
		{Public: 60, Private: 25, Cash: 15, Total: 100},
	}}
	m := Compute(p, 0.0)
	require.InDelta(t, 0.60, m.PublicPct, 1e-12)
	require.InDelta(t, 0.25, m.PrivatePct, 1e-12)
	require.InDelta(t, 0.15, m.CashPct, 1e-12)
}

func TestNaNMarshalsAsNull(t *testing.T) {
	m := Metrics{CAGR: 0.1, Sharpe: math.NaN(), Volatility: math.Inf(1)}
	b, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.InDelta(t, 0.1, decoded["cagr"].(float64), 1e-12)
	require.Nil(t, decoded["sharpe"])
	require.Nil(t, decoded["volatility"])
}
