// Package portfolio merges the public sleeve, private funds and cash into a
// single monthly wealth trajectory and scores completed trajectories.
package portfolio

import (
	"context"

	"github.com/banachtech/sleevesim/private"
	"github.com/banachtech/sleevesim/rebalance"
)

// State is one monthly snapshot. Total is always the exact sum of the three
// sleeves; it is stored rather than recomputed so the identity is visible in
// serialized output.
type State struct {
	Public  float64 `json:"public"`
	Private float64 `json:"private"`
	Cash    float64 `json:"cash"`
	Total   float64 `json:"total"`
}

// Path is one complete trajectory with the anomalies recorded along the way.
// States has horizon+1 entries: index 0 is the initial allocation.
type Path struct {
	States   []State   `json:"states"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Simulate runs one path over the horizon. rets holds one row of per-asset
// returns per month, aligned with the sleeve's assets; row m is applied at
// month m+1. Month m runs as: step public sleeve, demand capital calls, fund
// them cash first then by pro-rata liquidation of the sleeve, credit
// distributions, accrue cash interest. An unfundable remainder becomes a
// shortfall warning and the path continues with nothing driven negative.
//
// Cancellation is checked between months; a cancelled path returns
// ctx.Err() and no partial states escape.
func Simulate(ctx context.Context, sleeve *rebalance.Sleeve, funds []*private.Fund, rets [][]float64, horizon int, cashRate float64) (Path, error) {
	var p Path
	cash := 0.0

	for m := 0; m <= horizon; m++ {
		select {
		case <-ctx.Done():
			return Path{}, ctx.Err()
		default:
		}

		if m > 0 {
			sleeve.Step(rets[m-1])
			cash *= 1.0 + cashRate/12.0
		}

		// Fund this month's capital calls, cash first. Funds are served in
		// commitment order once cash and sleeve are exhausted.
		for _, f := range funds {
			due := f.CallDue(m)
			funded := 0.0
			if due > 0 {
				if cash >= due {
					cash -= due
					funded = due
				} else {
					funded = cash
					cash = 0.0
					funded += sleeve.Liquidate(due - funded)
				}
				if short := due - funded; short > 1e-9 {
					p.Warnings = append(p.Warnings, shortfall(m, short))
				}
			}
			dist, wd := f.Apply(m, funded)
			cash += dist
			if wd > 0 {
				p.Warnings = append(p.Warnings, writeDown(m, wd))
			}
		}

		nav := 0.0
		for _, f := range funds {
			nav += f.NAV
		}
		pub := sleeve.Value()
		p.States = append(p.States, State{
			Public:  pub,
			Private: nav,
			Cash:    cash,
			Total:   pub + nav + cash,
		})
	}
	return p, nil
}

// Totals extracts the total-value series from a path.
func (p Path) Totals() []float64 {
	out := make([]float64, len(p.States))
	for i, s := range p.States {
		out[i] = s.Total
	}
	return out
}
