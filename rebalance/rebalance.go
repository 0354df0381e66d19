// Package rebalance models the public sleeve of the portfolio: per-asset
// holdings stepped month by month under a rebalancing policy.
package rebalance

import (
	"fmt"
	"math"
)

const (
	PolicyNone      = "none"
	PolicyPeriodic  = "periodic"
	PolicyThreshold = "threshold"
)

// Policy controls when holdings are reset to target weights. Periodic
// rebalances every Interval months, threshold whenever any asset drifts more
// than Band from its target weight. A triggered rebalance is always a full
// reset, not a partial trade.
type Policy struct {
	Kind     string  `json:"policy"`
	Interval int     `json:"interval_months,omitempty"`
	Band     float64 `json:"band,omitempty"`
}

func (p Policy) Validate() error {
	switch p.Kind {
	case "", PolicyNone:
	case PolicyPeriodic:
		if p.Interval < 1 {
			return fmt.Errorf("periodic policy needs interval_months >= 1, got %v", p.Interval)
		}
	case PolicyThreshold:
		if p.Band <= 0 {
			return fmt.Errorf("threshold policy needs band > 0, got %v", p.Band)
		}
	default:
		return fmt.Errorf("unknown rebalancing policy %q", p.Kind)
	}
	return nil
}

// Sleeve holds the current per-asset values. Holdings are in currency, not
// shares, which is all a frictionless monthly model needs.
type Sleeve struct {
	names    []string
	targets  []float64
	holdings []float64
	policy   Policy
	txCost   float64
	month    int
}

// NewSleeve allocates initial capital across assets at target weights.
// names and targets are aligned; weights are assumed validated upstream.
func NewSleeve(names []string, targets []float64, capital float64, policy Policy, txCost float64) *Sleeve {
	s := &Sleeve{
		names:    names,
		targets:  append([]float64(nil), targets...),
		holdings: make([]float64, len(names)),
		policy:   policy,
		txCost:   txCost,
	}
	for i := range s.holdings {
		s.holdings[i] = capital * targets[i]
	}
	return s
}

// Step applies one month of returns then the policy. It returns the
// transaction cost charged this month, already deducted from the sleeve.
// Month 0 is the initial allocation, so the first Step is month 1.
func (s *Sleeve) Step(rets []float64) float64 {
	for i := range s.holdings {
		s.holdings[i] *= 1.0 + rets[i]
	}
	s.month++
	if s.trigger() {
		return s.rebalance()
	}
	return 0.0
}

func (s *Sleeve) trigger() bool {
	switch s.policy.Kind {
	case PolicyPeriodic:
		return s.month%s.policy.Interval == 0
	case PolicyThreshold:
		total := s.Value()
		if total <= 0 {
			return false
		}
		for i, h := range s.holdings {
			if math.Abs(h/total-s.targets[i]) > s.policy.Band {
				return true
			}
		}
	}
	return false
}

// rebalance resets holdings to target weights, charging txCost on the traded
// notional first.
func (s *Sleeve) rebalance() float64 {
	total := s.Value()
	traded := 0.0
	for i, h := range s.holdings {
		traded += math.Abs(s.targets[i]*total - h)
	}
	cost := s.txCost * traded
	total -= cost
	for i := range s.holdings {
		s.holdings[i] = s.targets[i] * total
	}
	return cost
}

// Liquidate sells pro-rata across holdings to raise amount, used to fund
// private capital calls. It returns the cash actually raised, which is less
// than amount when the sleeve is too small.
func (s *Sleeve) Liquidate(amount float64) float64 {
	total := s.Value()
	if total <= 0 || amount <= 0 {
		return 0.0
	}
	if amount >= total {
		for i := range s.holdings {
			s.holdings[i] = 0.0
		}
		return total
	}
	f := amount / total
	for i := range s.holdings {
		s.holdings[i] -= s.holdings[i] * f
	}
	return amount
}

// Value is the sleeve's total market value.
func (s *Sleeve) Value() float64 {
	v := 0.0
	for _, h := range s.holdings {
		v += h
	}
	return v
}

// Holdings returns a copy of the per-asset values, aligned with names.
func (s *Sleeve) Holdings() []float64 {
	return append([]float64(nil), s.holdings...)
}
