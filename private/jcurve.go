// Package private models private-market commitments: capital calls, NAV
// growth and distributions following the classic J-curve shape.
package private

import "fmt"

// Params drives one commitment's J-curve. Capital is called as a declining
// balance (CallRate of the remaining uncalled commitment per month during the
// ramp), NAV then grows through three phases: an early drag, a slow middle
// and a faster tail. Distributions start after DistLag months and pay
// DistRate of NAV per month. An explicit CallSchedule (fractions of the
// commitment per month from the start month) overrides the rate model.
type Params struct {
	FundLife     int       `json:"fund_life_months"`
	RampMonths   int       `json:"ramp_months"`
	CallRate     float64   `json:"call_rate"`
	CallSchedule []float64 `json:"call_schedule,omitempty"`
	EarlyMonths  int       `json:"early_months"`
	MidMonths    int       `json:"mid_months"`
	EarlyGrowth  float64   `json:"early_growth"`
	MidGrowth    float64   `json:"mid_growth"`
	LateGrowth   float64   `json:"late_growth"`
	DistLag      int       `json:"dist_lag_months"`
	DistRate     float64   `json:"dist_rate"`
}

// DefaultParams mirrors a 10-year fund: five-year ramp, two years of early
// drag, distributions from year five onwards.
func DefaultParams() Params {
	return Params{
		FundLife:    120,
		RampMonths:  60,
		CallRate:    0.08,
		EarlyMonths: 24,
		MidMonths:   60,
		EarlyGrowth: -0.01,
		MidGrowth:   0.01,
		LateGrowth:  0.03,
		DistLag:     60,
		DistRate:    0.02,
	}
}

func (p Params) Validate() error {
	if p.FundLife < 1 {
		return fmt.Errorf("fund_life_months must be >= 1, got %v", p.FundLife)
	}
	if len(p.CallSchedule) == 0 {
		if p.RampMonths < 0 || p.RampMonths > p.FundLife {
			return fmt.Errorf("ramp_months %v outside fund life %v", p.RampMonths, p.FundLife)
		}
		if p.CallRate < 0 || p.CallRate > 1 {
			return fmt.Errorf("call_rate must be in [0,1], got %v", p.CallRate)
		}
	} else {
		sum := 0.0
		for _, f := range p.CallSchedule {
			if f < 0 {
				return fmt.Errorf("call_schedule fraction %v is negative", f)
			}
			sum += f
		}
		if sum > 1.0+1e-9 {
			return fmt.Errorf("call_schedule fractions sum to %v, exceeding the commitment", sum)
		}
	}
	if p.EarlyGrowth <= -1.0 {
		return fmt.Errorf("early_growth must be > -1, got %v", p.EarlyGrowth)
	}
	if p.MidGrowth <= -1.0 {
		return fmt.Errorf("mid_growth must be > -1, got %v", p.MidGrowth)
	}
	if p.LateGrowth <= -1.0 {
		return fmt.Errorf("late_growth must be > -1, got %v", p.LateGrowth)
	}
	if p.DistRate < 0 || p.DistRate > 1 {
		return fmt.Errorf("dist_rate must be in [0,1], got %v", p.DistRate)
	}
	return nil
}

// growth returns the monthly NAV growth rate for a fund age in months.
func (p Params) growth(elapsed int) float64 {
	switch {
	case elapsed < p.EarlyMonths:
		return p.EarlyGrowth
	case elapsed < p.MidMonths:
		return p.MidGrowth
	default:
		return p.LateGrowth
	}
}

// A Commitment is a promise of capital to a single private fund.
type Commitment struct {
	Amount     float64
	StartMonth int
	Params     Params
}

// Fund is the running state of one commitment. Each monthly update is a pure
// function of the previous state; nothing outside Apply mutates NAV.
type Fund struct {
	Commitment  Commitment
	Called      float64
	NAV         float64
	Distributed float64
}

func NewFund(c Commitment) *Fund {
	return &Fund{Commitment: c}
}

func (f *Fund) elapsed(month int) int { return month - f.Commitment.StartMonth }

// CallDue is the capital demanded for the given absolute month. It is a
// demand only: the aggregator decides how much of it actually gets funded.
// Cumulative calls never exceed the commitment.
func (f *Fund) CallDue(month int) float64 {
	p := f.Commitment.Params
	e := f.elapsed(month)
	if e < 0 || e >= p.FundLife {
		return 0.0
	}
	remaining := f.Commitment.Amount - f.Called
	if remaining <= 0 {
		return 0.0
	}
	var call float64
	if len(p.CallSchedule) > 0 {
		if e >= len(p.CallSchedule) {
			return 0.0
		}
		call = p.CallSchedule[e] * f.Commitment.Amount
	} else {
		if e >= p.RampMonths {
			return 0.0
		}
		call = p.CallRate * remaining
	}
	if call > remaining {
		call = remaining
	}
	return call
}

// Apply advances the fund one month. funded is the portion of CallDue the
// aggregator could actually pay in. It returns the distribution credited to
// cash this month and any write-down taken to keep NAV at zero. On the last
// month of the fund's life the remaining NAV is paid out in full.
func (f *Fund) Apply(month int, funded float64) (dist, writeDown float64) {
	p := f.Commitment.Params
	e := f.elapsed(month)
	if e < 0 || e >= p.FundLife {
		return 0.0, 0.0
	}
	f.Called += funded

	nav := f.NAV*(1.0+p.growth(e)) + funded
	if nav < 0 {
		writeDown = -nav
		nav = 0.0
	}
	if e == p.FundLife-1 {
		dist = nav
	} else if e >= p.DistLag {
		dist = p.DistRate * nav
	}
	nav -= dist
	f.NAV = nav
	f.Distributed += dist
	return dist, writeDown
}
