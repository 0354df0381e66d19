// Package sim drives full simulation runs: it validates a request, fans
// independent Monte Carlo paths out over a worker pool and reduces them into
// cross-path statistics.
package sim

import (
	"fmt"
	"math"
	"runtime"

	"github.com/banachtech/sleevesim/mc"
	"github.com/banachtech/sleevesim/private"
	"github.com/banachtech/sleevesim/rebalance"
	"gonum.org/v1/gonum/mat"
)

const weightTolerance = 1e-6

// ConfigError is the fatal class of the error taxonomy: the run never
// starts and no partial result exists.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func configErr(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// AssetParams are monthly synthetic-return parameters for one asset.
type AssetParams struct {
	Mean float64 `json:"mean"`
	Vol  float64 `json:"vol"`
}

// CommitmentConfig is one private-market commitment in the request. A nil
// JCurve means private.DefaultParams.
type CommitmentConfig struct {
	Commitment float64         `json:"commitment"`
	StartMonth int             `json:"start_month"`
	JCurve     *private.Params `json:"jcurve,omitempty"`
}

// Config is the engine's request contract. Assets named in PublicWeights
// must appear in ReturnsData or SyntheticAssets; Correlation, when given,
// spans the synthetic assets in sorted name order. Identical Config plus
// Seed always produces an identical Result.
type Config struct {
	InitialCapital     float64                `json:"initial_capital"`
	PublicWeights      map[string]float64     `json:"public_weights"`
	ReturnsData        map[string][]float64   `json:"returns_data,omitempty"`
	SyntheticAssets    map[string]AssetParams `json:"synthetic_assets,omitempty"`
	Correlation        [][]float64            `json:"correlation,omitempty"`
	PrivateCommitments []CommitmentConfig     `json:"private_commitments,omitempty"`
	HorizonMonths      int                    `json:"horizon_months"`
	NumPaths           int                    `json:"num_paths"`
	Rebalancing        rebalance.Policy       `json:"rebalancing_policy"`
	TransactionCost    float64                `json:"transaction_cost,omitempty"`
	CashRate           float64                `json:"cash_rate,omitempty"`
	RiskFreeRate       float64                `json:"risk_free_rate,omitempty"`
	Seed               uint64                 `json:"seed,omitempty"`
	Workers            int                    `json:"workers,omitempty"`
}

func (c Config) withDefaults() Config {
	if c.NumPaths == 0 {
		c.NumPaths = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// validate runs the single boundary pass of request checks and constructs the
// return generator, so bad correlation matrices and degenerate series are
// rejected before any simulation state is created.
func (c Config) validate() (*mc.Generator, error) {
	if c.InitialCapital <= 0 {
		return nil, configErr("initial_capital", "must be positive, got %v", c.InitialCapital)
	}
	if c.HorizonMonths < 1 {
		return nil, configErr("horizon_months", "must be >= 1, got %v", c.HorizonMonths)
	}
	if c.NumPaths < 1 {
		return nil, configErr("num_paths", "must be >= 1, got %v", c.NumPaths)
	}
	if c.TransactionCost < 0 || c.TransactionCost >= 1 {
		return nil, configErr("transaction_cost", "must be in [0,1), got %v", c.TransactionCost)
	}
	if len(c.PublicWeights) == 0 {
		return nil, configErr("public_weights", "no assets given")
	}

	sum := 0.0
	for k, w := range c.PublicWeights {
		if w < 0 {
			return nil, configErr("public_weights", "weight for %v is negative", k)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return nil, configErr("public_weights", "weights sum to %v, want 1.0", sum)
	}

	if err := c.Rebalancing.Validate(); err != nil {
		return nil, configErr("rebalancing_policy", "%v", err)
	}

	for i, cc := range c.PrivateCommitments {
		if cc.Commitment <= 0 {
			return nil, configErr("private_commitments", "commitment %d: amount must be positive, got %v", i, cc.Commitment)
		}
		if cc.StartMonth < 0 || cc.StartMonth >= c.HorizonMonths {
			return nil, configErr("private_commitments", "commitment %d: start_month %v outside horizon %v", i, cc.StartMonth, c.HorizonMonths)
		}
		if cc.JCurve != nil {
			if err := cc.JCurve.Validate(); err != nil {
				return nil, configErr("private_commitments", "commitment %d: %v", i, err)
			}
		}
	}

	assets := map[string]mc.Asset{}
	for k := range c.PublicWeights {
		if hist, ok := c.ReturnsData[k]; ok {
			if len(hist) == 0 {
				return nil, configErr("returns_data", "asset %v: empty series", k)
			}
			assets[k] = mc.Asset{Historical: hist}
			continue
		}
		p, ok := c.SyntheticAssets[k]
		if !ok {
			return nil, configErr("public_weights", "asset %v has no returns_data and no synthetic_assets entry", k)
		}
		assets[k] = mc.Asset{Mean: p.Mean, Vol: p.Vol}
	}

	var corr *mat.SymDense
	if len(c.Correlation) > 0 {
		n := len(c.Correlation)
		data := make([]float64, 0, n*n)
		for i, row := range c.Correlation {
			if len(row) != n {
				return nil, configErr("correlation", "row %d has %d entries, want %d", i, len(row), n)
			}
			data = append(data, row...)
		}
		corr = mat.NewSymDense(n, data)
	}

	gen, err := mc.NewGenerator(assets, corr)
	if err != nil {
		return nil, configErr("returns", "%v", err)
	}
	return gen, nil
}

// funds instantiates fresh per-path fund state for every commitment.
func (c Config) funds() []*private.Fund {
	out := make([]*private.Fund, len(c.PrivateCommitments))
	for i, cc := range c.PrivateCommitments {
		p := private.DefaultParams()
		if cc.JCurve != nil {
			p = *cc.JCurve
		}
		out[i] = private.NewFund(private.Commitment{
			Amount:     cc.Commitment,
			StartMonth: cc.StartMonth,
			Params:     p,
		})
	}
	return out
}
