package sim

import (
	"context"
	"sync"

	"github.com/banachtech/sleevesim/mc"
	"github.com/banachtech/sleevesim/portfolio"
	"github.com/banachtech/sleevesim/rebalance"
	"golang.org/x/sync/errgroup"
)

// Run validates cfg and simulates cfg.NumPaths independent paths. It fails
// with a *ConfigError before any path starts when the request is malformed;
// per-path anomalies become warnings and never abort sibling paths. A
// cancelled context returns the paths completed so far with Partial set.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	return RunProgress(ctx, cfg, nil)
}

// RunProgress is Run with a completion callback, invoked with the number of
// paths finished so far. Used by the CLI progress bar.
func RunProgress(ctx context.Context, cfg Config, progress func(done int)) (*Result, error) {
	cfg = cfg.withDefaults()
	gen, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	slots := make([]*PathResult, cfg.NumPaths)
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.NumPaths; i++ {
		i := i
		g.Go(func() error {
			pr, err := runPath(gctx, cfg, gen, i)
			if err != nil {
				// Cancellation leaves the slot empty; the run stays valid.
				return nil
			}
			slots[i] = pr
			if progress != nil {
				mu.Lock()
				done++
				d := done
				mu.Unlock()
				progress(d)
			}
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{}
	for _, pr := range slots {
		if pr == nil {
			res.Partial = true
			continue
		}
		res.Paths = append(res.Paths, *pr)
		for _, w := range pr.Warnings {
			res.Warnings = append(res.Warnings, PathWarning{Path: pr.Index, Warning: w})
		}
	}
	if cfg.NumPaths > 1 && len(res.Paths) > 0 {
		res.Aggregate = aggregate(res.Paths)
	}
	return res, nil
}

// runPath owns everything for one path: its seeded source, its sleeves and
// its state slices. Nothing here is shared with sibling paths.
func runPath(ctx context.Context, cfg Config, gen *mc.Generator, index int) (*PathResult, error) {
	src := mc.NewSource(cfg.Seed, index)
	rets := gen.Series(src, cfg.HorizonMonths)

	names := gen.Names()
	targets := make([]float64, len(names))
	for i, v := range names {
		targets[i] = cfg.PublicWeights[v]
	}
	sleeve := rebalance.NewSleeve(names, targets, cfg.InitialCapital, cfg.Rebalancing, cfg.TransactionCost)

	path, err := portfolio.Simulate(ctx, sleeve, cfg.funds(), rets, cfg.HorizonMonths, cfg.CashRate)
	if err != nil {
		return nil, err
	}

	m := portfolio.Compute(path, cfg.RiskFreeRate)
	if m.Degenerate() {
		path.Warnings = append(path.Warnings, portfolio.Warning{
			Code:    portfolio.WarnNumericDegeneracy,
			Message: "volatility is zero or undefined; sharpe reported as null",
		})
	}
	return &PathResult{Index: index, States: path.States, Warnings: path.Warnings, Metrics: m}, nil
}
