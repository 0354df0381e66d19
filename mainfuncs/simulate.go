// Package mainfuncs holds the CLI drivers behind main's flags.
package mainfuncs

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"

	"github.com/banachtech/sleevesim/sim"
	"github.com/schollz/progressbar/v3"
)

// Simulate runs the scenario file end to end and prints a metric summary.
// When out is non-empty the full result is also written there as JSON.
// Ctrl-C cancels the run; whatever paths completed are still reported.
func Simulate(scenario, out string) error {
	data, err := os.ReadFile(scenario)
	if err != nil {
		return err
	}
	var cfg sim.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse %v: %w", scenario, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	numPaths := cfg.NumPaths
	if numPaths == 0 {
		numPaths = 1
	}
	bar := progressbar.Default(int64(numPaths), "simulating")
	res, err := sim.RunProgress(ctx, cfg, func(done int) {
		bar.Set(done)
	})
	if err != nil {
		return err
	}
	bar.Finish()

	printSummary(res)

	if out != "" {
		enc, err := json.MarshalIndent(res, "", " ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, enc, 0644); err != nil {
			return err
		}
		fmt.Printf("result written to %v\n", out)
	}
	return nil
}

func printSummary(res *sim.Result) {
	if res.Partial {
		fmt.Printf("run cancelled: %v paths completed\n", len(res.Paths))
	}
	if len(res.Warnings) > 0 {
		fmt.Printf("warnings: %v\n", len(res.Warnings))
	}
	if res.Aggregate != nil {
		fmt.Println("terminal metric distribution across paths:")
		for _, k := range []string{"cagr", "volatility", "sharpe", "max_drawdown", "irr"} {
			q := res.Aggregate.Metrics[k]
			fmt.Printf("%18s  mean %s  p05 %s  p50 %s  p95 %s\n", k, fmtF(q.Mean), fmtF(q.P05), fmtF(q.P50), fmtF(q.P95))
		}
		return
	}
	if len(res.Paths) == 1 {
		m := res.Paths[0].Metrics
		fmt.Printf("cagr %s  volatility %s  sharpe %s  max_drawdown %s  irr %s\n",
			fmtF(m.CAGR), fmtF(m.Volatility), fmtF(m.Sharpe), fmtF(m.MaxDrawdown), fmtF(m.IRR))
	}
}

func fmtF(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}
