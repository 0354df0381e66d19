package mc

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// An Asset either replays a historical monthly return series or samples from
// a normal model with the given monthly mean and volatility. Historical data
// takes precedence when both are present.
type Asset struct {
	Historical []float64
	Mean       float64
	Vol        float64
}

func (a Asset) synthetic() bool { return len(a.Historical) == 0 }

// Generator produces one monthly return series per asset. Assets are kept in
// sorted name order so draws are consumed deterministically.
type Generator struct {
	names  []string
	assets map[string]Asset
	corr   *mat.SymDense
	synth  []int // indices into names of synthetic assets
}

// NewGenerator validates the asset set up front. corr is the correlation
// matrix across synthetic assets in sorted name order; nil means independent
// draws. A non positive semi-definite matrix is rejected here, before any
// simulation state exists.
func NewGenerator(assets map[string]Asset, corr *mat.SymDense) (*Generator, error) {
	if len(assets) == 0 {
		return nil, errors.New("no assets")
	}
	var names []string
	for k := range assets {
		names = append(names, k)
	}
	sort.Strings(names)

	g := &Generator{names: names, assets: assets, corr: corr}
	for i, v := range names {
		a := assets[v]
		if a.synthetic() {
			if a.Vol < 0 {
				return nil, fmt.Errorf("asset %v: negative volatility", v)
			}
			if a.Vol == 0 && a.Mean == 0 {
				return nil, fmt.Errorf("asset %v: degenerate synthetic parameters (zero mean and zero volatility) and no historical data", v)
			}
			if a.Mean <= -1.0 {
				return nil, fmt.Errorf("asset %v: mean return %v below -100%%", v, a.Mean)
			}
			g.synth = append(g.synth, i)
			continue
		}
		for _, r := range a.Historical {
			if r <= -1.0 {
				return nil, fmt.Errorf("asset %v: historical return %v below -100%%", v, r)
			}
		}
	}
	if corr != nil {
		n, _ := corr.Dims()
		if n != len(g.synth) {
			return nil, fmt.Errorf("correlation matrix is %vx%v, want %v synthetic assets", n, n, len(g.synth))
		}
		// distmv runs the Cholesky decomposition; failure means not PSD.
		if _, ok := distmv.NewNormal(make([]float64, n), corr, rand.NewSource(1)); !ok {
			return nil, errors.New("correlation matrix is not positive semi-definite")
		}
	}
	return g, nil
}

// Names returns asset names in the order series columns are produced.
func (g *Generator) Names() []string { return g.names }

// Series produces a horizon x assets matrix of monthly returns drawn from
// src. Historical series shorter than the horizon are tiled (month % len);
// synthetic draws at or below -100% are redrawn.
func (g *Generator) Series(src rand.Source, horizon int) [][]float64 {
	var dz *distmv.Normal
	var d distuv.Normal
	if len(g.synth) > 0 {
		if g.corr != nil {
			dz, _ = distmv.NewNormal(make([]float64, len(g.synth)), g.corr, src)
		} else {
			d = distuv.Normal{Mu: 0.0, Sigma: 1.0, Src: src}
		}
	}

	out := make([][]float64, horizon)
	z := make([]float64, len(g.synth))
	for m := 0; m < horizon; m++ {
		row := make([]float64, len(g.names))
		if len(g.synth) > 0 {
			g.draw(dz, d, z)
		}
		for i, v := range g.names {
			a := g.assets[v]
			if a.synthetic() {
				continue
			}
			row[i] = a.Historical[m%len(a.Historical)]
		}
		for j, i := range g.synth {
			a := g.assets[g.names[i]]
			row[i] = a.Mean + a.Vol*z[j]
		}
		out[m] = row
	}
	return out
}

// draw fills z with one month of standard normal variates, redrawing the
// whole vector while any implied return would be at or below -100%.
func (g *Generator) draw(dz *distmv.Normal, d distuv.Normal, z []float64) {
	for {
		if dz != nil {
			dz.Rand(z)
		} else {
			for i := range z {
				z[i] = d.Rand()
			}
		}
		ok := true
		for j, i := range g.synth {
			a := g.assets[g.names[i]]
			if a.Mean+a.Vol*z[j] <= -1.0 {
				ok = false
				break
			}
		}
		if ok {
			return
		}
	}
}
