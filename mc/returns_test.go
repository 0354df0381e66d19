package mc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestHistoricalTiling(t *testing.T) {
	g, err := NewGenerator(map[string]Asset{
		"SPY": {Historical: []float64{0.01, -0.02, 0.03}},
	}, nil)
	require.NoError(t, err)

	s := g.Series(NewSource(42, 0), 7)
	require.Len(t, s, 7)
	want := []float64{0.01, -0.02, 0.03, 0.01, -0.02, 0.03, 0.01}
	for m := range s {
		require.Equal(t, want[m], s[m][0])
	}
}

func TestDeterminism(t *testing.T) {
	assets := map[string]Asset{
		"A": {Mean: 0.005, Vol: 0.04},
		"B": {Mean: 0.002, Vol: 0.02},
	}
	corr := mat.NewSymDense(2, []float64{1.0, 0.5, 0.5, 1.0})
	g, err := NewGenerator(assets, corr)
	require.NoError(t, err)

	s1 := g.Series(NewSource(7, 3), 24)
	s2 := g.Series(NewSource(7, 3), 24)
	require.Equal(t, s1, s2)

	s3 := g.Series(NewSource(7, 4), 24)
	require.NotEqual(t, s1, s3)
}

func TestRejectsBadInputs(t *testing.T) {
	type testCases struct {
		name   string
		assets map[string]Asset
		corr   *mat.SymDense
	}

	for _, test := range []testCases{
		{
			name:   "NO_ASSETS",
			assets: map[string]Asset{},
		},
		{
			name:   "NO_DATA_NO_PARAMS",
			assets: map[string]Asset{"A": {}},
		},
		{
			name:   "DEGENERATE_RETURN",
			assets: map[string]Asset{"A": {Historical: []float64{0.01, -1.5}}},
		},
		{
			name:   "NOT_PSD",
			assets: map[string]Asset{"A": {Mean: 0.01, Vol: 0.1}, "B": {Mean: 0.01, Vol: 0.1}},
			corr:   mat.NewSymDense(2, []float64{1.0, 2.0, 2.0, 1.0}),
		},
		{
			name:   "CORR_DIM_MISMATCH",
			assets: map[string]Asset{"A": {Mean: 0.01, Vol: 0.1}},
			corr:   mat.NewSymDense(2, []float64{1.0, 0.0, 0.0, 1.0}),
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewGenerator(test.assets, test.corr)
			require.Error(t, err)
		})
	}
}

func TestSyntheticNeverBelowMinus100(t *testing.T) {
	// Vol large enough that naive draws would cross -100%.
	g, err := NewGenerator(map[string]Asset{"A": {Mean: -0.5, Vol: 0.5}}, nil)
	require.NoError(t, err)

	s := g.Series(NewSource(1, 0), 500)
	for m := range s {
		require.Greater(t, s[m][0], -1.0)
	}
}

func TestSubSeedPartition(t *testing.T) {
	seen := map[uint64]bool{}
	for i := 0; i < 1000; i++ {
		s := subSeed(99, i)
		require.False(t, seen[s])
		seen[s] = true
	}
}
