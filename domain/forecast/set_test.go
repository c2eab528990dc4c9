package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etasim/domain/core"
	"etasim/domain/etas"
)

func smallConfig() Config {
	return Config{
		ForecastLags: []float64{1.0, 7.0},
		Windows: []AdvisoryWindow{
			{Name: "1-day", TBegin: 0, TEnd: 1},
			{Name: "1-week", TBegin: 0, TEnd: 7},
		},
		MagBins: []float64{3.0, 5.0},
		Models:  []core.ModelName{"etas"},
		NumSim:  4,
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, smallConfig().Validate())

	c := smallConfig()
	c.ForecastLags = nil
	assert.Error(t, c.Validate())

	c = smallConfig()
	c.Windows[0].TBegin = 5
	c.Windows[0].TEnd = 1
	assert.Error(t, c.Validate())

	c = smallConfig()
	c.NumSim = 1
	assert.Error(t, c.Validate())

	c = smallConfig()
	c.Models = nil
	assert.Error(t, c.Validate())
}

func TestSetLagSums(t *testing.T) {
	set, err := NewSet(smallConfig())
	require.NoError(t, err)

	// Hand-fill one cell of each lag.
	copy(set.At(0, 0).counts[0][0], []float64{1, 2, 3, 4})
	copy(set.At(1, 0).counts[0][0], []float64{10, 20, 30, 40})
	set.At(0, 0).obs[0][0] = 1
	set.At(1, 0).obs[0][0] = 2

	require.NoError(t, set.Finalize(false, etas.NewRangen(1)))

	sum := set.At(set.LagCount(), 0)
	assert.Equal(t, []float64{11, 22, 33, 44}, sum.counts[0][0])
	assert.Equal(t, 3.0, sum.Observed(0, 0))
}

func TestSetTables(t *testing.T) {
	cfg := smallConfig()
	set, err := NewSet(cfg)
	require.NoError(t, err)
	require.NoError(t, set.Finalize(false, etas.NewRangen(1)))

	counts := set.CountStats()
	// (2 lags + sum) x 1 model x 2 windows x 2 bins
	assert.Len(t, counts, 3*1*2*2)

	gammas := set.GammaTable()
	// (2 lags + sum) x 1 model x (2 windows + sum) x 2 bins
	assert.Len(t, gammas, 3*1*3*2)

	// Lag labels: real lags then the sum row.
	assert.Equal(t, "1-day", counts[0].Lag)
	assert.Equal(t, "sum", counts[len(counts)-1].Lag)

	// Every gamma row group ends with the all-window slot.
	assert.Equal(t, "sum", gammas[5].Window)

	assert.NotEmpty(t, set.RenderCountStats())
	assert.NotEmpty(t, set.RenderGammaTable())
}

func TestSetDeterministicTables(t *testing.T) {
	build := func() []CountRow {
		set, err := NewSet(smallConfig())
		require.NoError(t, err)
		for l := 0; l < 2; l++ {
			cs := set.At(l, 0)
			for w := 0; w < cs.NumWindows(); w++ {
				for b := 0; b < cs.NumBins(); b++ {
					for s := 0; s < cs.NumSim(); s++ {
						cs.counts[w][b][s] = float64((l + 1) * (w + 2) * (b + 3) % (s + 2))
					}
				}
			}
		}
		require.NoError(t, set.Finalize(false, etas.NewRangen(42)))
		return set.CountStats()
	}

	assert.Equal(t, build(), build())
}
