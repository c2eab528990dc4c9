package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etasim/adapters/rng"
	"etasim/adapters/seed"
	"etasim/domain/core"
	"etasim/domain/forecast"
	"etasim/internal"
	"etasim/internal/testkit"
	"etasim/ports"
)

func serviceConfig() forecast.Config {
	return forecast.Config{
		ForecastLags: []float64{1.0},
		Windows: []forecast.AdvisoryWindow{
			{Name: "1-day", TBegin: 0, TEnd: 1},
			{Name: "1-week", TBegin: 0, TEnd: 7},
		},
		MagBins: []float64{3.0, 5.0},
		Models:  []core.ModelName{"etas"},
		NumSim:  16,
	}
}

func newService() *ForecastService {
	return NewForecastService(rng.NewStreamAdapter(), seed.NewStaticAdapter(),
		internal.NewLogger(internal.LogLevelError))
}

func TestRunSimulations(t *testing.T) {
	svc := newService()
	cfg := serviceConfig()
	models := []ModelSpec{{Name: "etas", Params: testkit.CriticalParams(0.8)}}
	mainshock := ports.Mainshock{EventID: "test", TDay: 0, Mag: 6.0}
	observed := ObservedEvents{
		Times: []float64{1.2, 2.5},
		Mags:  []float64{5.5, 3.4},
	}

	set, runID, err := svc.RunSimulations(context.Background(), cfg, mainshock, models, 12345, observed)
	require.NoError(t, err)
	assert.NotEmpty(t, runID.String())

	counts := set.CountStats()
	// (1 lag + sum) x 1 model x 2 windows x 2 bins
	require.Len(t, counts, 2*1*2*2)

	// The observed M5.5 at t=1.2 falls in both windows of the lag-1
	// forecast; the M3.4 at t=2.5 falls only in the week window.
	assert.Equal(t, 1.0, set.At(0, 0).Observed(0, 0))
	assert.Equal(t, 1.0, set.At(0, 0).Observed(0, 1))
	assert.Equal(t, 2.0, set.At(0, 0).Observed(1, 0))
	assert.Equal(t, 1.0, set.At(0, 0).Observed(1, 1))

	gammas := set.GammaTable()
	for _, g := range gammas {
		assert.GreaterOrEqual(t, g.GammaHi, g.GammaLo, "gamma bounds ordered: %+v", g)
		assert.GreaterOrEqual(t, g.GammaLo, 0.0)
		assert.LessOrEqual(t, g.GammaHi, 1.0)
	}
}

func TestRunSimulationsDeterminism(t *testing.T) {
	cfg := serviceConfig()
	models := []ModelSpec{{Name: "etas", Params: testkit.CriticalParams(0.8)}}
	mainshock := ports.Mainshock{EventID: "test", TDay: 0, Mag: 6.0}

	run := func() []forecast.CountRow {
		set, _, err := newService().RunSimulations(
			context.Background(), cfg, mainshock, models, 0xDEADBEEF, ObservedEvents{})
		require.NoError(t, err)
		return set.CountStats()
	}

	assert.Equal(t, run(), run(), "identical inputs must give identical count matrices")
}

func TestRunSimulationsModelMismatch(t *testing.T) {
	svc := newService()
	cfg := serviceConfig()
	mainshock := ports.Mainshock{EventID: "test", TDay: 0, Mag: 6.0}

	_, _, err := svc.RunSimulations(context.Background(), cfg, mainshock,
		[]ModelSpec{}, 1, ObservedEvents{})
	require.Error(t, err)

	_, _, err = svc.RunSimulations(context.Background(), cfg, mainshock,
		[]ModelSpec{{Name: "other", Params: testkit.DeadParams()}}, 1, ObservedEvents{})
	require.Error(t, err)
}

func TestRunSimulationsCancellation(t *testing.T) {
	svc := newService()
	cfg := serviceConfig()
	models := []ModelSpec{{Name: "etas", Params: testkit.CriticalParams(0.8)}}
	mainshock := ports.Mainshock{EventID: "test", TDay: 0, Mag: 6.0}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := svc.RunSimulations(ctx, cfg, mainshock, models, 1, ObservedEvents{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimStreamIndependence(t *testing.T) {
	// Streams for different simulations must differ, or catalogs would
	// be perfectly correlated.
	adapter := rng.NewStreamAdapter()
	ctx := context.Background()

	r1, err := adapter.SimStream(ctx, "etas", 0, 0, 7)
	require.NoError(t, err)
	r2, err := adapter.SimStream(ctx, "etas", 0, 1, 7)
	require.NoError(t, err)

	diverged := false
	for i := 0; i < 16; i++ {
		if r1.Uniform() != r2.Uniform() {
			diverged = true
			break
		}
	}
	assert.True(t, diverged)
}
