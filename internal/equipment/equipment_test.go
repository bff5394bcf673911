package equipment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/thermalnetwork/internal/equipment"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

func TestHeatPumpSourceLoad(t *testing.T) {
	hp, err := equipment.NewHeatPump(" wshp ", 2.5, 3.5)
	require.NoError(t, err)

	assert.Equal(t, "WSHP", hp.Name)
	assert.Equal(t, models.ComponentHeatPump, hp.Type())
	assert.InDelta(t, 0.60, hp.SourceLoad(1), 0.01)
	assert.InDelta(t, -1.28, hp.SourceLoad(-1), 0.01)
	assert.Equal(t, 0.0, hp.SourceLoad(0))
}

func TestHeatPumpSignProperty(t *testing.T) {
	for _, cop := range []float64{0.5, 1, 2.5, 4, 8} {
		hp, err := equipment.NewHeatPump("hp", cop, cop)
		require.NoError(t, err)
		for _, load := range []float64{0.1, 1, 1000} {
			assert.Less(t, hp.SourceLoad(load), load, "heating cop=%g load=%g", cop, load)
			assert.Greater(t, -hp.SourceLoad(-load), load, "cooling cop=%g load=%g", cop, load)
		}
	}
}

func TestHeatPumpMonotonicInCOP(t *testing.T) {
	low, err := equipment.NewHeatPump("low", 2, 2)
	require.NoError(t, err)
	high, err := equipment.NewHeatPump("high", 4, 4)
	require.NoError(t, err)

	// Better heating COP extracts more of the load from the ground.
	assert.Greater(t, high.SourceLoad(1000), low.SourceLoad(1000))
	// Better cooling COP rejects less.
	assert.Less(t, -high.SourceLoad(-1000), -low.SourceLoad(-1000))
}

func TestHeatPumpSourceLoads(t *testing.T) {
	hp, err := equipment.NewHeatPump("hp", 3, 3)
	require.NoError(t, err)

	out := hp.SourceLoads([]float64{300, -300, 0})
	require.Len(t, out, 3)
	assert.InDelta(t, 200, out[0], 1e-9)
	assert.InDelta(t, -400, out[1], 1e-9)
	assert.Equal(t, 0.0, out[2])
}

func TestHeatPumpRejectsBadCOP(t *testing.T) {
	_, err := equipment.NewHeatPump("hp", 0, 3)
	assert.ErrorIs(t, err, models.ErrConfiguration)
	_, err = equipment.NewDHWHeatPump("dhw", -1)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestDHWHeatPump(t *testing.T) {
	hp, err := equipment.NewDHWHeatPump("dhw hp", 3)
	require.NoError(t, err)
	assert.Equal(t, equipment.RoleDHW, hp.Role)
	assert.InDelta(t, 2000.0/3, hp.SourceLoad(1000), 1e-9)
}

func TestPumpHeatToFluid(t *testing.T) {
	p, err := equipment.NewPump("ets pump", 0.0005, 100000, 0.9, 1.0)
	require.NoError(t, err)

	assert.Equal(t, "ETS PUMP", p.ComponentName())
	assert.Equal(t, models.ComponentPump, p.Type())
	assert.InDelta(t, 50, p.HydraulicPower(), 1e-9)
	assert.InDelta(t, 5, p.HeatToFluid(), 1e-9)

	loads, err := p.Loads()
	require.NoError(t, err)
	require.Len(t, loads, models.HoursInYear)
	for _, v := range loads {
		assert.InDelta(t, 5, v, 1e-9)
	}
}

func TestPumpInefficiencyFraction(t *testing.T) {
	p, err := equipment.NewPump("p", 0.01, 150000, 0.9, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 75, p.HeatToFluid(), 1e-9)
}

func TestPumpValidation(t *testing.T) {
	_, err := equipment.NewPump("p", -1, 1, 0.9, 1)
	assert.ErrorIs(t, err, models.ErrConfiguration)
	_, err = equipment.NewPump("p", 1, 1, 1.2, 1)
	assert.ErrorIs(t, err, models.ErrConfiguration)
	_, err = equipment.NewPump("p", 1, 1, 0.9, 2)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestFanHeat(t *testing.T) {
	f, err := equipment.NewFan("simple fan", 0.25, 150, 0.6)
	require.NoError(t, err)

	assert.Equal(t, models.ComponentFan, f.Type())
	assert.InDelta(t, 62.5, f.Heat(), 1e-9)

	series := f.LoadSeries(24)
	require.Len(t, series, 24)
	assert.InDelta(t, 62.5, series[23], 1e-9)
}

func TestFanZeroEfficiencyCountsHydraulicPower(t *testing.T) {
	f, err := equipment.NewFan("f", 0.25, 150, 0)
	require.NoError(t, err)
	assert.InDelta(t, 37.5, f.Heat(), 1e-9)
}
