package network_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/thermalnetwork/internal/engine"
	"github.com/ajitpratap0/thermalnetwork/internal/equipment"
	"github.com/ajitpratap0/thermalnetwork/internal/ets"
	"github.com/ajitpratap0/thermalnetwork/internal/fluid"
	"github.com/ajitpratap0/thermalnetwork/internal/ghe"
	"github.com/ajitpratap0/thermalnetwork/internal/loads"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
	"github.com/ajitpratap0/thermalnetwork/internal/network"
	"github.com/ajitpratap0/thermalnetwork/internal/pipe"
	"github.com/ajitpratap0/thermalnetwork/internal/wasteheat"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedLoad is a building stand-in with a constant hourly ground load.
type fixedLoad struct {
	name string
	load []float64
}

func building(name string, v float64) *fixedLoad {
	return &fixedLoad{name: name, load: loads.Constant(v)}
}

func (f *fixedLoad) ComponentName() string      { return f.name }
func (f *fixedLoad) Type() models.ComponentType { return models.ComponentEnergyTransferStation }
func (f *fixedLoad) Loads() ([]float64, error)  { return f.load, nil }

func newGHE(t *testing.T, id string, length, width float64, eng engine.Engine) *ghe.GHE {
	t.Helper()
	g, err := ghe.New(ghe.Params{ID: id, Method: models.GHERectangle, Length: length, Width: width},
		ghe.Shared{Version: 1}, eng, quietLogger())
	require.NoError(t, err)
	return g
}

func build(t *testing.T, method models.DesignMethod, comps ...network.Component) *network.Network {
	t.Helper()
	n, err := network.New(method, quietLogger())
	require.NoError(t, err)
	for _, c := range comps {
		require.NoError(t, n.Add(c))
	}
	return n
}

func TestNewRejectsUnknownMethod(t *testing.T) {
	_, err := network.New("SIDEWAYS", quietLogger())
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestAddRejectsDuplicateNames(t *testing.T) {
	n := build(t, models.DesignAreaProportional, building("b1", 1))

	err := n.Add(building("B1", 2))
	assert.ErrorIs(t, err, models.ErrConfiguration)

	pump, err := equipment.NewPump("b1", 0, 0, 0.9, 1)
	require.NoError(t, err)
	assert.NoError(t, n.Add(pump), "same name with a different type is allowed")
	assert.Len(t, n.Components(), 2)
}

func TestAllocateWithoutGHE(t *testing.T) {
	n := build(t, models.DesignUpstream, building("b1", 1))
	_, err := n.Allocate(context.Background())
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestAreaProportionalAllocation(t *testing.T) {
	n := build(t, models.DesignAreaProportional,
		building("b1", 300),
		newGHE(t, "g1", 10, 100, nil),
		building("b2", 100),
		newGHE(t, "g2", 30, 100, nil),
	)

	assigned, err := n.Allocate(context.Background())
	require.NoError(t, err)
	require.Len(t, assigned, 2)
	assert.InDelta(t, 100.0, assigned[0][0], 1e-9)
	assert.InDelta(t, 300.0, assigned[1][models.HoursInYear-1], 1e-9)

	// The shares add back up to the network total.
	total := loads.Total(assigned[0]) + loads.Total(assigned[1])
	assert.InDelta(t, 400.0*models.HoursInYear, total, 1e-6)
}

func TestUpstreamAllocation(t *testing.T) {
	n := build(t, models.DesignUpstream,
		building("b1", 100),
		building("b2", 20),
		newGHE(t, "g1", 10, 10, nil),
		building("b3", 50),
		newGHE(t, "g2", 10, 10, nil),
		building("b4", 7),
	)

	assert.Equal(t, [][]int{{5, 0, 1}, {3}}, n.Segments())

	assigned, err := n.Allocate(context.Background())
	require.NoError(t, err)
	require.Len(t, assigned, 2)
	assert.InDelta(t, 127.0, assigned[0][0], 1e-9, "b4 wraps around the ring to g1")
	assert.InDelta(t, 50.0, assigned[1][0], 1e-9)
}

func TestUpstreamConservesNetworkLoad(t *testing.T) {
	tests := []struct {
		name  string
		comps func(t *testing.T) []network.Component
		total float64
	}{
		{
			name: "GHE first",
			comps: func(t *testing.T) []network.Component {
				return []network.Component{
					newGHE(t, "g1", 10, 10, nil), building("b1", 100),
					newGHE(t, "g2", 10, 10, nil), building("b2", 70),
				}
			},
			total: 170,
		},
		{
			name: "pump ahead of the first GHE",
			comps: func(t *testing.T) []network.Component {
				pump, err := equipment.NewPump("primary pump", 0.01, 150000, 0.9, 1)
				require.NoError(t, err)
				return []network.Component{
					pump, newGHE(t, "g1", 10, 10, nil), building("b1", 100),
					newGHE(t, "g2", 10, 10, nil), building("b2", 70),
				}
			},
			total: 170 + 0.01*150000*0.1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := build(t, models.DesignUpstream, tt.comps(t)...)
			assigned, err := n.Allocate(context.Background())
			require.NoError(t, err)

			var sum float64
			for _, l := range assigned {
				sum += loads.Total(l)
			}
			assert.InDelta(t, tt.total*models.HoursInYear, sum, 1e-3)
		})
	}
}

func TestUpstreamAdjacentGHEsGetZeroLoad(t *testing.T) {
	n := build(t, models.DesignUpstream,
		building("b1", 100),
		newGHE(t, "g1", 10, 10, nil),
		newGHE(t, "g2", 10, 10, nil),
	)
	assigned, err := n.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, loads.Total(assigned[1]))
}

func TestWasteHeatRelievesExtraction(t *testing.T) {
	b := &fixedLoad{name: "b1", load: loads.Constant(100)}
	b.load[0] = -40 // a cooling hour is not changed

	tests := []struct {
		name string
		rate string
		want float64
	}{
		{"partial", "30", 70},
		{"clamped at zero", "150", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := wasteheat.New("w1", tt.rate, "", quietLogger())
			n := build(t, models.DesignUpstream, b, src, newGHE(t, "g1", 10, 10, nil))

			assigned, err := n.Allocate(context.Background())
			require.NoError(t, err)
			assert.InDelta(t, tt.want, assigned[0][1], 1e-9)
			assert.InDelta(t, -40.0, assigned[0][0], 1e-9)
		})
	}
}

func TestSizeDispatchesAllGHEs(t *testing.T) {
	eng := engine.NewMockEngine(89.5, 50)
	n := build(t, models.DesignUpstream,
		building("b1", 600),
		newGHE(t, "g1", 50, 50, eng),
		building("b2", 200),
		newGHE(t, "g2", 50, 50, eng),
	)

	res, err := n.Size(context.Background(), network.SizeOptions{OutputDir: t.TempDir(), RunID: "run-1", Workers: 1})
	require.NoError(t, err)
	require.Len(t, res.GHEs, 2)
	assert.Equal(t, "g1", res.GHEs[0].ID)
	assert.Equal(t, 50, res.GHEs[1].BoreholeCount)
	assert.Equal(t, 89.5, res.GHEs[1].BoreholeLength)
	assert.Nil(t, res.Piping)

	req, ok := eng.Request("g2")
	require.True(t, ok)
	assert.Equal(t, "run-1", req.RunID)
	assert.InDelta(t, 200.0, req.Loads.GroundLoads[0], 1e-9)
}

func TestSizeFailsOnEngineError(t *testing.T) {
	eng := engine.NewMockEngine(100, 10)
	eng.SizeFunc = func(req *engine.Request) (*engine.Summary, error) {
		if req.GHEID == "g2" {
			return nil, errors.New("no feasible field")
		}
		return &engine.Summary{BoreholeLength: 100, BoreholeCount: 10}, nil
	}
	n := build(t, models.DesignAreaProportional,
		building("b1", 600),
		newGHE(t, "g1", 50, 50, eng),
		newGHE(t, "g2", 50, 50, eng),
	)
	_, err := n.Size(context.Background(), network.SizeOptions{OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "g2")
}

func TestSizeTrunk(t *testing.T) {
	water, err := fluid.New("water", 0, quietLogger())
	require.NoError(t, err)
	p, err := pipe.New(11, 500, water, 20, quietLogger())
	require.NoError(t, err)

	eng := engine.NewMockEngine(89.5, 50)
	n := build(t, models.DesignAreaProportional,
		building("b1", 600),
		newGHE(t, "g1", 50, 50, eng),
	)
	res, err := n.Size(context.Background(), network.SizeOptions{
		OutputDir: t.TempDir(),
		Trunk: &network.TrunkDesign{
			Pipe:                  p,
			FlowRate:              0.5,
			FlowType:              network.FlowPerBorehole,
			PressureDropPerMeter:  300,
			Discrete:              true,
			PressureDropAllowance: 50000,
			MotorEfficiency:       0.9,
			InefficiencyToFluid:   1,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Piping)
	assert.InDelta(t, 0.025, res.Piping.PumpFlow, 1e-12)
	assert.Equal(t, p.InnerDiameter(), res.Piping.HydraulicDiameter)
	assert.Greater(t, res.Piping.PumpHead, 50000.0)
	assert.Less(t, res.Piping.PumpHead, 50000.0+300*500)
}

func TestTrunkFlow(t *testing.T) {
	flow, err := network.TrunkFlow(&network.TrunkDesign{FlowRate: 2, FlowType: network.FlowSystem}, 40)
	require.NoError(t, err)
	assert.InDelta(t, 0.002, flow, 1e-12)

	_, err = network.TrunkFlow(&network.TrunkDesign{FlowRate: 2, FlowType: "per-building"}, 40)
	assert.Error(t, err)
}

func station(t *testing.T, name string, heating float64) *ets.Station {
	t.Helper()
	hp, err := equipment.NewHeatPump("hp", 2.5, 3.5)
	require.NoError(t, err)
	idlePump, err := equipment.NewPump("pump", 0, 0, 0.9, 1)
	require.NoError(t, err)
	idleFan, err := equipment.NewFan("fan", 0, 0, 0.6)
	require.NoError(t, err)
	s, err := ets.New(name, hp, nil, idlePump, idlePump, idleFan, &loads.BuildingLoads{
		Heating: loads.Constant(heating),
		Cooling: loads.Zeros(),
		DHW:     loads.Zeros(),
	})
	require.NoError(t, err)
	return s
}

func TestSingleBuildingHeatingOnly(t *testing.T) {
	eng := engine.NewMockEngine(100, 10)
	n := build(t, models.DesignAreaProportional,
		station(t, "b1", 1000),
		newGHE(t, "g1", 20, 50, eng),
	)

	res, err := n.Size(context.Background(), network.SizeOptions{OutputDir: t.TempDir()})
	require.NoError(t, err)
	for h, v := range res.GHEs[0].AssignedLoad {
		require.InDelta(t, 600.0, v, 1e-9, "hour %d", h)
	}
}

func TestUpstreamSegmentIsolation(t *testing.T) {
	assignedToFirst := func(loadB float64) []float64 {
		n := build(t, models.DesignUpstream,
			station(t, "a", 1000),
			newGHE(t, "g1", 10, 10, nil),
			station(t, "b", loadB),
			newGHE(t, "g2", 10, 10, nil),
		)
		assigned, err := n.Allocate(context.Background())
		require.NoError(t, err)
		return assigned[0]
	}
	assert.Equal(t, assignedToFirst(500), assignedToFirst(5000))
}
