package runner_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/ajitpratap0/thermalnetwork/internal/engine"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
	"github.com/ajitpratap0/thermalnetwork/internal/runner"
	"github.com/ajitpratap0/thermalnetwork/internal/topology"
)

const sysParams = `{
  "district_system": {
    "fifth_generation": {
      "ghe_parameters": {
        "version": 1,
        "fluid": {"fluid_name": "Water", "concentration_percent": 0},
        "soil": {"conductivity": 2.0},
        "geometric_constraints": {"b_min": 3.0, "b_max": 10.0, "method": "RECTANGLE"},
        "design": {"method": "AREA_PROPORTIONAL", "flow_rate": 0.5, "flow_type": "borehole"},
        "ghe_specific_params": [
          {"ghe_id": "ghe-1", "ghe_geometric_params": {"length_of_ghe": 100, "width_of_ghe": 100},
           "borehole": {"buried_depth": 2.0, "diameter": 0.15}}
        ]
      },
      "horizontal_piping_parameters": {
        "autosize": true, "dimension_ratio": 11, "pressure_drop_per_meter": 300, "discrete_pipe_sizes": true
      },
      "central_pump_parameters": {"pressure_drop_allowance": 50000, "motor_efficiency": 0.9},
      "buildings": [{"geojson_id": "b1", "cop_heating": 3.0, "cop_cooling": 4.0}]
    }
  },
  "weather": "USA_CO_Denver.epw"
}`

const geoJSON = `{"type":"FeatureCollection","features":[
  {"type":"Feature","properties":{"type":"Building","id":"b1"}},
  {"type":"Feature","properties":{"type":"District System","id":"ghe-1","district_system_type":"Ground Heat Exchanger"}},
  {"type":"Feature","properties":{"type":"ThermalConnector","id":"c1","startFeatureId":"b1","endFeatureId":"ghe-1"},
   "geometry":{"type":"LineString","coordinates":[[0,0],[0,0.001]]}},
  {"type":"Feature","properties":{"type":"ThermalConnector","id":"c2","startFeatureId":"ghe-1","endFeatureId":"b1"},
   "geometry":{"type":"LineString","coordinates":[[0,0.001],[0,0]]}},
  {"type":"Feature","properties":{"type":"ThermalJunction","id":"j1","start_loop":"true","buildingId":"b1"}}
]}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture lays out a one-building, one-GHE project in a temp dir.
func fixture(t *testing.T) runner.Options {
	t.Helper()
	dir := t.TempDir()

	sp := filepath.Join(dir, "system_parameter.json")
	require.NoError(t, os.WriteFile(sp, []byte(sysParams), 0o600))
	gj := filepath.Join(dir, "network.geojson")
	require.NoError(t, os.WriteFile(gj, []byte(geoJSON), 0o600))

	var b strings.Builder
	b.WriteString("SecondsFromStart,TotalHeatingSensibleLoad,TotalCoolingSensibleLoad\n")
	for h := range models.HoursInYear {
		fmt.Fprintf(&b, "%d,1000,0\n", h*3600)
	}
	scenario := filepath.Join(dir, "run", "baseline")
	require.NoError(t, os.MkdirAll(filepath.Join(scenario, "b1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scenario, "b1", "building_loads.csv"), []byte(b.String()), 0o600))

	return runner.Options{
		SysParamPath: sp,
		GeoJSONPath:  gj,
		ScenarioDir:  scenario,
		OutputDir:    filepath.Join(dir, "ghe_output"),
		Workers:      2,
		Logger:       quietLogger(),
	}
}

func TestPrepareBuildsLoopInOrder(t *testing.T) {
	opts := fixture(t)
	plan, err := runner.Prepare(opts)
	require.NoError(t, err)

	comps := plan.Network.Components()
	require.Len(t, comps, 3)
	assert.Equal(t, models.ComponentPump, comps[0].Type(), "primary pump leads the loop")
	assert.Equal(t, models.ComponentEnergyTransferStation, comps[1].Type())
	assert.Equal(t, models.ComponentGroundHeatExchanger, comps[2].Type())
	require.NotNil(t, plan.Trunk)
	assert.InDelta(t, 222.64, plan.Trunk.Pipe.Length(), 0.1)
}

func TestRunWritesResults(t *testing.T) {
	opts := fixture(t)
	eng := engine.NewMockEngine(89.5, 50)
	opts.Engine = eng

	report, err := runner.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.FileExists(t, filepath.Join(opts.OutputDir, topology.LoopOrderFile))

	req, ok := eng.Request("ghe-1")
	require.True(t, ok)
	assert.Equal(t, report.RunID, req.RunID)
	assert.Len(t, req.Loads.GroundLoads, models.HoursInYear)
	assert.Equal(t, filepath.Join(opts.OutputDir, "ghe-1"), req.WorkDir)

	data, err := os.ReadFile(opts.SysParamPath)
	require.NoError(t, err)
	ghe := gjson.GetBytes(data, "district_system.fifth_generation.ghe_parameters.ghe_specific_params.0.borehole")
	assert.Equal(t, 89.5, ghe.Get("length_of_boreholes").Float())
	assert.Equal(t, int64(50), ghe.Get("number_of_boreholes").Int())
	assert.Equal(t, 2.0, ghe.Get("buried_depth").Float(), "untouched fields survive")

	pump := gjson.GetBytes(data, "district_system.fifth_generation.central_pump_parameters")
	assert.InDelta(t, 0.025, pump.Get("pump_flow_rate").Float(), 1e-12)
	assert.Greater(t, pump.Get("pump_design_head").Float(), 50000.0)
	assert.Greater(t, gjson.GetBytes(data, "district_system.fifth_generation.horizontal_piping_parameters.hydraulic_diameter").Float(), 0.0)
	assert.Equal(t, "USA_CO_Denver.epw", gjson.GetBytes(data, "weather").String())
}

func TestRunLeavesDocumentOnFailure(t *testing.T) {
	opts := fixture(t)
	eng := engine.NewMockEngine(0, 0)
	eng.SizeFunc = func(*engine.Request) (*engine.Summary, error) {
		return nil, fmt.Errorf("%w: solver diverged", models.ErrExternalEngine)
	}
	opts.Engine = eng

	_, err := runner.Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrExternalEngine))

	data, err := os.ReadFile(opts.SysParamPath)
	require.NoError(t, err)
	assert.JSONEq(t, sysParams, string(data))
	assert.NoFileExists(t, filepath.Join(opts.OutputDir, topology.LoopOrderFile))
}

func TestRunRequiresEngine(t *testing.T) {
	_, err := runner.Run(context.Background(), fixture(t))
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestPrepareMissingBuildingLoads(t *testing.T) {
	opts := fixture(t)
	opts.ScenarioDir = t.TempDir()
	_, err := runner.Prepare(opts)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
