package ghe_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/ajitpratap0/thermalnetwork/internal/engine"
	"github.com/ajitpratap0/thermalnetwork/internal/geometry"
	"github.com/ajitpratap0/thermalnetwork/internal/ghe"
	"github.com/ajitpratap0/thermalnetwork/internal/loads"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shared() ghe.Shared {
	return ghe.Shared{
		Version:              1,
		Fluid:                json.RawMessage(`{"fluid_name":"Water"}`),
		GeometricConstraints: json.RawMessage(`{"b_min":3,"b_max":10}`),
		Design:               json.RawMessage(`{"method":"AREA_PROPORTIONAL","flow_rate":0.2}`),
	}
}

func TestRectangleFootprint(t *testing.T) {
	g, err := ghe.New(ghe.Params{ID: "ghe-a", Method: models.GHERectangle, Length: 20, Width: 50}, shared(), nil, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1000.0, g.FootprintArea)
	assert.Equal(t, "GHE-A", g.ComponentName())
	assert.Equal(t, models.ComponentGroundHeatExchanger, g.Type())

	l, err := g.Loads()
	require.NoError(t, err)
	assert.Equal(t, 0.0, loads.Total(l))
}

func TestPolygonFootprint(t *testing.T) {
	origin := geometry.Point{-105.0, 39.7}
	square := geometry.MetersToLonLat([]geometry.Point{{0, 0}, {40, 0}, {40, 25}, {0, 25}, {0, 0}}, origin)
	hole := geometry.MetersToLonLat([]geometry.Point{{5, 5}, {5, 10}, {10, 10}, {10, 5}}, origin)

	g, err := ghe.New(ghe.Params{
		ID:       "ghe-p",
		Method:   models.GHEBiRectangleConstr,
		Polygons: [][]geometry.Point{square, hole},
	}, shared(), nil, quietLogger())
	require.NoError(t, err)
	assert.InDelta(t, 1000.0-25.0, g.FootprintArea, 1e-3)

	req, err := g.Request(loads.Zeros(), t.TempDir(), "run")
	require.NoError(t, err)
	gc := gjson.ParseBytes(req.GeometricConstraints)
	assert.Equal(t, "BIRECTANGLECONSTRAINED", gc.Get("method").String())
	assert.Len(t, gc.Get("property_boundary").Array(), 5)
	assert.Len(t, gc.Get("no_go_boundaries").Array(), 1)
	assert.Equal(t, 3.0, gc.Get("b_min").Float(), "shared keys preserved")
}

func TestMissingGeometry(t *testing.T) {
	_, err := ghe.New(ghe.Params{ID: "g", Method: models.GHERectangle}, shared(), nil, quietLogger())
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = ghe.New(ghe.Params{Method: models.GHERectangle, Length: 1, Width: 1}, shared(), nil, quietLogger())
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestPreDesignedCoordinateMismatch(t *testing.T) {
	_, err := ghe.New(ghe.Params{
		ID:             "g",
		Method:         models.GHEPreDesigned,
		BoreholeLength: 100,
		PreDesignedX:   []float64{0, 5, 10},
		PreDesignedY:   []float64{0, 5},
	}, shared(), nil, quietLogger())
	assert.ErrorIs(t, err, models.ErrDataShape)
}

func TestPreDesignedSkipsEngine(t *testing.T) {
	eng := engine.NewMockEngine(1, 1)
	g, err := ghe.New(ghe.Params{
		ID:             "g",
		Method:         models.GHEPreDesigned,
		BoreholeLength: 120,
		PreDesignedX:   []float64{0, 6, 0, 6},
		PreDesignedY:   []float64{0, 0, 6, 6},
	}, shared(), eng, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 36.0, g.FootprintArea)
	assert.True(t, g.PreDesigned())

	s, err := g.Size(context.Background(), loads.Constant(10), t.TempDir(), "run")
	require.NoError(t, err)
	assert.Equal(t, ghe.Sizing{BoreholeLength: 120, BoreholeCount: 4}, s)
	assert.Empty(t, eng.Requests())
}

func TestSizeDelegatesToEngine(t *testing.T) {
	eng := engine.NewMockEngine(95, 30)
	g, err := ghe.New(ghe.Params{
		ID:       "ghe-1",
		Method:   models.GHERectangle,
		Length:   30,
		Width:    40,
		Borehole: json.RawMessage(`{"buried_depth":2,"diameter":0.15}`),
	}, shared(), eng, quietLogger())
	require.NoError(t, err)

	out := t.TempDir()
	s, err := g.Size(context.Background(), loads.Constant(600), out, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 30, s.BoreholeCount)
	assert.Equal(t, 95.0, s.BoreholeLength)

	req, ok := eng.Request("ghe-1")
	require.True(t, ok)
	assert.Equal(t, "run-1", req.RunID)
	assert.Equal(t, filepath.Join(out, "ghe-1"), req.WorkDir)
	assert.Equal(t, 600.0, req.Loads.GroundLoads[100])
	gc := gjson.ParseBytes(req.GeometricConstraints)
	assert.Equal(t, 30.0, gc.Get("length").Float())
	assert.Equal(t, 40.0, gc.Get("width").Float())
	assert.Equal(t, "RECTANGLE", gc.Get("method").String())
}

func TestSizeRejectsShortLoad(t *testing.T) {
	g, err := ghe.New(ghe.Params{ID: "g", Method: models.GHERectangle, Length: 1, Width: 1},
		shared(), engine.NewMockEngine(1, 1), quietLogger())
	require.NoError(t, err)
	_, err = g.Size(context.Background(), []float64{1}, t.TempDir(), "")
	assert.ErrorIs(t, err, models.ErrDataShape)
}

func TestSizeWrapsEngineError(t *testing.T) {
	eng := engine.NewMockEngine(1, 1)
	eng.SizeFunc = func(*engine.Request) (*engine.Summary, error) {
		return engine.ParseSummary([]byte(`{}`))
	}
	g, err := ghe.New(ghe.Params{ID: "g", Method: models.GHENearSquare, Length: 1, Width: 1}, shared(), eng, quietLogger())
	require.NoError(t, err)
	_, err = g.Size(context.Background(), loads.Zeros(), t.TempDir(), "")
	assert.ErrorIs(t, err, models.ErrExternalEngine)
}
