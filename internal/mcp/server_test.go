package mcp_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tnmcp "github.com/ajitpratap0/thermalnetwork/internal/mcp"
	"github.com/ajitpratap0/thermalnetwork/internal/pipe"
	"github.com/ajitpratap0/thermalnetwork/pkg/units"
)

func newServer() *tnmcp.Server {
	return tnmcp.NewServer("test", 20, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// makeReq builds a CallToolRequest with the given arguments.
func makeReq(toolName string, args map[string]any) mcpgo.CallToolRequest {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args
	return req
}

// decode unmarshals the first text content of a successful result.
func decode(t *testing.T, result *mcpgo.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, result.IsError, "unexpected tool error")
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcpgo.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &out))
	return out
}

func TestFrictionFactorTool(t *testing.T) {
	srv := newServer()
	res, err := srv.HandleFrictionFactor(context.Background(), makeReq("friction_factor", map[string]any{"reynolds": 1000.0}))
	require.NoError(t, err)
	assert.InDelta(t, 0.064, decode(t, res)["friction_factor"].(float64), 1e-12)

	res, err = srv.HandleFrictionFactor(context.Background(), makeReq("friction_factor", map[string]any{"reynolds": -1.0}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSizePipeTool(t *testing.T) {
	srv := newServer()
	res, err := srv.HandleSizePipe(context.Background(), makeReq("size_pipe", map[string]any{
		"flow_rate":                0.025,
		"pressure_loss_per_length": 300.0,
	}))
	require.NoError(t, err)
	out := decode(t, res)
	assert.Greater(t, out["inner_diameter"].(float64), 0.0)
	assert.Less(t, out["pressure_loss_per_length"].(float64), 300.0)
	assert.Greater(t, out["reynolds"].(float64), 4000.0)

	inner := out["inner_diameter"].(float64)
	var inCatalog bool
	for _, size := range pipe.Catalog {
		od := units.InchesToMeters(size.OuterDiameterIn)
		if math.Abs(od*(1-2/11.0)-inner) < 1e-9 {
			inCatalog = true
		}
	}
	assert.True(t, inCatalog, "discrete sizing picks a catalog size")
}

func TestSizePipeToolRejectsBadInput(t *testing.T) {
	srv := newServer()
	for _, args := range []map[string]any{
		{"flow_rate": 0.0, "pressure_loss_per_length": 300.0},
		{"flow_rate": 0.01, "pressure_loss_per_length": 0.0},
		{"flow_rate": 0.01, "pressure_loss_per_length": 300.0, "fluid": "mercury"},
		{"flow_rate": 0.01, "pressure_loss_per_length": 300.0, "dimension_ratio": 1.0},
	} {
		res, err := srv.HandleSizePipe(context.Background(), makeReq("size_pipe", args))
		require.NoError(t, err)
		assert.True(t, res.IsError, "args %v", args)
	}
}

func TestSourceSideLoadTool(t *testing.T) {
	srv := newServer()
	res, err := srv.HandleSourceSideLoad(context.Background(), makeReq("source_side_load", map[string]any{
		"load": 1000.0, "cop_heating": 2.5,
	}))
	require.NoError(t, err)
	assert.InDelta(t, 600.0, decode(t, res)["source_side_load"].(float64), 1e-9)

	res, err = srv.HandleSourceSideLoad(context.Background(), makeReq("source_side_load", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestResolveLoopTool(t *testing.T) {
	srv := newServer()
	geo := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{"type":"Building","id":"A"}},
	  {"type":"Feature","properties":{"type":"District System","id":"G","district_system_type":"Ground Heat Exchanger"}},
	  {"type":"Feature","properties":{"type":"ThermalConnector","id":"c1","startFeatureId":"A","endFeatureId":"G","total_length":40}},
	  {"type":"Feature","properties":{"type":"ThermalConnector","id":"c2","startFeatureId":"G","endFeatureId":"A","total_length":60}}
	]}`
	res, err := srv.HandleResolveLoop(context.Background(), makeReq("resolve_loop", map[string]any{"geojson": geo}))
	require.NoError(t, err)
	out := decode(t, res)
	assert.Equal(t, []any{"G", "A"}, out["order"])
	assert.InDelta(t, 100.0, out["loop_length"].(float64), 1e-9)

	res, err = srv.HandleResolveLoop(context.Background(), makeReq("resolve_loop", map[string]any{"geojson": "{}"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

