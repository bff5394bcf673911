// Package mcp implements the Model Context Protocol server exposing the
// thermalnetwork calculators as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/thermalnetwork/internal/equipment"
	"github.com/ajitpratap0/thermalnetwork/internal/fluid"
	"github.com/ajitpratap0/thermalnetwork/internal/pipe"
	"github.com/ajitpratap0/thermalnetwork/internal/topology"
)

const (
	// defaultDimensionRatio is the pipe SDR used when none is given.
	defaultDimensionRatio = 11.0

	// unitLength makes the sized pipe report losses per meter.
	unitLength = 1.0
)

// Server wraps an MCPServer with the calculator tools.
type Server struct {
	mcp       *mcpserver.MCPServer
	fluidTemp float64
	logger    *slog.Logger
}

// NewServer creates a new MCP server. fluidTemp is the design temperature in
// °C used for pipe sizing.
func NewServer(version string, fluidTemp float64, logger *slog.Logger) *Server {
	s := &Server{fluidTemp: fluidTemp, logger: logger}

	mcpSrv := mcpserver.NewMCPServer(
		"thermalnetwork",
		version,
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildFrictionFactorTool(), s.handleFrictionFactor)
	mcpSrv.AddTool(buildSizePipeTool(), s.handleSizePipe)
	mcpSrv.AddTool(buildSourceSideLoadTool(), s.handleSourceSideLoad)
	mcpSrv.AddTool(buildResolveLoopTool(), s.handleResolveLoop)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleFrictionFactor is the exported handler for the "friction_factor" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleFrictionFactor(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleFrictionFactor(ctx, req)
}

// HandleSizePipe is the exported handler for the "size_pipe" tool.
func (s *Server) HandleSizePipe(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSizePipe(ctx, req)
}

// HandleSourceSideLoad is the exported handler for the "source_side_load" tool.
func (s *Server) HandleSourceSideLoad(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSourceSideLoad(ctx, req)
}

// HandleResolveLoop is the exported handler for the "resolve_loop" tool.
func (s *Server) HandleResolveLoop(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleResolveLoop(ctx, req)
}

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildFrictionFactorTool() mcpgo.Tool {
	return mcpgo.NewTool("friction_factor",
		mcpgo.WithDescription("Darcy friction factor of a smooth pipe, blending laminar and turbulent flow between Re 2000 and 4000."),
		mcpgo.WithNumber("reynolds",
			mcpgo.Required(),
			mcpgo.Description("Reynolds number, > 0"),
		),
	)
}

func buildSizePipeTool() mcpgo.Tool {
	return mcpgo.NewTool("size_pipe",
		mcpgo.WithDescription("Size an HDPE pipe for a flow rate and a design pressure loss per meter."),
		mcpgo.WithNumber("flow_rate",
			mcpgo.Required(),
			mcpgo.Description("Volumetric flow rate in m³/s"),
		),
		mcpgo.WithNumber("pressure_loss_per_length",
			mcpgo.Required(),
			mcpgo.Description("Design pressure loss in Pa/m"),
		),
		mcpgo.WithNumber("dimension_ratio",
			mcpgo.Description("Pipe SDR (default: 11)"),
		),
		mcpgo.WithBoolean("discrete",
			mcpgo.Description("Pick from catalog sizes instead of a continuous diameter (default: true)"),
		),
		mcpgo.WithString("fluid",
			mcpgo.Description("Water, PropyleneGlycol or EthyleneGlycol (default: Water)"),
		),
		mcpgo.WithNumber("concentration",
			mcpgo.Description("Antifreeze mass fraction 0.0-0.6 (default: 0)"),
		),
	)
}

func buildSourceSideLoadTool() mcpgo.Tool {
	return mcpgo.NewTool("source_side_load",
		mcpgo.WithDescription("Ground-side load of a heat pump. Positive loads are heating, negative loads are cooling."),
		mcpgo.WithNumber("load",
			mcpgo.Required(),
			mcpgo.Description("Load-side load in W"),
		),
		mcpgo.WithNumber("cop_heating",
			mcpgo.Description("Heating COP (default: 2.5)"),
		),
		mcpgo.WithNumber("cop_cooling",
			mcpgo.Description("Cooling COP (default: 3.5)"),
		),
	)
}

func buildResolveLoopTool() mcpgo.Tool {
	return mcpgo.NewTool("resolve_loop",
		mcpgo.WithDescription("Resolve the ordered loop of buildings and district systems from a GeoJSON FeatureCollection."),
		mcpgo.WithString("geojson",
			mcpgo.Required(),
			mcpgo.Description("The GeoJSON document as a string"),
		),
	)
}

// --- tool handlers ---

func (s *Server) handleFrictionFactor(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	re := req.GetFloat("reynolds", 0)
	if re <= 0 {
		return mcpgo.NewToolResultError("reynolds must be > 0"), nil
	}
	result := map[string]any{
		"reynolds":        re,
		"friction_factor": pipe.FrictionFactor(re),
	}
	return toolResultJSON(result)
}

func (s *Server) handleSizePipe(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	flow := req.GetFloat("flow_rate", 0)
	if flow <= 0 {
		return mcpgo.NewToolResultError("flow_rate must be > 0"), nil
	}
	target := req.GetFloat("pressure_loss_per_length", 0)
	if target <= 0 {
		return mcpgo.NewToolResultError("pressure_loss_per_length must be > 0"), nil
	}
	sdr := req.GetFloat("dimension_ratio", defaultDimensionRatio)
	discrete := req.GetBool("discrete", true)

	f, err := fluid.New(req.GetString("fluid", fluid.Water), req.GetFloat("concentration", 0), s.logger)
	if err != nil {
		return mcpgo.NewToolResultErrorf("fluid: %s", err.Error()), nil
	}
	p, err := pipe.New(sdr, unitLength, f, s.fluidTemp, s.logger)
	if err != nil {
		return mcpgo.NewToolResultErrorf("pipe: %s", err.Error()), nil
	}
	inner, err := p.SizeHydraulicDiameter(flow, target, discrete)
	if err != nil {
		return mcpgo.NewToolResultErrorf("sizing failed: %s", err.Error()), nil
	}

	s.logger.Info("mcp: size_pipe", "flow_m3s", flow, "target_pa_per_m", target, "inner_diameter_m", inner)

	result := map[string]any{
		"inner_diameter":           inner,
		"outer_diameter":           p.OuterDiameter(),
		"pressure_loss_per_length": p.PressureLoss(flow),
		"velocity":                 p.Velocity(flow),
		"reynolds":                 p.Reynolds(flow),
	}
	return toolResultJSON(result)
}

func (s *Server) handleSourceSideLoad(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	load := req.GetFloat("load", math.NaN())
	if math.IsNaN(load) {
		return mcpgo.NewToolResultError("load is required"), nil
	}
	hp, err := equipment.NewHeatPump("mcp heat pump",
		req.GetFloat("cop_heating", 2.5), req.GetFloat("cop_cooling", 3.5))
	if err != nil {
		return mcpgo.NewToolResultErrorf("heat pump: %s", err.Error()), nil
	}
	result := map[string]any{
		"load":             load,
		"source_side_load": hp.SourceLoad(load),
	}
	return toolResultJSON(result)
}

func (s *Server) handleResolveLoop(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	raw := req.GetString("geojson", "")
	if strings.TrimSpace(raw) == "" {
		return mcpgo.NewToolResultError("geojson is required and must not be empty"), nil
	}
	doc, err := topology.Parse([]byte(raw))
	if err != nil {
		return mcpgo.NewToolResultErrorf("parse failed: %s", err.Error()), nil
	}
	order, err := topology.Resolve(doc)
	if err != nil {
		return mcpgo.NewToolResultErrorf("resolve failed: %s", err.Error()), nil
	}

	ids := make([]string, len(order))
	for i, f := range order {
		ids[i] = f.ID
	}
	result := map[string]any{
		"order":       ids,
		"groups":      topology.Groups(order),
		"loop_length": doc.LoopLength(),
	}
	return toolResultJSON(result)
}
