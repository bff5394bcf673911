// Package runner wires the documents, the loop and the engine into one
// sizing run.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ajitpratap0/thermalnetwork/internal/engine"
	"github.com/ajitpratap0/thermalnetwork/internal/metrics"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
	"github.com/ajitpratap0/thermalnetwork/internal/network"
	"github.com/ajitpratap0/thermalnetwork/internal/sysparam"
	"github.com/ajitpratap0/thermalnetwork/internal/topology"
)

// Options locate the inputs of a run.
type Options struct {
	SysParamPath string
	GeoJSONPath  string
	ScenarioDir  string
	OutputDir    string

	Workers          int
	FluidTemperature float64 // °C, used when the document does not set one
	Engine           engine.Engine
	Logger           *slog.Logger
}

// Plan is everything a run needs before sizing starts.
type Plan struct {
	Doc      *sysparam.Document
	Topology *topology.Document
	Order    []topology.Feature
	Network  *network.Network
	Trunk    *network.TrunkDesign
}

// Report summarises a finished run.
type Report struct {
	RunID         string
	LoopOrderPath string
	Result        *network.Result
	Written       sysparam.Results
}

// Prepare reads both documents, resolves the loop and builds the network.
// Nothing is written.
func Prepare(opts Options) (*Plan, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := sysparam.Load(opts.SysParamPath)
	if err != nil {
		return nil, err
	}
	topo, err := topology.ParseFile(opts.GeoJSONPath)
	if err != nil {
		return nil, err
	}
	order, err := topology.Resolve(topo)
	if err != nil {
		return nil, err
	}
	logger.Info("loop resolved", "features", len(order), "anchor", order[0].ID)

	b := &builder{doc: doc, scenarioDir: opts.ScenarioDir, eng: opts.Engine, logger: logger}
	net, err := b.network(order)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Doc: doc, Topology: topo, Order: order, Network: net}
	if doc.HasPiping() && doc.Piping.Autosize {
		trunk, err := b.trunk(topo.LoopLength(), opts.FluidTemperature)
		if err != nil {
			return nil, err
		}
		plan.Trunk = trunk
	}
	return plan, nil
}

// Run performs a full sizing run, then writes the loop order side file and
// the results into the system parameter document. Nothing is written when
// sizing fails.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("%w: no sizing engine", models.ErrConfiguration)
	}
	runID := uuid.NewString()
	base := opts.Logger
	if base == nil {
		base = slog.Default()
	}
	opts.Logger = base.With("run_id", runID)
	logger := opts.Logger

	plan, err := Prepare(opts)
	if err != nil {
		return nil, err
	}

	res, err := plan.Network.Size(ctx, network.SizeOptions{
		OutputDir: opts.OutputDir,
		RunID:     runID,
		Workers:   opts.Workers,
		Trunk:     plan.Trunk,
	})
	if err != nil {
		return nil, err
	}

	loopPath, err := topology.WriteLoopOrder(opts.OutputDir, topology.Groups(plan.Order))
	if err != nil {
		return nil, err
	}
	logger.Debug("loop order written", "path", loopPath)

	written := toResults(res)
	if err := plan.Doc.WriteResults(opts.SysParamPath, written); err != nil {
		return nil, err
	}
	logger.Info("sizing complete", "ghes", len(res.GHEs), "piping_sized", res.Piping != nil,
		"numeric_warnings", metrics.NumericWarnings.Value())

	return &Report{RunID: runID, LoopOrderPath: loopPath, Result: res, Written: written}, nil
}

func toResults(res *network.Result) sysparam.Results {
	out := sysparam.Results{GHEs: make([]sysparam.GHEResult, len(res.GHEs))}
	for i, g := range res.GHEs {
		out.GHEs[i] = sysparam.GHEResult{ID: g.ID, BoreholeLength: g.BoreholeLength, BoreholeCount: g.BoreholeCount}
	}
	if res.Piping != nil {
		out.Piping = &sysparam.PipingResult{
			HydraulicDiameter: res.Piping.HydraulicDiameter,
			PumpHead:          res.Piping.PumpHead,
			PumpFlow:          res.Piping.PumpFlow,
		}
	}
	return out
}

// docDir is where relative paths in the system parameter document resolve.
func docDir(doc *sysparam.Document) string {
	if doc.Path == "" {
		return "."
	}
	return filepath.Dir(doc.Path)
}
