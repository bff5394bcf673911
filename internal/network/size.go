package network

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/thermalnetwork/internal/equipment"
	"github.com/ajitpratap0/thermalnetwork/internal/metrics"
	"github.com/ajitpratap0/thermalnetwork/internal/pipe"
	"github.com/ajitpratap0/thermalnetwork/pkg/units"
)

// Flow types for the trunk design flow.
const (
	FlowPerBorehole = "borehole"
	FlowSystem      = "system"
)

// TrunkDesign describes the trunk pipe and central pump to size after the
// GHEs. Pipe carries the dimension ratio, loop length and fluid.
type TrunkDesign struct {
	Pipe                  *pipe.Pipe
	FlowRate              float64 // L/s, per borehole or for the system
	FlowType              string
	PressureDropPerMeter  float64 // Pa/m
	Discrete              bool
	PressureDropAllowance float64 // Pa
	MotorEfficiency       float64
	InefficiencyToFluid   float64
}

// SizeOptions control a sizing run.
type SizeOptions struct {
	OutputDir string
	RunID     string
	Workers   int          // concurrent GHE sizing calls; <= 0 means unbounded
	Trunk     *TrunkDesign // nil skips pipe and pump sizing
}

// GHEResult is one sized GHE.
type GHEResult struct {
	ID             string
	Name           string
	BoreholeLength float64
	BoreholeCount  int
	AssignedLoad   []float64
}

// PipingResult is the sized trunk pipe and central pump.
type PipingResult struct {
	HydraulicDiameter float64 // m, inner
	PumpHead          float64 // Pa
	PumpFlow          float64 // m³/s
}

// Result is the outcome of Size.
type Result struct {
	GHEs   []GHEResult
	Piping *PipingResult
}

// MaxBoreholeCount returns the largest borehole count of any GHE.
func (r *Result) MaxBoreholeCount() int {
	m := 0
	for _, g := range r.GHEs {
		m = max(m, g.BoreholeCount)
	}
	return m
}

// Size allocates loads, sizes every GHE concurrently, and then sizes the
// trunk pipe and central pump. The first GHE failure cancels the others.
func (n *Network) Size(ctx context.Context, opts SizeOptions) (*Result, error) {
	assigned, err := n.Allocate(ctx)
	if err != nil {
		return nil, err
	}

	ghes := n.GHEs()
	res := &Result{GHEs: make([]GHEResult, len(ghes))}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	var mu sync.Mutex
	for i, h := range ghes {
		g.Go(func() error {
			sizing, err := h.Size(gctx, assigned[i], opts.OutputDir, opts.RunID)
			if err != nil {
				metrics.Inc(metrics.GHEFailed)
				return err
			}
			metrics.Inc(metrics.GHESized)
			mu.Lock()
			res.GHEs[i] = GHEResult{
				ID:             h.ID,
				Name:           h.Name,
				BoreholeLength: sizing.BoreholeLength,
				BoreholeCount:  sizing.BoreholeCount,
				AssignedLoad:   assigned[i],
			}
			mu.Unlock()
			n.logger.Info("GHE sized", "ghe", h.ID, "boreholes", sizing.BoreholeCount,
				"borehole_length_m", sizing.BoreholeLength)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Trunk != nil {
		piping, err := n.sizeTrunk(opts.Trunk, res.MaxBoreholeCount())
		if err != nil {
			return nil, err
		}
		res.Piping = piping
	}
	return res, nil
}

// TrunkFlow returns the trunk design flow in m³/s.
func TrunkFlow(t *TrunkDesign, maxBoreholes int) (float64, error) {
	switch t.FlowType {
	case FlowPerBorehole, "":
		return units.LitersPerSecondToCubicMeters(t.FlowRate) * float64(maxBoreholes), nil
	case FlowSystem:
		return units.LitersPerSecondToCubicMeters(t.FlowRate), nil
	}
	return 0, fmt.Errorf("flow type %q not supported", t.FlowType)
}

func (n *Network) sizeTrunk(t *TrunkDesign, maxBoreholes int) (*PipingResult, error) {
	flow, err := TrunkFlow(t, maxBoreholes)
	if err != nil {
		return nil, err
	}
	if flow <= 0 {
		return nil, fmt.Errorf("trunk design flow must be > 0, got %g m³/s", flow)
	}
	diameter, err := t.Pipe.SizeHydraulicDiameter(flow, t.PressureDropPerMeter, t.Discrete)
	if err != nil {
		return nil, fmt.Errorf("sizing trunk pipe: %w", err)
	}
	head := t.Pipe.PressureLoss(flow) + t.PressureDropAllowance

	pump, err := equipment.NewPump("central pump", flow, head, t.MotorEfficiency, t.InefficiencyToFluid)
	if err != nil {
		return nil, err
	}
	n.logger.Info("central pump sized", "flow_m3s", flow, "head_pa", head,
		"hydraulic_power_w", pump.HydraulicPower(), "heat_to_fluid_w", pump.HeatToFluid())
	return &PipingResult{HydraulicDiameter: diameter, PumpHead: head, PumpFlow: flow}, nil
}
