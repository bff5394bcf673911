// Package pipe sizes horizontal network piping from a volumetric flow rate and
// a design pressure loss per unit length.
package pipe

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ajitpratap0/thermalnetwork/internal/fluid"
	"github.com/ajitpratap0/thermalnetwork/internal/metrics"
	"github.com/ajitpratap0/thermalnetwork/pkg/units"
)

const (
	// Reynolds numbers bounding the laminar/turbulent transition.
	lowReynolds  = 2000.0
	highReynolds = 4000.0

	// Sigmoid centre and width for the transition blend.
	transitionCentre = (lowReynolds + highReynolds) / 2
	transitionWidth  = 450.0

	// Continuous search bounds and tolerance.
	minOuterDiameter      = 0.025 // m
	initialMaxDiameter    = 0.5   // m
	pressureLossTolerance = 0.1   // Pa/m
	maxSearchIterations   = 200
)

// Pipe is a straight run of pipe of a fixed dimension ratio carrying a fluid
// at a fixed design temperature.
type Pipe struct {
	dimensionRatio float64
	length         float64
	fluid          fluid.Properties
	fluidTemp      float64
	logger         *slog.Logger

	outerDiameter float64
	innerDiameter float64
}

// New creates a pipe. dimensionRatio is the outer diameter to wall thickness
// ratio (SDR) and must be greater than 2.
func New(dimensionRatio, length float64, f fluid.Properties, fluidTemp float64, logger *slog.Logger) (*Pipe, error) {
	if dimensionRatio <= 2 {
		return nil, fmt.Errorf("pipe: dimension ratio must be > 2, got %g", dimensionRatio)
	}
	if length <= 0 {
		return nil, fmt.Errorf("pipe: length must be > 0, got %g", length)
	}
	if f == nil {
		return nil, errors.New("pipe: fluid properties are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipe{
		dimensionRatio: dimensionRatio,
		length:         length,
		fluid:          f,
		fluidTemp:      fluidTemp,
		logger:         logger,
	}, nil
}

// DimensionRatio returns the pipe SDR.
func (p *Pipe) DimensionRatio() float64 { return p.dimensionRatio }

// Length returns the pipe length in meters.
func (p *Pipe) Length() float64 { return p.length }

// OuterDiameter returns the current outer diameter in meters.
func (p *Pipe) OuterDiameter() float64 { return p.outerDiameter }

// InnerDiameter returns the current inner diameter in meters.
func (p *Pipe) InnerDiameter() float64 { return p.innerDiameter }

// SetDiameters sets the outer diameter and derives the inner diameter from the
// dimension ratio.
func (p *Pipe) SetDiameters(outer float64) {
	p.outerDiameter = outer
	p.innerDiameter = outer * (1 - 2/p.dimensionRatio)
}

// LaminarFrictionFactor is the Hagen–Poiseuille friction factor.
func LaminarFrictionFactor(re float64) float64 {
	return 64.0 / re
}

// TurbulentFrictionFactor is the Petukhov (1970) smooth-tube correlation.
func TurbulentFrictionFactor(re float64) float64 {
	return math.Pow(0.79*math.Log(re)-1.64, -2)
}

// FrictionFactor returns the Darcy friction factor for a smooth tube. Between
// Re 2000 and 4000 the laminar and turbulent values are blended with a sigmoid
// centred at Re 3000.
func FrictionFactor(re float64) float64 {
	if re < lowReynolds {
		return LaminarFrictionFactor(re)
	}
	if re > highReynolds {
		return TurbulentFrictionFactor(re)
	}
	return units.Blend(re, transitionCentre, transitionWidth,
		LaminarFrictionFactor(re), TurbulentFrictionFactor(re))
}

// Velocity returns the mean fluid velocity in m/s for a flow in m³/s.
func (p *Pipe) Velocity(flow float64) float64 {
	area := math.Pi * p.innerDiameter * p.innerDiameter / 4
	return flow / area
}

// Reynolds returns the Reynolds number for a flow in m³/s.
func (p *Pipe) Reynolds(flow float64) float64 {
	rho := p.fluid.Density(p.fluidTemp)
	mu := p.fluid.Viscosity(p.fluidTemp)
	return rho * p.Velocity(flow) * p.innerDiameter / mu
}

// PressureLoss returns the Darcy–Weisbach pressure loss in Pa over the full
// pipe length. Non-positive flows lose nothing.
func (p *Pipe) PressureLoss(flow float64) float64 {
	if flow <= 0 {
		return 0
	}
	v := p.Velocity(flow)
	f := FrictionFactor(p.Reynolds(flow))
	rho := p.fluid.Density(p.fluidTemp)
	return f * (p.length / p.innerDiameter) * (rho * v * v / 2)
}

// PressureLossPerLength sets the outer diameter and returns the loss in Pa/m.
func (p *Pipe) PressureLossPerLength(flow, outerDiameter float64) float64 {
	p.SetDiameters(outerDiameter)
	return p.PressureLoss(flow) / p.length
}

// SizeHydraulicDiameter finds a pipe size whose pressure loss per length meets
// target (Pa/m) at flow (m³/s) and returns its inner diameter. With discrete
// set, the smallest catalog size with a loss below target is chosen; if none
// qualifies the largest size is returned with a warning. Otherwise the outer
// diameter is bisected until the loss is within 0.1 Pa/m of target.
func (p *Pipe) SizeHydraulicDiameter(flow, target float64, discrete bool) (float64, error) {
	if target <= 0 {
		return 0, fmt.Errorf("pipe: design pressure loss per length must be > 0, got %g", target)
	}
	if discrete {
		return p.sizeDiscrete(flow, target), nil
	}
	return p.sizeContinuous(flow, target)
}

func (p *Pipe) sizeDiscrete(flow, target float64) float64 {
	for _, size := range Catalog {
		if p.PressureLossPerLength(flow, units.InchesToMeters(size.OuterDiameterIn)) < target {
			p.logger.Info("network pipe sized", "size", size.Label, "sdr", p.dimensionRatio,
				"inner_diameter_m", p.innerDiameter)
			metrics.Inc(metrics.PipesSized)
			return p.innerDiameter
		}
	}

	largest := Catalog[len(Catalog)-1]
	p.logger.Warn("maximum available pipe size used, design pressure loss not met",
		"size", largest.Label, "sdr", p.dimensionRatio, "flow_m3s", flow, "target_pa_per_m", target)
	metrics.Inc(metrics.NumericWarnings)
	metrics.Inc(metrics.PipesSized)
	return p.innerDiameter
}

func (p *Pipe) sizeContinuous(flow, target float64) (float64, error) {
	low, high := minOuterDiameter, initialMaxDiameter

	for i := 0; ; i++ {
		loss := p.PressureLossPerLength(flow, high)
		if !finite(loss) {
			return 0, fmt.Errorf("pipe: pressure loss is not finite at flow %g m³/s, outer diameter %g m", flow, high)
		}
		if loss <= target {
			break
		}
		if i >= maxSearchIterations {
			return 0, fmt.Errorf("pipe: no diameter up to %g m meets %.3f Pa/m at flow %g m³/s", high, target, flow)
		}
		high *= 2
	}

	loss := math.Inf(1)
	for i := 0; math.Abs(loss-target) > pressureLossTolerance; i++ {
		if i >= maxSearchIterations {
			return 0, fmt.Errorf("pipe: diameter search did not converge within %d iterations (loss %.3f Pa/m, target %.3f Pa/m)",
				maxSearchIterations, loss, target)
		}
		mid := (low + high) / 2
		loss = p.PressureLossPerLength(flow, mid)
		if !finite(loss) {
			return 0, fmt.Errorf("pipe: pressure loss is not finite at flow %g m³/s, outer diameter %g m", flow, mid)
		}
		if loss > target {
			low = mid
		} else {
			high = mid
		}
	}

	p.logger.Info("network pipe sized", "outer_diameter_m", p.outerDiameter,
		"inner_diameter_m", p.innerDiameter, "sdr", p.dimensionRatio)
	metrics.Inc(metrics.PipesSized)
	return p.innerDiameter, nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
