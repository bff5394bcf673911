package equipment

import (
	"fmt"

	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// Pump is a circulating pump defined by its design point.
type Pump struct {
	Name                     string
	DesignFlow               float64 // m³/s
	DesignHead               float64 // Pa
	MotorEfficiency          float64
	MotorInefficiencyToFluid float64
}

// NewPump validates a pump design point.
func NewPump(name string, flow, head, motorEfficiency, inefficiencyToFluid float64) (*Pump, error) {
	if flow < 0 || head < 0 {
		return nil, fmt.Errorf("%w: pump %q design flow and head must be >= 0", models.ErrConfiguration, name)
	}
	if motorEfficiency < 0 || motorEfficiency > 1 {
		return nil, fmt.Errorf("%w: pump %q motor efficiency must be in [0, 1], got %g",
			models.ErrConfiguration, name, motorEfficiency)
	}
	if inefficiencyToFluid < 0 || inefficiencyToFluid > 1 {
		return nil, fmt.Errorf("%w: pump %q motor inefficiency fraction must be in [0, 1], got %g",
			models.ErrConfiguration, name, inefficiencyToFluid)
	}
	return &Pump{
		Name:                     models.NormalizeName(name),
		DesignFlow:               flow,
		DesignHead:               head,
		MotorEfficiency:          motorEfficiency,
		MotorInefficiencyToFluid: inefficiencyToFluid,
	}, nil
}

// Type returns models.ComponentPump.
func (p *Pump) Type() models.ComponentType { return models.ComponentPump }

// HydraulicPower returns flow × head in W.
func (p *Pump) HydraulicPower() float64 {
	return p.DesignFlow * p.DesignHead
}

// HeatToFluid returns the motor loss that ends up in the fluid stream, W.
func (p *Pump) HeatToFluid() float64 {
	return p.HydraulicPower() * (1 - p.MotorEfficiency) * p.MotorInefficiencyToFluid
}

// LoadSeries returns HeatToFluid repeated n times.
func (p *Pump) LoadSeries(n int) []float64 {
	return constant(p.HeatToFluid(), n)
}

// Loads returns the pump's hourly parasitic heat for a year. Pumps placed
// directly in the loop add this heat to the ground load.
func (p *Pump) Loads() ([]float64, error) {
	return p.LoadSeries(models.HoursInYear), nil
}

// ComponentName returns the normalized pump name.
func (p *Pump) ComponentName() string { return p.Name }

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
