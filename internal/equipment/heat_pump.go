// Package equipment models the load-transforming and parasitic equipment that
// sits between a building and the ground loop.
package equipment

import (
	"fmt"

	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// HeatPumpRole distinguishes space-conditioning from water-heating duty.
type HeatPumpRole string

const (
	RoleSpace HeatPumpRole = "space"
	RoleDHW   HeatPumpRole = "dhw"
)

// HeatPump converts a load-side load into a source-side (ground) load.
// Positive loads are heating and produce extraction from the loop; negative
// loads are cooling and produce rejection to the loop.
type HeatPump struct {
	Name       string
	COPHeating float64
	COPCooling float64
	Role       HeatPumpRole
}

// NewHeatPump creates a space-conditioning heat pump.
func NewHeatPump(name string, copHeating, copCooling float64) (*HeatPump, error) {
	if copHeating <= 0 || copCooling <= 0 {
		return nil, fmt.Errorf("%w: heat pump %q COPs must be > 0 (heating %g, cooling %g)",
			models.ErrConfiguration, name, copHeating, copCooling)
	}
	return &HeatPump{
		Name:       models.NormalizeName(name),
		COPHeating: copHeating,
		COPCooling: copCooling,
		Role:       RoleSpace,
	}, nil
}

// NewDHWHeatPump creates a water-heating heat pump. It only ever sees heating
// loads.
func NewDHWHeatPump(name string, copDHW float64) (*HeatPump, error) {
	if copDHW <= 0 {
		return nil, fmt.Errorf("%w: DHW heat pump %q COP must be > 0, got %g",
			models.ErrConfiguration, name, copDHW)
	}
	return &HeatPump{
		Name:       models.NormalizeName(name),
		COPHeating: copDHW,
		COPCooling: copDHW,
		Role:       RoleDHW,
	}, nil
}

// Type returns models.ComponentHeatPump.
func (hp *HeatPump) Type() models.ComponentType { return models.ComponentHeatPump }

// SourceLoad returns the source-side load for a single load-side load.
func (hp *HeatPump) SourceLoad(load float64) float64 {
	if load >= 0 {
		return load * (1 - 1/hp.COPHeating)
	}
	return load * (1 + 1/hp.COPCooling)
}

// SourceLoads applies SourceLoad to every element of loads.
func (hp *HeatPump) SourceLoads(loads []float64) []float64 {
	out := make([]float64, len(loads))
	for i, l := range loads {
		out[i] = hp.SourceLoad(l)
	}
	return out
}
