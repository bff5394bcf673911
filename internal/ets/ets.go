// Package ets models the energy transfer station that couples one building to
// the ground loop.
package ets

import (
	"fmt"
	"math"

	"github.com/ajitpratap0/thermalnetwork/internal/equipment"
	"github.com/ajitpratap0/thermalnetwork/internal/loads"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// Default equipment used when a building has no overrides.
const (
	DefaultCOPHeating = 2.5
	DefaultCOPCooling = 3.5

	DefaultPumpFlow       = 0.0005 // m³/s
	DefaultPumpHead       = 100000 // Pa
	DefaultPumpEfficiency = 0.9

	DefaultFanFlow       = 0.25 // m³/s
	DefaultFanHead       = 150  // Pa
	DefaultFanEfficiency = 0.6
)

// Station is one building's energy transfer station. Its raw loads are
// hourly years in W; heating and DHW positive, cooling of either sign.
type Station struct {
	Name       string
	HeatPump   *equipment.HeatPump
	DHW        *equipment.HeatPump // nil: DHW is served by HeatPump's heating COP
	LoadPump   *equipment.Pump
	SourcePump *equipment.Pump
	Fan        *equipment.Fan

	Heating []float64
	Cooling []float64
	DHWLoad []float64
}

// New validates the station and its series.
func New(name string, hp, dhw *equipment.HeatPump, loadPump, sourcePump *equipment.Pump, fan *equipment.Fan, raw *loads.BuildingLoads) (*Station, error) {
	if hp == nil || loadPump == nil || sourcePump == nil || fan == nil {
		return nil, fmt.Errorf("%w: station %q is missing equipment", models.ErrConfiguration, name)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: station %q has no loads", models.ErrConfiguration, name)
	}
	for label, s := range map[string][]float64{"heating": raw.Heating, "cooling": raw.Cooling, "dhw": raw.DHW} {
		if err := loads.CheckLength(name+" "+label, s); err != nil {
			return nil, err
		}
	}
	return &Station{
		Name:       models.NormalizeName(name),
		HeatPump:   hp,
		DHW:        dhw,
		LoadPump:   loadPump,
		SourcePump: sourcePump,
		Fan:        fan,
		Heating:    raw.Heating,
		Cooling:    raw.Cooling,
		DHWLoad:    raw.DHW,
	}, nil
}

// DefaultEquipment returns the stock heat pump, pumps and fan.
func DefaultEquipment() (*equipment.HeatPump, *equipment.Pump, *equipment.Pump, *equipment.Fan) {
	hp := &equipment.HeatPump{Name: "SMALL WAHP", COPHeating: DefaultCOPHeating, COPCooling: DefaultCOPCooling, Role: equipment.RoleSpace}
	pump := func() *equipment.Pump {
		return &equipment.Pump{
			Name:                     "ETS PUMP",
			DesignFlow:               DefaultPumpFlow,
			DesignHead:               DefaultPumpHead,
			MotorEfficiency:          DefaultPumpEfficiency,
			MotorInefficiencyToFluid: 1,
		}
	}
	fan := &equipment.Fan{Name: "SIMPLE FAN", DesignFlow: DefaultFanFlow, DesignHead: DefaultFanHead, MotorEfficiency: DefaultFanEfficiency}
	return hp, pump(), pump(), fan
}

// ComponentName returns the normalized building name.
func (s *Station) ComponentName() string { return s.Name }

// Type returns models.ComponentEnergyTransferStation.
func (s *Station) Type() models.ComponentType { return models.ComponentEnergyTransferStation }

// Loads returns the net hourly ground load: extraction for heating and DHW
// plus source pump heat, minus the rejection of cooling, fan and load pump
// heat. Calling it does not modify the station.
func (s *Station) Loads() ([]float64, error) {
	n := models.HoursInYear
	if len(s.Heating) != n || len(s.Cooling) != n || len(s.DHWLoad) != n {
		return nil, fmt.Errorf("%w: station %s loads are not hourly years", models.ErrDataShape, s.Name)
	}
	dhw := s.DHW
	if dhw == nil {
		dhw = s.HeatPump
	}
	coolingAdder := s.Fan.Heat() + s.LoadPump.HeatToFluid()
	sourcePump := s.SourcePump.HeatToFluid()

	out := make([]float64, n)
	for h := range out {
		heating := s.HeatPump.SourceLoad(math.Abs(s.Heating[h]))
		water := dhw.SourceLoad(math.Abs(s.DHWLoad[h]))
		cooling := s.HeatPump.SourceLoad(-(math.Abs(s.Cooling[h]) + coolingAdder))
		out[h] = heating + water + sourcePump + cooling
	}
	return out, nil
}
