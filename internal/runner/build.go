package runner

import (
	"fmt"
	"log/slog"

	"github.com/ajitpratap0/thermalnetwork/internal/engine"
	"github.com/ajitpratap0/thermalnetwork/internal/equipment"
	"github.com/ajitpratap0/thermalnetwork/internal/ets"
	"github.com/ajitpratap0/thermalnetwork/internal/fluid"
	"github.com/ajitpratap0/thermalnetwork/internal/ghe"
	"github.com/ajitpratap0/thermalnetwork/internal/loads"
	"github.com/ajitpratap0/thermalnetwork/internal/metrics"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
	"github.com/ajitpratap0/thermalnetwork/internal/network"
	"github.com/ajitpratap0/thermalnetwork/internal/pipe"
	"github.com/ajitpratap0/thermalnetwork/internal/sysparam"
	"github.com/ajitpratap0/thermalnetwork/internal/topology"
	"github.com/ajitpratap0/thermalnetwork/internal/wasteheat"
)

// Primary loop pump defaults, used when central_pump_parameters leaves the
// design point unset.
const (
	PrimaryPumpName = "primary pump"
	PrimaryPumpFlow = 0.01   // m³/s
	PrimaryPumpHead = 150000 // Pa
)

type builder struct {
	doc         *sysparam.Document
	scenarioDir string
	eng         engine.Engine
	logger      *slog.Logger
}

// network places the primary pump first, then every feature in loop order.
func (b *builder) network(order []topology.Feature) (*network.Network, error) {
	net, err := network.New(b.doc.GHE.DesignMethod, b.logger)
	if err != nil {
		return nil, err
	}

	primary, err := b.primaryPump()
	if err != nil {
		return nil, err
	}
	if err := net.Add(primary); err != nil {
		return nil, err
	}

	shared := ghe.Shared{
		Version:              b.doc.GHE.Version,
		Fluid:                b.doc.GHE.Fluid,
		Grout:                b.doc.GHE.Grout,
		Soil:                 b.doc.GHE.Soil,
		Pipe:                 b.doc.GHE.Pipe,
		Simulation:           b.doc.GHE.Simulation,
		GeometricConstraints: b.doc.GHE.GeometricConstraints,
		Design:               b.doc.GHE.Design,
	}

	for _, f := range order {
		var c network.Component
		switch {
		case f.IsBuilding():
			c, err = b.station(f.ID)
		case f.IsGHE():
			c, err = b.ghe(f.ID, shared)
		case f.IsWasteHeat():
			c, err = b.wasteHeat(f.ID)
		default:
			b.logger.Debug("skipping district system", "id", f.ID, "type", f.DistrictSystemType)
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := net.Add(c); err != nil {
			return nil, err
		}
	}
	if len(net.GHEs()) == 0 {
		return nil, fmt.Errorf("%w: cannot size a network with no GHEs", models.ErrConfiguration)
	}
	return net, nil
}

func (b *builder) primaryPump() (*equipment.Pump, error) {
	p := b.doc.Pump
	flow, head := PrimaryPumpFlow, float64(PrimaryPumpHead)
	if p.FlowRate > 0 {
		flow = p.FlowRate
	}
	if p.DesignHead > 0 {
		head = p.DesignHead
	}
	return equipment.NewPump(PrimaryPumpName, flow, head, p.MotorEfficiency, p.InefficiencyToFluid)
}

// station builds a building's ETS from its scenario loads and any equipment
// overrides in the system parameter document.
func (b *builder) station(id string) (*ets.Station, error) {
	path, err := loads.FindBuildingLoads(b.scenarioDir, id)
	if err != nil {
		return nil, err
	}
	raw, err := loads.ReadBuildingLoadsFile(path)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", id, err)
	}
	metrics.Inc(metrics.BuildingsLoaded)

	hp, loadPump, sourcePump, fan := ets.DefaultEquipment()
	var dhw *equipment.HeatPump

	if o, ok := b.doc.Buildings[id]; ok {
		if o.COPHeating > 0 || o.COPCooling > 0 {
			hp, err = equipment.NewHeatPump(hp.Name, orDefault(o.COPHeating, ets.DefaultCOPHeating), orDefault(o.COPCooling, ets.DefaultCOPCooling))
			if err != nil {
				return nil, fmt.Errorf("building %s: %w", id, err)
			}
		}
		if o.COPDHW > 0 {
			if dhw, err = equipment.NewDHWHeatPump("DHW WAHP", o.COPDHW); err != nil {
				return nil, fmt.Errorf("building %s: %w", id, err)
			}
		}
		if o.LoadSidePump != nil {
			if loadPump, err = pumpFrom("load pump", o.LoadSidePump); err != nil {
				return nil, fmt.Errorf("building %s: %w", id, err)
			}
		}
		if o.SourceSidePump != nil {
			if sourcePump, err = pumpFrom("source pump", o.SourceSidePump); err != nil {
				return nil, fmt.Errorf("building %s: %w", id, err)
			}
		}
		if o.Fan != nil {
			fan, err = equipment.NewFan("fan", orDefault(o.Fan.DesignFlow, ets.DefaultFanFlow),
				orDefault(o.Fan.DesignHead, ets.DefaultFanHead), o.Fan.MotorEfficiency)
			if err != nil {
				return nil, fmt.Errorf("building %s: %w", id, err)
			}
		}
	}

	b.logger.Debug("building loads read", "building", id, "path", path,
		"heating_kwh", loads.Total(raw.Heating)/1000, "cooling_kwh", loads.Total(raw.Cooling)/1000)
	return ets.New(id, hp, dhw, loadPump, sourcePump, fan, raw)
}

func pumpFrom(name string, s *sysparam.PumpSpec) (*equipment.Pump, error) {
	return equipment.NewPump(name, orDefault(s.DesignFlow, ets.DefaultPumpFlow),
		orDefault(s.DesignHead, ets.DefaultPumpHead), s.MotorEfficiency, s.InefficiencyToFluid)
}

func (b *builder) ghe(id string, shared ghe.Shared) (*ghe.GHE, error) {
	spec, err := b.doc.GHESpecific(id)
	if err != nil {
		return nil, err
	}
	method := b.doc.GHE.LayoutMethod
	if spec.PreDesigned() {
		method = models.GHEPreDesigned
	}
	return ghe.New(ghe.Params{
		ID:             spec.ID,
		Method:         method,
		Length:         spec.Length,
		Width:          spec.Width,
		Polygons:       spec.Polygons,
		Borehole:       spec.Borehole,
		BoreholeLength: spec.BoreholeLength,
		PreDesignedX:   spec.PreDesignedX,
		PreDesignedY:   spec.PreDesignedY,
	}, shared, b.eng, b.logger)
}

func (b *builder) wasteHeat(id string) (*wasteheat.Source, error) {
	for _, w := range b.doc.WasteHeat {
		if w.ID == id {
			return wasteheat.New(id, w.Rate, docDir(b.doc), b.logger), nil
		}
	}
	return nil, fmt.Errorf("%w: no waste_heat_sources entry for %s", models.ErrConfiguration, id)
}

// trunk prepares the trunk pipe design. The pipe runs the whole loop unless
// the document gives a total length.
func (b *builder) trunk(loopLength, defaultTemp float64) (*network.TrunkDesign, error) {
	pp := b.doc.Piping
	length := pp.TotalLength
	if length <= 0 {
		length = loopLength
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: trunk pipe length unknown, set total_length or connector lengths", models.ErrConfiguration)
	}
	temp := defaultTemp
	if pp.FluidTemperature != 0 {
		temp = pp.FluidTemperature
	}

	f, err := fluid.New(b.doc.GHE.FluidName, b.doc.GHE.Concentration, b.logger)
	if err != nil {
		return nil, err
	}
	p, err := pipe.New(pp.DimensionRatio, length, f, temp, b.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrConfiguration, err)
	}
	flowType := network.FlowPerBorehole
	if b.doc.GHE.FlowType == sysparam.FlowSystem {
		flowType = network.FlowSystem
	}
	return &network.TrunkDesign{
		Pipe:                  p,
		FlowRate:              b.doc.GHE.FlowRate,
		FlowType:              flowType,
		PressureDropPerMeter:  pp.PressureDropPerMeter,
		Discrete:              pp.Discrete,
		PressureDropAllowance: b.doc.Pump.PressureDropAllowance,
		MotorEfficiency:       b.doc.Pump.MotorEfficiency,
		InefficiencyToFluid:   b.doc.Pump.InefficiencyToFluid,
	}, nil
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
