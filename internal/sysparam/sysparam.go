// Package sysparam reads the system parameter document and writes sizing
// results back into it.
package sysparam

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ajitpratap0/thermalnetwork/internal/geometry"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// SupportedVersion is the ghe_parameters version this module understands.
const SupportedVersion = 1

// Flow types of the design flow rate.
const (
	FlowPerBorehole = "borehole"
	FlowSystem      = "system"
)

const (
	root       = "district_system.fifth_generation"
	pathGHE    = root + ".ghe_parameters"
	pathPiping = root + ".horizontal_piping_parameters"
	pathPump   = root + ".central_pump_parameters"
)

// Document is the typed view of a system parameter document. Raw keeps the
// original bytes so results can be written back without losing fields.
type Document struct {
	Path string
	Raw  []byte

	GHE       GHEParameters
	Piping    PipingParameters
	Pump      PumpParameters
	Buildings map[string]Building
	WasteHeat []WasteHeat
	hasPiping bool
}

// GHEParameters mirrors ghe_parameters.
type GHEParameters struct {
	Version              int
	Fluid                json.RawMessage
	Grout                json.RawMessage
	Soil                 json.RawMessage
	Pipe                 json.RawMessage
	Simulation           json.RawMessage
	GeometricConstraints json.RawMessage
	Design               json.RawMessage

	FluidName     string
	Concentration float64 // fraction
	LayoutMethod  models.GHEDesignMethod
	DesignMethod  models.DesignMethod
	FlowRate      float64 // L/s, per borehole or for the system
	FlowType      string
	Specific      []GHESpecific
}

// GHESpecific mirrors one ghe_specific_params entry.
type GHESpecific struct {
	ID             string
	Length         float64
	Width          float64
	Polygons       [][]geometry.Point
	Borehole       json.RawMessage
	BoreholeLength float64
	BoreholeCount  int
	PreDesignedX   []float64
	PreDesignedY   []float64
}

// PreDesigned reports whether the entry carries fixed borehole coordinates.
func (g GHESpecific) PreDesigned() bool { return len(g.PreDesignedX) > 0 || len(g.PreDesignedY) > 0 }

// PipingParameters mirrors horizontal_piping_parameters.
type PipingParameters struct {
	Autosize             bool
	HydraulicDiameter    float64 // m
	DimensionRatio       float64
	PressureDropPerMeter float64 // Pa/m
	Discrete             bool
	TotalLength          float64 // m, 0 means measure the loop
	FluidTemperature     float64 // °C, 0 means the configured default
}

// PumpParameters mirrors central_pump_parameters.
type PumpParameters struct {
	DesignHead            float64 // Pa
	FlowRate              float64 // m³/s
	PressureDropAllowance float64 // Pa
	MotorEfficiency       float64
	InefficiencyToFluid   float64
}

// PumpSpec is an optional pump override.
type PumpSpec struct {
	DesignFlow          float64
	DesignHead          float64
	MotorEfficiency     float64
	InefficiencyToFluid float64
}

// FanSpec is an optional fan override.
type FanSpec struct {
	DesignFlow      float64
	DesignHead      float64
	MotorEfficiency float64
}

// Building holds optional equipment overrides for one building's station.
// Zero values mean "use the default".
type Building struct {
	ID             string
	COPHeating     float64
	COPCooling     float64
	COPDHW         float64
	LoadSidePump   *PumpSpec
	SourceSidePump *PumpSpec
	Fan            *FanSpec
}

// WasteHeat mirrors one waste_heat_sources entry.
type WasteHeat struct {
	ID   string
	Rate string // number in W, or a .mos path relative to the document
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading system parameters: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Parse decodes a system parameter document.
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: system parameters are not valid JSON", models.ErrConfiguration)
	}
	g := gjson.GetBytes(data, pathGHE)
	if !g.IsObject() {
		return nil, fmt.Errorf("%w: missing %s", models.ErrConfiguration, pathGHE)
	}

	doc := &Document{Raw: data, Buildings: map[string]Building{}}
	if err := doc.parseGHE(g); err != nil {
		return nil, err
	}

	p := gjson.GetBytes(data, pathPiping)
	doc.hasPiping = p.IsObject()
	doc.Piping = PipingParameters{
		Autosize:             p.Get("autosize").Bool(),
		HydraulicDiameter:    p.Get("hydraulic_diameter").Float(),
		DimensionRatio:       floatOr(p.Get("dimension_ratio"), 11),
		PressureDropPerMeter: floatOr(p.Get("pressure_drop_per_meter"), 300),
		Discrete:             boolOr(p.Get("discrete_pipe_sizes"), true),
		TotalLength:          p.Get("total_length").Float(),
		FluidTemperature:     p.Get("fluid_temperature").Float(),
	}
	if doc.Piping.Autosize && doc.Piping.PressureDropPerMeter <= 0 {
		return nil, fmt.Errorf("%w: pressure_drop_per_meter must be > 0", models.ErrConfiguration)
	}

	cp := gjson.GetBytes(data, pathPump)
	doc.Pump = PumpParameters{
		DesignHead:            cp.Get("pump_design_head").Float(),
		FlowRate:              cp.Get("pump_flow_rate").Float(),
		PressureDropAllowance: cp.Get("pressure_drop_allowance").Float(),
		MotorEfficiency:       floatOr(cp.Get("motor_efficiency"), 0.9),
		InefficiencyToFluid:   floatOr(cp.Get("motor_inefficiency_to_fluid_stream"), 1),
	}

	gjson.GetBytes(data, root+".buildings").ForEach(func(_, b gjson.Result) bool {
		bl := Building{
			ID:             b.Get("geojson_id").String(),
			COPHeating:     b.Get("cop_heating").Float(),
			COPCooling:     b.Get("cop_cooling").Float(),
			COPDHW:         b.Get("cop_dhw").Float(),
			LoadSidePump:   pumpSpec(b.Get("load_side_pump")),
			SourceSidePump: pumpSpec(b.Get("source_side_pump")),
			Fan:            fanSpec(b.Get("fan")),
		}
		if bl.ID != "" {
			doc.Buildings[bl.ID] = bl
		}
		return true
	})

	gjson.GetBytes(data, root+".waste_heat_sources").ForEach(func(_, w gjson.Result) bool {
		doc.WasteHeat = append(doc.WasteHeat, WasteHeat{
			ID:   w.Get("geojson_id").String(),
			Rate: w.Get("heat_source_rate").String(),
		})
		return true
	})
	return doc, nil
}

func (d *Document) parseGHE(g gjson.Result) error {
	version := g.Get("version")
	if !version.Exists() || int(version.Int()) != SupportedVersion {
		return fmt.Errorf("%w: ghe_parameters version %s, want %d", models.ErrConfiguration, version.Raw, SupportedVersion)
	}

	design, err := models.ParseDesignMethod(g.Get("design.method").String())
	if err != nil {
		return err
	}
	layout := models.GHERectangle
	if m := g.Get("geometric_constraints.method"); m.Exists() {
		if layout, err = models.ParseGHEDesignMethod(m.String()); err != nil {
			return err
		}
	}
	flowType := strings.ToLower(g.Get("design.flow_type").String())
	switch flowType {
	case "":
		flowType = FlowPerBorehole
	case FlowPerBorehole, FlowSystem:
	default:
		return fmt.Errorf("%w: design.flow_type %q not supported", models.ErrConfiguration, flowType)
	}

	d.GHE = GHEParameters{
		Version:              SupportedVersion,
		Fluid:                raw(g.Get("fluid")),
		Grout:                raw(g.Get("grout")),
		Soil:                 raw(g.Get("soil")),
		Pipe:                 raw(g.Get("pipe")),
		Simulation:           raw(g.Get("simulation")),
		GeometricConstraints: raw(g.Get("geometric_constraints")),
		Design:               raw(g.Get("design")),
		FluidName:            stringOr(g.Get("fluid.fluid_name"), "Water"),
		Concentration:        g.Get("fluid.concentration_percent").Float() / 100,
		LayoutMethod:         layout,
		DesignMethod:         design,
		FlowRate:             g.Get("design.flow_rate").Float(),
		FlowType:             flowType,
	}

	var parseErr error
	seen := map[string]bool{}
	g.Get("ghe_specific_params").ForEach(func(k, s gjson.Result) bool {
		spec := GHESpecific{
			ID:             s.Get("ghe_id").String(),
			Length:         s.Get("ghe_geometric_params.length_of_ghe").Float(),
			Width:          s.Get("ghe_geometric_params.width_of_ghe").Float(),
			Polygons:       rings(s.Get("ghe_geometric_params.polygons")),
			Borehole:       raw(s.Get("borehole")),
			BoreholeLength: s.Get("borehole.length_of_boreholes").Float(),
			BoreholeCount:  int(s.Get("borehole.number_of_boreholes").Int()),
			PreDesignedX:   floatsOf(s.Get("pre_designed_borefield.x")),
			PreDesignedY:   floatsOf(s.Get("pre_designed_borefield.y")),
		}
		if spec.ID == "" {
			parseErr = fmt.Errorf("%w: ghe_specific_params[%d] has no ghe_id", models.ErrConfiguration, k.Int())
			return false
		}
		if seen[spec.ID] {
			parseErr = fmt.Errorf("%w: duplicate ghe_id %s", models.ErrConfiguration, spec.ID)
			return false
		}
		seen[spec.ID] = true
		d.GHE.Specific = append(d.GHE.Specific, spec)
		return true
	})
	return parseErr
}

// GHESpecific returns the parameters for a GHE id.
func (d *Document) GHESpecific(id string) (GHESpecific, error) {
	for _, s := range d.GHE.Specific {
		if s.ID == id {
			return s, nil
		}
	}
	return GHESpecific{}, fmt.Errorf("%w: no ghe_specific_params for GHE %s", models.ErrConfiguration, id)
}

// HasPiping reports whether the document has horizontal piping parameters.
func (d *Document) HasPiping() bool { return d.hasPiping }

func raw(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return nil
	}
	return json.RawMessage(r.Raw)
}

func floatOr(r gjson.Result, def float64) float64 {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.Float()
}

func boolOr(r gjson.Result, def bool) bool {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.Bool()
}

func stringOr(r gjson.Result, def string) string {
	if s := r.String(); s != "" {
		return s
	}
	return def
}

func floatsOf(r gjson.Result) []float64 {
	if !r.IsArray() {
		return nil
	}
	arr := r.Array()
	out := make([]float64, len(arr))
	for i, v := range arr {
		out[i] = v.Float()
	}
	return out
}

func rings(r gjson.Result) [][]geometry.Point {
	if !r.IsArray() {
		return nil
	}
	var out [][]geometry.Point
	r.ForEach(func(_, ring gjson.Result) bool {
		var pts []geometry.Point
		ring.ForEach(func(_, p gjson.Result) bool {
			xy := p.Array()
			if len(xy) >= 2 {
				pts = append(pts, geometry.Point{xy[0].Float(), xy[1].Float()})
			}
			return true
		})
		out = append(out, pts)
		return true
	})
	return out
}

func pumpSpec(r gjson.Result) *PumpSpec {
	if !r.IsObject() {
		return nil
	}
	return &PumpSpec{
		DesignFlow:          r.Get("design_flow_rate").Float(),
		DesignHead:          r.Get("design_head").Float(),
		MotorEfficiency:     floatOr(r.Get("motor_efficiency"), 0.9),
		InefficiencyToFluid: floatOr(r.Get("motor_inefficiency_to_fluid_stream"), 1),
	}
}

func fanSpec(r gjson.Result) *FanSpec {
	if !r.IsObject() {
		return nil
	}
	return &FanSpec{
		DesignFlow:      r.Get("design_flow_rate").Float(),
		DesignHead:      r.Get("design_head").Float(),
		MotorEfficiency: floatOr(r.Get("motor_efficiency"), 0.6),
	}
}
