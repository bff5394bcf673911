// Package engine is the boundary to the external borefield-design engine.
// This module only prepares sizing requests and reads back summaries; the
// thermal design itself happens on the other side.
package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// File names exchanged with a command-line engine.
const (
	InputFile   = "ghedesigner_input.json"
	SummaryFile = "SimulationSummary.json"
)

// Summary paths read from an engine result.
const (
	pathBoreholeLength = "ghe_system.active_borehole_length.value"
	pathBoreholeCount  = "ghe_system.number_of_boreholes"
)

// Engine sizes one borefield for an hourly ground load.
type Engine interface {
	// Size runs the design and returns its summary.
	Size(ctx context.Context, req *Request) (*Summary, error)
}

// GroundLoads wraps the hourly ground load sent to the engine, in W.
type GroundLoads struct {
	GroundLoads []float64 `json:"ground_loads"`
}

// Request is a sizing request. The thermal sections are passed through from
// the system parameter document without interpretation.
type Request struct {
	RunID                string          `json:"run_id,omitempty"`
	GHEID                string          `json:"ghe_id"`
	Version              int             `json:"version"`
	Fluid                json.RawMessage `json:"fluid,omitempty"`
	Grout                json.RawMessage `json:"grout,omitempty"`
	Soil                 json.RawMessage `json:"soil,omitempty"`
	Pipe                 json.RawMessage `json:"pipe,omitempty"`
	Borehole             json.RawMessage `json:"borehole,omitempty"`
	Simulation           json.RawMessage `json:"simulation,omitempty"`
	GeometricConstraints json.RawMessage `json:"geometric_constraints,omitempty"`
	Design               json.RawMessage `json:"design,omitempty"`
	Loads                GroundLoads     `json:"loads"`

	// WorkDir receives engine input and output artifacts. Not serialized.
	WorkDir string `json:"-"`
}

// Summary is what this module needs back from an engine run.
type Summary struct {
	BoreholeLength float64 // m, per borehole
	BoreholeCount  int
	Raw            []byte
}

// ParseSummary extracts the borefield result from an engine summary
// document. Missing or non-positive values are an engine failure.
func ParseSummary(data []byte) (*Summary, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: summary is not valid JSON", models.ErrExternalEngine)
	}
	length := gjson.GetBytes(data, pathBoreholeLength)
	count := gjson.GetBytes(data, pathBoreholeCount)
	if !length.Exists() || !count.Exists() {
		return nil, fmt.Errorf("%w: summary missing %s or %s",
			models.ErrExternalEngine, pathBoreholeLength, pathBoreholeCount)
	}
	if length.Float() <= 0 || count.Int() <= 0 {
		return nil, fmt.Errorf("%w: summary has non-positive borefield (length %g, count %d)",
			models.ErrExternalEngine, length.Float(), count.Int())
	}
	return &Summary{
		BoreholeLength: length.Float(),
		BoreholeCount:  int(count.Int()),
		Raw:            data,
	}, nil
}
