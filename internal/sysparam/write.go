package sysparam

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// GHEResult is the borefield written back for one GHE.
type GHEResult struct {
	ID             string
	BoreholeLength float64
	BoreholeCount  int
}

// PipingResult is the trunk pipe and central pump design.
type PipingResult struct {
	HydraulicDiameter float64 // m
	PumpHead          float64 // Pa
	PumpFlow          float64 // m³/s
}

// Results are everything a sizing run writes back.
type Results struct {
	GHEs   []GHEResult
	Piping *PipingResult
}

// Apply returns a copy of the document bytes with results set in place.
// Fields not touched by results are preserved as they were.
func (d *Document) Apply(r Results) ([]byte, error) {
	out := append([]byte(nil), d.Raw...)
	var err error
	set := func(path string, v any) {
		if err == nil {
			out, err = sjson.SetBytes(out, path, v)
		}
	}

	for _, g := range r.GHEs {
		idx := indexOf(out, g.ID)
		if idx < 0 {
			return nil, fmt.Errorf("writing results: no ghe_specific_params for %s", g.ID)
		}
		base := fmt.Sprintf("%s.ghe_specific_params.%d.borehole", pathGHE, idx)
		set(base+".length_of_boreholes", g.BoreholeLength)
		set(base+".number_of_boreholes", g.BoreholeCount)
	}
	if r.Piping != nil {
		set(pathPiping+".hydraulic_diameter", r.Piping.HydraulicDiameter)
		set(pathPump+".pump_design_head", r.Piping.PumpHead)
		set(pathPump+".pump_flow_rate", r.Piping.PumpFlow)
	}
	if err != nil {
		return nil, fmt.Errorf("writing results: %w", err)
	}
	return out, nil
}

func indexOf(data []byte, id string) int {
	idx := -1
	gjson.GetBytes(data, pathGHE+".ghe_specific_params").ForEach(func(k, v gjson.Result) bool {
		if v.Get("ghe_id").String() == id {
			idx = int(k.Int())
			return false
		}
		return true
	})
	return idx
}

// WriteResults applies results and replaces the file at path atomically.
func (d *Document) WriteResults(path string, r Results) error {
	data, err := d.Apply(r)
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("setting mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	d.Raw = data
	return nil
}
