package loads

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// Column headers of a building load export.
const (
	ColumnHeating = "TotalHeatingSensibleLoad"
	ColumnCooling = "TotalCoolingSensibleLoad"
	ColumnDHW     = "TotalWaterHeating"
)

// BuildingLoadsFile is the export file name searched for under a building
// directory.
const BuildingLoadsFile = "building_loads.csv"

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02 15:04",
	"1/2/2006 15:04",
}

// BuildingLoads holds the raw hourly loads of one building in W. Heating and
// DHW are positive; cooling keeps the sign found in the file.
type BuildingLoads struct {
	Heating []float64
	Cooling []float64
	DHW     []float64
}

// FindBuildingLoads locates the load export of a building inside a scenario
// directory. The modelica export layout is preferred over a bare file.
func FindBuildingLoads(scenarioDir, buildingID string) (string, error) {
	dir := filepath.Join(scenarioDir, buildingID)
	matches, err := filepath.Glob(filepath.Join(dir, "*_export_modelica_loads", BuildingLoadsFile))
	if err != nil {
		return "", fmt.Errorf("searching loads for building %s: %w", buildingID, err)
	}
	if len(matches) > 0 {
		return matches[0], nil
	}
	fallback := filepath.Join(dir, BuildingLoadsFile)
	if _, err := os.Stat(fallback); err == nil {
		return fallback, nil
	}
	return "", fmt.Errorf("%w: no %s for building %s under %s",
		models.ErrConfiguration, BuildingLoadsFile, buildingID, dir)
}

// ReadBuildingLoadsFile opens path and parses it with ReadBuildingLoads.
func ReadBuildingLoadsFile(path string) (*BuildingLoads, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening building loads: %w", err)
	}
	defer func() { _ = f.Close() }()

	bl, err := ReadBuildingLoads(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return bl, nil
}

// ReadBuildingLoads parses a building load table and resamples every column
// to an hourly year.
func ReadBuildingLoads(r io.Reader) (*BuildingLoads, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty load table", models.ErrDataShape)
		}
		return nil, fmt.Errorf("%w: reading header: %v", models.ErrDataShape, err)
	}
	heatCol, coolCol, dhwCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case strings.ToLower(ColumnHeating):
			heatCol = i
		case strings.ToLower(ColumnCooling):
			coolCol = i
		case strings.ToLower(ColumnDHW):
			dhwCol = i
		}
	}
	if heatCol < 0 || coolCol < 0 {
		return nil, fmt.Errorf("%w: load table needs %s and %s columns",
			models.ErrDataShape, ColumnHeating, ColumnCooling)
	}

	var stamps []string
	var heat, cool, dhw []float64
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", models.ErrDataShape, row, err)
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		h, err := field(rec, heatCol, row)
		if err != nil {
			return nil, err
		}
		c, err := field(rec, coolCol, row)
		if err != nil {
			return nil, err
		}
		d := 0.0
		if dhwCol >= 0 {
			if d, err = field(rec, dhwCol, row); err != nil {
				return nil, err
			}
		}
		stamps = append(stamps, strings.TrimSpace(rec[0]))
		heat = append(heat, h)
		cool = append(cool, c)
		dhw = append(dhw, d)
	}

	times, err := parseTimestamps(stamps)
	if err != nil {
		return nil, err
	}
	tail := TailOneDay(times)

	out := &BuildingLoads{}
	if out.Heating, err = ResampleHourly(times, heat, tail); err != nil {
		return nil, fmt.Errorf("heating: %w", err)
	}
	if out.Cooling, err = ResampleHourly(times, cool, tail); err != nil {
		return nil, fmt.Errorf("cooling: %w", err)
	}
	if out.DHW, err = ResampleHourly(times, dhw, tail); err != nil {
		return nil, fmt.Errorf("dhw: %w", err)
	}
	return out, nil
}

func field(rec []string, col, row int) (float64, error) {
	if col >= len(rec) {
		return 0, fmt.Errorf("%w: row %d has %d fields, missing column %d", models.ErrDataShape, row, len(rec), col+1)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d column %d: %v", models.ErrDataShape, row, col+1, err)
	}
	return v, nil
}

// parseTimestamps converts the first column to seconds relative to the first
// row. Numeric stamps are taken as seconds already. When no layout fits and
// the table is exactly one hourly year, rows are assumed hourly.
func parseTimestamps(stamps []string) ([]float64, error) {
	if len(stamps) == 0 {
		return nil, fmt.Errorf("%w: load table has no rows", models.ErrDataShape)
	}
	if _, err := strconv.ParseFloat(stamps[0], 64); err == nil {
		out := make([]float64, len(stamps))
		for i, s := range stamps {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d timestamp %q", models.ErrDataShape, i+2, s)
			}
			out[i] = v
		}
		return out, nil
	}

	layout := ""
	for _, l := range timestampLayouts {
		if _, err := time.Parse(l, stamps[0]); err == nil {
			layout = l
			break
		}
	}
	if layout == "" {
		if len(stamps) == models.HoursInYear {
			out := make([]float64, len(stamps))
			for i := range out {
				out[i] = float64(i) * secondsPerHour
			}
			return out, nil
		}
		return nil, fmt.Errorf("%w: unrecognized timestamp %q", models.ErrDataShape, stamps[0])
	}

	first, _ := time.Parse(layout, stamps[0])
	out := make([]float64, len(stamps))
	for i, s := range stamps {
		ts, err := time.Parse(layout, s)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d timestamp %q: %v", models.ErrDataShape, i+2, s, err)
		}
		out[i] = ts.Sub(first).Seconds()
	}
	return out, nil
}
