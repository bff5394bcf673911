// Package ghe is the ground heat exchanger proxy. It owns a borefield's
// footprint and design inputs and hands sizing to an engine.
package ghe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/tidwall/sjson"

	"github.com/ajitpratap0/thermalnetwork/internal/engine"
	"github.com/ajitpratap0/thermalnetwork/internal/geometry"
	"github.com/ajitpratap0/thermalnetwork/internal/loads"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// Shared holds the thermal sections common to every GHE of a network, as
// raw JSON from the system parameter document.
type Shared struct {
	Version              int
	Fluid                json.RawMessage
	Grout                json.RawMessage
	Soil                 json.RawMessage
	Pipe                 json.RawMessage
	Simulation           json.RawMessage
	GeometricConstraints json.RawMessage
	Design               json.RawMessage
}

// Params are the per-GHE inputs.
type Params struct {
	ID     string
	Method models.GHEDesignMethod
	Length float64 // m
	Width  float64 // m
	// Polygons are (longitude, latitude) rings: the boundary first, then
	// holes.
	Polygons [][]geometry.Point
	Borehole json.RawMessage
	// BoreholeLength is the fixed depth of pre-designed borefields, m.
	BoreholeLength float64
	PreDesignedX   []float64
	PreDesignedY   []float64
}

// Sizing is the outcome of sizing one GHE.
type Sizing struct {
	BoreholeLength float64
	BoreholeCount  int
}

// GHE is one ground heat exchanger in the loop.
type GHE struct {
	ID            string
	Name          string
	Method        models.GHEDesignMethod
	FootprintArea float64

	params   Params
	shared   Shared
	boundary [][]geometry.Point // planar rings in meters, polygon methods only
	engine   engine.Engine
	logger   *slog.Logger
}

// New validates params and derives the footprint area.
func New(p Params, shared Shared, eng engine.Engine, logger *slog.Logger) (*GHE, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: GHE without id", models.ErrConfiguration)
	}
	g := &GHE{
		ID:     p.ID,
		Name:   models.NormalizeName(p.ID),
		Method: p.Method,
		params: p,
		shared: shared,
		engine: eng,
		logger: logger,
	}

	switch {
	case p.Method == models.GHEPreDesigned:
		if len(p.PreDesignedX) != len(p.PreDesignedY) {
			return nil, fmt.Errorf("%w: GHE %s pre-designed borefield has %d x but %d y coordinates",
				models.ErrDataShape, p.ID, len(p.PreDesignedX), len(p.PreDesignedY))
		}
		if len(p.PreDesignedX) == 0 {
			return nil, fmt.Errorf("%w: GHE %s pre-designed borefield has no boreholes", models.ErrConfiguration, p.ID)
		}
		if p.BoreholeLength <= 0 {
			return nil, fmt.Errorf("%w: GHE %s pre-designed borefield needs a borehole length", models.ErrConfiguration, p.ID)
		}
		g.FootprintArea = footprintOf(p.PreDesignedX, p.PreDesignedY)
		if p.Length > 0 && p.Width > 0 {
			g.FootprintArea = p.Length * p.Width
		}
	case p.Length > 0 && p.Width > 0 && !p.Method.UsesPolygon():
		g.FootprintArea = p.Length * p.Width
	case len(p.Polygons) > 0:
		if len(p.Polygons[0]) < 3 {
			return nil, fmt.Errorf("%w: GHE %s boundary has fewer than 3 vertices", models.ErrDataShape, p.ID)
		}
		origin := geometry.LowerLeft(p.Polygons[0])
		planar := make([][]geometry.Point, len(p.Polygons))
		for i, ring := range p.Polygons {
			planar[i] = geometry.LonLatToMeters(ring, &origin)
		}
		g.boundary = geometry.RotateToAxes(planar)
		g.FootprintArea = geometry.PolygonArea(g.boundary)
	case p.Length > 0 && p.Width > 0:
		g.FootprintArea = p.Length * p.Width
	default:
		return nil, fmt.Errorf("%w: GHE %s needs length and width or a boundary polygon", models.ErrConfiguration, p.ID)
	}

	if g.FootprintArea <= 0 {
		return nil, fmt.Errorf("%w: GHE %s footprint area %g is not positive", models.ErrConfiguration, p.ID, g.FootprintArea)
	}
	return g, nil
}

// footprintOf returns the bounding-box area of borehole coordinates, or 0
// for a single row or column.
func footprintOf(xs, ys []float64) float64 {
	pts := make([]geometry.Point, len(xs))
	for i := range xs {
		pts[i] = geometry.Point{xs[i], ys[i]}
	}
	ll, ur := geometry.LowerLeft(pts), geometry.UpperRight(pts)
	return (ur[0] - ll[0]) * (ur[1] - ll[1])
}

// ComponentName returns the normalized GHE id.
func (g *GHE) ComponentName() string { return g.Name }

// Type returns models.ComponentGroundHeatExchanger.
func (g *GHE) Type() models.ComponentType { return models.ComponentGroundHeatExchanger }

// Loads is zero: a GHE absorbs the loop load rather than contributing one.
func (g *GHE) Loads() ([]float64, error) { return loads.Zeros(), nil }

// PreDesigned reports whether the borefield layout is fixed.
func (g *GHE) PreDesigned() bool { return g.Method == models.GHEPreDesigned }

// Request builds the engine request for an assigned hourly load.
func (g *GHE) Request(load []float64, outputDir, runID string) (*engine.Request, error) {
	if err := loads.CheckLength("GHE "+g.ID+" load", load); err != nil {
		return nil, err
	}
	gc, err := g.geometricConstraints()
	if err != nil {
		return nil, err
	}
	return &engine.Request{
		RunID:                runID,
		GHEID:                g.ID,
		Version:              g.shared.Version,
		Fluid:                g.shared.Fluid,
		Grout:                g.shared.Grout,
		Soil:                 g.shared.Soil,
		Pipe:                 g.shared.Pipe,
		Borehole:             g.params.Borehole,
		Simulation:           g.shared.Simulation,
		GeometricConstraints: gc,
		Design:               g.shared.Design,
		Loads:                engine.GroundLoads{GroundLoads: append([]float64(nil), load...)},
		WorkDir:              filepath.Join(outputDir, g.ID),
	}, nil
}

// geometricConstraints merges this GHE's footprint into the shared section.
func (g *GHE) geometricConstraints() (json.RawMessage, error) {
	gc := []byte(g.shared.GeometricConstraints)
	if len(gc) == 0 {
		gc = []byte("{}")
	}
	var err error
	set := func(path string, v any) {
		if err == nil {
			gc, err = sjson.SetBytes(gc, path, v)
		}
	}
	set("method", string(g.Method))
	if g.boundary != nil {
		set("property_boundary", g.boundary[0])
		set("no_go_boundaries", g.boundary[1:])
	} else {
		set("length", g.params.Length)
		set("width", g.params.Width)
	}
	if err != nil {
		return nil, fmt.Errorf("building geometric constraints for GHE %s: %w", g.ID, err)
	}
	return gc, nil
}

// Size designs the borefield for load. Pre-designed borefields are not sent
// to the engine; their layout is the result.
func (g *GHE) Size(ctx context.Context, load []float64, outputDir, runID string) (Sizing, error) {
	if g.PreDesigned() {
		if err := loads.CheckLength("GHE "+g.ID+" load", load); err != nil {
			return Sizing{}, err
		}
		g.logger.Info("GHE is pre-designed, skipping engine", "ghe", g.ID, "boreholes", len(g.params.PreDesignedX))
		return Sizing{BoreholeLength: g.params.BoreholeLength, BoreholeCount: len(g.params.PreDesignedX)}, nil
	}
	if g.engine == nil {
		return Sizing{}, fmt.Errorf("%w: no engine configured for GHE %s", models.ErrConfiguration, g.ID)
	}

	req, err := g.Request(load, outputDir, runID)
	if err != nil {
		return Sizing{}, err
	}
	g.logger.Info("sizing GHE", "ghe", g.ID, "method", g.Method, "area", g.FootprintArea,
		"annual_load_kwh", loads.Total(load)/1000)
	summary, err := g.engine.Size(ctx, req)
	if err != nil {
		return Sizing{}, fmt.Errorf("sizing GHE %s: %w", g.ID, err)
	}
	return Sizing{BoreholeLength: summary.BoreholeLength, BoreholeCount: summary.BoreholeCount}, nil
}
