// Package topology decodes the district GeoJSON and resolves the ordered
// loop of buildings and district systems.
package topology

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ajitpratap0/thermalnetwork/internal/geometry"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// Feature kinds and district system subtypes.
const (
	KindBuilding       = "Building"
	KindDistrictSystem = "District System"
	KindConnector      = "ThermalConnector"
	KindJunction       = "ThermalJunction"

	SystemGHE       = "Ground Heat Exchanger"
	SystemWasteHeat = "Waste Heat Source"
)

// Feature is a node of the loop.
type Feature struct {
	ID                 string
	Kind               string
	Name               string
	DistrictSystemType string
	StartLoop          bool
}

// IsBuilding reports whether f is a building.
func (f Feature) IsBuilding() bool { return f.Kind == KindBuilding }

// IsGHE reports whether f is a ground heat exchanger.
func (f Feature) IsGHE() bool {
	return f.Kind == KindDistrictSystem && strings.EqualFold(f.DistrictSystemType, SystemGHE)
}

// IsWasteHeat reports whether f is a waste heat source.
func (f Feature) IsWasteHeat() bool {
	return f.Kind == KindDistrictSystem && strings.EqualFold(f.DistrictSystemType, SystemWasteHeat)
}

// Connector is a directed pipe between two features.
type Connector struct {
	ID     string
	Start  string
	End    string
	Length float64 // m
}

// Document is the decoded GeoJSON. Nodes keep document order.
type Document struct {
	Nodes      []Feature
	Connectors []Connector
	// StartLoopID is the anchor named by a start_loop flag, if any.
	StartLoopID string
}

// ParseFile reads and parses a GeoJSON file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading geojson: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a GeoJSON FeatureCollection.
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: geojson is not valid JSON", models.ErrConfiguration)
	}
	features := gjson.GetBytes(data, "features")
	if !features.IsArray() {
		return nil, fmt.Errorf("%w: geojson has no features array", models.ErrConfiguration)
	}

	doc := &Document{}
	var parseErr error
	features.ForEach(func(_, f gjson.Result) bool {
		props := f.Get("properties")
		kind := props.Get("type").String()
		startLoop := isTrue(props.Get("start_loop"))

		switch kind {
		case KindConnector:
			c := Connector{
				ID:    props.Get("id").String(),
				Start: props.Get("startFeatureId").String(),
				End:   props.Get("endFeatureId").String(),
			}
			if c.Start == "" || c.End == "" {
				parseErr = fmt.Errorf("%w: connector %q lacks startFeatureId or endFeatureId", models.ErrTopology, c.ID)
				return false
			}
			c.Length = connectorLength(f)
			doc.Connectors = append(doc.Connectors, c)
		case KindBuilding, KindDistrictSystem:
			node := Feature{
				ID:                 props.Get("id").String(),
				Kind:               kind,
				Name:               props.Get("name").String(),
				DistrictSystemType: props.Get("district_system_type").String(),
				StartLoop:          startLoop,
			}
			if node.ID == "" {
				parseErr = fmt.Errorf("%w: %s feature without id", models.ErrConfiguration, kind)
				return false
			}
			if startLoop && doc.StartLoopID == "" {
				doc.StartLoopID = node.ID
			}
			doc.Nodes = append(doc.Nodes, node)
		default:
			if startLoop && doc.StartLoopID == "" {
				id := props.Get("buildingId").String()
				if id == "" {
					id = props.Get("DSId").String()
				}
				doc.StartLoopID = id
			}
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return doc, nil
}

func isTrue(r gjson.Result) bool {
	if r.Type == gjson.True {
		return true
	}
	return strings.EqualFold(r.String(), "true")
}

// connectorLength measures a LineString in meters. A total_length property
// in meters takes precedence.
func connectorLength(f gjson.Result) float64 {
	if l := f.Get("properties.total_length"); l.Exists() && l.Float() > 0 {
		return l.Float()
	}
	geom := f.Get("geometry")
	if geom.Get("type").String() != "LineString" {
		return 0
	}
	var pts []geometry.Point
	geom.Get("coordinates").ForEach(func(_, c gjson.Result) bool {
		xy := c.Array()
		if len(xy) >= 2 {
			pts = append(pts, geometry.Point{xy[0].Float(), xy[1].Float()})
		}
		return true
	})
	return geometry.GeographicLength(pts)
}

// Node returns the node with id.
func (d *Document) Node(id string) (Feature, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Feature{}, false
}

// LoopLength returns the summed connector length in meters.
func (d *Document) LoopLength() float64 {
	var total float64
	for _, c := range d.Connectors {
		total += c.Length
	}
	return total
}

// Anchor returns the id of the loop-start node: the flagged feature, or the
// first GHE in document order.
func (d *Document) Anchor() (string, error) {
	if d.StartLoopID != "" {
		return d.StartLoopID, nil
	}
	for _, n := range d.Nodes {
		if n.IsGHE() {
			return n.ID, nil
		}
	}
	return "", fmt.Errorf("%w: no start_loop feature and no ground heat exchanger to start from", models.ErrTopology)
}

// Resolve walks the connectors from the first connector's start until the
// loop closes and returns the buildings and district systems met on the way,
// rotated so the anchor comes first.
func Resolve(d *Document) ([]Feature, error) {
	if len(d.Connectors) == 0 {
		return nil, fmt.Errorf("%w: no thermal connectors", models.ErrTopology)
	}

	next := make(map[string]string, len(d.Connectors))
	for _, c := range d.Connectors {
		prev, ok := next[c.Start]
		switch {
		case ok && prev == c.End:
			return nil, fmt.Errorf("%w: duplicate connection %s -> %s", models.ErrTopology, c.Start, c.End)
		case ok:
			return nil, fmt.Errorf("%w: %s has two outgoing connections (%s, %s)", models.ErrTopology, c.Start, prev, c.End)
		}
		next[c.Start] = c.End
	}

	anchor, err := d.Anchor()
	if err != nil {
		return nil, err
	}

	start := d.Connectors[0].Start
	walk := []string{start}
	seen := map[string]bool{start: true}
	for cur := start; ; {
		succ, ok := next[cur]
		if !ok {
			return nil, fmt.Errorf("%w: dangling chain at %s, loop does not close", models.ErrTopology, cur)
		}
		if succ == start {
			break
		}
		if seen[succ] {
			return nil, fmt.Errorf("%w: loop revisits %s before closing", models.ErrTopology, succ)
		}
		seen[succ] = true
		walk = append(walk, succ)
		cur = succ
	}

	var order []Feature
	for _, id := range walk {
		if n, ok := d.Node(id); ok {
			order = append(order, n)
		}
	}

	at := -1
	for i, n := range order {
		if n.ID == anchor {
			at = i
			break
		}
	}
	if at < 0 {
		return nil, fmt.Errorf("%w: loop start %s is not on the loop", models.ErrTopology, anchor)
	}
	rotated := append(append([]Feature{}, order[at:]...), order[:at]...)
	for i := range rotated {
		rotated[i].StartLoop = i == 0
	}
	return rotated, nil
}
