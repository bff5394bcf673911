package models

import (
	"fmt"
	"strings"
)

// DesignMethod selects how aggregate loads are distributed across GHEs.
type DesignMethod string

const (
	DesignAreaProportional DesignMethod = "AREA_PROPORTIONAL"
	DesignUpstream         DesignMethod = "UPSTREAM"
)

// ParseDesignMethod parses a network design method. "AREAPROPORTIONAL" is
// accepted for older system parameter files.
func ParseDesignMethod(s string) (DesignMethod, error) {
	switch strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "_", "") {
	case "AREAPROPORTIONAL":
		return DesignAreaProportional, nil
	case "UPSTREAM":
		return DesignUpstream, nil
	default:
		return "", fmt.Errorf("%w: design method %q not supported", ErrConfiguration, s)
	}
}

// GHEDesignMethod is the borefield layout method handed to the design engine.
type GHEDesignMethod string

const (
	GHERectangle         GHEDesignMethod = "RECTANGLE"
	GHEBiRectangle       GHEDesignMethod = "BIRECTANGLE"
	GHENearSquare        GHEDesignMethod = "NEARSQUARE"
	GHERowWise           GHEDesignMethod = "ROWWISE"
	GHEBiRectangleConstr GHEDesignMethod = "BIRECTANGLECONSTRAINED"
	GHEBiZonedRectangle  GHEDesignMethod = "BIZONEDRECTANGLE"
	GHEPreDesigned       GHEDesignMethod = "PREDESIGNED"
)

var validGHEDesignMethods = []GHEDesignMethod{
	GHERectangle,
	GHEBiRectangle,
	GHENearSquare,
	GHERowWise,
	GHEBiRectangleConstr,
	GHEBiZonedRectangle,
	GHEPreDesigned,
}

// ParseGHEDesignMethod parses a borefield layout method, ignoring case,
// underscores and dashes.
func ParseGHEDesignMethod(s string) (GHEDesignMethod, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	for _, v := range validGHEDesignMethods {
		if key == string(v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: GHE design method %q not supported", ErrConfiguration, s)
}

// UsesPolygon reports whether the layout method is constrained by a property
// boundary polygon rather than a bounding rectangle.
func (m GHEDesignMethod) UsesPolygon() bool {
	switch m {
	case GHERowWise, GHEBiRectangleConstr, GHEBiZonedRectangle:
		return true
	}
	return false
}
