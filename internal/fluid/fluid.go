// Package fluid provides thermophysical properties of the loop heat-transfer
// fluid as functions of temperature.
package fluid

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

const (
	// MaxConcentration is the largest supported antifreeze mass fraction.
	MaxConcentration = 0.6

	// DefaultTemperature is the design temperature used for hydraulic sizing, °C.
	DefaultTemperature = 20.0
)

// Fluid names.
const (
	Water           = "WATER"
	PropyleneGlycol = "PROPYLENEGLYCOL"
	EthyleneGlycol  = "ETHYLENEGLYCOL"
)

// Properties returns fluid properties at a temperature in °C.
type Properties interface {
	// Name returns the normalized fluid name.
	Name() string

	// Concentration returns the antifreeze mass fraction, 0 for water.
	Concentration() float64

	// Density returns kg/m³.
	Density(tempC float64) float64

	// Viscosity returns the dynamic viscosity in Pa·s.
	Viscosity(tempC float64) float64

	// SpecificHeat returns J/(kg·K).
	SpecificHeat(tempC float64) float64
}

// New returns the property provider for a fluid name and antifreeze mass
// fraction. Out-of-range concentrations are corrected with a warning; an
// unknown fluid is a configuration error.
func New(name string, concentration float64, logger *slog.Logger) (Properties, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if concentration < 0 {
		logger.Warn("negative antifreeze concentration, defaulting to 0", "concentration", concentration)
		concentration = 0
	}

	key := strings.ToUpper(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name))
	if key == "" {
		key = Water
	}

	switch key {
	case Water:
		if concentration != 0 {
			logger.Warn("non-zero concentration for water, using pure water", "concentration", concentration)
		}
		return &mixture{name: Water, table: waterTable}, nil
	case PropyleneGlycol, EthyleneGlycol:
	default:
		return nil, fmt.Errorf("%w: unsupported fluid %q", models.ErrConfiguration, name)
	}

	if concentration == 0 {
		logger.Warn("antifreeze mixture with zero concentration", "fluid", key)
	}
	if concentration > MaxConcentration {
		logger.Warn("antifreeze concentration above supported range, clamping",
			"fluid", key, "concentration", concentration, "max", MaxConcentration)
		concentration = MaxConcentration
	}

	t := propyleneGlycolTable
	if key == EthyleneGlycol {
		t = ethyleneGlycolTable
	}
	return &mixture{name: key, x: concentration, table: t}, nil
}

// mixture evaluates a property grid at a fixed concentration.
type mixture struct {
	name  string
	x     float64
	table *grid
}

func (m *mixture) Name() string           { return m.name }
func (m *mixture) Concentration() float64 { return m.x }

func (m *mixture) Density(tempC float64) float64 {
	return m.table.eval(m.table.density, m.x, tempC)
}

func (m *mixture) Viscosity(tempC float64) float64 {
	// tables are in mPa·s
	return m.table.eval(m.table.viscosity, m.x, tempC) * 1e-3
}

func (m *mixture) SpecificHeat(tempC float64) float64 {
	return m.table.eval(m.table.specificHeat, m.x, tempC)
}
