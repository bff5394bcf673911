package equipment

import (
	"fmt"

	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// Fan is a terminal-unit fan. Its motor sits in the air stream, so all of its
// input power becomes heat the cooling equipment must remove.
type Fan struct {
	Name            string
	DesignFlow      float64 // m³/s
	DesignHead      float64 // Pa
	MotorEfficiency float64
}

// NewFan validates a fan design point.
func NewFan(name string, flow, head, motorEfficiency float64) (*Fan, error) {
	if flow < 0 || head < 0 {
		return nil, fmt.Errorf("%w: fan %q design flow and head must be >= 0", models.ErrConfiguration, name)
	}
	if motorEfficiency < 0 || motorEfficiency > 1 {
		return nil, fmt.Errorf("%w: fan %q motor efficiency must be in [0, 1], got %g",
			models.ErrConfiguration, name, motorEfficiency)
	}
	return &Fan{
		Name:            models.NormalizeName(name),
		DesignFlow:      flow,
		DesignHead:      head,
		MotorEfficiency: motorEfficiency,
	}, nil
}

// Type returns models.ComponentFan.
func (f *Fan) Type() models.ComponentType { return models.ComponentFan }

// Heat returns the fan heat in W. A zero efficiency is treated as an ideal
// motor and only the hydraulic power is counted.
func (f *Fan) Heat() float64 {
	power := f.DesignFlow * f.DesignHead
	if f.MotorEfficiency <= 0 {
		return power
	}
	return power / f.MotorEfficiency
}

// LoadSeries returns Heat repeated n times.
func (f *Fan) LoadSeries(n int) []float64 {
	return constant(f.Heat(), n)
}
