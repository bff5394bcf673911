// Package wasteheat models a source that puts heat into the loop, either at
// a constant rate or following a Modelica schedule.
package wasteheat

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ajitpratap0/thermalnetwork/internal/loads"
	"github.com/ajitpratap0/thermalnetwork/internal/metrics"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// ScheduleExt marks a rate given as a schedule file.
const ScheduleExt = ".mos"

// Source is a waste-heat source. Addition holds the hourly heat put into the
// loop in W.
type Source struct {
	Name     string
	Addition []float64
}

// New builds a source from a rate that is either a number in W or a path to
// a .mos schedule relative to baseDir. A rate that cannot be read is logged
// and yields no heat addition.
func New(name, rate, baseDir string, logger *slog.Logger) *Source {
	s := &Source{Name: models.NormalizeName(name), Addition: loads.Zeros()}
	rate = strings.TrimSpace(rate)

	if strings.HasSuffix(strings.ToLower(rate), ScheduleExt) {
		path := rate
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		schedule, err := loads.ReadScheduleFile(path)
		if err != nil {
			metrics.Inc(metrics.NumericWarnings)
			logger.Warn("waste heat schedule unusable, using zero heat addition",
				"source", s.Name, "path", path, "error", err)
			return s
		}
		s.Addition = schedule
		logger.Debug("waste heat schedule loaded", "source", s.Name, "path", path)
		return s
	}

	v, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		metrics.Inc(metrics.NumericWarnings)
		logger.Warn("waste heat rate is not a number or schedule, using zero heat addition",
			"source", s.Name, "rate", rate)
		return s
	}
	s.Addition = loads.Constant(v)
	return s
}

// ComponentName returns the normalized source name.
func (s *Source) ComponentName() string { return s.Name }

// Type returns models.ComponentWasteHeatSource.
func (s *Source) Type() models.ComponentType { return models.ComponentWasteHeatSource }

// Loads returns the heat addition as a ground load, which is negative.
func (s *Source) Loads() ([]float64, error) {
	if err := loads.CheckLength(s.Name, s.Addition); err != nil {
		return nil, err
	}
	return loads.Scale(s.Addition, -1), nil
}
