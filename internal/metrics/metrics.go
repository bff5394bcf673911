// Package metrics provides run-level counters using stdlib expvar.
// The serve command exposes them on /debug/vars.
package metrics

import "expvar"

// Sizing counters.
var (
	BuildingsLoaded = expvar.NewInt("thermalnetwork_buildings_loaded_total")
	GHESized        = expvar.NewInt("thermalnetwork_ghe_sized_total")
	GHEFailed       = expvar.NewInt("thermalnetwork_ghe_failed_total")
	PipesSized      = expvar.NewInt("thermalnetwork_pipes_sized_total")
	NumericWarnings = expvar.NewInt("thermalnetwork_numeric_warnings_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
