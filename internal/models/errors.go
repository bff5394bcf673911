package models

import "errors"

// Fatal error classes. Callers wrap them with context and match with errors.Is.
var (
	// ErrConfiguration covers unsupported design methods, missing parameters
	// and duplicate component names. Raised before any sizing call.
	ErrConfiguration = errors.New("configuration error")

	// ErrTopology covers missing connectors, dangling or duplicate chains and
	// a missing loop start.
	ErrTopology = errors.New("topology error")

	// ErrDataShape is returned when a series cannot be resampled to the
	// expected length or a pre-designed borefield has inconsistent coordinates.
	ErrDataShape = errors.New("data shape error")

	// ErrExternalEngine is returned when the borefield design engine fails or
	// returns no usable summary.
	ErrExternalEngine = errors.New("external engine error")
)
