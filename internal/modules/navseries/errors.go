package navseries

import "errors"

// Calculation errors shared by the simulation and returns modules.
// These are returned as values and mapped to client errors at the HTTP layer;
// they must never surface as panics or partial numeric results.
var (
	// ErrNoData means no usable NAV point satisfies a look-back resolution.
	ErrNoData = errors.New("no NAV data available for the requested date")

	// ErrInsufficientData means the requested window contains no resolvable
	// NAV points, or a required window boundary could not be resolved.
	ErrInsufficientData = errors.New("insufficient NAV data for the selected period")

	// ErrInvalidParams means the request was rejected before any computation
	// (from >= to, non-positive amounts, unknown frequency or period tags).
	ErrInvalidParams = errors.New("invalid calculation parameters")
)
