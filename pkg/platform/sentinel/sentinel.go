package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Result stores and audit sinks return
// these (optionally wrapped) so callers can translate them into domain errors.
//
// - ErrNotFound: no stored record for the requested run or period
// - ErrConflict: a record already exists and may not be overwritten
// - ErrInvalidState: a component was used before it was configured
// - ErrUnavailable: backing service temporarily unreachable
//
// For validation errors (bad input, inconsistent staffing), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
