package clinic

import "errors"

// Sentinel errors returned by the store. Callers match with errors.Is; the
// HTTP layer maps them to status codes. No failure is fatal; the store
// remains usable after a rejected call.
var (
	// ErrNotFound means a referenced id or index does not resolve to an
	// existing entity.
	ErrNotFound = errors.New("not found")

	// ErrValidation means a required field was missing or empty.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState means the operation conflicts with current record
	// state, e.g. booking against an unknown reference pair.
	ErrInvalidState = errors.New("invalid state")
)
