package availability

import "errors"

var (
	// ErrInvalidTimeValue means a wall-clock minute was outside 0..1439
	// or could not be parsed from its HH:MM form.
	ErrInvalidTimeValue = errors.New("time value out of range")

	// ErrInvalidRanges means a submitted range set was inverted,
	// zero-length, or internally overlapping. Mutations returning this
	// leave prior state untouched.
	ErrInvalidRanges = errors.New("invalid time ranges")

	// ErrInvalidConfiguration means already-persisted data violates the
	// engine's invariants. It aborts the single resolution call that
	// discovered it, never the whole session.
	ErrInvalidConfiguration = errors.New("invalid availability configuration")
)
