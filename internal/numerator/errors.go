package numerator

import (
	"fmt"
)

// ErrMalformedLabel indicates an old label that is not a plain non-negative
// integer (with or without the trailing P).
type ErrMalformedLabel struct {
	StreamID  string
	FeatureID int64
	Label     string
}

func (e *ErrMalformedLabel) Error() string {
	return fmt.Sprintf("stream %q: point %d has malformed old label %q (expected a non-negative integer, optionally suffixed with P)",
		e.StreamID, e.FeatureID, e.Label)
}

// ErrInvalidConfig indicates a configuration value the run cannot start with.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
