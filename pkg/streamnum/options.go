package streamnum

import (
	"fmt"
	"log/slog"

	"github.com/beetlebugorg/streamnum/internal/numerator"
)

// DirectionPolicy controls how a merged stream's flow direction is fixed.
type DirectionPolicy int

const (
	// DirectionAuto flips a merged stream that was assembled against the
	// digitized flow direction. This is the right choice for layers
	// digitized source-to-mouth.
	DirectionAuto DirectionPolicy = iota
	// DirectionKeep trusts the assembled geometry as-is.
	DirectionKeep
	// DirectionReverse always flips the assembled geometry.
	DirectionReverse
)

func (d DirectionPolicy) String() string {
	switch d {
	case DirectionAuto:
		return "auto"
	case DirectionKeep:
		return "keep"
	case DirectionReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// ParseDirectionPolicy maps a configuration string to its policy.
func ParseDirectionPolicy(s string) (DirectionPolicy, error) {
	switch s {
	case "auto":
		return DirectionAuto, nil
	case "keep":
		return DirectionKeep, nil
	case "reverse":
		return DirectionReverse, nil
	default:
		return 0, fmt.Errorf("unknown direction policy %q (want auto, keep or reverse)", s)
	}
}

// LabelPolicy controls what happens when a point carries an old label that
// is not a non-negative integer (with or without the trailing P).
type LabelPolicy int

const (
	// LabelSkipStream leaves the affected stream unlabeled and records a
	// warning.
	LabelSkipStream LabelPolicy = iota
	// LabelTreatAsNew numbers the affected point as if it had no old
	// label.
	LabelTreatAsNew
	// LabelAbort fails the whole run before anything is written.
	LabelAbort
)

func (p LabelPolicy) String() string {
	switch p {
	case LabelSkipStream:
		return "skip-stream"
	case LabelTreatAsNew:
		return "treat-as-new"
	case LabelAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// ParseLabelPolicy maps a configuration string to its policy.
func ParseLabelPolicy(s string) (LabelPolicy, error) {
	switch s {
	case "skip-stream":
		return LabelSkipStream, nil
	case "treat-as-new":
		return LabelTreatAsNew, nil
	case "abort":
		return LabelAbort, nil
	default:
		return 0, fmt.Errorf("unknown label policy %q (want skip-stream, treat-as-new or abort)", s)
	}
}

// DefaultTolerance is the assignment tolerance used when Config.Tolerance
// is zero. Survey points are expected to lie on their stream's geometry;
// the tolerance only absorbs coordinate rounding.
const DefaultTolerance = numerator.DefaultTolerance

// Config tunes a numbering run. The zero value is usable: default
// tolerance, automatic direction, skip-stream label policy and the default
// slog logger.
type Config struct {
	// Tolerance is the maximum distance, in layer units, between a point
	// and a stream for assignment. Zero selects DefaultTolerance.
	Tolerance float64
	// Direction selects the flow-direction normalization policy.
	Direction DirectionPolicy
	// OldLabels selects the malformed-old-label recovery policy.
	OldLabels LabelPolicy
	// Logger receives run progress. Nil selects slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the documented defaults spelled out.
func DefaultConfig() Config {
	return Config{
		Tolerance: DefaultTolerance,
		Direction: DirectionAuto,
		OldLabels: LabelSkipStream,
	}
}

func (c Config) withDefaults() Config {
	if c.Tolerance == 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

func toInternalConfig(c Config) (numerator.Config, error) {
	out := numerator.Config{Tolerance: c.Tolerance}

	switch c.Direction {
	case DirectionAuto:
		out.Direction = numerator.DirectionAuto
	case DirectionKeep:
		out.Direction = numerator.DirectionKeep
	case DirectionReverse:
		out.Direction = numerator.DirectionReverse
	default:
		return numerator.Config{}, &ErrInvalidConfig{Field: "direction", Reason: "unknown policy"}
	}

	switch c.OldLabels {
	case LabelSkipStream:
		out.OldLabels = numerator.LabelPolicySkipStream
	case LabelTreatAsNew:
		out.OldLabels = numerator.LabelPolicyTreatAsNew
	case LabelAbort:
		out.OldLabels = numerator.LabelPolicyAbort
	default:
		return numerator.Config{}, &ErrInvalidConfig{Field: "old-labels", Reason: "unknown policy"}
	}

	return out, nil
}
