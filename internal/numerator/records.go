// Package numerator implements stream-guided point numbering: raw stream
// segments are merged into one directed path per stream, survey points are
// assigned to their nearest path and ordered by distance along it, and every
// point receives a label that preserves pre-existing numbers.
package numerator

import (
	"github.com/paulmach/orb"
)

// Segment is one raw stream feature as read from the stream layer.
// Several segments may carry the same StreamID; they are fragments of one
// logical watercourse and get merged into a single path.
type Segment struct {
	// FeatureID is the source feature identifier in the host store.
	FeatureID int64
	// StreamID groups fragments into one logical stream.
	StreamID string
	// Line holds the segment vertices in digitized order.
	Line orb.LineString
}

// Point is one survey point as read from the point layer.
type Point struct {
	// FeatureID is the point's identity in the host store; labels are
	// written back under this ID.
	FeatureID int64
	// Seq is the point's position in the input enumeration. It breaks
	// ties between points projected to the same distance along a path.
	Seq int
	// Geom is the surveyed location.
	Geom orb.Point
	// Empty marks a record whose stored geometry was null. Such points
	// take part in the run as orphans so their stale labels get cleared.
	Empty bool
	// OldLabel is the pre-existing number ("" means none). Accepted forms
	// are a plain non-negative integer ("5") or the same with the P
	// suffix already applied ("5P").
	OldLabel string
}

// Input bundles the features of one numbering run.
type Input struct {
	Segments []Segment
	Points   []Point
}

// assignedPoint is a Point bound to its owning stream path.
type assignedPoint struct {
	Point
	// Position is the distance along the path from its start to the
	// projection of the point onto the path.
	Position float64
	// NewLabel is filled in by the numberer.
	NewLabel string
}

// DirectionPolicy controls how a merged path's flow direction is fixed.
type DirectionPolicy int

const (
	// DirectionAuto reverses the merged path when its first vertex
	// coincides with an end vertex of one of the input segments, meaning
	// the chain was assembled against the digitized flow direction.
	DirectionAuto DirectionPolicy = iota
	// DirectionKeep leaves the path as assembled.
	DirectionKeep
	// DirectionReverse always reverses the assembled path.
	DirectionReverse
)

// String returns the configuration name of the policy.
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

// LabelPolicy controls what happens when a point carries a malformed old
// label (anything that is not a non-negative integer, with or without the
// trailing P).
type LabelPolicy int

const (
	// LabelPolicySkipStream leaves the whole stream unlabeled and records
	// a warning. Old numbers are referenced in external paperwork, so a
	// corrupted sequence is never silently repaired.
	LabelPolicySkipStream LabelPolicy = iota
	// LabelPolicyTreatAsNew treats the malformed label as absent and
	// numbers the point as new.
	LabelPolicyTreatAsNew
	// LabelPolicyAbort fails the entire run.
	LabelPolicyAbort
)

// String returns the configuration name of the policy.
func (p LabelPolicy) String() string {
	switch p {
	case LabelPolicySkipStream:
		return "skip-stream"
	case LabelPolicyTreatAsNew:
		return "treat-as-new"
	case LabelPolicyAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Config carries the algorithm knobs. Layer and field naming is the host
// store's concern and does not appear here.
type Config struct {
	// Tolerance is the maximum distance, in layer units, between a point
	// and a path for the point to be assigned to it.
	Tolerance float64
	// Direction selects the flow-direction normalization policy.
	Direction DirectionPolicy
	// OldLabels selects the malformed-old-label recovery policy.
	OldLabels LabelPolicy
}

// DefaultTolerance matches the snap buffer the field workflow historically
// used: points are expected to lie on the stream geometry, the tolerance
// only absorbs coordinate rounding.
const DefaultTolerance = 1e-7

// DefaultConfig returns the configuration used when callers leave Config
// fields at their zero values.
func DefaultConfig() Config {
	return Config{
		Tolerance: DefaultTolerance,
		Direction: DirectionAuto,
		OldLabels: LabelPolicySkipStream,
	}
}
