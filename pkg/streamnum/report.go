package streamnum

import (
	"fmt"
	"strings"
	"time"
)

// WarningKind classifies non-fatal conditions collected during a run.
type WarningKind string

const (
	// WarnSegmentSkipped marks a stream feature dropped at ingestion:
	// blank identifier, empty geometry or fewer than two vertices.
	WarnSegmentSkipped WarningKind = "segment-skipped"
	// WarnStreamUnmergeable marks a stream identifier whose features
	// yielded no traversable geometry.
	WarnStreamUnmergeable WarningKind = "stream-unmergeable"
	// WarnDisconnectedJoin marks a stream whose fragments did not touch
	// and were connected at their nearest endpoints.
	WarnDisconnectedJoin WarningKind = "disconnected-join"
	// WarnMalformedOldLabel marks a point whose old label was numbered
	// as new under the treat-as-new policy.
	WarnMalformedOldLabel WarningKind = "malformed-old-label"
	// WarnStreamUnlabeled marks a stream skipped under the skip-stream
	// policy.
	WarnStreamUnlabeled WarningKind = "stream-unlabeled"
)

// Warning records one non-fatal condition. FeatureID is zero when the
// warning concerns a whole stream.
type Warning struct {
	Kind      WarningKind
	StreamID  string
	FeatureID int64
	Detail    string
}

// StreamSummary reports one stream's processing results.
type StreamSummary struct {
	StreamID     string
	Length       float64
	Points       int
	WithOldLabel int
	Labeled      int
}

// Stats aggregates run counters.
type Stats struct {
	StreamsMerged  int
	StreamsFailed  int
	PointsTotal    int
	PointsAssigned int
	PointsLabeled  int
	PointsOrphaned int
	PointsSkipped  int
}

// Report is the outcome of one numbering run.
type Report struct {
	// RunID identifies the run in logs and audit trails.
	RunID string
	// Took is the wall time of the whole run including store I/O.
	Took time.Duration
	// Stats aggregates counters over all streams and points.
	Stats Stats
	// Streams summarizes each merged stream, ordered by identifier.
	Streams []StreamSummary
	// Warnings lists non-fatal conditions in the order encountered.
	Warnings []Warning
	// Labels maps every point's feature ID to its written label; the
	// empty string means the stored value was cleared.
	Labels map[int64]string
}

// String renders the survey-log style summary printed after a run.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d streams, %d points (%d labeled, %d orphaned, %d skipped) in %s",
		r.RunID, r.Stats.StreamsMerged, r.Stats.PointsTotal,
		r.Stats.PointsLabeled, r.Stats.PointsOrphaned, r.Stats.PointsSkipped,
		r.Took.Round(time.Millisecond))
	for _, s := range r.Streams {
		fmt.Fprintf(&b, "\n  %s: length %.2f, %d points, %d with old number, %d labeled",
			s.StreamID, s.Length, s.Points, s.WithOldLabel, s.Labeled)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "\n  warning [%s]", w.Kind)
		if w.StreamID != "" {
			fmt.Fprintf(&b, " stream %s", w.StreamID)
		}
		if w.FeatureID != 0 {
			fmt.Fprintf(&b, " feature %d", w.FeatureID)
		}
		if w.Detail != "" {
			fmt.Fprintf(&b, ": %s", w.Detail)
		}
	}
	return b.String()
}
