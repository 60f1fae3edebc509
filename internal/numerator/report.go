package numerator

// WarningKind classifies non-fatal conditions collected during a run.
type WarningKind string

const (
	// WarnSegmentSkipped marks a stream segment dropped at ingestion
	// (blank stream id, empty geometry, fewer than two vertices, or
	// non-finite coordinates).
	WarnSegmentSkipped WarningKind = "segment-skipped"
	// WarnStreamUnmergeable marks a stream identifier whose segments
	// yielded no traversable path; all its candidate points orphan.
	WarnStreamUnmergeable WarningKind = "stream-unmergeable"
	// WarnDisconnectedJoin marks a stream whose fragments did not touch
	// and were connected at their nearest endpoints.
	WarnDisconnectedJoin WarningKind = "disconnected-join"
	// WarnMalformedOldLabel marks a point whose old label could not be
	// parsed under the treat-as-new policy.
	WarnMalformedOldLabel WarningKind = "malformed-old-label"
	// WarnStreamUnlabeled marks a stream whose numbering was skipped
	// because of a malformed old label under the skip-stream policy.
	WarnStreamUnlabeled WarningKind = "stream-unlabeled"
)

// Warning records one non-fatal condition. FeatureID is zero when the
// warning concerns the whole stream rather than a single feature.
type Warning struct {
	Kind      WarningKind
	StreamID  string
	FeatureID int64
	Detail    string
}

// StreamSummary reports per-stream processing results, in the spirit of the
// survey log the field crews work from.
type StreamSummary struct {
	StreamID string
	// Length is the merged path length in layer units.
	Length float64
	// Points is the number of points assigned to the stream.
	Points int
	// WithOldLabel is how many of those carried a pre-existing number.
	WithOldLabel int
	// Labeled is how many received a new label (zero when the stream was
	// skipped due to a malformed old label).
	Labeled int
}

// Stats aggregates run counters.
type Stats struct {
	StreamsMerged  int
	StreamsFailed  int
	PointsTotal    int
	PointsAssigned int
	PointsLabeled  int
	PointsOrphaned int
	// PointsSkipped counts points that were assigned to a stream whose
	// numbering failed; they are written an empty label like orphans.
	PointsSkipped int
}

// Result is the outcome of one in-memory run.
type Result struct {
	// Labels maps every input point's FeatureID to its new label. Orphans
	// and points of skipped streams map to the empty string, so the
	// caller can clear stale values unconditionally.
	Labels map[int64]string
	// Streams summarizes each merged stream, ordered by StreamID.
	Streams []StreamSummary
	// Warnings lists all non-fatal conditions in the order encountered.
	Warnings []Warning
	Stats    Stats
}
