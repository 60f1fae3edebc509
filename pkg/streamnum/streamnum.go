// Package streamnum assigns survey points to watercourses and numbers them
// along the flow direction, preserving numbers the points already carry.
//
// The stream layer holds linear features tagged with a stream identifier;
// features sharing an identifier are fragments of one watercourse and are
// merged into a single directed path. Every survey point is assigned to the
// nearest path within a tolerance, each stream's points are ordered by
// their distance from the path start, and labels are issued in three
// sections around the pre-numbered points: 1Pnowy before the first, 5Pa
// between 5P and 6P, and 7P continuing after the last. Points on no stream
// have their stored label cleared.
//
// A run reads both layers through the source interfaces, computes labels in
// memory and writes them back in one batch:
//
//	store, err := gpkg.Open(ctx, "survey.gpkg", gpkg.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	report, err := streamnum.RunStore(ctx, store, streamnum.DefaultConfig())
package streamnum

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/streamnum/internal/numerator"
)

// Segment is one linear feature from the stream layer.
type Segment struct {
	// ID is the feature identifier in the host store.
	ID int64
	// StreamID is the stream identifier grouping fragments of one
	// watercourse. Blank identifiers are skipped with a warning.
	StreamID string
	// Line holds the vertices in digitized order.
	Line orb.LineString
}

// Point is one survey point from the point layer.
type Point struct {
	// ID is the feature identifier labels are written back under.
	ID int64
	// Geom is the surveyed location.
	Geom orb.Point
	// Empty marks a feature with a null stored geometry; it takes part
	// in the run so its stale label gets cleared.
	Empty bool
	// OldLabel is the pre-existing number, "" when there is none.
	OldLabel string
}

// StreamSource yields the stream layer's features.
type StreamSource interface {
	StreamSegments(ctx context.Context) ([]Segment, error)
}

// PointSource yields the point layer's features.
type PointSource interface {
	SurveyPoints(ctx context.Context) ([]Point, error)
}

// LabelWriter persists computed labels in one batch. An empty label clears
// the stored value.
type LabelWriter interface {
	WriteLabels(ctx context.Context, labels map[int64]string) error
}

// Store bundles the three interfaces a layer-backed run needs.
type Store interface {
	StreamSource
	PointSource
	LabelWriter
}

// Error types surfaced by Run.
type (
	// ErrMalformedLabel reports the first malformed old label under the
	// abort policy.
	ErrMalformedLabel = numerator.ErrMalformedLabel
	// ErrInvalidConfig reports a configuration value a run cannot start
	// with.
	ErrInvalidConfig = numerator.ErrInvalidConfig
)

// Run executes one numbering pass: read both layers, compute labels, write
// them back. Nothing is written when the computation fails, so an aborted
// run leaves the point layer untouched.
func Run(ctx context.Context, streams StreamSource, points PointSource, writer LabelWriter, cfg Config) (*Report, error) {
	cfg = cfg.withDefaults()
	internalCfg, err := toInternalConfig(cfg)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := cfg.Logger.With(slog.String("run", runID))
	start := time.Now()

	segments, err := streams.StreamSegments(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stream layer: %w", err)
	}
	pts, err := points.SurveyPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading point layer: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Info("layers loaded",
		slog.Int("segments", len(segments)),
		slog.Int("points", len(pts)))

	res, err := numerator.Run(toInternalInput(segments, pts), internalCfg)
	if err != nil {
		return nil, err
	}

	if err := writer.WriteLabels(ctx, res.Labels); err != nil {
		return nil, fmt.Errorf("writing labels: %w", err)
	}

	report := convertResult(runID, time.Since(start), res)
	for _, w := range report.Warnings {
		logger.Warn(string(w.Kind),
			slog.String("stream", w.StreamID),
			slog.Int64("feature", w.FeatureID),
			slog.String("detail", w.Detail))
	}
	logger.Info("run finished",
		slog.Int("streams", report.Stats.StreamsMerged),
		slog.Int("labeled", report.Stats.PointsLabeled),
		slog.Int("orphaned", report.Stats.PointsOrphaned),
		slog.Duration("took", report.Took))

	return report, nil
}

// RunStore is Run for a store that backs all three interfaces, such as a
// GeoPackage.
func RunStore(ctx context.Context, store Store, cfg Config) (*Report, error) {
	return Run(ctx, store, store, store, cfg)
}

func toInternalInput(segments []Segment, points []Point) numerator.Input {
	in := numerator.Input{
		Segments: make([]numerator.Segment, len(segments)),
		Points:   make([]numerator.Point, len(points)),
	}
	for i, s := range segments {
		in.Segments[i] = numerator.Segment{
			FeatureID: s.ID,
			StreamID:  s.StreamID,
			Line:      s.Line,
		}
	}
	for i, p := range points {
		in.Points[i] = numerator.Point{
			FeatureID: p.ID,
			Seq:       i,
			Geom:      p.Geom,
			Empty:     p.Empty,
			OldLabel:  p.OldLabel,
		}
	}
	return in
}

func convertResult(runID string, took time.Duration, res *numerator.Result) *Report {
	report := &Report{
		RunID:  runID,
		Took:   took,
		Labels: res.Labels,
		Stats: Stats{
			StreamsMerged:  res.Stats.StreamsMerged,
			StreamsFailed:  res.Stats.StreamsFailed,
			PointsTotal:    res.Stats.PointsTotal,
			PointsAssigned: res.Stats.PointsAssigned,
			PointsLabeled:  res.Stats.PointsLabeled,
			PointsOrphaned: res.Stats.PointsOrphaned,
			PointsSkipped:  res.Stats.PointsSkipped,
		},
		Streams:  make([]StreamSummary, 0, len(res.Streams)),
		Warnings: make([]Warning, 0, len(res.Warnings)),
	}
	for _, s := range res.Streams {
		report.Streams = append(report.Streams, StreamSummary{
			StreamID:     s.StreamID,
			Length:       s.Length,
			Points:       s.Points,
			WithOldLabel: s.WithOldLabel,
			Labeled:      s.Labeled,
		})
	}
	for _, w := range res.Warnings {
		report.Warnings = append(report.Warnings, Warning{
			Kind:      WarningKind(w.Kind),
			StreamID:  w.StreamID,
			FeatureID: w.FeatureID,
			Detail:    w.Detail,
		})
	}
	return report
}
