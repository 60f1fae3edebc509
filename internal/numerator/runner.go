package numerator

import (
	"sort"

	"github.com/paulmach/orb/planar"
)

// validate rejects configurations the pipeline cannot honor.
func (c Config) validate() error {
	if c.Tolerance <= 0 {
		return &ErrInvalidConfig{Field: "tolerance", Reason: "must be greater than zero"}
	}
	switch c.Direction {
	case DirectionAuto, DirectionKeep, DirectionReverse:
	default:
		return &ErrInvalidConfig{Field: "direction", Reason: "unknown policy"}
	}
	switch c.OldLabels {
	case LabelPolicySkipStream, LabelPolicyTreatAsNew, LabelPolicyAbort:
	default:
		return &ErrInvalidConfig{Field: "old-labels", Reason: "unknown policy"}
	}
	return nil
}

// Run executes one numbering pass: merge segments into directed paths,
// assign points to their nearest path, number each stream's points in
// order. The result labels every input point; an empty label marks points
// that ended up on no stream or on a stream the run had to skip, and tells
// the store to clear any stale value. Failures are isolated per stream
// except under the abort policy, where the first malformed old label fails
// the whole run and nothing should be written.
func Run(in Input, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	res := &Result{Labels: make(map[int64]string, len(in.Points))}
	res.Stats.PointsTotal = len(in.Points)

	paths, warns := mergePaths(in.Segments, cfg.Direction)
	res.Warnings = append(res.Warnings, warns...)
	res.Stats.StreamsMerged = len(paths)
	for _, w := range warns {
		if w.Kind == WarnStreamUnmergeable {
			res.Stats.StreamsFailed++
		}
	}

	usable := make([]Point, 0, len(in.Points))
	var orphans []Point
	for _, p := range in.Points {
		if p.Empty {
			orphans = append(orphans, p)
			continue
		}
		usable = append(usable, p)
	}

	byStream, unmatched, err := assignPoints(paths, usable, cfg.Tolerance)
	if err != nil {
		return nil, err
	}
	orphans = append(orphans, unmatched...)

	ids := make([]string, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		pts := byStream[id]
		res.Stats.PointsAssigned += len(pts)

		summary := StreamSummary{
			StreamID: id,
			Length:   planar.Length(paths[id]),
			Points:   len(pts),
		}
		for _, p := range pts {
			if p.OldLabel != "" {
				summary.WithOldLabel++
			}
		}

		numWarns, err := numberPoints(pts, id, cfg.OldLabels)
		res.Warnings = append(res.Warnings, numWarns...)
		if err != nil {
			if cfg.OldLabels == LabelPolicyAbort {
				return nil, err
			}
			res.Warnings = append(res.Warnings, Warning{
				Kind:     WarnStreamUnlabeled,
				StreamID: id,
				Detail:   err.Error(),
			})
			for _, p := range pts {
				res.Labels[p.FeatureID] = ""
			}
			res.Stats.PointsSkipped += len(pts)
			res.Streams = append(res.Streams, summary)
			continue
		}

		for _, p := range pts {
			res.Labels[p.FeatureID] = p.NewLabel
		}
		summary.Labeled = len(pts)
		res.Stats.PointsLabeled += len(pts)
		res.Streams = append(res.Streams, summary)
	}

	for _, p := range orphans {
		res.Labels[p.FeatureID] = ""
	}
	res.Stats.PointsOrphaned = len(orphans)

	return res, nil
}
