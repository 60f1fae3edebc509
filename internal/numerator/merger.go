package numerator

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// joinEps is the coordinate slack under which two fragment endpoints are the
// same junction. Fragments of one stream share vertices exactly when they
// were split from a common source, so this only absorbs rounding noise.
const joinEps = 1e-9

// mergePaths builds one direction-normalized path per stream identifier.
// Degenerate segments are dropped with a warning; stream identifiers that end
// up with no usable geometry produce no path and a stream-unmergeable
// warning, leaving their points to orphan downstream.
func mergePaths(segments []Segment, policy DirectionPolicy) (map[string]orb.LineString, []Warning) {
	groups := make(map[string][]Segment)
	seen := make(map[string]bool)
	// End vertices of the raw segments, per stream. If the merged path
	// starts on one of these the chain was assembled against the
	// digitized flow direction.
	endVerts := make(map[string]map[orb.Point]struct{})
	var warns []Warning

	for _, seg := range segments {
		if seg.StreamID == "" {
			warns = append(warns, Warning{
				Kind:      WarnSegmentSkipped,
				FeatureID: seg.FeatureID,
				Detail:    "segment has no stream identifier",
			})
			continue
		}
		seen[seg.StreamID] = true
		if len(seg.Line) < 2 {
			warns = append(warns, Warning{
				Kind:      WarnSegmentSkipped,
				StreamID:  seg.StreamID,
				FeatureID: seg.FeatureID,
				Detail:    fmt.Sprintf("segment has %d vertices, need at least 2", len(seg.Line)),
			})
			continue
		}
		if !finiteLine(seg.Line) {
			warns = append(warns, Warning{
				Kind:      WarnSegmentSkipped,
				StreamID:  seg.StreamID,
				FeatureID: seg.FeatureID,
				Detail:    "segment has non-finite coordinates",
			})
			continue
		}
		groups[seg.StreamID] = append(groups[seg.StreamID], seg)
		if endVerts[seg.StreamID] == nil {
			endVerts[seg.StreamID] = make(map[orb.Point]struct{})
		}
		endVerts[seg.StreamID][seg.Line[len(seg.Line)-1]] = struct{}{}
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	paths := make(map[string]orb.LineString, len(groups))
	for _, id := range ids {
		parts := groups[id]
		// Stable: parts of one multi-part feature share a FeatureID and
		// must keep their stored order.
		sort.SliceStable(parts, func(i, j int) bool { return parts[i].FeatureID < parts[j].FeatureID })

		path, gapJoined := chainSegments(parts)
		if gapJoined {
			warns = append(warns, Warning{
				Kind:     WarnDisconnectedJoin,
				StreamID: id,
				Detail:   "fragments do not touch; joined at nearest endpoints",
			})
		}

		switch policy {
		case DirectionReverse:
			reverseLine(path)
		case DirectionAuto:
			if _, flipped := endVerts[id][path[0]]; flipped {
				reverseLine(path)
			}
		}
		paths[id] = path
	}

	// Streams whose every segment was dropped.
	failed := make([]string, 0)
	for id := range seen {
		if _, ok := paths[id]; !ok {
			failed = append(failed, id)
		}
	}
	sort.Strings(failed)
	for _, id := range failed {
		warns = append(warns, Warning{
			Kind:     WarnStreamUnmergeable,
			StreamID: id,
			Detail:   "no usable segments; stream excluded",
		})
	}

	return paths, warns
}

// attachment describes one way of connecting a fragment to the growing chain.
type attachment struct {
	idx     int
	dist    float64
	prepend bool
	reverse bool
}

// chainSegments assembles fragments into a single polyline. Fragments attach
// end-to-end, reversing individual fragments as needed; when no fragment
// touches the chain the nearest one is attached anyway and the join is
// reported, since disconnected inputs are a known field-data defect rather
// than a fatal error.
func chainSegments(parts []Segment) (path orb.LineString, gapJoined bool) {
	path = append(orb.LineString(nil), parts[0].Line...)
	if len(parts) == 1 {
		return path, false
	}

	used := make([]bool, len(parts))
	used[0] = true

	for remaining := len(parts) - 1; remaining > 0; remaining-- {
		// The first candidate seeds the selection, so an attachment exists
		// even when every distance degenerates to NaN.
		best := attachment{idx: -1}
		head, tail := path[0], path[len(path)-1]

		for i, part := range parts {
			if used[i] {
				continue
			}
			first, last := part.Line[0], part.Line[len(part.Line)-1]
			for _, c := range []attachment{
				{idx: i, dist: planar.Distance(tail, first)},
				{idx: i, dist: planar.Distance(tail, last), reverse: true},
				{idx: i, dist: planar.Distance(head, last), prepend: true},
				{idx: i, dist: planar.Distance(head, first), prepend: true, reverse: true},
			} {
				if best.idx < 0 || c.dist < best.dist {
					best = c
				}
			}
		}

		part := append(orb.LineString(nil), parts[best.idx].Line...)
		if best.reverse {
			reverseLine(part)
		}
		touching := best.dist <= joinEps
		if !touching {
			gapJoined = true
		}
		if best.prepend {
			if touching {
				// drop the duplicated junction vertex
				part = part[:len(part)-1]
			}
			path = append(part, path...)
		} else {
			if touching {
				part = part[1:]
			}
			path = append(path, part...)
		}
		used[best.idx] = true
	}

	return path, gapJoined
}

// finiteLine reports whether every ordinate is an ordinary number.
// Chaining and the spatial index both assume finite coordinates.
func finiteLine(ls orb.LineString) bool {
	for _, p := range ls {
		if math.IsNaN(p[0]) || math.IsInf(p[0], 0) || math.IsNaN(p[1]) || math.IsInf(p[1], 0) {
			return false
		}
	}
	return true
}

// reverseLine flips a polyline in place.
func reverseLine(ls orb.LineString) {
	for i, j := 0, len(ls)-1; i < j; i, j = i+1, j-1 {
		ls[i], ls[j] = ls[j], ls[i]
	}
}
