package numerator

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// rectEpsilon pads degenerate extents so axis-aligned paths still index.
// rtreego rejects rectangles with a zero-length side.
const rectEpsilon = 1e-9

// pathEntry adapts a merged stream path to the R-tree's Spatial interface.
type pathEntry struct {
	streamID string
	path     orb.LineString
	bounds   rtreego.Rect
}

func (e *pathEntry) Bounds() rtreego.Rect {
	return e.bounds
}

// assigner resolves survey points to the stream they were measured on.
type assigner struct {
	tree  *rtreego.Rtree
	count int
}

func newAssigner(paths map[string]orb.LineString) (*assigner, error) {
	a := &assigner{tree: rtreego.NewTree(2, 25, 50)}
	for id, path := range paths {
		rect, err := boundRect(path.Bound())
		if err != nil {
			return nil, err
		}
		a.tree.Insert(&pathEntry{streamID: id, path: path, bounds: rect})
		a.count++
	}
	return a, nil
}

func boundRect(b orb.Bound) (rtreego.Rect, error) {
	lengths := []float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]}
	for i := range lengths {
		if lengths[i] <= 0 {
			lengths[i] = rectEpsilon
		}
	}
	return rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, lengths)
}

// nearest returns the closest indexed stream within tolerance of p, with
// the measure of p along it. Equally distant streams resolve to the
// smallest identifier so reruns stay stable.
func (a *assigner) nearest(p orb.Point, tolerance float64) (streamID string, measure float64, ok bool) {
	if a.count == 0 {
		return "", 0, false
	}

	side := 2 * tolerance
	if side <= 0 {
		side = rectEpsilon
	}
	search, err := rtreego.NewRect(
		rtreego.Point{p[0] - tolerance, p[1] - tolerance},
		[]float64{side, side},
	)
	if err != nil {
		return "", 0, false
	}

	bestDist := math.Inf(1)
	for _, hit := range a.tree.SearchIntersect(search) {
		entry := hit.(*pathEntry)
		dist, m := locateAlongLine(entry.path, p)
		if dist > tolerance {
			continue
		}
		if dist < bestDist || (dist == bestDist && ok && entry.streamID < streamID) {
			bestDist = dist
			streamID = entry.streamID
			measure = m
			ok = true
		}
	}
	return streamID, measure, ok
}

// assignPoints resolves every survey point against the merged paths. Matched
// points come back grouped per stream and ordered by measure, with Seq
// breaking ties; points no stream claims are returned separately.
func assignPoints(paths map[string]orb.LineString, points []Point, tolerance float64) (map[string][]assignedPoint, []Point, error) {
	idx, err := newAssigner(paths)
	if err != nil {
		return nil, nil, err
	}

	byStream := make(map[string][]assignedPoint)
	var orphans []Point
	for _, p := range points {
		id, m, ok := idx.nearest(p.Geom, tolerance)
		if !ok {
			orphans = append(orphans, p)
			continue
		}
		byStream[id] = append(byStream[id], assignedPoint{Point: p, Position: m})
	}

	for id := range byStream {
		pts := byStream[id]
		sort.SliceStable(pts, func(i, j int) bool {
			if pts[i].Position != pts[j].Position {
				return pts[i].Position < pts[j].Position
			}
			return pts[i].Seq < pts[j].Seq
		})
	}
	return byStream, orphans, nil
}
