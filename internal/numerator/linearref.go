package numerator

import (
	"math"

	"github.com/paulmach/orb"
)

// locateAlongLine projects p onto the polyline and returns the distance to
// the closest point on it together with the measure of that point, the
// arc length from the start of the polyline. Ties between equally close
// spans resolve to the smallest measure.
func locateAlongLine(ls orb.LineString, p orb.Point) (dist, measure float64) {
	if len(ls) == 0 {
		return math.Inf(1), 0
	}
	if len(ls) == 1 {
		dx, dy := p[0]-ls[0][0], p[1]-ls[0][1]
		return math.Hypot(dx, dy), 0
	}

	bestD2 := math.Inf(1)
	bestM := 0.0
	cum := 0.0

	for i := 0; i < len(ls)-1; i++ {
		a, b := ls[i], ls[i+1]
		abx, aby := b[0]-a[0], b[1]-a[1]
		l2 := abx*abx + aby*aby

		t := 0.0
		if l2 > 0 {
			t = ((p[0]-a[0])*abx + (p[1]-a[1])*aby) / l2
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
		}

		px := p[0] - (a[0] + t*abx)
		py := p[1] - (a[1] + t*aby)
		d2 := px*px + py*py

		segLen := math.Sqrt(l2)
		if d2 < bestD2 {
			bestD2 = d2
			bestM = cum + t*segLen
		}
		cum += segLen
	}

	return math.Sqrt(bestD2), bestM
}
