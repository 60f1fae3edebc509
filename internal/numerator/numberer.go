package numerator

import (
	"fmt"
	"strconv"
	"strings"
)

// anchor is a point that arrived already labeled, pinning the numbering of
// its neighbours.
type anchor struct {
	index int    // position among the stream's ordered points
	base  string // numeric part as written, "5P" -> "5"
	num   int    // base parsed, for continuation past the last anchor
}

// parseOldLabel splits a pre-existing label into its numeric base. Labels
// read <digits> or <digits>P, e.g. "12" or "12P".
func parseOldLabel(label string) (base string, num int, ok bool) {
	base, _ = strings.CutSuffix(label, "P")
	if base == "" {
		return "", 0, false
	}
	for _, r := range base {
		if r < '0' || r > '9' {
			return "", 0, false
		}
	}
	num, err := strconv.Atoi(base)
	if err != nil {
		return "", 0, false
	}
	return base, num, true
}

// letterSuffix yields the in-between series a..z, aa, ab, ...
func letterSuffix(n int) string {
	if n < 26 {
		return string(rune('a' + n))
	}
	return letterSuffix(n/26-1) + string(rune('a'+n%26))
}

// numberPoints labels one stream's ordered points in place. Points carrying
// a well-formed old label keep it, reformatted as <base>P if the suffix was
// missing; the rest are numbered in three sections around those anchors:
//
//   - before the first anchor: 1Pnowy, 2Pnowy, ...
//   - between two anchors: the earlier anchor's base plus a letter,
//     5Pa, 5Pb, ... restarting at "a" in every gap
//   - after the last anchor: the last base continued, 6P, 7P, ...
//
// A stream with no anchors is numbered 1P..nP from its source. Malformed
// old labels are handled per policy: treated as unlabeled with a warning,
// or surfaced as an error for the caller to skip the stream or abort.
func numberPoints(points []assignedPoint, streamID string, policy LabelPolicy) ([]Warning, error) {
	var warns []Warning
	var anchors []anchor

	for i := range points {
		label := points[i].OldLabel
		if label == "" {
			continue
		}
		base, num, ok := parseOldLabel(label)
		if !ok {
			if policy == LabelPolicyTreatAsNew {
				warns = append(warns, Warning{
					Kind:      WarnMalformedOldLabel,
					StreamID:  streamID,
					FeatureID: points[i].FeatureID,
					Detail:    fmt.Sprintf("label %q is not <number>P; numbering as new", label),
				})
				continue
			}
			return nil, &ErrMalformedLabel{StreamID: streamID, FeatureID: points[i].FeatureID, Label: label}
		}
		points[i].NewLabel = base + "P"
		anchors = append(anchors, anchor{index: i, base: base, num: num})
	}

	if len(anchors) == 0 {
		for i := range points {
			points[i].NewLabel = fmt.Sprintf("%dP", i+1)
		}
		return warns, nil
	}

	// Before the first anchor.
	for i := 0; i < anchors[0].index; i++ {
		points[i].NewLabel = fmt.Sprintf("%dPnowy", i+1)
	}

	// Between consecutive anchors.
	for k := 0; k < len(anchors)-1; k++ {
		cur, next := anchors[k], anchors[k+1]
		for j, i := 0, cur.index+1; i < next.index; j, i = j+1, i+1 {
			points[i].NewLabel = cur.base + "P" + letterSuffix(j)
		}
	}

	// After the last anchor.
	last := anchors[len(anchors)-1]
	for i := last.index + 1; i < len(points); i++ {
		points[i].NewLabel = fmt.Sprintf("%dP", last.num+i-last.index)
	}

	return warns, nil
}
