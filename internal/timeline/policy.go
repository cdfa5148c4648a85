package timeline

import "fmt"

// OverlapPolicy decides what happens when a clip placement (new or moved)
// conflicts with clips already on the target track. One policy is selected
// per engine instance and applied uniformly to add and move.
type OverlapPolicy int

const (
	// RippleInsert shifts every clip at or after the first conflict
	// forward so the new clip fits exactly at the requested position.
	RippleInsert OverlapPolicy = iota
	// RejectOnConflict fails the operation with ErrConflict.
	RejectOnConflict
	// SnapToGap advances the requested position to the first gap at or
	// after it that is large enough to hold the clip.
	SnapToGap
)

func (p OverlapPolicy) String() string {
	switch p {
	case RippleInsert:
		return "ripple"
	case RejectOnConflict:
		return "reject"
	case SnapToGap:
		return "snap"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a config string to a policy.
func ParsePolicy(s string) (OverlapPolicy, error) {
	switch s {
	case "", "ripple":
		return RippleInsert, nil
	case "reject":
		return RejectOnConflict, nil
	case "snap":
		return SnapToGap, nil
	default:
		return RippleInsert, fmt.Errorf("unknown overlap policy %q (want ripple, reject or snap)", s)
	}
}

// overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func overlaps(aStart, aEnd, bStart, bEnd float64) bool {
	return aEnd > bStart && aStart < bEnd
}

// resolvePlacement applies the policy for a clip of duration d requested at
// start on track. excludeID is the clip being moved, ignored during
// conflict search and ripple shifting. It returns the start position the
// clip must be placed at; under RippleInsert the track's other clips may
// have been shifted by the time it returns. On error the track is
// untouched. The track must be sorted by StartTime on entry and stays
// sorted on return (shifts preserve relative order).
func resolvePlacement(track *Track, start, d float64, excludeID string, policy OverlapPolicy) (float64, error) {
	switch policy {
	case RippleInsert:
		return rippleInsert(track, start, d, excludeID), nil
	case RejectOnConflict:
		if c := firstConflict(track, start, start+d, excludeID); c != nil {
			return 0, fmt.Errorf("%w: clip %s occupies [%g, %g)", ErrConflict, c.ID, c.StartTime, c.EndTime)
		}
		return start, nil
	case SnapToGap:
		return snapToGap(track, start, d, excludeID), nil
	default:
		return 0, fmt.Errorf("%w: overlap policy %d", ErrInvalidArgument, int(policy))
	}
}

// firstConflict returns the earliest-starting clip overlapping [start, end),
// relying on the track's sort order.
func firstConflict(track *Track, start, end float64, excludeID string) *Clip {
	for _, c := range track.Clips {
		if c.ID == excludeID {
			continue
		}
		if overlaps(start, end, c.StartTime, c.EndTime) {
			return c
		}
	}
	return nil
}

// rippleInsert makes room at start for a clip of duration d by pushing the
// first conflicting clip, and everything at or after it, forward by exactly
// the overlap amount. Internal durations and relative order are preserved.
func rippleInsert(track *Track, start, d float64, excludeID string) float64 {
	first := firstConflict(track, start, start+d, excludeID)
	if first == nil {
		return start
	}
	shift := start + d - first.StartTime
	pivot := first.StartTime
	for _, c := range track.Clips {
		if c.ID == excludeID {
			continue
		}
		if c.StartTime >= pivot {
			c.StartTime += shift
			c.EndTime += shift
		}
	}
	return start
}

// snapToGap scans the sorted clip list advancing a candidate position past
// each occupied interval until a gap of at least d opens up.
func snapToGap(track *Track, start, d float64, excludeID string) float64 {
	candidate := start
	for _, c := range track.Clips {
		if c.ID == excludeID {
			continue
		}
		if overlaps(candidate, candidate+d, c.StartTime, c.EndTime) {
			candidate = c.EndTime
		}
	}
	return candidate
}
