package protocol

import "time"

// cycleChoices is the closed set of cycles-per-day values the firmware
// accepts, ordered for nearest-match search (spec.md §4.4 "Cycle timing
// derivation").
var cycleChoices = []int{48, 24, 12, 6, 4, 3, 2, 1}

// NearestCyclesPerDay returns the element of {48,24,12,6,4,3,2,1} closest to
// c, breaking ties toward the larger value.
func NearestCyclesPerDay(c int) int {
	best := cycleChoices[0]
	bestDiff := abs(c - best)
	for _, candidate := range cycleChoices[1:] {
		diff := abs(c - candidate)
		if diff < bestDiff || (diff == bestDiff && candidate > best) {
			best = candidate
			bestDiff = diff
		}
	}
	return best
}

// CycleDurationTime converts a cycles-per-day value into the HH:MM:SS
// encoding the firmware expects: (24/c hours) as a clock duration, with the
// c=1 special case encoding 23:59:59 instead of 24:00:00.
func CycleDurationTime(c int) time.Time {
	c = NearestCyclesPerDay(c)
	if c == 1 {
		return time.Date(0, 1, 1, 23, 59, 59, 0, time.UTC)
	}
	totalSeconds := (24 * 3600) / c
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return time.Date(0, 1, 1, h, m, s, 0, time.UTC)
}

// DurationMinutesTime converts a duration-in-minutes value (d in [1,15])
// into the 00:MM:00 encoding the firmware expects.
func DurationMinutesTime(d int) (time.Time, error) {
	if d < 1 || d > 15 {
		return time.Time{}, ErrInvalidDuration
	}
	return time.Date(0, 1, 1, 0, d, 0, 0, time.UTC), nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
