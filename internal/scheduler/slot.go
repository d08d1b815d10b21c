package scheduler

// Interval is a half-open span of minutes after midnight on the target day.
type Interval struct {
	Start int
	End   int
}

func (i Interval) Minutes() int {
	return i.End - i.Start
}

// FindSlot returns the earliest interval of length duration starting at or
// after earliestStart and ending by latestEnd that keeps at least buffer
// minutes clear of every occupied interval. On a conflict the candidate jumps
// past the conflicting interval (plus buffer) and all intervals are checked
// again, so occupied may be in any order.
func FindSlot(earliestStart, latestEnd, duration, buffer int, occupied []Interval) (Interval, bool) {
	if duration <= 0 {
		return Interval{}, false
	}
	start := earliestStart
	for start+duration <= latestEnd {
		candidate := Interval{Start: start, End: start + duration}
		conflict, ok := firstConflict(candidate, buffer, occupied)
		if !ok {
			return candidate, true
		}
		start = conflict.End + buffer
	}
	return Interval{}, false
}

func firstConflict(candidate Interval, buffer int, occupied []Interval) (Interval, bool) {
	for _, iv := range occupied {
		if candidate.Start < iv.End+buffer && candidate.End > iv.Start-buffer {
			return iv, true
		}
	}
	return Interval{}, false
}
