package scoring

import (
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

// AvailableWorkMinutes sums the overlap between [start, end) and the working
// window of every calendar day it touches, evaluated in start's location.
func AvailableWorkMinutes(start, end time.Time, window model.Window) int {
	loc := start.Location()
	end = end.In(loc)
	if !start.Before(end) {
		return 0
	}

	var total time.Duration
	for cursor := start; cursor.Before(end); cursor = nextMidnight(cursor) {
		dayStart := window.Start.On(cursor)
		dayEnd := window.End.On(cursor)
		if !cursor.Before(dayEnd) {
			continue
		}
		from := cursor
		if from.Before(dayStart) {
			from = dayStart
		}
		to := dayEnd
		if sameDate(cursor, end) && end.Before(dayEnd) {
			to = end
		}
		if to.After(from) {
			total += to.Sub(from)
		}
	}
	return int(total / time.Minute)
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
