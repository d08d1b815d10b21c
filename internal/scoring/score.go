// Package scoring computes the urgency, importance and risk scores that order
// movable tasks for placement. Every function is pure: the caller supplies now.
package scoring

import (
	"math"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

const (
	UrgencyWeight    = 0.40
	ImportanceWeight = 0.35
	RiskWeight       = 0.25
)

// Urgency measures deadline pressure relative to the task's estimate.
func Urgency(task model.Task, now time.Time) int {
	remaining := minutesUntil(task.Deadline, now)
	if remaining <= 0 {
		return 100
	}
	ratio := float64(task.EstimatedDuration) / remaining

	var score float64
	switch {
	case ratio >= 1:
		score = 100
	case ratio >= 0.5:
		score = 80 + (ratio-0.5)*40
	case ratio >= 0.25:
		score = 50 + (ratio-0.25)*120
	case ratio >= 0.10:
		score = 20 + (ratio-0.10)*200
	default:
		score = ratio * 200
	}
	return normalize(score)
}

// Importance combines priority (0/30/60), a fixed-time bonus and a deep-focus bonus.
func Importance(task model.Task) int {
	score := float64(task.Priority.Value()-1) / 2 * 60
	if task.IsFixed() {
		score += 30
	}
	if task.IsDeepFocus() {
		score += 10
	}
	return normalize(score)
}

// Risk estimates how likely a delay is to miss the deadline given the working
// time left before it.
func Risk(task model.Task, now time.Time, window model.Window) int {
	remaining := minutesUntil(task.Deadline, now)
	estimate := float64(task.EstimatedDuration)
	if remaining <= 0 || remaining < estimate {
		return 100
	}
	available := float64(AvailableWorkMinutes(now, task.Deadline, window))
	if available < estimate {
		return 100
	}
	if estimate <= 0 {
		return 0
	}

	buffer := (available - estimate) / estimate
	var score float64
	switch {
	case buffer < 0.5:
		score = 100 - buffer*60
	case buffer < 1:
		score = 70 - (buffer-0.5)*60
	case buffer < 2:
		score = 40 - (buffer-1)*20
	default:
		score = math.Max(0, 20-(buffer-2)*10)
	}
	if task.IsFixed() {
		score += 10
	}
	return normalize(score)
}

// Final weighs already-computed sub-scores 40/35/25.
func Final(urgency, importance, risk int) int {
	return normalize(float64(urgency)*UrgencyWeight +
		float64(importance)*ImportanceWeight +
		float64(risk)*RiskWeight)
}

func All(task model.Task, now time.Time, window model.Window) model.ScoreSet {
	u := Urgency(task, now)
	i := Importance(task)
	r := Risk(task, now, window)
	return model.ScoreSet{Urgency: u, Importance: i, Risk: r, Final: Final(u, i, r)}
}

func minutesUntil(deadline, now time.Time) float64 {
	return math.Max(0, deadline.Sub(now).Minutes())
}

func normalize(score float64) int {
	return int(math.Round(math.Min(100, math.Max(0, score))))
}
