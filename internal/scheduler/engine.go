// Package scheduler places a day's pending tasks into working hours with a
// single greedy pass and explains each placement.
package scheduler

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scoring"
)

type Engine struct {
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Engine)

// WithClock sets the source of "now" used for scoring.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes a task's scores against the engine clock.
func (e *Engine) Score(task model.Task, prefs model.Preferences) (model.ScoreSet, error) {
	window, err := prefs.Window()
	if err != nil {
		return model.ScoreSet{}, err
	}
	return scoring.All(task, e.now(), window), nil
}

type scoredTask struct {
	task   model.Task
	scores model.ScoreSet
}

// GenerateDaily builds the schedule for date's calendar day in date's location.
// Only malformed preferences produce an error; every eligible task ends up in
// exactly one of Slots or Unscheduled.
func (e *Engine) GenerateDaily(tasks []model.Task, prefs model.Preferences, date time.Time) (Schedule, error) {
	window, err := prefs.Window()
	if err != nil {
		return Schedule{}, err
	}
	now := e.now()
	day := startOfDay(date)

	var fixed, movable []scoredTask
	for _, task := range tasks {
		if !eligible(task, day) {
			continue
		}
		st := scoredTask{task: task, scores: scoring.All(task, now, window)}
		if task.IsFixed() {
			fixed = append(fixed, st)
		} else {
			movable = append(movable, st)
		}
	}

	sort.SliceStable(movable, func(i, j int) bool {
		a, b := movable[i], movable[j]
		if a.scores.Final != b.scores.Final {
			return a.scores.Final > b.scores.Final
		}
		return a.task.Deadline.Before(b.task.Deadline)
	})

	b := &dayBuilder{
		day:    day,
		window: window,
		prefs:  prefs,
		logger: e.logger,
		schedule: Schedule{
			Date:         day,
			WorkingHours: prefs.WorkingHours,
			Slots:        make([]Slot, 0, len(fixed)+len(movable)),
			Unscheduled:  make([]Unscheduled, 0),
		},
	}
	for _, st := range fixed {
		b.placeFixed(st)
	}

	// The search always starts at the beginning of the working day. Placements
	// do not move the cursor; later tasks are pushed past earlier ones only by
	// the occupied intervals the slot finder checks against.
	cursor := int(window.Start)
	for _, st := range movable {
		b.placeMovable(st, cursor)
	}

	return b.finish(), nil
}

// eligible reports whether task takes part in day's placement pass: it is
// open, its deadline has not passed before the day begins, and a fixed task's
// assigned time (when present) falls on day.
func eligible(task model.Task, day time.Time) bool {
	if task.IsCompleted || task.Deadline.Before(day) {
		return false
	}
	if task.IsFixed() && task.HasAssignedTime() {
		return sameDate(task.ScheduledStart.In(day.Location()), day)
	}
	return true
}

type dayBuilder struct {
	day      time.Time
	window   model.Window
	prefs    model.Preferences
	logger   *slog.Logger
	occupied []Interval
	deepUsed int
	schedule Schedule
}

func (b *dayBuilder) placeFixed(st scoredTask) {
	if !st.task.HasAssignedTime() {
		b.skip(st, ReasonFixedUnassigned)
		return
	}
	start := st.task.ScheduledStart.In(b.day.Location())
	end := st.task.ScheduledEnd.In(b.day.Location())
	iv := Interval{Start: minuteOfDay(start), End: minuteOfDay(end)}
	if !sameDate(end, b.day) {
		iv.End = 24 * 60
	}
	b.occupied = append(b.occupied, iv)
	if st.task.IsDeepFocus() {
		b.deepUsed += st.task.EstimatedDuration
	}
	b.add(st, start, end, iv.Minutes(), true)
}

func (b *dayBuilder) placeMovable(st scoredTask, cursor int) {
	duration := st.task.EstimatedDuration
	if st.task.IsDeepFocus() && b.deepUsed+duration > b.prefs.MaxDeepFocusMinutes {
		b.skip(st, ReasonDeepFocusCapacity)
		return
	}
	iv, ok := FindSlot(cursor, int(b.window.End), duration, b.prefs.BufferMinutes, b.occupied)
	if !ok {
		b.skip(st, ReasonNoSlot)
		return
	}
	b.occupied = append(b.occupied, iv)
	if st.task.IsDeepFocus() {
		b.deepUsed += duration
	}
	b.add(st, atMinute(b.day, iv.Start), atMinute(b.day, iv.End), duration, false)
}

func (b *dayBuilder) add(st scoredTask, start, end time.Time, minutes int, fixed bool) {
	task := st.task
	scores := st.scores
	task.ScheduledStart = &start
	task.ScheduledEnd = &end
	task.Scores = &scores

	b.schedule.Slots = append(b.schedule.Slots, Slot{
		Task:        task,
		Start:       start,
		End:         end,
		Scores:      scores,
		Explanation: Explain(task, scores, start, end),
		Fixed:       fixed,
	})
	b.schedule.Stats.ScheduledMinutes += minutes
	if task.IsDeepFocus() {
		b.schedule.Stats.DeepFocusMinutes += task.EstimatedDuration
	}
	b.logger.Debug("task placed",
		"task_id", task.ID,
		"start", start.Format("15:04"),
		"end", end.Format("15:04"),
		"final_score", scores.Final,
		"fixed", fixed,
	)
}

func (b *dayBuilder) skip(st scoredTask, reason string) {
	b.schedule.Unscheduled = append(b.schedule.Unscheduled, Unscheduled{
		Task:   st.task,
		Scores: st.scores,
		Reason: reason,
	})
	b.logger.Debug("task unscheduled", "task_id", st.task.ID, "reason", reason)
}

func (b *dayBuilder) finish() Schedule {
	s := b.schedule
	sort.SliceStable(s.Slots, func(i, j int) bool {
		return s.Slots[i].Start.Before(s.Slots[j].Start)
	})
	s.Stats.ScheduledTasks = len(s.Slots)
	s.Stats.UnscheduledTasks = len(s.Unscheduled)
	s.Stats.TotalTasks = s.Stats.ScheduledTasks + s.Stats.UnscheduledTasks
	s.Stats.WorkingMinutes = b.window.Minutes()
	s.Stats.UtilizationPercent = int(math.Round(float64(s.Stats.ScheduledMinutes) / float64(s.Stats.WorkingMinutes) * 100))
	b.logger.Debug("schedule generated",
		"date", s.Date.Format("2006-01-02"),
		"scheduled", s.Stats.ScheduledTasks,
		"unscheduled", s.Stats.UnscheduledTasks,
		"utilization_pct", s.Stats.UtilizationPercent,
	)
	return s
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func atMinute(day time.Time, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, minute, 0, 0, day.Location())
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
