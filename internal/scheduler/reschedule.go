package scheduler

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

type ChangeType string

const (
	ChangeOverrun ChangeType = "overrun"
	ChangeMoved   ChangeType = "moved"
	ChangePlaced  ChangeType = "placed"
	ChangeDropped ChangeType = "dropped"
)

type Change struct {
	Type           ChangeType `json:"type"`
	TaskID         string     `json:"taskId"`
	Title          string     `json:"title"`
	OverrunMinutes int        `json:"overrunMinutes,omitempty"`
	From           *time.Time `json:"from,omitempty"`
	To             *time.Time `json:"to,omitempty"`
	Explanation    string     `json:"explanation"`
}

// Event describes what triggered a reschedule. ActualDuration overrides the
// task's recorded ActualDuration when set.
type Event struct {
	IncompleteTaskID string
	ActualDuration   *int
	Date             time.Time
}

type Rescheduled struct {
	Schedule Schedule `json:"schedule"`
	Changes  []Change `json:"changes"`
	Summary  string   `json:"summary"`
}

// Reschedule regenerates ev.Date from scratch and reports an overrun for the
// triggering task plus every movable placement that differs from the tasks'
// previously assigned times on that day.
func (e *Engine) Reschedule(tasks []model.Task, prefs model.Preferences, ev Event) (Rescheduled, error) {
	schedule, err := e.GenerateDaily(tasks, prefs, ev.Date)
	if err != nil {
		return Rescheduled{}, err
	}

	changes := make([]Change, 0)
	if c, ok := overrunChange(tasks, ev); ok {
		changes = append(changes, c)
	}
	changes = append(changes, diffPlacements(tasks, schedule)...)

	e.logger.Debug("reschedule complete",
		"date", schedule.Date.Format("2006-01-02"),
		"trigger_task", ev.IncompleteTaskID,
		"changes", len(changes),
	)
	return Rescheduled{
		Schedule: schedule,
		Changes:  changes,
		Summary:  summarize(len(changes)),
	}, nil
}

func overrunChange(tasks []model.Task, ev Event) (Change, bool) {
	if ev.IncompleteTaskID == "" {
		return Change{}, false
	}
	for _, task := range tasks {
		if task.ID != ev.IncompleteTaskID {
			continue
		}
		actual := task.ActualDuration
		if ev.ActualDuration != nil {
			actual = ev.ActualDuration
		}
		if actual == nil {
			return Change{}, false
		}
		over := *actual - task.EstimatedDuration
		if over <= 0 {
			return Change{}, false
		}
		return Change{
			Type:           ChangeOverrun,
			TaskID:         task.ID,
			Title:          task.Title,
			OverrunMinutes: over,
			Explanation: fmt.Sprintf("%q took %d minutes against a %d minute estimate (%s over); the remaining day was re-planned",
				task.Title, *actual, task.EstimatedDuration, plural(over, "minute")),
		}, true
	}
	return Change{}, false
}

// diffPlacements compares each movable task's previous placement on the
// schedule's day with where the new schedule puts it.
func diffPlacements(tasks []model.Task, schedule Schedule) []Change {
	day := schedule.Date
	previous := make(map[string]time.Time)
	for _, task := range tasks {
		if task.IsFixed() || task.IsCompleted || task.ScheduledStart == nil {
			continue
		}
		if start := task.ScheduledStart.In(day.Location()); sameDate(start, day) {
			previous[task.ID] = start
		}
	}

	out := make([]Change, 0)
	for _, slot := range schedule.Slots {
		if slot.Fixed {
			continue
		}
		to := slot.Start
		from, had := previous[slot.Task.ID]
		switch {
		case !had:
			out = append(out, Change{
				Type:        ChangePlaced,
				TaskID:      slot.Task.ID,
				Title:       slot.Task.Title,
				To:          &to,
				Explanation: fmt.Sprintf("%q placed at %s", slot.Task.Title, to.Format(clockLayout)),
			})
		case !from.Equal(to):
			out = append(out, Change{
				Type:        ChangeMoved,
				TaskID:      slot.Task.ID,
				Title:       slot.Task.Title,
				From:        &from,
				To:          &to,
				Explanation: fmt.Sprintf("%q moved from %s to %s", slot.Task.Title, from.Format(clockLayout), to.Format(clockLayout)),
			})
		}
	}

	for _, task := range tasks {
		from, had := previous[task.ID]
		if !had {
			continue
		}
		if _, placed := schedule.SlotFor(task.ID); placed {
			continue
		}
		reason := "no longer eligible for this day"
		if u, ok := schedule.UnscheduledFor(task.ID); ok {
			reason = u.Reason
		}
		out = append(out, Change{
			Type:        ChangeDropped,
			TaskID:      task.ID,
			Title:       task.Title,
			From:        &from,
			Explanation: fmt.Sprintf("%q removed from %s: %s", task.Title, from.Format(clockLayout), reason),
		})
	}
	return out
}

func summarize(n int) string {
	if n == 0 {
		return "Schedule regenerated with no changes"
	}
	return "Schedule regenerated with " + plural(n, "change")
}
