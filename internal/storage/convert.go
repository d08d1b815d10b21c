package storage

import (
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

// TaskFromModel builds a row from a domain task. createdAt is only used by
// CreateTask; completedAt is set when the task is completed.
func TaskFromModel(in model.Task, createdAt time.Time, completedAt *time.Time) Task {
	out := Task{
		ID:                in.ID,
		Title:             in.Title,
		Description:       in.Description,
		EstimatedDuration: in.EstimatedDuration,
		Deadline:          in.Deadline,
		Priority:          string(in.Priority),
		Flexibility:       string(in.Flexibility),
		Energy:            string(in.Energy),
		IsCompleted:       in.IsCompleted,
		ActualDuration:    in.ActualDuration,
		ScheduledStart:    in.ScheduledStart,
		ScheduledEnd:      in.ScheduledEnd,
		CreatedAt:         createdAt,
		CompletedAt:       completedAt,
	}
	if in.Scores != nil {
		out.Scores = &Scores{
			Urgency:    in.Scores.Urgency,
			Importance: in.Scores.Importance,
			Risk:       in.Scores.Risk,
			Final:      in.Scores.Final,
		}
	}
	return out
}

// ToModel converts a row into a domain task with times in loc.
func (t Task) ToModel(loc *time.Location) model.Task {
	if loc == nil {
		loc = time.Local
	}
	out := model.Task{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		EstimatedDuration: t.EstimatedDuration,
		Deadline:          t.Deadline.In(loc),
		Priority:          model.Priority(t.Priority),
		Flexibility:       model.Flexibility(t.Flexibility),
		Energy:            model.Energy(t.Energy),
		IsCompleted:       t.IsCompleted,
		ActualDuration:    t.ActualDuration,
		ScheduledStart:    inLocation(t.ScheduledStart, loc),
		ScheduledEnd:      inLocation(t.ScheduledEnd, loc),
	}
	if t.Scores != nil {
		out.Scores = &model.ScoreSet{
			Urgency:    t.Scores.Urgency,
			Importance: t.Scores.Importance,
			Risk:       t.Scores.Risk,
			Final:      t.Scores.Final,
		}
	}
	return out
}

func PreferencesFromModel(in model.Preferences, updatedAt time.Time) Preferences {
	return Preferences{
		WorkStart:           in.WorkingHours.Start,
		WorkEnd:             in.WorkingHours.End,
		MaxDeepFocusMinutes: in.MaxDeepFocusMinutes,
		BufferMinutes:       in.BufferMinutes,
		UpdatedAt:           updatedAt,
	}
}

func (p Preferences) ToModel() model.Preferences {
	return model.Preferences{
		WorkingHours:        model.WorkingHours{Start: p.WorkStart, End: p.WorkEnd},
		MaxDeepFocusMinutes: p.MaxDeepFocusMinutes,
		BufferMinutes:       p.BufferMinutes,
	}
}

func inLocation(v *time.Time, loc *time.Location) *time.Time {
	if v == nil {
		return nil
	}
	out := v.In(loc)
	return &out
}
