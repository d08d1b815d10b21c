package views

import (
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
)

const clockLayout = "3:04 PM"

func FromSchedule(s scheduler.Schedule, selectedID string) ScheduleData {
	out := ScheduleData{
		Date:         s.Date.Format("Mon 2006-01-02"),
		WorkingHours: s.WorkingHours.Start + "-" + s.WorkingHours.End,
		Slots:        make([]SlotRow, 0, len(s.Slots)),
		Unscheduled:  make([]UnscheduledRow, 0, len(s.Unscheduled)),
		SelectedID:   selectedID,
		Stats: StatsData{
			Scheduled:   s.Stats.ScheduledTasks,
			Unscheduled: s.Stats.UnscheduledTasks,
			Minutes:     s.Stats.ScheduledMinutes,
			DeepMinutes: s.Stats.DeepFocusMinutes,
			Utilization: s.Stats.UtilizationPercent,
		},
	}
	for _, slot := range s.Slots {
		out.Slots = append(out.Slots, SlotRow{
			ID:    slot.Task.ID,
			Title: slot.Task.Title,
			Start: slot.Start.Format(clockLayout),
			End:   slot.End.Format(clockLayout),
			Score: slot.Scores.Final,
			Deep:  slot.Task.IsDeepFocus(),
			Fixed: slot.Fixed,
		})
	}
	for _, u := range s.Unscheduled {
		out.Unscheduled = append(out.Unscheduled, UnscheduledRow{
			ID:     u.Task.ID,
			Title:  u.Task.Title,
			Score:  u.Scores.Final,
			Reason: u.Reason,
		})
	}
	return out
}

func FromChanges(changes []scheduler.Change) []ChangeRow {
	out := make([]ChangeRow, 0, len(changes))
	for _, c := range changes {
		out = append(out, ChangeRow{Kind: string(c.Type), Title: c.Title, Detail: c.Explanation})
	}
	return out
}

func DetailFrom(task model.Task, explanation string) DetailData {
	return DetailData{
		ID:          task.ID,
		Title:       task.Title,
		Priority:    string(task.Priority),
		Energy:      string(task.Energy),
		Flexibility: string(task.Flexibility),
		Deadline:    task.Deadline.Format("Mon Jan 2 3:04 PM"),
		Explanation: explanation,
	}
}
