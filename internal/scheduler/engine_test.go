package scheduler

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/dayplan/internal/model"
)

// Monday 2026-02-09, 08:00 UTC.
var now = time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func newTestEngine() *Engine {
	return NewEngine(WithClock(fixedClock))
}

func prefs(buffer, deepFocus int) model.Preferences {
	return model.Preferences{
		WorkingHours:        model.WorkingHours{Start: "09:00", End: "17:00"},
		MaxDeepFocusMinutes: deepFocus,
		BufferMinutes:       buffer,
	}
}

func movable(id string, minutes int, priority model.Priority, deadline time.Time) model.Task {
	return model.Task{
		ID:                id,
		Title:             "task " + id,
		EstimatedDuration: minutes,
		Deadline:          deadline,
		Priority:          priority,
		Flexibility:       model.FlexibilityMovable,
		Energy:            model.EnergyLowFocus,
	}
}

func fixedAt(id string, start, end time.Time) model.Task {
	t := movable(id, int(end.Sub(start).Minutes()), model.PriorityMedium, end.Add(24*time.Hour))
	t.Flexibility = model.FlexibilityFixed
	t.ScheduledStart = &start
	t.ScheduledEnd = &end
	return t
}

func clock(hour, minute int) time.Time {
	return time.Date(2026, 2, 9, hour, minute, 0, 0, time.UTC)
}

func TestGenerateMovableBeforeFixedBlock(t *testing.T) {
	tasks := []model.Task{
		fixedAt("meeting", clock(10, 0), clock(11, 0)),
		movable("write", 30, model.PriorityHigh, now.Add(24*time.Hour)),
	}
	s, err := newTestEngine().GenerateDaily(tasks, prefs(15, 240), now)
	require.NoError(t, err)
	require.Len(t, s.Slots, 2)
	require.Empty(t, s.Unscheduled)

	write, ok := s.SlotFor("write")
	require.True(t, ok)
	assert.Equal(t, clock(9, 0), write.Start)
	assert.Equal(t, clock(9, 30), write.End)
	assert.False(t, write.Fixed)

	assert.Equal(t, "write", s.Slots[0].Task.ID)
	assert.Equal(t, "meeting", s.Slots[1].Task.ID)
	assert.True(t, s.Slots[1].Fixed)
}

func TestGenerateDeepFocusCapacity(t *testing.T) {
	a := movable("a", 60, model.PriorityHigh, now.Add(48*time.Hour))
	a.Energy = model.EnergyDeepFocus
	b := movable("b", 60, model.PriorityMedium, now.Add(48*time.Hour))
	b.Energy = model.EnergyDeepFocus

	s, err := newTestEngine().GenerateDaily([]model.Task{a, b}, prefs(0, 60), now)
	require.NoError(t, err)
	require.Len(t, s.Slots, 1)
	assert.Equal(t, "a", s.Slots[0].Task.ID)
	require.Len(t, s.Unscheduled, 1)
	assert.Equal(t, "b", s.Unscheduled[0].Task.ID)
	assert.Equal(t, ReasonDeepFocusCapacity, s.Unscheduled[0].Reason)
	assert.Equal(t, 60, s.Stats.DeepFocusMinutes)
}

func TestGenerateOverflowReportsNoSlot(t *testing.T) {
	tasks := make([]model.Task, 0, 9)
	for i := 0; i < 9; i++ {
		tasks = append(tasks, movable(fmt.Sprintf("t%d", i), 60, model.PriorityMedium, now.Add(72*time.Hour)))
	}
	s, err := newTestEngine().GenerateDaily(tasks, prefs(0, 240), now)
	require.NoError(t, err)
	assert.Len(t, s.Slots, 8)
	require.Len(t, s.Unscheduled, 1)
	assert.Equal(t, ReasonNoSlot, s.Unscheduled[0].Reason)
	assert.Equal(t, 100, s.Stats.UtilizationPercent)
	assert.Equal(t, 480, s.Stats.ScheduledMinutes)
	assert.Equal(t, 9, s.Stats.TotalTasks)
}

func TestGenerateCursorStaysAtWorkStart(t *testing.T) {
	// The long task cannot fit before the fixed block, so it lands after it.
	// The shorter, lower-scored task still gets the gap at the start of the day.
	long := movable("long", 60, model.PriorityHigh, now.Add(24*time.Hour))
	short := movable("short", 30, model.PriorityLow, now.Add(7*24*time.Hour))
	tasks := []model.Task{short, long, fixedAt("standup", clock(9, 45), clock(10, 45))}

	s, err := newTestEngine().GenerateDaily(tasks, prefs(0, 240), now)
	require.NoError(t, err)

	longSlot, ok := s.SlotFor("long")
	require.True(t, ok)
	assert.Equal(t, clock(10, 45), longSlot.Start)

	shortSlot, ok := s.SlotFor("short")
	require.True(t, ok)
	assert.Equal(t, clock(9, 0), shortSlot.Start)
	assert.Greater(t, longSlot.Scores.Final, shortSlot.Scores.Final)
}

func TestGenerateTieBreakPrefersEarlierDeadline(t *testing.T) {
	later := movable("later", 30, model.PriorityLow, now.Add(40*24*time.Hour))
	sooner := movable("sooner", 30, model.PriorityLow, now.Add(30*24*time.Hour))

	s, err := newTestEngine().GenerateDaily([]model.Task{later, sooner}, prefs(0, 240), now)
	require.NoError(t, err)
	require.Len(t, s.Slots, 2)
	require.Equal(t, s.Slots[0].Scores.Final, s.Slots[1].Scores.Final)
	assert.Equal(t, "sooner", s.Slots[0].Task.ID)
	assert.Equal(t, "later", s.Slots[1].Task.ID)
}

func TestGenerateFiltersIneligibleTasks(t *testing.T) {
	done := movable("done", 30, model.PriorityHigh, now.Add(24*time.Hour))
	done.IsCompleted = true
	expired := movable("expired", 30, model.PriorityHigh, now.Add(-24*time.Hour))
	tomorrow := fixedAt("tomorrow", clock(10, 0).Add(24*time.Hour), clock(11, 0).Add(24*time.Hour))
	unassigned := movable("unassigned", 30, model.PriorityLow, now.Add(24*time.Hour))
	unassigned.Flexibility = model.FlexibilityFixed
	// Deadline earlier today still counts: it has not passed before the day began.
	earlier := movable("earlier", 30, model.PriorityLow, clock(7, 0))

	s, err := newTestEngine().GenerateDaily([]model.Task{done, expired, tomorrow, unassigned, earlier}, prefs(0, 240), now)
	require.NoError(t, err)

	require.Len(t, s.Slots, 1)
	assert.Equal(t, "earlier", s.Slots[0].Task.ID)
	assert.Equal(t, 100, s.Slots[0].Scores.Urgency)
	require.Len(t, s.Unscheduled, 1)
	assert.Equal(t, "unassigned", s.Unscheduled[0].Task.ID)
	assert.Equal(t, ReasonFixedUnassigned, s.Unscheduled[0].Reason)
}

func TestGenerateRejectsInvalidPreferences(t *testing.T) {
	p := prefs(15, 240)
	p.WorkingHours = model.WorkingHours{Start: "17:00", End: "09:00"}
	_, err := newTestEngine().GenerateDaily(nil, p, now)
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.True(t, errors.Is(err, model.ErrInvalidPreferences))
}

func TestGeneratePlacedTaskCarriesPlacement(t *testing.T) {
	s, err := newTestEngine().GenerateDaily([]model.Task{movable("a", 45, model.PriorityHigh, now.Add(24*time.Hour))}, prefs(10, 240), now)
	require.NoError(t, err)
	require.Len(t, s.Slots, 1)
	slot := s.Slots[0]
	require.NotNil(t, slot.Task.ScheduledStart)
	require.NotNil(t, slot.Task.Scores)
	assert.Equal(t, slot.Start, *slot.Task.ScheduledStart)
	assert.Equal(t, slot.End, *slot.Task.ScheduledEnd)
	assert.Equal(t, slot.Scores, *slot.Task.Scores)
	assert.Equal(t, Explain(slot.Task, slot.Scores, slot.Start, slot.End), slot.Explanation)
}

func TestGenerateProperties(t *testing.T) {
	priorities := []model.Priority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh}
	durations := []int{15, 25, 45, 60, 90, 120}

	for buffer := 0; buffer <= 30; buffer += 15 {
		tasks := []model.Task{
			fixedAt("fixed-1", clock(11, 0), clock(11, 45)),
			fixedAt("fixed-2", clock(14, 30), clock(15, 0)),
		}
		for i := 0; i < 14; i++ {
			tk := movable(fmt.Sprintf("m%02d", i), durations[i%len(durations)], priorities[i%3], now.Add(time.Duration(4+i*7)*time.Hour))
			if i%3 == 0 {
				tk.Energy = model.EnergyDeepFocus
			}
			tasks = append(tasks, tk)
		}
		p := prefs(buffer, 120)

		s, err := newTestEngine().GenerateDaily(tasks, p, now)
		require.NoError(t, err)

		again, err := newTestEngine().GenerateDaily(tasks, p, now)
		require.NoError(t, err)
		require.Equal(t, s, again, "generation must be deterministic")

		// Conservation.
		seen := map[string]int{}
		for _, slot := range s.Slots {
			seen[slot.Task.ID]++
		}
		for _, u := range s.Unscheduled {
			seen[u.Task.ID]++
		}
		require.Len(t, seen, len(tasks))
		for id, n := range seen {
			require.Equal(t, 1, n, "task %s", id)
		}

		// No double booking, buffer included.
		for i := range s.Slots {
			for j := i + 1; j < len(s.Slots); j++ {
				a, b := s.Slots[i], s.Slots[j]
				gapOK := !a.End.Add(time.Duration(buffer)*time.Minute).After(b.Start) ||
					!b.End.Add(time.Duration(buffer)*time.Minute).After(a.Start)
				require.True(t, gapOK, "buffer %d: %s [%s-%s] overlaps %s [%s-%s]", buffer,
					a.Task.ID, a.Start.Format("15:04"), a.End.Format("15:04"),
					b.Task.ID, b.Start.Format("15:04"), b.End.Format("15:04"))
			}
		}

		// Movable slots sit inside working hours; output sorted by start.
		deep := 0
		for i, slot := range s.Slots {
			if i > 0 {
				require.False(t, slot.Start.Before(s.Slots[i-1].Start))
			}
			if slot.Task.IsDeepFocus() {
				deep += slot.Task.EstimatedDuration
			}
			if slot.Fixed {
				continue
			}
			require.False(t, slot.Start.Before(clock(9, 0)))
			require.False(t, slot.End.After(clock(17, 0)))
		}
		require.LessOrEqual(t, deep, p.MaxDeepFocusMinutes)

		want := int(math.Round(float64(s.Stats.ScheduledMinutes) / 480 * 100))
		require.Equal(t, want, s.Stats.UtilizationPercent)
		require.Equal(t, len(s.Slots), s.Stats.ScheduledTasks)
		require.Equal(t, len(s.Unscheduled), s.Stats.UnscheduledTasks)
	}
}
