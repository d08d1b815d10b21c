package planner

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/storage"
)

// Monday 2026-02-09, 08:00 UTC.
var now = time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)

func clock(hour, minute int) time.Time {
	return time.Date(2026, 2, 9, hour, minute, 0, 0, time.UTC)
}

func setup(t *testing.T, opts ...Option) (*Service, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	fixed := func() time.Time { return now }
	engine := scheduler.NewEngine(scheduler.WithClock(fixed))
	opts = append([]Option{WithClock(fixed), WithLocation(time.UTC)}, opts...)
	return NewService(repo, engine, opts...), repo
}

func add(t *testing.T, svc *Service, in NewTask) model.Task {
	t.Helper()
	task, err := svc.AddTask(context.Background(), in)
	require.NoError(t, err)
	return task
}

func TestAddTaskAppliesDefaults(t *testing.T) {
	svc, _ := setup(t)
	task := add(t, svc, NewTask{Title: "  Draft memo ", EstimatedDuration: 30, Deadline: now.Add(24 * time.Hour)})

	_, err := uuid.Parse(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft memo", task.Title)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, model.FlexibilityMovable, task.Flexibility)
	assert.Equal(t, model.EnergyLowFocus, task.Energy)

	stored, err := svc.Task(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, stored.Deadline.Equal(task.Deadline))
}

func TestAddTaskRejectsInvalidInput(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.AddTask(ctx, NewTask{Title: "tiny", EstimatedDuration: 3, Deadline: now})
	assert.ErrorIs(t, err, model.ErrInvalidTask)

	_, err = svc.AddTask(ctx, NewTask{Title: "meeting", EstimatedDuration: 30, Deadline: now, Flexibility: model.FlexibilityFixed})
	assert.Error(t, err)

	_, err = svc.AddTask(ctx, NewTask{Title: "x", EstimatedDuration: 30, Deadline: now, Priority: "urgent"})
	assert.ErrorIs(t, err, model.ErrInvalidPriority)

	tasks, err := svc.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestPlanPersistsPlacementsAndScores(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	start, end := clock(10, 0), clock(11, 0)
	meeting := add(t, svc, NewTask{
		Title: "Meeting", EstimatedDuration: 60, Deadline: end,
		Flexibility: model.FlexibilityFixed, ScheduledStart: &start, ScheduledEnd: &end,
	})
	write := add(t, svc, NewTask{Title: "Write", EstimatedDuration: 30, Deadline: now.Add(24 * time.Hour), Priority: model.PriorityHigh})

	schedule, err := svc.Plan(ctx, now)
	require.NoError(t, err)
	require.Len(t, schedule.Slots, 2)

	stored, err := svc.Task(ctx, write.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ScheduledStart)
	assert.Equal(t, clock(9, 0), *stored.ScheduledStart)
	assert.Equal(t, clock(9, 30), *stored.ScheduledEnd)
	require.NotNil(t, stored.Scores)
	slot, ok := schedule.SlotFor(write.ID)
	require.True(t, ok)
	assert.Equal(t, slot.Scores, *stored.Scores)

	fixed, err := svc.Task(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, start, *fixed.ScheduledStart)
	assert.NotNil(t, fixed.Scores)
}

func TestPlanClearsStalePlacement(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	require.NoError(t, svc.SavePreferences(ctx, model.Preferences{
		WorkingHours:        model.WorkingHours{Start: "09:00", End: "17:00"},
		MaxDeepFocusMinutes: 30,
	}))
	deep := add(t, svc, NewTask{Title: "Deep", EstimatedDuration: 60, Deadline: now.Add(48 * time.Hour), Energy: model.EnergyDeepFocus})
	require.NoError(t, repo.SavePlacement(ctx, storage.Placement{TaskID: deep.ID, Start: clock(9, 0), End: clock(10, 0)}))

	schedule, err := svc.Plan(ctx, now)
	require.NoError(t, err)
	u, ok := schedule.UnscheduledFor(deep.ID)
	require.True(t, ok)
	assert.Equal(t, scheduler.ReasonDeepFocusCapacity, u.Reason)

	stored, err := svc.Task(ctx, deep.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ScheduledStart)
	assert.NotNil(t, stored.Scores)
}

func TestCompleteRemovesTaskFromPlan(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	a := add(t, svc, NewTask{Title: "A", EstimatedDuration: 30, Deadline: now.Add(24 * time.Hour)})
	b := add(t, svc, NewTask{Title: "B", EstimatedDuration: 30, Deadline: now.Add(48 * time.Hour)})

	schedule, err := svc.Complete(ctx, a.ID, now)
	require.NoError(t, err)
	require.Len(t, schedule.Slots, 1)
	assert.Equal(t, b.ID, schedule.Slots[0].Task.ID)

	done, err := svc.Task(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)

	_, err = svc.Complete(ctx, "missing", now)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecordOverrun(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	task := add(t, svc, NewTask{Title: "Over", EstimatedDuration: 30, Deadline: now.Add(24 * time.Hour), Priority: model.PriorityHigh})
	_, err := svc.Plan(ctx, now)
	require.NoError(t, err)

	res, err := svc.RecordOverrun(ctx, task.ID, 45, now)
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, scheduler.ChangeOverrun, res.Changes[0].Type)
	assert.Equal(t, 15, res.Changes[0].OverrunMinutes)
	assert.Equal(t, "Schedule regenerated with 1 change", res.Summary)

	stored, err := svc.Task(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ActualDuration)
	assert.Equal(t, 45, *stored.ActualDuration)

	_, err = svc.RecordOverrun(ctx, task.ID, 0, now)
	assert.ErrorIs(t, err, ErrInvalidActual)
	_, err = svc.RecordOverrun(ctx, "missing", 10, now)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestExplain(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, svc.SavePreferences(ctx, model.Preferences{
		WorkingHours:        model.WorkingHours{Start: "09:00", End: "17:00"},
		MaxDeepFocusMinutes: 30,
	}))
	placed := add(t, svc, NewTask{Title: "Placed", EstimatedDuration: 30, Deadline: now.Add(24 * time.Hour)})
	deep := add(t, svc, NewTask{Title: "Deep", EstimatedDuration: 60, Deadline: now.Add(24 * time.Hour), Energy: model.EnergyDeepFocus})

	got, err := svc.Explain(ctx, placed.ID, now)
	require.NoError(t, err)
	assert.Contains(t, got, "Scheduled 9:00 AM - 9:30 AM")

	got, err = svc.Explain(ctx, deep.ID, now)
	require.NoError(t, err)
	assert.Contains(t, got, "Not scheduled: "+scheduler.ReasonDeepFocusCapacity)

	_, err = svc.Explain(ctx, "missing", now)
	assert.ErrorIs(t, err, ErrNotScheduled)
}

func TestPreferencesFallBackToDefaults(t *testing.T) {
	custom := model.Preferences{
		WorkingHours:        model.WorkingHours{Start: "08:00", End: "12:00"},
		MaxDeepFocusMinutes: 60,
		BufferMinutes:       5,
	}
	svc, _ := setup(t, WithDefaults(custom))
	ctx := context.Background()

	got, err := svc.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	bad := custom
	bad.WorkingHours.End = "07:00"
	assert.ErrorIs(t, svc.SavePreferences(ctx, bad), model.ErrInvalidPreferences)

	stored := model.DefaultPreferences()
	require.NoError(t, svc.SavePreferences(ctx, stored))
	got, err = svc.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}
