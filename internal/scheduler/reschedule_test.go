package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/dayplan/internal/model"
)

func placedAt(t model.Task, start time.Time) model.Task {
	end := start.Add(time.Duration(t.EstimatedDuration) * time.Minute)
	t.ScheduledStart = &start
	t.ScheduledEnd = &end
	return t
}

func intPtr(v int) *int { return &v }

func TestRescheduleReportsOverrunAndPlacementDiff(t *testing.T) {
	over := placedAt(movable("over", 30, model.PriorityHigh, now.Add(24*time.Hour)), clock(9, 0))
	shift := placedAt(movable("shift", 60, model.PriorityMedium, now.Add(48*time.Hour)), clock(13, 0))
	fresh := movable("new", 30, model.PriorityLow, now.Add(72*time.Hour))
	deep := movable("deep", 300, model.PriorityMedium, now.Add(48*time.Hour))
	deep.Energy = model.EnergyDeepFocus
	deep = placedAt(deep, clock(14, 0))

	res, err := newTestEngine().Reschedule(
		[]model.Task{over, shift, fresh, deep},
		prefs(0, 240),
		Event{IncompleteTaskID: "over", ActualDuration: intPtr(45), Date: now},
	)
	require.NoError(t, err)
	require.Len(t, res.Changes, 4)

	assert.Equal(t, ChangeOverrun, res.Changes[0].Type)
	assert.Equal(t, "over", res.Changes[0].TaskID)
	assert.Equal(t, 15, res.Changes[0].OverrunMinutes)
	assert.Contains(t, res.Changes[0].Explanation, "15 minutes over")

	assert.Equal(t, ChangeMoved, res.Changes[1].Type)
	assert.Equal(t, "shift", res.Changes[1].TaskID)
	require.NotNil(t, res.Changes[1].From)
	require.NotNil(t, res.Changes[1].To)
	assert.Equal(t, clock(13, 0), *res.Changes[1].From)
	assert.Equal(t, clock(9, 30), *res.Changes[1].To)

	assert.Equal(t, ChangePlaced, res.Changes[2].Type)
	assert.Equal(t, "new", res.Changes[2].TaskID)
	assert.Equal(t, clock(10, 30), *res.Changes[2].To)

	assert.Equal(t, ChangeDropped, res.Changes[3].Type)
	assert.Equal(t, "deep", res.Changes[3].TaskID)
	assert.Contains(t, res.Changes[3].Explanation, ReasonDeepFocusCapacity)

	assert.Equal(t, "Schedule regenerated with 4 changes", res.Summary)
	assert.Len(t, res.Schedule.Slots, 3)
}

func TestRescheduleOverrunFallsBackToRecordedActual(t *testing.T) {
	task := movable("a", 30, model.PriorityLow, now.Add(24*time.Hour))
	task.ActualDuration = intPtr(50)

	res, err := newTestEngine().Reschedule([]model.Task{task}, prefs(0, 240), Event{IncompleteTaskID: "a", Date: now})
	require.NoError(t, err)
	require.NotEmpty(t, res.Changes)
	assert.Equal(t, ChangeOverrun, res.Changes[0].Type)
	assert.Equal(t, 20, res.Changes[0].OverrunMinutes)
}

func TestRescheduleNoOverrunWithinEstimate(t *testing.T) {
	task := placedAt(movable("a", 30, model.PriorityLow, now.Add(24*time.Hour)), clock(9, 0))

	res, err := newTestEngine().Reschedule([]model.Task{task}, prefs(0, 240), Event{IncompleteTaskID: "a", ActualDuration: intPtr(30), Date: now})
	require.NoError(t, err)
	assert.Empty(t, res.Changes)
	assert.Equal(t, "Schedule regenerated with no changes", res.Summary)
}

func TestRescheduleUnknownTaskAndSingleChange(t *testing.T) {
	task := movable("a", 30, model.PriorityLow, now.Add(24*time.Hour))
	res, err := newTestEngine().Reschedule([]model.Task{task}, prefs(0, 240), Event{IncompleteTaskID: "missing", ActualDuration: intPtr(90), Date: now})
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, ChangePlaced, res.Changes[0].Type)
	assert.Equal(t, "Schedule regenerated with 1 change", res.Summary)
}

func TestReschedulePropagatesValidationError(t *testing.T) {
	p := prefs(0, 240)
	p.BufferMinutes = 90
	_, err := newTestEngine().Reschedule(nil, p, Event{Date: now})
	assert.ErrorIs(t, err, model.ErrInvalidPreferences)
}
