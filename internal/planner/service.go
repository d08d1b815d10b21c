// Package planner connects the scheduling engine to persisted tasks. It loads
// open tasks and preferences, runs the engine and writes placements and score
// snapshots back.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
	"github.com/sandeepkv93/dayplan/internal/storage"
)

var (
	ErrInvalidActual = errors.New("planner: actual duration must be positive")
	ErrNotScheduled  = errors.New("planner: task is not part of the day's plan")
)

type Service struct {
	repo     storage.Repository
	engine   *scheduler.Engine
	defaults model.Preferences
	now      func() time.Time
	loc      *time.Location
	logger   *slog.Logger
}

type Option func(*Service)

// WithDefaults sets the preferences used when none are stored.
func WithDefaults(p model.Preferences) Option {
	return func(s *Service) { s.defaults = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone stored times are converted into.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(repo storage.Repository, engine *scheduler.Engine, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		engine:   engine,
		defaults: model.DefaultPreferences(),
		now:      time.Now,
		loc:      time.Local,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preferences returns the stored preferences, or the defaults when none exist.
func (s *Service) Preferences(ctx context.Context) (model.Preferences, error) {
	row, err := s.repo.GetPreferences(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return model.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return row.ToModel(), nil
}

func (s *Service) SavePreferences(ctx context.Context, p model.Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.SavePreferences(ctx, storage.PreferencesFromModel(p, s.now())); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Tasks returns every open task.
func (s *Service) Tasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.repo.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToModel(s.loc))
	}
	return out, nil
}

func (s *Service) Task(ctx context.Context, id string) (model.Task, error) {
	row, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %q: %w", id, err)
	}
	return row.ToModel(s.loc), nil
}

// Plan generates date's schedule and persists the result.
func (s *Service) Plan(ctx context.Context, date time.Time) (scheduler.Schedule, error) {
	tasks, prefs, err := s.load(ctx)
	if err != nil {
		return scheduler.Schedule{}, err
	}
	schedule, err := s.engine.GenerateDaily(tasks, prefs, date.In(s.loc))
	if err != nil {
		return scheduler.Schedule{}, err
	}
	if err := s.persist(ctx, tasks, schedule); err != nil {
		return scheduler.Schedule{}, err
	}
	s.logger.Info("plan generated",
		"date", schedule.Date.Format("2006-01-02"),
		"scheduled", schedule.Stats.ScheduledTasks,
		"unscheduled", schedule.Stats.UnscheduledTasks,
		"utilization_pct", schedule.Stats.UtilizationPercent,
	)
	return schedule, nil
}

// Complete marks a task done and re-plans date.
func (s *Service) Complete(ctx context.Context, id string, date time.Time) (scheduler.Schedule, error) {
	row, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return scheduler.Schedule{}, fmt.Errorf("get task %q: %w", id, err)
	}
	if !row.IsCompleted {
		completedAt := s.now()
		row.IsCompleted = true
		row.CompletedAt = &completedAt
		if err := s.repo.UpdateTask(ctx, row); err != nil {
			return scheduler.Schedule{}, fmt.Errorf("complete task %q: %w", id, err)
		}
		s.logger.Info("task completed", "task_id", id)
	}
	return s.Plan(ctx, date)
}

// RecordOverrun stores how long a task actually took and re-plans date
// around it.
func (s *Service) RecordOverrun(ctx context.Context, id string, actual int, date time.Time) (scheduler.Rescheduled, error) {
	if actual <= 0 {
		return scheduler.Rescheduled{}, fmt.Errorf("%w: %d", ErrInvalidActual, actual)
	}
	row, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return scheduler.Rescheduled{}, fmt.Errorf("get task %q: %w", id, err)
	}
	row.ActualDuration = &actual
	if err := s.repo.UpdateTask(ctx, row); err != nil {
		return scheduler.Rescheduled{}, fmt.Errorf("record actual duration for %q: %w", id, err)
	}

	tasks, prefs, err := s.load(ctx)
	if err != nil {
		return scheduler.Rescheduled{}, err
	}
	res, err := s.engine.Reschedule(tasks, prefs, scheduler.Event{
		IncompleteTaskID: id,
		ActualDuration:   &actual,
		Date:             date.In(s.loc),
	})
	if err != nil {
		return scheduler.Rescheduled{}, err
	}
	if err := s.persist(ctx, tasks, res.Schedule); err != nil {
		return scheduler.Rescheduled{}, err
	}
	s.logger.Info("schedule regenerated", "task_id", id, "actual_minutes", actual, "changes", len(res.Changes))
	return res, nil
}

// Explain returns why a task was or was not placed on date.
func (s *Service) Explain(ctx context.Context, id string, date time.Time) (string, error) {
	tasks, prefs, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	schedule, err := s.engine.GenerateDaily(tasks, prefs, date.In(s.loc))
	if err != nil {
		return "", err
	}
	if slot, ok := schedule.SlotFor(id); ok {
		return slot.Explanation, nil
	}
	if u, ok := schedule.UnscheduledFor(id); ok {
		return fmt.Sprintf("Not scheduled: %s. Score %d/100 (urgency %d, importance %d, risk %d)",
			u.Reason, u.Scores.Final, u.Scores.Urgency, u.Scores.Importance, u.Scores.Risk), nil
	}
	return "", fmt.Errorf("%w: %q", ErrNotScheduled, id)
}

// NewTask carries the user supplied fields of a task. Empty enums take the
// movable, low-focus, medium-priority defaults.
type NewTask struct {
	Title             string
	Description       string
	EstimatedDuration int
	Deadline          time.Time
	Priority          model.Priority
	Flexibility       model.Flexibility
	Energy            model.Energy
	ScheduledStart    *time.Time
	ScheduledEnd      *time.Time
}

func (s *Service) AddTask(ctx context.Context, in NewTask) (model.Task, error) {
	task := model.Task{
		ID:                uuid.NewString(),
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		EstimatedDuration: in.EstimatedDuration,
		Deadline:          in.Deadline,
		Priority:          in.Priority,
		Flexibility:       in.Flexibility,
		Energy:            in.Energy,
		ScheduledStart:    in.ScheduledStart,
		ScheduledEnd:      in.ScheduledEnd,
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.Flexibility == "" {
		task.Flexibility = model.FlexibilityMovable
	}
	if task.Energy == "" {
		task.Energy = model.EnergyLowFocus
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, storage.TaskFromModel(task, s.now(), nil)); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.logger.Info("task added", "task_id", task.ID, "minutes", task.EstimatedDuration, "flexibility", task.Flexibility)
	return task, nil
}

func (s *Service) load(ctx context.Context) ([]model.Task, model.Preferences, error) {
	prefs, err := s.Preferences(ctx)
	if err != nil {
		return nil, model.Preferences{}, err
	}
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return nil, model.Preferences{}, err
	}
	return tasks, prefs, nil
}

// persist writes movable placements and score snapshots. A movable task that
// was placed on the schedule's day but is now unscheduled loses its placement.
func (s *Service) persist(ctx context.Context, tasks []model.Task, schedule scheduler.Schedule) error {
	scoredAt := s.now()
	for _, slot := range schedule.Slots {
		if err := s.repo.SaveScores(ctx, slot.Task.ID, scoresRow(slot.Scores, scoredAt)); err != nil {
			return fmt.Errorf("save scores for %q: %w", slot.Task.ID, err)
		}
		if slot.Fixed {
			continue
		}
		if err := s.repo.SavePlacement(ctx, storage.Placement{TaskID: slot.Task.ID, Start: slot.Start, End: slot.End}); err != nil {
			return fmt.Errorf("save placement for %q: %w", slot.Task.ID, err)
		}
	}

	previous := make(map[string]model.Task, len(tasks))
	for _, task := range tasks {
		previous[task.ID] = task
	}
	for _, u := range schedule.Unscheduled {
		if err := s.repo.SaveScores(ctx, u.Task.ID, scoresRow(u.Scores, scoredAt)); err != nil {
			return fmt.Errorf("save scores for %q: %w", u.Task.ID, err)
		}
		prev, ok := previous[u.Task.ID]
		if !ok || prev.IsFixed() || prev.ScheduledStart == nil || !sameDay(*prev.ScheduledStart, schedule.Date) {
			continue
		}
		if err := s.repo.ClearPlacement(ctx, u.Task.ID); err != nil {
			return fmt.Errorf("clear placement for %q: %w", u.Task.ID, err)
		}
		s.logger.Debug("stale placement cleared", "task_id", u.Task.ID, "reason", u.Reason)
	}
	return nil
}

func scoresRow(in model.ScoreSet, at time.Time) storage.Scores {
	return storage.Scores{
		Urgency:    in.Urgency,
		Importance: in.Importance,
		Risk:       in.Risk,
		Final:      in.Final,
		ScoredAt:   at,
	}
}

func sameDay(t, day time.Time) bool {
	ty, tm, td := t.In(day.Location()).Date()
	dy, dm, dd := day.Date()
	return ty == dy && tm == dm && td == dd
}
