package storage

import "time"

type Task struct {
	ID                string
	Title             string
	Description       string
	EstimatedDuration int
	Deadline          time.Time
	Priority          string
	Flexibility       string
	Energy            string
	IsCompleted       bool
	ActualDuration    *int
	ScheduledStart    *time.Time
	ScheduledEnd      *time.Time
	Scores            *Scores
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

// Scores is the last score snapshot written back after a planning run.
type Scores struct {
	Urgency    int
	Importance int
	Risk       int
	Final      int
	ScoredAt   time.Time
}

type Preferences struct {
	WorkStart           string
	WorkEnd             string
	MaxDeepFocusMinutes int
	BufferMinutes       int
	UpdatedAt           time.Time
}

// Placement records where a planning run put a task.
type Placement struct {
	TaskID string
	Start  time.Time
	End    time.Time
}

type TaskListFilter struct {
	IncludeCompleted bool
	DeadlineFrom     *time.Time
	Limit            int
	Offset           int
}
