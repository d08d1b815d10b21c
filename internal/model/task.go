package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPriority    = errors.New("model: invalid task priority")
	ErrInvalidFlexibility = errors.New("model: invalid task flexibility")
	ErrInvalidEnergy      = errors.New("model: invalid task energy level")
	ErrInvalidTask        = errors.New("model: invalid task")
)

const (
	MinTaskMinutes = 5
	MaxTaskMinutes = 480
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Value maps low/medium/high onto 1/2/3. Unknown priorities count as low.
func (p Priority) Value() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

type Flexibility string

const (
	FlexibilityFixed   Flexibility = "fixed"
	FlexibilityMovable Flexibility = "movable"
)

func (f Flexibility) IsValid() bool {
	switch f {
	case FlexibilityFixed, FlexibilityMovable:
		return true
	default:
		return false
	}
}

type Energy string

const (
	EnergyLowFocus  Energy = "low-focus"
	EnergyDeepFocus Energy = "deep-focus"
)

func (e Energy) IsValid() bool {
	switch e {
	case EnergyLowFocus, EnergyDeepFocus:
		return true
	default:
		return false
	}
}

// ScoreSet is recomputed on every scheduling request. Stored copies are
// snapshots for display only.
type ScoreSet struct {
	Urgency    int `json:"urgencyScore"`
	Importance int `json:"importanceScore"`
	Risk       int `json:"riskScore"`
	Final      int `json:"finalScore"`
}

type Task struct {
	ID                string      `json:"id" validate:"required"`
	Title             string      `json:"title" validate:"required"`
	Description       string      `json:"description,omitempty"`
	EstimatedDuration int         `json:"estimatedDuration" validate:"min=5,max=480"`
	Deadline          time.Time   `json:"deadline" validate:"required"`
	Priority          Priority    `json:"priority"`
	Flexibility       Flexibility `json:"flexibility"`
	Energy            Energy      `json:"energyLevel"`
	IsCompleted       bool        `json:"isCompleted"`
	ActualDuration    *int        `json:"actualDuration,omitempty" validate:"omitempty,min=0"`
	ScheduledStart    *time.Time  `json:"scheduledStart,omitempty"`
	ScheduledEnd      *time.Time  `json:"scheduledEnd,omitempty"`
	Scores            *ScoreSet   `json:"scoring,omitempty"`
}

func (t Task) IsFixed() bool {
	return t.Flexibility == FlexibilityFixed
}

func (t Task) IsDeepFocus() bool {
	return t.Energy == EnergyDeepFocus
}

// HasAssignedTime reports whether both scheduled bounds are set.
func (t Task) HasAssignedTime() bool {
	return t.ScheduledStart != nil && t.ScheduledEnd != nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Flexibility.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFlexibility, t.Flexibility)
	}
	if !t.Energy.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEnergy, t.Energy)
	}
	if err := validateStruct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	if t.IsFixed() && !t.HasAssignedTime() {
		return errors.New("model: fixed task requires scheduled start and end")
	}
	if t.HasAssignedTime() && !t.ScheduledEnd.After(*t.ScheduledStart) {
		return errors.New("model: scheduled end must be after scheduled start")
	}
	return nil
}
