package scheduler

import (
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

const (
	ReasonDeepFocusCapacity = "exceeds daily deep-focus capacity"
	ReasonNoSlot            = "no available time slot within working hours"
	ReasonFixedUnassigned   = "fixed task has no assigned time"
)

// Schedule is one day's placement result. It is built fresh on every call.
type Schedule struct {
	Date         time.Time          `json:"date"`
	WorkingHours model.WorkingHours `json:"workingHours"`
	Slots        []Slot             `json:"slots"`
	Unscheduled  []Unscheduled      `json:"unscheduled"`
	Stats        Stats              `json:"stats"`
}

type Slot struct {
	Task        model.Task     `json:"task"`
	Start       time.Time      `json:"scheduledStart"`
	End         time.Time      `json:"scheduledEnd"`
	Scores      model.ScoreSet `json:"scores"`
	Explanation string         `json:"explanation"`
	Fixed       bool           `json:"fixed"`
}

type Unscheduled struct {
	Task   model.Task     `json:"task"`
	Scores model.ScoreSet `json:"scores"`
	Reason string         `json:"reason"`
}

type Stats struct {
	TotalTasks         int `json:"totalTasks"`
	ScheduledTasks     int `json:"scheduledTasks"`
	UnscheduledTasks   int `json:"unscheduledTasks"`
	ScheduledMinutes   int `json:"scheduledMinutes"`
	DeepFocusMinutes   int `json:"deepFocusMinutes"`
	WorkingMinutes     int `json:"workingMinutes"`
	UtilizationPercent int `json:"utilizationPercent"`
}

// SlotFor returns the slot holding taskID, if any.
func (s Schedule) SlotFor(taskID string) (Slot, bool) {
	for _, slot := range s.Slots {
		if slot.Task.ID == taskID {
			return slot, true
		}
	}
	return Slot{}, false
}

// UnscheduledFor returns the unscheduled entry for taskID, if any.
func (s Schedule) UnscheduledFor(taskID string) (Unscheduled, bool) {
	for _, u := range s.Unscheduled {
		if u.Task.ID == taskID {
			return u, true
		}
	}
	return Unscheduled{}, false
}
