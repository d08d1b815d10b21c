package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidPreferences = errors.New("model: invalid preferences")

// ValidationError reports a malformed preference. Scheduling aborts on it
// rather than attempting a repair.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model: invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidPreferences
}

const (
	MinDeepFocusMinutes = 30
	MaxDeepFocusMinutes = 720
	MaxBufferMinutes    = 60
)

// ClockTime is a time of day expressed as minutes after midnight.
type ClockTime int

func ParseClock(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("model: clock time %q must be HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("model: clock time %q has invalid hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("model: clock time %q has invalid minute", s)
	}
	return ClockTime(h*60 + m), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On returns the instant at this clock time on day's calendar date, in day's location.
func (c ClockTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, day.Location())
}

type WorkingHours struct {
	Start string `json:"start" mapstructure:"start"`
	End   string `json:"end" mapstructure:"end"`
}

// Window is a parsed, validated working-hours span.
type Window struct {
	Start ClockTime
	End   ClockTime
}

func (w Window) Minutes() int {
	return int(w.End - w.Start)
}

type Preferences struct {
	WorkingHours        WorkingHours `json:"workingHours"`
	MaxDeepFocusMinutes int          `json:"maxDeepFocusMinutes" validate:"min=30,max=720"`
	BufferMinutes       int          `json:"bufferMinutes" validate:"min=0,max=60"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		WorkingHours:        WorkingHours{Start: "09:00", End: "17:00"},
		MaxDeepFocusMinutes: 240,
		BufferMinutes:       15,
	}
}

func (p Preferences) Validate() error {
	_, err := p.Window()
	return err
}

// Window validates p and returns its working-hours span.
func (p Preferences) Window() (Window, error) {
	start, err := ParseClock(p.WorkingHours.Start)
	if err != nil {
		return Window{}, &ValidationError{Field: "workingHours.start", Message: err.Error()}
	}
	end, err := ParseClock(p.WorkingHours.End)
	if err != nil {
		return Window{}, &ValidationError{Field: "workingHours.end", Message: err.Error()}
	}
	if end <= start {
		return Window{}, &ValidationError{
			Field:   "workingHours.end",
			Message: fmt.Sprintf("%s must be after %s", end, start),
		}
	}
	if err := validateStruct(p); err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: end}, nil
}
