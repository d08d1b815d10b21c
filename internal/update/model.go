// Package update holds the bubbletea model for the interactive day view.
package update

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/planner"
	"github.com/sandeepkv93/dayplan/internal/reminder"
	"github.com/sandeepkv93/dayplan/internal/scheduler"
)

// Planner is the slice of planner.Service the view drives.
type Planner interface {
	Plan(ctx context.Context, date time.Time) (scheduler.Schedule, error)
	Complete(ctx context.Context, id string, date time.Time) (scheduler.Schedule, error)
	RecordOverrun(ctx context.Context, id string, actual int, date time.Time) (scheduler.Rescheduled, error)
	Explain(ctx context.Context, id string, date time.Time) (string, error)
	AddTask(ctx context.Context, in planner.NewTask) (model.Task, error)
}

type StatusBar struct {
	Text    string
	IsError bool
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

const maxNotifications = 5

type Config struct {
	ReminderLead       time.Duration
	DefaultTaskMinutes int
}

type Model struct {
	Day           time.Time
	Schedule      scheduler.Schedule
	Loaded        bool
	Cursor        int
	Status        StatusBar
	Notifications []Notification
	HelpVisible   bool
	PaletteActive bool
	Quitting      bool
	Width         int

	planner   Planner
	reminders *reminder.Engine
	cfg       Config
	now       func() time.Time
	logger    *slog.Logger

	commandInput textinput.Model
	helpModel    help.Model
	detail       string
}

type Option func(*Model)

func WithReminders(engine *reminder.Engine) Option {
	return func(m *Model) { m.reminders = engine }
}

func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(m *Model) { m.cfg = cfg }
}

func NewModel(p Planner, opts ...Option) Model {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "plan tomorrow | done <id> | overrun <id> <min> | explain <id> | add <title>"
	input.CharLimit = 200

	m := Model{
		planner: p,
		cfg: Config{
			ReminderLead:       10 * time.Minute,
			DefaultTaskMinutes: 30,
		},
		now:          time.Now,
		logger:       slog.New(slog.DiscardHandler),
		commandInput: input,
		helpModel:    help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.Day = m.now()
	return m
}

// Selection is the task under the cursor. Slots come first, then
// unscheduled tasks.
type Selection struct {
	Task        model.Task
	Explanation string
	Placed      bool
}

func (m Model) rows() int {
	return len(m.Schedule.Slots) + len(m.Schedule.Unscheduled)
}

func (m Model) rowID(i int) string {
	if i < len(m.Schedule.Slots) {
		return m.Schedule.Slots[i].Task.ID
	}
	return m.Schedule.Unscheduled[i-len(m.Schedule.Slots)].Task.ID
}

func (m Model) Selected() (Selection, bool) {
	if m.Cursor < 0 || m.Cursor >= m.rows() {
		return Selection{}, false
	}
	if m.Cursor < len(m.Schedule.Slots) {
		slot := m.Schedule.Slots[m.Cursor]
		return Selection{Task: slot.Task, Explanation: slot.Explanation, Placed: true}, true
	}
	u := m.Schedule.Unscheduled[m.Cursor-len(m.Schedule.Slots)]
	return Selection{Task: u.Task, Explanation: "Not scheduled: " + u.Reason}, true
}

type ScheduleLoadedMsg struct {
	Day      time.Time
	Schedule scheduler.Schedule
	Changes  []scheduler.Change
	Status   string
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ReminderDueMsg struct {
	Event reminder.Event
}
