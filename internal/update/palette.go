package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayplan/internal/commands"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/planner"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		raw := m.commandInput.Value()
		m.closePalette()
		cmd, err := commands.Parse(raw)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: fmt.Sprintf("running %s...", cmd.Type)}
		return m, m.run(cmd)
	}
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m *Model) closePalette() {
	m.PaletteActive = false
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

// run executes cmd against the planner off the update loop. Commands that
// change the plan answer with a ScheduleLoadedMsg, the rest with a status.
func (m Model) run(cmd commands.Command) tea.Cmd {
	p, day, now, cfg, logger := m.planner, m.Day, m.now(), m.cfg, m.logger
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		var loaded *ScheduleLoadedMsg

		res, err := commands.Execute(cmd, commands.Handlers{
			Plan: func(a commands.PlanArgs) (commands.Result, error) {
				target, err := commands.ResolveDay(a.Day, now)
				if err != nil {
					return commands.Result{}, err
				}
				s, err := p.Plan(ctx, target)
				if err != nil {
					return commands.Result{}, err
				}
				loaded = &ScheduleLoadedMsg{Day: target, Schedule: s}
				return commands.Result{Message: fmt.Sprintf("planned %s: %d scheduled, %d unscheduled",
					target.Format(dayLayout), s.Stats.ScheduledTasks, s.Stats.UnscheduledTasks)}, nil
			},
			Done: func(a commands.DoneArgs) (commands.Result, error) {
				s, err := p.Complete(ctx, a.TaskID, day)
				if err != nil {
					return commands.Result{}, err
				}
				loaded = &ScheduleLoadedMsg{Day: day, Schedule: s}
				return commands.Result{Message: "completed " + a.TaskID}, nil
			},
			Overrun: func(a commands.OverrunArgs) (commands.Result, error) {
				res, err := p.RecordOverrun(ctx, a.TaskID, a.Minutes, day)
				if err != nil {
					return commands.Result{}, err
				}
				loaded = &ScheduleLoadedMsg{Day: day, Schedule: res.Schedule, Changes: res.Changes}
				return commands.Result{Message: res.Summary}, nil
			},
			Explain: func(a commands.ExplainArgs) (commands.Result, error) {
				text, err := p.Explain(ctx, a.TaskID, day)
				if err != nil {
					return commands.Result{}, err
				}
				return commands.Result{Message: text}, nil
			},
			Add: func(a commands.AddArgs) (commands.Result, error) {
				in, err := newTaskFromArgs(a, now, cfg.DefaultTaskMinutes)
				if err != nil {
					return commands.Result{}, err
				}
				task, err := p.AddTask(ctx, in)
				if err != nil {
					return commands.Result{}, err
				}
				s, err := p.Plan(ctx, day)
				if err != nil {
					return commands.Result{}, err
				}
				loaded = &ScheduleLoadedMsg{Day: day, Schedule: s}
				return commands.Result{Message: fmt.Sprintf("added %q (%s)", task.Title, task.ID)}, nil
			},
		})
		if err != nil {
			logger.Warn("command failed", "command", cmd.Type, "err", err)
			return SetStatusMsg{Text: err.Error(), IsError: true}
		}
		if loaded != nil {
			loaded.Status = res.Message
			return *loaded
		}
		return SetStatusMsg{Text: res.Message}
	}
}

// newTaskFromArgs fills quick-add defaults: the configured duration and a
// deadline at the end of the due day (today when omitted).
func newTaskFromArgs(a commands.AddArgs, now time.Time, defaultMinutes int) (planner.NewTask, error) {
	due := a.Due
	if due == "" {
		due = "today"
	}
	day, err := commands.ResolveDay(due, now)
	if err != nil {
		return planner.NewTask{}, err
	}
	y, mo, d := day.Date()
	in := planner.NewTask{
		Title:             a.Title,
		EstimatedDuration: a.Minutes,
		Deadline:          time.Date(y, mo, d, 23, 59, 0, 0, day.Location()),
		Priority:          a.Priority,
	}
	if in.EstimatedDuration == 0 {
		in.EstimatedDuration = defaultMinutes
	}
	if a.Deep {
		in.Energy = model.EnergyDeepFocus
	}
	return in, nil
}
