package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayplan/internal/commands"
	"github.com/sandeepkv93/dayplan/internal/views"
)

const dayLayout = "2006-01-02"

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.planDay(m.Day), m.waitForReminder())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = typed.Width
		return m, nil
	case tea.KeyMsg:
		if m.PaletteActive {
			return m.handlePaletteKey(typed)
		}
		return m.handleKey(typed)
	case ScheduleLoadedMsg:
		m.applySchedule(typed)
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		if typed.IsError {
			m.notify("Error", typed.Text, "error")
		}
		return m, nil
	case ReminderDueMsg:
		ev := typed.Event
		m.notify("Reminder", fmt.Sprintf("%s starts at %s", ev.Title, ev.SlotStart.Format("3:04 PM")), "reminder")
		return m, m.waitForReminder()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.Quitting = true
		return m, tea.Quit
	case ":", "/":
		m.PaletteActive = true
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case "?":
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "j", "down":
		if m.Cursor < m.rows()-1 {
			m.Cursor++
			m.refreshDetail()
		}
		return m, nil
	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
			m.refreshDetail()
		}
		return m, nil
	case "h", "left":
		return m, m.planDay(m.Day.AddDate(0, 0, -1))
	case "l", "right":
		return m, m.planDay(m.Day.AddDate(0, 0, 1))
	case "t":
		return m, m.planDay(m.now())
	case "r":
		return m, m.planDay(m.Day)
	case "d":
		if sel, ok := m.Selected(); ok {
			return m, m.run(commands.Command{Type: commands.TypeDone, Done: &commands.DoneArgs{TaskID: sel.Task.ID}})
		}
	case "e":
		if sel, ok := m.Selected(); ok {
			return m, m.run(commands.Command{Type: commands.TypeExplain, Explain: &commands.ExplainArgs{TaskID: sel.Task.ID}})
		}
	}
	return m, nil
}

func (m Model) planDay(day time.Time) tea.Cmd {
	return m.run(commands.Command{Type: commands.TypePlan, Plan: &commands.PlanArgs{Day: day.Format(dayLayout)}})
}

func (m *Model) applySchedule(msg ScheduleLoadedMsg) {
	selectedID := ""
	if sel, ok := m.Selected(); ok {
		selectedID = sel.Task.ID
	}

	m.Schedule = msg.Schedule
	m.Loaded = true
	if !msg.Day.IsZero() {
		m.Day = msg.Day
	}
	m.Cursor = 0
	for i := 0; i < m.rows(); i++ {
		if selectedID != "" && m.rowID(i) == selectedID {
			m.Cursor = i
			break
		}
	}
	m.refreshDetail()

	if msg.Status != "" {
		m.Status = StatusBar{Text: msg.Status}
	}
	if len(msg.Changes) > 0 {
		m.notify("Rescheduled", views.RenderChanges(msg.Status, views.FromChanges(msg.Changes)), "info")
	}
	m.syncReminders()
}

func (m *Model) refreshDetail() {
	sel, ok := m.Selected()
	if !ok {
		m.detail = views.RenderDetail(views.DetailData{})
		return
	}
	m.detail = views.RenderDetail(views.DetailFrom(sel.Task, sel.Explanation))
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	left := "loading plan..."
	if m.Loaded {
		selectedID := ""
		if sel, ok := m.Selected(); ok {
			selectedID = sel.Task.ID
		}
		left = views.RenderSchedule(views.FromSchedule(m.Schedule, selectedID))
	}
	right := m.detail
	if m.HelpVisible {
		right = m.renderHelpView()
	}

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = "status: error: " + m.Status.Text
		} else {
			status = "status: " + m.Status.Text
		}
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("dayplan | %s", m.Day.Format("Monday, Jan 2 2006")),
		LeftPane:     left,
		RightPane:    right,
		StatusLine:   status,
		Palette:      views.RenderCommandPalette(m.PaletteActive, m.commandInput.View()),
		Notification: m.renderNotifications(),
		Footer:       m.helpModel.View(shortKeys),
		Width:        m.Width,
	})
}
