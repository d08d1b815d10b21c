package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayplan/internal/reminder"
	"github.com/sandeepkv93/dayplan/internal/views"
)

func waitForReminderCmd(ch <-chan reminder.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func (m Model) waitForReminder() tea.Cmd {
	if m.reminders == nil {
		return nil
	}
	return waitForReminderCmd(m.reminders.C())
}

// syncReminders re-arms slot reminders when the loaded plan is today's.
func (m *Model) syncReminders() {
	if m.reminders == nil {
		return
	}
	now := m.now()
	if !sameDay(m.Schedule.Date, now) {
		return
	}
	events := reminder.FromSchedule(m.Schedule, m.cfg.ReminderLead, now)
	if err := m.reminders.Replace(events); err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("reminders not updated: %v", err), IsError: true}
		return
	}
	m.logger.Debug("reminders armed", "count", len(events))
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{Title: title, Body: body, Level: level, At: m.now()})
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
}

func (m Model) renderNotifications() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	last := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(last.Level, last.Title+": "+last.Body)
}

func sameDay(day, t time.Time) bool {
	ay, am, ad := day.Date()
	by, bm, bd := t.In(day.Location()).Date()
	return ay == by && am == bm && ad == bd
}
