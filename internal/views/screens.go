package views

import (
	"fmt"
	"strings"
)

type SlotRow struct {
	ID     string
	Title  string
	Start  string
	End    string
	Score  int
	Deep   bool
	Fixed  bool
	Reason string
}

type UnscheduledRow struct {
	ID     string
	Title  string
	Score  int
	Reason string
}

type StatsData struct {
	Scheduled   int
	Unscheduled int
	Minutes     int
	DeepMinutes int
	Utilization int
}

type ScheduleData struct {
	Date         string
	WorkingHours string
	Slots        []SlotRow
	Unscheduled  []UnscheduledRow
	Stats        StatsData
	SelectedID   string
}

type ChangeRow struct {
	Kind   string
	Title  string
	Detail string
}

type DetailData struct {
	ID          string
	Title       string
	Priority    string
	Energy      string
	Flexibility string
	Deadline    string
	Explanation string
}

type HelpPanelData struct {
	Bindings []string
	Commands []string
}

func RenderSchedule(data ScheduleData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("plan for %s (working hours %s):\n", data.Date, data.WorkingHours))
	if len(data.Slots) == 0 {
		b.WriteString("  (nothing scheduled)\n")
	}
	for _, row := range data.Slots {
		cursor := " "
		if data.SelectedID != "" && data.SelectedID == row.ID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %8s - %-8s %s %s [%d]", cursor, row.Start, row.End, badge(row), row.Title, row.Score))
		b.WriteString("\n")
	}

	if len(data.Unscheduled) > 0 {
		b.WriteString("\nunscheduled:\n")
		for _, row := range data.Unscheduled {
			cursor := " "
			if data.SelectedID != "" && data.SelectedID == row.ID {
				cursor = ">"
			}
			b.WriteString(fmt.Sprintf("%s %s [%d]: %s\n", cursor, row.Title, row.Score, row.Reason))
		}
	}

	s := data.Stats
	b.WriteString(fmt.Sprintf("\n%d scheduled, %d unscheduled | %d min planned (%d deep) | %d%% utilization",
		s.Scheduled, s.Unscheduled, s.Minutes, s.DeepMinutes, s.Utilization))
	return b.String()
}

func RenderChanges(summary string, rows []ChangeRow) string {
	var b strings.Builder
	b.WriteString(summary)
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("\n- [%s] %s", strings.ToUpper(row.Kind), row.Title))
		if row.Detail != "" {
			b.WriteString(": " + row.Detail)
		}
	}
	return b.String()
}

// RenderDetail renders the selected task as markdown through glamour.
func RenderDetail(data DetailData) string {
	if strings.TrimSpace(data.ID) == "" {
		return "details:\n(no selection)"
	}
	md := fmt.Sprintf("### %s\n\n| | |\n|---|---|\n| id | `%s` |\n| priority | %s |\n| energy | %s |\n| flexibility | %s |\n| deadline | %s |\n\n%s\n",
		data.Title, data.ID, data.Priority, data.Energy, data.Flexibility, data.Deadline, data.Explanation)
	return RenderMarkdown(md)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("keys:\n%s\n\ncommands:\n%s",
		strings.Join(data.Bindings, "\n"),
		strings.Join(data.Commands, "\n"),
	)
}

func badge(row SlotRow) string {
	switch {
	case row.Fixed:
		return "[FIXED]"
	case row.Deep:
		return "[DEEP] "
	default:
		return "[TASK] "
	}
}
