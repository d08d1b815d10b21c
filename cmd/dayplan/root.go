package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/dayplan/internal/commands"
	"github.com/sandeepkv93/dayplan/internal/model"
	"github.com/sandeepkv93/dayplan/internal/planner"
	"github.com/sandeepkv93/dayplan/internal/reminder"
	"github.com/sandeepkv93/dayplan/internal/update"
	"github.com/sandeepkv93/dayplan/internal/views"
)

func newRootCmd() *cobra.Command {
	a := newApp()
	root := &cobra.Command{
		Use:          "dayplan",
		Short:        "Plan your day from scored, deadline-aware tasks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// The TUI owns the terminal, so it only logs to a file.
			if cmd.Parent() == nil {
				return a.setup(nil)
			}
			return a.setup(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
		RunE: func(*cobra.Command, []string) error {
			return runTUI(a)
		},
	}
	a.bindFlags(root)
	root.AddCommand(
		newPlanCmd(a),
		newRescheduleCmd(a),
		newAddCmd(a),
		newDoneCmd(a),
		newExplainCmd(a),
	)
	return root
}

func runTUI(a *app) error {
	engine := reminder.NewEngine(a.cfg.ReminderBuffer)
	engine.Start()
	defer engine.Stop()

	m := update.NewModel(a.service,
		update.WithReminders(engine),
		update.WithClock(a.now),
		update.WithLogger(a.logger),
		update.WithConfig(update.Config{
			ReminderLead:       time.Duration(a.cfg.ReminderLeadMinutes) * time.Minute,
			DefaultTaskMinutes: a.cfg.DefaultTaskMinutes,
		}),
	)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("dayplan failed: %w", err)
	}
	if dropped := engine.Dropped(); dropped > 0 {
		a.logger.Warn("reminders dropped", "count", dropped)
	}
	return nil
}

func newPlanCmd(a *app) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate and store the plan for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := commands.ResolveDay(day, a.now())
			if err != nil {
				return err
			}
			s, err := a.service.Plan(cmd.Context(), date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.RenderSchedule(views.FromSchedule(s, "")))
			return nil
		},
	}
	cmd.Flags().StringVarP(&day, "date", "d", "today", "day to plan (today, tomorrow or YYYY-MM-DD)")
	return cmd
}

func newRescheduleCmd(a *app) *cobra.Command {
	var (
		taskID string
		actual int
		day    string
	)
	cmd := &cobra.Command{
		Use:   "reschedule",
		Short: "Record how long a task actually took and re-plan the day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := commands.ResolveDay(day, a.now())
			if err != nil {
				return err
			}
			res, err := a.service.RecordOverrun(cmd.Context(), taskID, actual, date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, views.RenderChanges(res.Summary, views.FromChanges(res.Changes)))
			fmt.Fprintln(out)
			fmt.Fprintln(out, views.RenderSchedule(views.FromSchedule(res.Schedule, "")))
			return nil
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "id of the task that overran")
	cmd.Flags().IntVar(&actual, "actual", 0, "minutes the task actually took")
	cmd.Flags().StringVarP(&day, "date", "d", "today", "day to re-plan")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("actual")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var (
		title    string
		desc     string
		minutes  int
		deadline string
		priority string
		start    string
		fixed    bool
		deep     bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := a.now()
			due, err := parseDeadline(deadline, now)
			if err != nil {
				return err
			}
			if minutes == 0 {
				minutes = a.cfg.DefaultTaskMinutes
			}
			in := planner.NewTask{
				Title:             title,
				Description:       desc,
				EstimatedDuration: minutes,
				Deadline:          due,
				Priority:          model.Priority(strings.ToLower(priority)),
			}
			if deep {
				in.Energy = model.EnergyDeepFocus
			}
			if fixed {
				if start == "" {
					return fmt.Errorf("--fixed requires --start")
				}
				from, err := time.ParseInLocation("2006-01-02 15:04", start, now.Location())
				if err != nil {
					return fmt.Errorf("invalid --start %q (want YYYY-MM-DD HH:MM): %w", start, err)
				}
				to := from.Add(time.Duration(minutes) * time.Minute)
				in.Flexibility = model.FlexibilityFixed
				in.ScheduledStart = &from
				in.ScheduledEnd = &to
			}
			task, err := a.service.AddTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", task.ID, task.Title)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&title, "title", "t", "", "task title")
	flags.StringVar(&desc, "description", "", "task description")
	flags.IntVarP(&minutes, "minutes", "m", 0, "estimated duration in minutes (default from config)")
	flags.StringVar(&deadline, "deadline", "today", "deadline: today, tomorrow, YYYY-MM-DD or YYYY-MM-DD HH:MM")
	flags.StringVarP(&priority, "priority", "p", string(model.PriorityMedium), "low, medium or high")
	flags.StringVar(&start, "start", "", "start of a fixed task (YYYY-MM-DD HH:MM)")
	flags.BoolVar(&fixed, "fixed", false, "task is a fixed commitment at --start")
	flags.BoolVar(&deep, "deep", false, "task needs deep focus")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// parseDeadline accepts a day, which means the end of that day, or an exact
// "YYYY-MM-DD HH:MM" time.
func parseDeadline(raw string, now time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, now.Location()); err == nil {
		return t, nil
	}
	day, err := commands.ResolveDay(raw, now)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, 23, 59, 0, 0, day.Location()), nil
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task complete and re-plan today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.service.Complete(cmd.Context(), args[0], a.now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed %s\n\n%s\n", args[0], views.RenderSchedule(views.FromSchedule(s, "")))
			return nil
		},
	}
}

func newExplainCmd(a *app) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "explain <task-id>",
		Short: "Explain where a task lands and why",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := commands.ResolveDay(day, a.now())
			if err != nil {
				return err
			}
			text, err := a.service.Explain(cmd.Context(), args[0], date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&day, "date", "d", "today", "day to explain against")
	return cmd
}
