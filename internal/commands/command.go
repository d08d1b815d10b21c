package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

type Type string

const (
	TypePlan    Type = "plan"
	TypeDone    Type = "done"
	TypeOverrun Type = "overrun"
	TypeExplain Type = "explain"
	TypeAdd     Type = "add"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const dayLayout = "2006-01-02"

type PlanArgs struct {
	Day string
}

type DoneArgs struct {
	TaskID string
}

type OverrunArgs struct {
	TaskID  string
	Minutes int
}

type ExplainArgs struct {
	TaskID string
}

// AddArgs holds a quick-add request. Zero values mean "use the default".
type AddArgs struct {
	Title    string
	Minutes  int
	Due      string
	Priority model.Priority
	Deep     bool
}

type Command struct {
	Type    Type
	Raw     string
	Plan    *PlanArgs
	Done    *DoneArgs
	Overrun *OverrunArgs
	Explain *ExplainArgs
	Add     *AddArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, ":") {
		raw = strings.TrimSpace(raw[1:])
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypePlan:
		return parsePlan(input, args)
	case TypeDone:
		return parseDone(input, args)
	case TypeOverrun:
		return parseOverrun(input, args)
	case TypeExplain:
		return parseExplain(input, args)
	case TypeAdd:
		return parseAdd(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// ResolveDay turns "today", "tomorrow" or YYYY-MM-DD into a date in now's location.
func ResolveDay(day string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(day)) {
	case "", "today":
		return now, nil
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	}
	out, err := time.ParseInLocation(dayLayout, day, now.Location())
	if err != nil {
		return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid day %q (want today, tomorrow or YYYY-MM-DD)", day)}
	}
	return out, nil
}

func parsePlan(raw string, args []string) (Command, error) {
	day := "today"
	if len(args) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "plan takes at most one day"}
	}
	if len(args) == 1 {
		day = strings.ToLower(args[0])
	}
	if _, err := ResolveDay(day, time.Time{}); err != nil {
		return Command{}, err
	}
	return Command{Type: TypePlan, Raw: raw, Plan: &PlanArgs{Day: day}}, nil
}

func parseDone(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a task id"}
	}
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{TaskID: args[0]}}, nil
}

func parseOverrun(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "overrun requires a task id and actual minutes"}
	}
	minutes, err := parseMinutes(args[1])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeOverrun, Raw: raw, Overrun: &OverrunArgs{TaskID: args[0], Minutes: minutes}}, nil
}

func parseExplain(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "explain requires a task id"}
	}
	return Command{Type: TypeExplain, Raw: raw, Explain: &ExplainArgs{TaskID: args[0]}}, nil
}

// parseAdd reads a title followed by optional for:<minutes>, due:<day>,
// p:<priority> and deep tokens in any position.
func parseAdd(raw string, args []string) (Command, error) {
	out := AddArgs{}
	title := make([]string, 0, len(args))
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "for:"):
			minutes, err := parseMinutes(strings.TrimPrefix(lower, "for:"))
			if err != nil {
				return Command{}, err
			}
			out.Minutes = minutes
		case strings.HasPrefix(lower, "due:"):
			due := strings.TrimPrefix(lower, "due:")
			if _, err := ResolveDay(due, time.Time{}); err != nil {
				return Command{}, err
			}
			out.Due = due
		case strings.HasPrefix(lower, "p:"):
			p := model.Priority(strings.TrimPrefix(lower, "p:"))
			if !p.IsValid() {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown priority %q", p)}
			}
			out.Priority = p
		case lower == "deep":
			out.Deep = true
		default:
			title = append(title, arg)
		}
	}
	out.Title = strings.TrimSpace(strings.Join(title, " "))
	if out.Title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseMinutes(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(v, "m"))
	if err != nil || n <= 0 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid minutes %q", v)}
	}
	return n, nil
}
