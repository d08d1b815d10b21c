package scheduler

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sandeepkv93/dayplan/internal/model"
)

const clockLayout = "3:04 PM"

// Explain renders the rationale for placing task at [start, end). The output
// depends only on its arguments.
func Explain(task model.Task, scores model.ScoreSet, start, end time.Time) string {
	reasons := make([]string, 0, 5)
	switch task.Priority {
	case model.PriorityHigh:
		reasons = append(reasons, "high priority")
	case model.PriorityMedium:
		reasons = append(reasons, "medium priority")
	}
	reasons = append(reasons, deadlineProximity(task.Deadline, start))
	if task.IsDeepFocus() {
		reasons = append(reasons, "requires deep focus")
	}
	if task.IsFixed() {
		reasons = append(reasons, "fixed time commitment")
	} else if scores.Final > 70 {
		reasons = append(reasons, "limited flexibility")
	}
	switch {
	case scores.Risk > 70:
		reasons = append(reasons, "high risk of missing the deadline")
	case scores.Risk > 40:
		reasons = append(reasons, "moderate risk of missing the deadline")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scheduled %s - %s due to %s. ",
		start.Format(clockLayout), end.Format(clockLayout), strings.Join(reasons, ", "))
	fmt.Fprintf(&b, "Score %d/100 (urgency %d, importance %d, risk %d)",
		scores.Final, scores.Urgency, scores.Importance, scores.Risk)
	return b.String()
}

// deadlineProximity describes the deadline relative to the slot start, in
// hours up to a day out and in days beyond that.
func deadlineProximity(deadline, from time.Time) string {
	hours := deadline.Sub(from).Hours()
	switch {
	case hours <= 0:
		return "deadline already passed"
	case hours <= 24:
		return "deadline in " + plural(int(math.Ceil(hours)), "hour")
	default:
		return "deadline in " + plural(int(math.Ceil(hours/24)), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
