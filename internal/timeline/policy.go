package timeline

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/h0rv/epicgantt/internal/domain"
)

// Gantt colors, foreground/background in PlantUML notation.
const (
	ColorNotStarted = "White/Black"
	ColorCompleted  = "LightGreen/Black"
	ColorInProgress = "LightGray/Black"
)

// Appearance is how an epic is drawn for a given completion percentage.
type Appearance struct {
	Color string
	Text  string
}

// CompletionPercent returns ceil(100 * accepted / total). A zero total yields 0.
func CompletionPercent(accepted, total int) int {
	if total <= 0 || accepted <= 0 {
		return 0
	}
	if accepted >= total {
		return 100
	}
	return (100*accepted + total - 1) / total
}

// Policy maps a completion percentage to its color and status text.
func Policy(percent int) Appearance {
	switch {
	case percent <= 0:
		return Appearance{Color: ColorNotStarted}
	case percent >= 100:
		return Appearance{Color: ColorCompleted, Text: "(Completed)"}
	default:
		return Appearance{Color: ColorInProgress, Text: fmt.Sprintf("(In progress: %d%%)", percent)}
	}
}

// DurationDays returns the span in whole days, rounding any fraction up.
func DurationDays(start, end time.Time) int {
	return int(math.Ceil(float64(end.Sub(start)) / float64(24*time.Hour)))
}

// ClampStart never lets an epic start before its project.
func ClampStart(resolved, projectStart time.Time) time.Time {
	if projectStart.After(resolved) {
		return projectStart
	}
	return resolved
}

// StartedAt returns the timestamp of the last "started" event in feed order.
func StartedAt(events []domain.Activity) *time.Time {
	var started *time.Time
	for i := range events {
		if events[i].Highlight == domain.HighlightStarted {
			at := events[i].OccurredAt
			started = &at
		}
	}
	return started
}

// Eligible reports whether an epic carries enough dates to be scheduled.
func Eligible(epic domain.Epic) bool {
	return epic.CreatedAt != nil && (epic.ProjectedCompletion != nil || epic.CompletedAt != nil)
}

// SortByStart orders timelines by effective start; ties keep their order.
func SortByStart(timelines []domain.EpicTimeline) {
	slices.SortStableFunc(timelines, func(a, b domain.EpicTimeline) int {
		return a.StartsAt.Compare(b.StartsAt)
	})
}
