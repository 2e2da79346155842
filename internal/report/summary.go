package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/h0rv/epicgantt/internal/domain"
)

var statusColors = map[domain.Status]lipgloss.Color{
	domain.StatusCompleted:  lipgloss.Color("10"),
	domain.StatusInProgress: lipgloss.Color("11"),
	domain.StatusNotStarted: lipgloss.Color("8"),
}

// Summary writes a table of the resolved epics to w, typically stderr, so a
// run can be checked at a glance without reading the generated markup.
// Colors are only emitted when w is a color-capable terminal.
func Summary(w io.Writer, timelines []domain.EpicTimeline, dateFormat string) error {
	re := lipgloss.NewRenderer(w)
	header := re.NewStyle().Bold(true).Padding(0, 1)
	cell := re.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(timelines))
	for _, tl := range timelines {
		rows = append(rows, []string{
			tl.Name,
			tl.StartsAt.Format(dateFormat),
			strconv.Itoa(tl.DurationDays),
			strconv.Itoa(tl.CompletionPercent) + "%",
			string(tl.Status),
			skipped(tl),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(re.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("Epic", "Start", "Days", "Done", "Status", "Hidden from").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == 4 && row >= 0 && row < len(timelines) {
				if c, ok := statusColors[timelines[row].Status]; ok {
					return cell.Foreground(c)
				}
			}
			return cell
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func skipped(tl domain.EpicTimeline) string {
	switch {
	case tl.SkipGantt && tl.SkipText:
		return "gantt, text"
	case tl.SkipGantt:
		return "gantt"
	case tl.SkipText:
		return "text"
	}
	return ""
}
