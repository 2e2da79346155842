// Package report renders resolved epic timelines as a PlantUML Gantt chart
// or as a narrative markdown status report.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/h0rv/epicgantt/internal/domain"
	"github.com/muesli/reflow/wordwrap"
)

// Mode selects the output format.
type Mode string

const (
	ModeGantt     Mode = "puml"
	ModeNarrative Mode = "text"
)

// ErrUnknownMode indicates an output mode other than puml or text.
var ErrUnknownMode = errors.New("unknown output mode")

// ParseMode validates a mode argument.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeGantt, ModeNarrative:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w %q (want %q or %q)", ErrUnknownMode, s, ModeGantt, ModeNarrative)
}

// NotStartedLookup finds a label's stories nobody has begun.
type NotStartedLookup interface {
	NotStarted(label string) []domain.Story
}

// Data is everything a report is rendered from.
type Data struct {
	Project   domain.Project
	Timelines []domain.EpicTimeline // already sorted by start
	Index     NotStartedLookup      // only needed by the narrative report
	Extra     string                // appended verbatim
}

// Options control date formatting, wrapping and marker stripping.
type Options struct {
	DateFormat      string
	WrapWidth       int // 0 disables wrapping
	GanttSkipMarker string
	TextSkipMarker  string
}

// Renderer renders reports from parsed templates.
type Renderer struct {
	opts      Options
	gantt     *template.Template
	narrative *template.Template
}

// New parses the report templates.
func New(opts Options) (*Renderer, error) {
	gantt, err := template.New("gantt").Parse(ganttTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gantt template: %w", err)
	}
	narrative, err := template.New("narrative").Parse(narrativeTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse narrative template: %w", err)
	}
	return &Renderer{opts: opts, gantt: gantt, narrative: narrative}, nil
}

// Render writes the report for the given mode.
func (r *Renderer) Render(w io.Writer, mode Mode, data Data) error {
	switch mode {
	case ModeGantt:
		return r.Gantt(w, data)
	case ModeNarrative:
		return r.Narrative(w, data)
	}
	return fmt.Errorf("%w %q", ErrUnknownMode, mode)
}

type ganttLine struct {
	Name  string
	ID    int64
	Start string
	Days  int
	Color string
}

type ganttView struct {
	ProjectStart string
	Lines        []ganttLine
	Extra        string
}

// Gantt writes a PlantUML Gantt document. Epics carrying the Gantt skip
// marker are left out.
func (r *Renderer) Gantt(w io.Writer, data Data) error {
	view := ganttView{
		ProjectStart: r.date(data.Project.CreatedAt),
		Extra:        block(data.Extra),
	}
	for _, tl := range data.Timelines {
		if tl.SkipGantt {
			continue
		}
		view.Lines = append(view.Lines, ganttLine{
			Name:  taskName(tl),
			ID:    tl.EpicID,
			Start: r.date(tl.StartsAt),
			Days:  tl.DurationDays,
			Color: tl.Color,
		})
	}

	if err := r.gantt.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render gantt: %w", err)
	}
	return nil
}

type storyLink struct {
	Name string
	URL  string
}

type narrativeEpic struct {
	Heading     string
	Status      string
	Percent     int
	Start       string
	End         string
	Days        int
	Description string
	NotStarted  []storyLink
}

type narrativeView struct {
	Project string
	Epics   []narrativeEpic
	Extra   string
}

// Narrative writes a markdown status report: one section per epic with its
// description and the stories that have not been started yet. Epics carrying
// the text skip marker are left out.
func (r *Renderer) Narrative(w io.Writer, data Data) error {
	view := narrativeView{
		Project: data.Project.Name,
		Extra:   block(data.Extra),
	}
	for _, tl := range data.Timelines {
		if tl.SkipText {
			continue
		}
		epic := narrativeEpic{
			Heading:     strings.TrimSpace(tl.Name + " " + tl.StatusText),
			Status:      string(tl.Status),
			Percent:     tl.CompletionPercent,
			Start:       r.date(tl.StartsAt),
			End:         r.date(tl.EndsAt),
			Days:        tl.DurationDays,
			Description: r.description(tl.Description),
		}
		if data.Index != nil {
			for _, s := range data.Index.NotStarted(tl.Label) {
				epic.NotStarted = append(epic.NotStarted, storyLink{Name: s.Name, URL: s.URL})
			}
		}
		view.Epics = append(view.Epics, epic)
	}

	if err := r.narrative.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render narrative: %w", err)
	}
	return nil
}

func (r *Renderer) date(t time.Time) string {
	return t.Format(r.opts.DateFormat)
}

// description strips skip markers and wraps the remaining text.
func (r *Renderer) description(s string) string {
	for _, marker := range []string{r.opts.GanttSkipMarker, r.opts.TextSkipMarker} {
		if marker != "" {
			s = strings.ReplaceAll(s, marker, "")
		}
	}
	s = strings.TrimSpace(s)
	if r.opts.WrapWidth > 0 {
		s = wordwrap.String(s, r.opts.WrapWidth)
	}
	return s
}

// taskName builds the bracketed Gantt task name; brackets inside the epic
// name would end the task early.
func taskName(tl domain.EpicTimeline) string {
	name := strings.NewReplacer("[", "(", "]", ")").Replace(tl.Name)
	return strings.TrimSpace(name + " " + tl.StatusText)
}

// block returns s terminated by exactly the newlines it already had, plus one
// if it had none.
func block(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
