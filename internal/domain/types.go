// Package domain defines the normalized domain types for tracker projects.
// These types represent the core concepts independent of the tracker REST payloads.
package domain

import "time"

// Project represents a tracker project.
type Project struct {
	ID        int64     // Tracker project ID
	Name      string    // Project name
	CreatedAt time.Time // When the project record was created
}

// Label is a tag attached to stories. Epics are tracked through one label each.
type Label struct {
	Name string
}

// Story represents a tracker story in a normalized format.
type Story struct {
	ID           int64
	Name         string
	Description  string
	URL          string
	CurrentState string     // One of the State* constants
	CreatedAt    time.Time  // Creation timestamp
	AcceptedAt   *time.Time // Set only once the story was accepted
	Labels       []Label
}

// HasLabel reports whether the story carries a label with the given name.
func (s Story) HasLabel(name string) bool {
	for _, l := range s.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// Epic represents a body of work tracked via a single label.
type Epic struct {
	ID                  int64
	Name                string
	Description         string
	Label               Label
	CreatedAt           *time.Time
	ProjectedCompletion *time.Time
	CompletedAt         *time.Time
}

// Iteration represents a time-boxed planning period.
type Iteration struct {
	Number   int       // Ordinal, ascending
	Start    time.Time // Scheduled start
	Finish   time.Time // Scheduled finish
	StoryIDs []int64   // Stories in the iteration, in tracker order
}

// Activity is a single event from a story's activity feed.
type Activity struct {
	Kind       string
	Highlight  string // e.g. "started", "accepted"
	OccurredAt time.Time
}

// Status describes where an epic is in its lifecycle.
type Status string

// EpicTimeline is the derived schedule of one epic. It is recomputed every run.
type EpicTimeline struct {
	EpicID            int64
	Name              string
	Description       string // Epic description as fetched
	Label             string // Label name linking the epic to its stories
	StartsAt          time.Time
	EndsAt            time.Time
	DurationDays      int
	CompletionPercent int
	Color             string // PlantUML color, e.g. "LightGreen/Black"
	StatusText        string // e.g. "(In progress: 40%)"
	Status            Status
	SkipGantt         bool // Excluded from the Gantt output
	SkipText          bool // Excluded from the narrative output
}

// Story state constants as reported by the tracker.
const (
	StateUnscheduled = "unscheduled"
	StateUnstarted   = "unstarted"
	StatePlanned     = "planned"
	StateStarted     = "started"
	StateFinished    = "finished"
	StateDelivered   = "delivered"
	StateRejected    = "rejected"
	StateAccepted    = "accepted"
)

// HighlightStarted marks the activity event of a story moving into active work.
const HighlightStarted = "started"

// Status constants for epic timelines.
const (
	StatusCompleted  Status = "completed"
	StatusInProgress Status = "in progress"
	StatusNotStarted Status = "not started"
)
