package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/h0rv/epicgantt/internal/domain"
)

// Wire payloads. Everything the tracker may omit or shape loosely is kept as
// a pointer or raw message here and normalized exactly once below.

type wireProject struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type wireLabel struct {
	Name string `json:"name"`
}

type wireStory struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	URL          string          `json:"url"`
	CurrentState string          `json:"current_state"`
	CreatedAt    string          `json:"created_at"`
	AcceptedAt   *string         `json:"accepted_at"`
	Labels       json.RawMessage `json:"labels"`
}

type wireEpicRef struct {
	ID int64 `json:"id"`
}

type wireEpic struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	Label               *wireLabel `json:"label"`
	CreatedAt           *string    `json:"created_at"`
	ProjectedCompletion *string    `json:"projected_completion"`
	CompletedAt         *string    `json:"completed_at"`
}

type wireIteration struct {
	Number  int             `json:"number"`
	Start   string          `json:"start"`
	Finish  string          `json:"finish"`
	Stories json.RawMessage `json:"stories"`
	// Some responses only carry story_ids.
	StoryIDs []int64 `json:"story_ids"`
}

type wireActivity struct {
	Kind       string `json:"kind"`
	Highlight  string `json:"highlight"`
	OccurredAt string `json:"occurred_at"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable timestamp %q", ErrInvalidResponse, s)
}

// parseOptionalTime treats absent, empty and unparsable values as unknown.
func parseOptionalTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil
	}
	return &t
}

// parseLabels accepts an array of {name} objects; any other shape is empty.
func parseLabels(raw json.RawMessage) []domain.Label {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}

	var wire []wireLabel
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil
	}

	labels := make([]domain.Label, 0, len(wire))
	for _, l := range wire {
		if l.Name == "" {
			continue
		}
		labels = append(labels, domain.Label{Name: l.Name})
	}
	return labels
}

func normalizeProject(w wireProject) (domain.Project, error) {
	created, err := parseTime(w.CreatedAt)
	if err != nil {
		return domain.Project{}, fmt.Errorf("project %d created_at: %w", w.ID, err)
	}
	return domain.Project{ID: w.ID, Name: w.Name, CreatedAt: created}, nil
}

func normalizeStory(w wireStory) (domain.Story, error) {
	created, err := parseTime(w.CreatedAt)
	if err != nil {
		return domain.Story{}, fmt.Errorf("story %d created_at: %w", w.ID, err)
	}
	return domain.Story{
		ID:           w.ID,
		Name:         w.Name,
		Description:  w.Description,
		URL:          w.URL,
		CurrentState: w.CurrentState,
		CreatedAt:    created,
		AcceptedAt:   parseOptionalTime(w.AcceptedAt),
		Labels:       parseLabels(w.Labels),
	}, nil
}

func normalizeEpic(w wireEpic) domain.Epic {
	epic := domain.Epic{
		ID:                  w.ID,
		Name:                w.Name,
		Description:         w.Description,
		CreatedAt:           parseOptionalTime(w.CreatedAt),
		ProjectedCompletion: parseOptionalTime(w.ProjectedCompletion),
		CompletedAt:         parseOptionalTime(w.CompletedAt),
	}
	if w.Label != nil {
		epic.Label = domain.Label{Name: w.Label.Name}
	}
	return epic
}

func normalizeIteration(w wireIteration) (domain.Iteration, error) {
	start, err := parseTime(w.Start)
	if err != nil {
		return domain.Iteration{}, fmt.Errorf("iteration %d start: %w", w.Number, err)
	}
	it := domain.Iteration{Number: w.Number, Start: start}
	if finish, err := parseTime(w.Finish); err == nil {
		it.Finish = finish
	}

	it.StoryIDs = iterationStoryIDs(w)
	return it, nil
}

// iterationStoryIDs reads stories as full objects, bare ids, or story_ids.
func iterationStoryIDs(w wireIteration) []int64 {
	raw := bytes.TrimSpace(w.Stories)
	if len(raw) > 0 && raw[0] == '[' {
		var refs []struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(raw, &refs); err == nil {
			ids := make([]int64, 0, len(refs))
			for _, r := range refs {
				ids = append(ids, r.ID)
			}
			return ids
		}
		var ids []int64
		if err := json.Unmarshal(raw, &ids); err == nil {
			return ids
		}
	}
	return append([]int64(nil), w.StoryIDs...)
}

// normalizeActivity drops events whose timestamp cannot be read; they can
// never contribute a start date.
func normalizeActivity(wire []wireActivity) []domain.Activity {
	events := make([]domain.Activity, 0, len(wire))
	for _, w := range wire {
		at, err := parseTime(w.OccurredAt)
		if err != nil {
			continue
		}
		events = append(events, domain.Activity{Kind: w.Kind, Highlight: w.Highlight, OccurredAt: at})
	}
	return events
}
