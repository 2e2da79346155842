// Package timeline derives a schedule for every epic of a project from its
// stories' activity, the iteration plan and the epic's own dates.
package timeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/h0rv/epicgantt/internal/domain"
	"github.com/h0rv/epicgantt/internal/logger"
	"golang.org/x/sync/errgroup"
)

// ActivitySource fetches a story's activity feed.
type ActivitySource interface {
	GetStoryActivity(ctx context.Context, projectID, storyID int64) ([]domain.Activity, error)
}

// StoryIndex is the read-only view of the label and iteration indexes.
type StoryIndex interface {
	StoriesForLabel(name string) []domain.Story
	EarliestIteration(stories []domain.Story) (domain.Iteration, bool)
}

// Options tune the resolver.
type Options struct {
	GanttSkipMarker string
	TextSkipMarker  string
	MaxConcurrency  int // <= 0 means unbounded
}

// Resolver computes epic timelines.
type Resolver struct {
	index    StoryIndex
	activity ActivitySource
	opts     Options
}

// NewResolver creates a resolver over an index and an activity source.
func NewResolver(index StoryIndex, activity ActivitySource, opts Options) *Resolver {
	return &Resolver{index: index, activity: activity, opts: opts}
}

// Resolve computes the timeline of every schedulable epic, each epic
// independently, and returns them sorted by effective start. Any activity
// fetch failure aborts the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, project domain.Project, epics []domain.Epic) ([]domain.EpicTimeline, error) {
	results := make([]*domain.EpicTimeline, len(epics))

	g, gctx := errgroup.WithContext(ctx)
	r.limit(g)
	for i, epic := range epics {
		i, epic := i, epic // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			tl, err := r.ResolveEpic(gctx, project, epic)
			if err != nil {
				return err
			}
			results[i] = tl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	timelines := make([]domain.EpicTimeline, 0, len(results))
	for _, tl := range results {
		if tl != nil {
			timelines = append(timelines, *tl)
		}
	}
	SortByStart(timelines)
	return timelines, nil
}

// ResolveEpic computes one epic's timeline. It returns nil, nil when the
// epic cannot be scheduled.
func (r *Resolver) ResolveEpic(ctx context.Context, project domain.Project, epic domain.Epic) (*domain.EpicTimeline, error) {
	log := logger.Get(ctx).With().Int64("epic_id", epic.ID).Str("epic", epic.Name).Logger()

	if !Eligible(epic) {
		log.Debug().Msg("skipping epic without creation and target dates")
		return nil, nil
	}

	stories := scheduledStories(r.index.StoriesForLabel(epic.Label.Name))
	if len(stories) == 0 {
		log.Debug().Str("label", epic.Label.Name).Msg("skipping epic without scheduled stories")
		return nil, nil
	}

	accepted := 0
	for _, s := range stories {
		if s.CurrentState == domain.StateAccepted {
			accepted++
		}
	}
	percent := CompletionPercent(accepted, len(stories))

	start, ok, err := r.resolveStart(ctx, project.ID, stories)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve start of epic %d: %w", epic.ID, err)
	}
	if !ok {
		log.Warn().Msg("skipping epic: no started story and no planned iteration")
		return nil, nil
	}
	start = ClampStart(start, project.CreatedAt)

	allAccepted := accepted == len(stories)
	end := resolveEnd(epic, stories, allAccepted)

	status := domain.StatusInProgress
	switch {
	case allAccepted:
		status = domain.StatusCompleted
	case percent == 0:
		status = domain.StatusNotStarted
	}

	duration := DurationDays(start, end)
	if duration < 0 {
		log.Warn().Time("start", start).Time("end", end).Msg("epic ends before it starts")
	}

	look := Policy(percent)
	return &domain.EpicTimeline{
		EpicID:            epic.ID,
		Name:              epic.Name,
		Description:       epic.Description,
		Label:             epic.Label.Name,
		StartsAt:          start,
		EndsAt:            end,
		DurationDays:      duration,
		CompletionPercent: percent,
		Color:             look.Color,
		StatusText:        look.Text,
		Status:            status,
		SkipGantt:         hasMarker(epic.Description, r.opts.GanttSkipMarker),
		SkipText:          hasMarker(epic.Description, r.opts.TextSkipMarker),
	}, nil
}

// resolveStart prefers the earliest "started" event of any story and falls
// back to the earliest iteration holding one of the stories. Story creation
// dates are deliberately not consulted.
func (r *Resolver) resolveStart(ctx context.Context, projectID int64, stories []domain.Story) (time.Time, bool, error) {
	started := make([]*time.Time, len(stories))

	g, gctx := errgroup.WithContext(ctx)
	r.limit(g)
	for i, story := range stories {
		i, story := i, story // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			events, err := r.activity.GetStoryActivity(gctx, projectID, story.ID)
			if err != nil {
				return err
			}
			started[i] = StartedAt(events)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return time.Time{}, false, err
	}

	var earliest *time.Time
	for _, at := range started {
		if at != nil && (earliest == nil || at.Before(*earliest)) {
			earliest = at
		}
	}
	if earliest != nil {
		return *earliest, true, nil
	}

	if it, ok := r.index.EarliestIteration(stories); ok {
		return it.Start, true, nil
	}
	return time.Time{}, false, nil
}

// resolveEnd uses the last acceptance for finished epics and the projected
// completion otherwise, falling back to whichever epic date exists.
func resolveEnd(epic domain.Epic, stories []domain.Story, allAccepted bool) time.Time {
	if allAccepted {
		var last *time.Time
		for _, s := range stories {
			if s.AcceptedAt != nil && (last == nil || s.AcceptedAt.After(*last)) {
				last = s.AcceptedAt
			}
		}
		if last != nil {
			return *last
		}
		if epic.CompletedAt != nil {
			return *epic.CompletedAt
		}
		return *epic.ProjectedCompletion
	}

	if epic.ProjectedCompletion != nil {
		return *epic.ProjectedCompletion
	}
	return *epic.CompletedAt
}

func scheduledStories(stories []domain.Story) []domain.Story {
	result := make([]domain.Story, 0, len(stories))
	for _, s := range stories {
		if s.CurrentState != domain.StateUnscheduled {
			result = append(result, s)
		}
	}
	return result
}

func hasMarker(description, marker string) bool {
	return marker != "" && strings.Contains(description, marker)
}

func (r *Resolver) limit(g *errgroup.Group) {
	if r.opts.MaxConcurrency > 0 {
		g.SetLimit(r.opts.MaxConcurrency)
	}
}
