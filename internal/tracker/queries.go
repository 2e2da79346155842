package tracker

import (
	"context"
	"fmt"

	"github.com/h0rv/epicgantt/internal/domain"
	"github.com/h0rv/epicgantt/internal/logger"
	"golang.org/x/sync/errgroup"
)

// GetProject fetches a project by id.
func (c *Client) GetProject(ctx context.Context, projectID int64) (domain.Project, error) {
	var resp wireProject
	if err := c.makeRequest(ctx, fmt.Sprintf("/projects/%d", projectID), nil, &resp); err != nil {
		return domain.Project{}, fmt.Errorf("failed to get project: %w", err)
	}

	project, err := normalizeProject(resp)
	if err != nil {
		return domain.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListStories fetches every story of a project, page by page, in tracker order.
func (c *Client) ListStories(ctx context.Context, projectID int64) ([]domain.Story, error) {
	wire, err := paginate[wireStory](ctx, c, fmt.Sprintf("/projects/%d/stories", projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	stories := make([]domain.Story, 0, len(wire))
	for _, w := range wire {
		story, err := normalizeStory(w)
		if err != nil {
			return nil, fmt.Errorf("failed to list stories: %w", err)
		}
		stories = append(stories, story)
	}

	logger.Get(ctx).Debug().Int("stories", len(stories)).Msg("stories fetched")
	return stories, nil
}

// ListEpics lists the project's epic ids and then fetches each epic's detail
// concurrently. The result keeps the listing order.
func (c *Client) ListEpics(ctx context.Context, projectID int64) ([]domain.Epic, error) {
	var refs []wireEpicRef
	if err := c.makeRequest(ctx, fmt.Sprintf("/projects/%d/epics", projectID), nil, &refs); err != nil {
		return nil, fmt.Errorf("failed to list epics: %w", err)
	}

	epics := make([]domain.Epic, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)
	for i, ref := range refs {
		i, ref := i, ref // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			epic, err := c.GetEpic(gctx, projectID, ref.ID)
			if err != nil {
				return err
			}
			epics[i] = epic
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list epics: %w", err)
	}

	logger.Get(ctx).Debug().Int("epics", len(epics)).Msg("epics fetched")
	return epics, nil
}

// GetEpic fetches a single epic's detail.
func (c *Client) GetEpic(ctx context.Context, projectID, epicID int64) (domain.Epic, error) {
	var resp wireEpic
	if err := c.makeRequest(ctx, fmt.Sprintf("/projects/%d/epics/%d", projectID, epicID), nil, &resp); err != nil {
		return domain.Epic{}, fmt.Errorf("failed to get epic %d: %w", epicID, err)
	}
	return normalizeEpic(resp), nil
}

// ListIterations fetches every iteration of a project in tracker order.
func (c *Client) ListIterations(ctx context.Context, projectID int64) ([]domain.Iteration, error) {
	wire, err := paginate[wireIteration](ctx, c, fmt.Sprintf("/projects/%d/iterations", projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list iterations: %w", err)
	}

	iterations := make([]domain.Iteration, 0, len(wire))
	for _, w := range wire {
		it, err := normalizeIteration(w)
		if err != nil {
			return nil, fmt.Errorf("failed to list iterations: %w", err)
		}
		iterations = append(iterations, it)
	}
	return iterations, nil
}

// GetStoryActivity fetches a story's activity feed in tracker order.
func (c *Client) GetStoryActivity(ctx context.Context, projectID, storyID int64) ([]domain.Activity, error) {
	wire, err := paginate[wireActivity](ctx, c, fmt.Sprintf("/projects/%d/stories/%d/activity", projectID, storyID))
	if err != nil {
		return nil, fmt.Errorf("failed to get activity for story %d: %w", storyID, err)
	}
	return normalizeActivity(wire), nil
}
