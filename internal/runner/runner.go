// Package runner wires one report run: fetch the project snapshot, index
// it, resolve epic timelines and render the chosen report.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/h0rv/epicgantt/internal/config"
	"github.com/h0rv/epicgantt/internal/domain"
	"github.com/h0rv/epicgantt/internal/logger"
	"github.com/h0rv/epicgantt/internal/report"
	"github.com/h0rv/epicgantt/internal/store"
	"github.com/h0rv/epicgantt/internal/timeline"
	"golang.org/x/sync/errgroup"
)

// Fetcher is the remote tracker as seen by a run. *tracker.Client implements it.
type Fetcher interface {
	GetProject(ctx context.Context, projectID int64) (domain.Project, error)
	ListStories(ctx context.Context, projectID int64) ([]domain.Story, error)
	ListEpics(ctx context.Context, projectID int64) ([]domain.Epic, error)
	ListIterations(ctx context.Context, projectID int64) ([]domain.Iteration, error)
	timeline.ActivitySource
}

// Request describes one run.
type Request struct {
	ProjectID int64
	Mode      report.Mode
	Extra     string // appended verbatim to the report
}

// Runner executes report runs against a fetcher.
type Runner struct {
	fetcher Fetcher
	cfg     config.Config
	out     io.Writer // report destination
	diag    io.Writer // summary destination; nil disables the summary
}

// New creates a runner. The report goes to out; the optional summary to diag.
func New(fetcher Fetcher, cfg config.Config, out, diag io.Writer) *Runner {
	return &Runner{fetcher: fetcher, cfg: cfg, out: out, diag: diag}
}

// snapshot is everything fetched for one run.
type snapshot struct {
	project    domain.Project
	stories    []domain.Story
	epics      []domain.Epic
	iterations []domain.Iteration
}

// Run fetches, resolves and renders. Nothing is written to out unless the
// whole run succeeds.
func (r *Runner) Run(ctx context.Context, req Request) error {
	ctx = logger.WithProject(ctx, req.ProjectID)
	log := logger.Get(ctx)

	renderer, err := report.New(report.Options{
		DateFormat:      r.cfg.DateFormat,
		WrapWidth:       r.cfg.WrapWidth,
		GanttSkipMarker: r.cfg.GanttSkipMarker,
		TextSkipMarker:  r.cfg.TextSkipMarker,
	})
	if err != nil {
		return err
	}

	snap, err := r.fetch(ctx, req.ProjectID)
	if err != nil {
		return err
	}
	log.Info().
		Str("project", snap.project.Name).
		Int("stories", len(snap.stories)).
		Int("epics", len(snap.epics)).
		Int("iterations", len(snap.iterations)).
		Msg("project fetched")

	index := store.Build(snap.stories, snap.iterations)
	resolver := timeline.NewResolver(index, r.fetcher, timeline.Options{
		GanttSkipMarker: r.cfg.GanttSkipMarker,
		TextSkipMarker:  r.cfg.TextSkipMarker,
		MaxConcurrency:  r.cfg.MaxConcurrency,
	})

	timelines, err := resolver.Resolve(ctx, snap.project, snap.epics)
	if err != nil {
		return fmt.Errorf("failed to resolve epic timelines: %w", err)
	}
	log.Info().Int("timelines", len(timelines)).Msg("epic timelines resolved")

	var buf bytes.Buffer
	data := report.Data{
		Project:   snap.project,
		Timelines: timelines,
		Index:     index,
		Extra:     req.Extra,
	}
	if err := renderer.Render(&buf, req.Mode, data); err != nil {
		return err
	}
	if _, err := buf.WriteTo(r.out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if r.cfg.Summary && r.diag != nil {
		if err := report.Summary(r.diag, timelines, r.cfg.DateFormat); err != nil {
			log.Warn().Err(err).Msg("failed to write summary")
		}
	}
	return nil
}

// fetch retrieves the project snapshot; the four collections are independent
// and fetched concurrently.
func (r *Runner) fetch(ctx context.Context, projectID int64) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := r.fetcher.GetProject(gctx, projectID)
		snap.project = p
		return err
	})
	g.Go(func() error {
		s, err := r.fetcher.ListStories(gctx, projectID)
		snap.stories = s
		return err
	})
	g.Go(func() error {
		e, err := r.fetcher.ListEpics(gctx, projectID)
		snap.epics = e
		return err
	})
	g.Go(func() error {
		it, err := r.fetcher.ListIterations(gctx, projectID)
		snap.iterations = it
		return err
	})

	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}
