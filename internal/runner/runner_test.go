package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/h0rv/epicgantt/internal/config"
	"github.com/h0rv/epicgantt/internal/domain"
	"github.com/h0rv/epicgantt/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher is an in-memory tracker.
type fakeFetcher struct {
	project    domain.Project
	stories    []domain.Story
	epics      []domain.Epic
	iterations []domain.Iteration
	activity   map[int64][]domain.Activity

	storiesErr  error
	activityErr error
}

func (f *fakeFetcher) GetProject(context.Context, int64) (domain.Project, error) {
	return f.project, nil
}

func (f *fakeFetcher) ListStories(context.Context, int64) ([]domain.Story, error) {
	return f.stories, f.storiesErr
}

func (f *fakeFetcher) ListEpics(context.Context, int64) ([]domain.Epic, error) {
	return f.epics, nil
}

func (f *fakeFetcher) ListIterations(context.Context, int64) ([]domain.Iteration, error) {
	return f.iterations, nil
}

func (f *fakeFetcher) GetStoryActivity(_ context.Context, _ int64, storyID int64) ([]domain.Activity, error) {
	if f.activityErr != nil {
		return nil, f.activityErr
	}
	return f.activity[storyID], nil
}

func at(m time.Month, d int) *time.Time {
	t := time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newFixture() *fakeFetcher {
	label := func(n string) []domain.Label { return []domain.Label{{Name: n}} }
	return &fakeFetcher{
		project: domain.Project{ID: 77, Name: "Apollo", CreatedAt: *at(time.January, 1)},
		stories: []domain.Story{
			{ID: 1, Name: "Form", CurrentState: domain.StateAccepted, AcceptedAt: at(time.January, 20), Labels: label("login")},
			{ID: 2, Name: "Reset", CurrentState: domain.StateAccepted, AcceptedAt: at(time.February, 1), Labels: label("login")},
			{ID: 3, Name: "Invoices", CurrentState: domain.StateStarted, Labels: label("billing")},
			{ID: 4, Name: "Tax rules", CurrentState: domain.StateUnstarted, URL: "https://tracker.example/4", Labels: label("billing")},
		},
		epics: []domain.Epic{
			{ID: 200, Name: "Billing", Label: domain.Label{Name: "billing"}, CreatedAt: at(time.January, 1),
				ProjectedCompletion: at(time.March, 1), Description: "Money in"},
			{ID: 100, Name: "Login", Label: domain.Label{Name: "login"}, CreatedAt: at(time.January, 1),
				CompletedAt: at(time.February, 1)},
			{ID: 300, Name: "Unplanned", Label: domain.Label{Name: "none"}, CreatedAt: at(time.January, 1),
				ProjectedCompletion: at(time.April, 1)},
		},
		iterations: []domain.Iteration{{Number: 1, Start: *at(time.January, 22), StoryIDs: []int64{3, 4}}},
		activity: map[int64][]domain.Activity{
			1: {{Highlight: domain.HighlightStarted, OccurredAt: *at(time.January, 10)}},
		},
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.MaxConcurrency = 2
	return cfg
}

func TestRun_Gantt(t *testing.T) {
	var out, diag bytes.Buffer
	r := New(newFixture(), testConfig(), &out, &diag)

	err := r.Run(context.Background(), Request{ProjectID: 77, Mode: report.ModeGantt, Extra: "' legend"})
	require.NoError(t, err)

	want := "@startgantt\n" +
		"Project starts the 2024-01-01\n" +
		"[Login (Completed)] as [100] starts the 2024-01-10 and lasts 22 days and is colored in LightGreen/Black\n" +
		"[Billing] as [200] starts the 2024-01-22 and lasts 39 days and is colored in White/Black\n" +
		"' legend\n" +
		"@endgantt\n"
	assert.Equal(t, want, out.String())
	assert.Contains(t, diag.String(), "Login", "summary written to the diagnostic stream")
}

func TestRun_Narrative(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig()
	cfg.Summary = false
	r := New(newFixture(), cfg, &out, nil)

	err := r.Run(context.Background(), Request{ProjectID: 77, Mode: report.ModeNarrative})
	require.NoError(t, err)

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "# Apollo\n"))
	assert.Contains(t, s, "## Login (Completed)")
	assert.Contains(t, s, "## Billing\n")
	assert.Contains(t, s, "- [Tax rules](https://tracker.example/4)")
	assert.NotContains(t, s, "Unplanned")
}

func TestRun_FetchErrorWritesNothing(t *testing.T) {
	boom := errors.New("tracker down")
	f := newFixture()
	f.storiesErr = boom

	var out, diag bytes.Buffer
	err := New(f, testConfig(), &out, &diag).Run(context.Background(), Request{ProjectID: 77, Mode: report.ModeGantt})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, out.String())
	assert.Empty(t, diag.String())
}

func TestRun_ActivityErrorWritesNothing(t *testing.T) {
	boom := errors.New("activity down")
	f := newFixture()
	f.activityErr = boom

	var out bytes.Buffer
	err := New(f, testConfig(), &out, nil).Run(context.Background(), Request{ProjectID: 77, Mode: report.ModeGantt})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, out.String())
}

func TestRun_UnknownMode(t *testing.T) {
	var out bytes.Buffer
	err := New(newFixture(), testConfig(), &out, nil).Run(context.Background(), Request{ProjectID: 77, Mode: "svg"})
	assert.ErrorIs(t, err, report.ErrUnknownMode)
	assert.Empty(t, out.String())
}
