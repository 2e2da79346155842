package store

import (
	"testing"
	"time"

	"github.com/h0rv/epicgantt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func labels(names ...string) []domain.Label {
	out := make([]domain.Label, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Label{Name: n})
	}
	return out
}

func createTestStories() []domain.Story {
	return []domain.Story{
		{ID: 1, Name: "Login form", CurrentState: domain.StateAccepted, CreatedAt: day(1), Labels: labels("auth")},
		{ID: 2, Name: "Password reset", CurrentState: domain.StateUnstarted, CreatedAt: day(2), Labels: labels("auth", "email")},
		{ID: 3, Name: "Welcome mail", CurrentState: domain.StateStarted, CreatedAt: day(3), Labels: labels("email")},
		{ID: 4, Name: "Icebox idea", CurrentState: domain.StateUnscheduled, CreatedAt: day(4), Labels: labels("auth")},
		{ID: 5, Name: "Unlabelled chore", CurrentState: domain.StatePlanned, CreatedAt: day(5)},
	}
}

func createTestIterations() []domain.Iteration {
	return []domain.Iteration{
		{Number: 3, Start: day(15), StoryIDs: []int64{3, 2}},
		{Number: 1, Start: day(1), StoryIDs: []int64{1}},
		{Number: 2, Start: day(8), StoryIDs: []int64{2}},
	}
}

// TestBuild verifies the label grouping
func TestBuild(t *testing.T) {
	s := Build(createTestStories(), createTestIterations())

	t.Run("stories grouped by label in fetch order", func(t *testing.T) {
		auth := s.StoriesForLabel("auth")
		require.Len(t, auth, 3)
		assert.Equal(t, []int64{1, 2, 4}, []int64{auth[0].ID, auth[1].ID, auth[2].ID})
	})

	t.Run("story with several labels appears under each", func(t *testing.T) {
		email := s.StoriesForLabel("email")
		require.Len(t, email, 2)
		assert.Equal(t, int64(2), email[0].ID)
		assert.Equal(t, int64(3), email[1].ID)
	})

	t.Run("unknown label is empty not nil", func(t *testing.T) {
		missing := s.StoriesForLabel("nope")
		assert.NotNil(t, missing)
		assert.Empty(t, missing)
	})

	t.Run("labels listed sorted", func(t *testing.T) {
		assert.Equal(t, []string{"auth", "email"}, s.Labels())
	})

	t.Run("all stories kept", func(t *testing.T) {
		assert.Len(t, s.Stories(), 5)
	})
}

func TestBuild_DuplicateLabelOnStory(t *testing.T) {
	s := Build([]domain.Story{{ID: 1, Labels: labels("x", "x")}}, nil)
	assert.Len(t, s.StoriesForLabel("x"), 1)
}

// TestStoriesForLabel_ReturnsCopy verifies callers cannot mutate the index
func TestStoriesForLabel_ReturnsCopy(t *testing.T) {
	s := Build(createTestStories(), nil)

	auth := s.StoriesForLabel("auth")
	auth[0].Name = "mutated"

	assert.Equal(t, "Login form", s.StoriesForLabel("auth")[0].Name)
}

func TestIterationLookups(t *testing.T) {
	s := Build(createTestStories(), createTestIterations())

	it, ok := s.Iteration(2)
	require.True(t, ok)
	assert.Equal(t, day(8), it.Start)

	_, ok = s.Iteration(99)
	assert.False(t, ok)

	n, ok := s.IterationNumber(1)
	require.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = s.IterationNumber(5)
	assert.False(t, ok, "story outside every iteration is not planned")
}

// TestIterationNumber_Collision verifies the lowest iteration wins regardless of fetch order
func TestIterationNumber_Collision(t *testing.T) {
	s := Build(createTestStories(), createTestIterations())

	n, ok := s.IterationNumber(2)
	require.True(t, ok)
	assert.Equal(t, 2, n, "story 2 is in iterations 3 and 2; 2 wins even though 3 was fetched first")

	reversed := createTestIterations()
	reversed[0], reversed[2] = reversed[2], reversed[0]
	n, ok = Build(createTestStories(), reversed).IterationNumber(2)
	require.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestEarliestIteration(t *testing.T) {
	s := Build(createTestStories(), createTestIterations())

	it, ok := s.EarliestIteration(s.StoriesForLabel("email"))
	require.True(t, ok)
	assert.Equal(t, 2, it.Number)

	_, ok = s.EarliestIteration([]domain.Story{{ID: 5}})
	assert.False(t, ok)

	_, ok = s.EarliestIteration(nil)
	assert.False(t, ok)
}

func TestNotStarted(t *testing.T) {
	s := Build(createTestStories(), nil)

	auth := s.NotStarted("auth")
	require.Len(t, auth, 2)
	assert.Equal(t, int64(2), auth[0].ID)
	assert.Equal(t, int64(4), auth[1].ID)

	assert.Empty(t, s.NotStarted("nope"))
}

func TestIsNotStarted(t *testing.T) {
	for _, state := range []string{domain.StateUnscheduled, domain.StateUnstarted, domain.StatePlanned} {
		assert.True(t, IsNotStarted(state), state)
	}
	for _, state := range []string{domain.StateStarted, domain.StateFinished, domain.StateDelivered, domain.StateRejected, domain.StateAccepted} {
		assert.False(t, IsNotStarted(state), state)
	}
}
