// Package store provides the in-memory lookup tables built from one fetch:
// stories grouped by label, iterations by number, and the iteration each
// story is planned in. A Store is built once and only read afterwards, so it
// is safe for concurrent use.
package store

import (
	"slices"

	"github.com/h0rv/epicgantt/internal/domain"
)

// Store holds the read-only label and iteration indexes of a project.
type Store struct {
	stories []domain.Story

	// label name -> stories carrying it, in fetch order
	byLabel map[string][]domain.Story

	// iteration number -> iteration
	iterations map[int]domain.Iteration

	// story id -> number of the iteration containing it
	storyIteration map[int64]int
}

// Build indexes stories and iterations.
//
// A story listed in more than one iteration is attributed to the lowest
// iteration number, whatever order the iterations were fetched in.
func Build(stories []domain.Story, iterations []domain.Iteration) *Store {
	s := &Store{
		stories:        stories,
		byLabel:        make(map[string][]domain.Story),
		iterations:     make(map[int]domain.Iteration, len(iterations)),
		storyIteration: make(map[int64]int),
	}

	for _, story := range stories {
		seen := make(map[string]bool, len(story.Labels))
		for _, label := range story.Labels {
			// A label repeated on one story still lists the story once.
			if seen[label.Name] {
				continue
			}
			seen[label.Name] = true
			s.byLabel[label.Name] = append(s.byLabel[label.Name], story)
		}
	}

	for _, it := range iterations {
		s.iterations[it.Number] = it
		for _, id := range it.StoryIDs {
			if current, ok := s.storyIteration[id]; ok && current <= it.Number {
				continue
			}
			s.storyIteration[id] = it.Number
		}
	}

	return s
}

// Stories returns every indexed story in fetch order.
func (s *Store) Stories() []domain.Story {
	return slices.Clone(s.stories)
}

// StoriesForLabel returns the stories carrying the label, in fetch order.
// An unknown label yields an empty slice.
func (s *Store) StoriesForLabel(name string) []domain.Story {
	stories, ok := s.byLabel[name]
	if !ok {
		return []domain.Story{}
	}
	return slices.Clone(stories)
}

// Labels returns the names of all labels carried by at least one story, sorted.
func (s *Store) Labels() []string {
	names := make([]string, 0, len(s.byLabel))
	for name := range s.byLabel {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Iteration returns the iteration with the given number.
func (s *Store) Iteration(number int) (domain.Iteration, bool) {
	it, ok := s.iterations[number]
	return it, ok
}

// IterationNumber returns the number of the iteration a story is planned in.
// ok is false for stories that are not in any iteration.
func (s *Store) IterationNumber(storyID int64) (number int, ok bool) {
	number, ok = s.storyIteration[storyID]
	return number, ok
}

// EarliestIteration returns the lowest-numbered iteration containing any of
// the given stories.
func (s *Store) EarliestIteration(stories []domain.Story) (domain.Iteration, bool) {
	best, found := 0, false
	for _, story := range stories {
		n, ok := s.storyIteration[story.ID]
		if !ok {
			continue
		}
		if !found || n < best {
			best, found = n, true
		}
	}
	if !found {
		return domain.Iteration{}, false
	}
	return s.Iteration(best)
}

// NotStarted returns the label's stories that nobody has begun working on.
func (s *Store) NotStarted(label string) []domain.Story {
	var result []domain.Story
	for _, story := range s.byLabel[label] {
		if IsNotStarted(story.CurrentState) {
			result = append(result, story)
		}
	}
	return result
}

// IsNotStarted reports whether a story state precedes active work.
func IsNotStarted(state string) bool {
	switch state {
	case domain.StateUnscheduled, domain.StateUnstarted, domain.StatePlanned:
		return true
	default:
		return false
	}
}
