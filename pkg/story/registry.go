package story

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/htnguyen/novel-engine/pkg/conditionals"
)

// Registry provides lookup over a story's static content. Content is
// immutable for the lifetime of the process; there are no mutation methods.
// Lookups for unknown identifiers return nil rather than erroring, so
// malformed or partial content degrades gracefully instead of crashing a
// running session. Callers must handle nil explicitly.
type Registry struct {
	story  *Story
	logger *slog.Logger
}

// NewRegistry wraps a story content table for lookup.
func NewRegistry(s *Story, logger *slog.Logger) *Registry {
	s.normalize()
	return &Registry{story: s, logger: logger}
}

// Story returns the underlying content table.
func (r *Registry) Story() *Story {
	return r.story
}

// MaxDay returns the last playable day of the story.
func (r *Registry) MaxDay() int {
	return r.story.MaxDay
}

// NodeByID returns the node with the given id, or nil if unknown.
func (r *Registry) NodeByID(id string) *Node {
	if id == "" {
		return nil
	}
	node, ok := r.story.Nodes[id]
	if !ok {
		return nil
	}
	return &node
}

// FirstNodeOfDay returns the node a day opens on. It prefers the
// "day%d_start" naming convention; when that node is missing it falls back
// to the first node (lowest id) whose day field matches, with a warning so
// content authors can see the convention gap. Returns nil when the day has
// no nodes at all.
func (r *Registry) FirstNodeOfDay(day int) *Node {
	if node := r.NodeByID(fmt.Sprintf("day%d_start", day)); node != nil {
		return node
	}

	ids := make([]string, 0)
	for id, node := range r.story.Nodes {
		if node.Day == day {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Strings(ids)

	if r.logger != nil {
		r.logger.Warn("Day start node missing, falling back to first node of day",
			"day", day,
			"expected", fmt.Sprintf("day%d_start", day),
			"fallback", ids[0])
	}
	return r.NodeByID(ids[0])
}

// RecoveryNodeOfDay returns the post-hospital node for a day, preferring the
// "day%d_start_after_hospital" convention and falling back to the day's
// normal start node when no recovery node is defined.
func (r *Registry) RecoveryNodeOfDay(day int) *Node {
	if node := r.NodeByID(fmt.Sprintf("day%d_start_after_hospital", day)); node != nil {
		return node
	}
	if r.logger != nil {
		r.logger.Warn("Recovery node missing, falling back to day start",
			"day", day,
			"expected", fmt.Sprintf("day%d_start_after_hospital", day))
	}
	return r.FirstNodeOfDay(day)
}

// EndingsInPriorityOrder returns the ending list in its fixed priority order.
func (r *Registry) EndingsInPriorityOrder() []Ending {
	return r.story.Endings
}

// Achievements returns the achievement definitions.
func (r *Registry) Achievements() []Achievement {
	return r.story.Achievements
}

// EvaluateEnding scans the priority-ordered ending list against the given
// state and returns the first match. A condition that panics is treated as
// false and evaluation continues with the next ending. When nothing matches,
// the story's default ending is returned.
func (r *Registry) EvaluateEnding(view conditionals.GameStateView) Ending {
	for _, ending := range r.story.Endings {
		if r.safeEvaluate(ending.Condition, view, "ending", ending.ID) {
			return ending
		}
	}

	for _, ending := range r.story.Endings {
		if ending.ID == r.story.DefaultEndingID {
			return ending
		}
	}
	return Ending{ID: r.story.DefaultEndingID, Title: "The End"}
}

// EvaluateAchievements collects every achievement whose condition holds and
// is not already unlocked. Conditions that panic are skipped.
func (r *Registry) EvaluateAchievements(view conditionals.GameStateView, unlocked map[string]bool) []Achievement {
	var newly []Achievement
	for _, a := range r.story.Achievements {
		if unlocked[a.ID] {
			continue
		}
		if r.safeEvaluate(a.Condition, view, "achievement", a.ID) {
			newly = append(newly, a)
		}
	}
	return newly
}

// safeEvaluate evaluates a condition, converting any panic into false so a
// broken predicate never aborts evaluation of its siblings.
func (r *Registry) safeEvaluate(c *conditionals.Condition, view conditionals.GameStateView, kind, id string) (result bool) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.logger != nil {
				r.logger.Warn("Condition panicked during evaluation",
					"kind", kind,
					"id", id,
					"panic", rec)
			}
			result = false
		}
	}()
	return conditionals.Evaluate(c, view, r.logger)
}
