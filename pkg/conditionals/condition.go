package conditionals

import (
	"log/slog"
	"sync"
)

// GameStateView provides the minimal interface needed to evaluate conditions
// This avoids import cycles with the state package
type GameStateView interface {
	GetDay() int
	GetTime() string
	GetStat(key string) int
	GetFlag(name string) bool
}

// Condition is a serializable predicate over game state. All populated clauses
// must hold for the condition to pass (conjunction). Use AnyOf for disjunction
// and Not for negation.
//
// Conditions are data, never closures, so content stays serializable across
// the persistence boundary. Content defined in Go may reference a named
// predicate registered with RegisterPredicate.
type Condition struct {
	Flags     map[string]bool    `json:"flags,omitempty" yaml:"flags,omitempty"`           // Required flag values; an absent flag reads as false
	MinStats  map[string]int     `json:"min_stats,omitempty" yaml:"min_stats,omitempty"`   // Stat >= value
	MaxStats  map[string]int     `json:"max_stats,omitempty" yaml:"max_stats,omitempty"`   // Stat <= value
	MinDay    *int               `json:"min_day,omitempty" yaml:"min_day,omitempty"`       // Day >= value
	MaxDay    *int               `json:"max_day,omitempty" yaml:"max_day,omitempty"`       // Day <= value
	Time      string             `json:"time,omitempty" yaml:"time,omitempty"`             // Exact time label match
	Predicate string             `json:"predicate,omitempty" yaml:"predicate,omitempty"`   // Named predicate resolved through the registry
	AnyOf     []Condition        `json:"any_of,omitempty" yaml:"any_of,omitempty"`         // At least one must hold
	Not       *Condition         `json:"not,omitempty" yaml:"not,omitempty"`               // Must not hold
}

// PredicateFunc is an in-process predicate for content defined in Go.
// Predicates never cross the persistence boundary; saves reference them by name.
type PredicateFunc func(view GameStateView) bool

var (
	predicateMu  sync.RWMutex
	predicates   = make(map[string]PredicateFunc)
)

// RegisterPredicate makes a named predicate available to Condition.Predicate clauses.
// Re-registering a name replaces the previous function.
func RegisterPredicate(name string, fn PredicateFunc) {
	predicateMu.Lock()
	defer predicateMu.Unlock()
	predicates[name] = fn
}

// LookupPredicate reports whether a named predicate is registered.
func LookupPredicate(name string) bool {
	predicateMu.RLock()
	defer predicateMu.RUnlock()
	_, ok := predicates[name]
	return ok
}

// Evaluate checks whether the condition holds for the given state view.
// A nil condition always holds: content without a condition is unconditional.
// A named predicate that panics is treated as false rather than aborting the
// caller's evaluation loop.
func Evaluate(c *Condition, view GameStateView, logger *slog.Logger) bool {
	if c == nil {
		return true
	}

	for name, want := range c.Flags {
		if view.GetFlag(name) != want {
			return false
		}
	}

	for key, min := range c.MinStats {
		if view.GetStat(key) < min {
			return false
		}
	}

	for key, max := range c.MaxStats {
		if view.GetStat(key) > max {
			return false
		}
	}

	if c.MinDay != nil && view.GetDay() < *c.MinDay {
		return false
	}

	if c.MaxDay != nil && view.GetDay() > *c.MaxDay {
		return false
	}

	if c.Time != "" && view.GetTime() != c.Time {
		return false
	}

	if c.Predicate != "" {
		if !evaluatePredicate(c.Predicate, view, logger) {
			return false
		}
	}

	if len(c.AnyOf) > 0 {
		matched := false
		for i := range c.AnyOf {
			if Evaluate(&c.AnyOf[i], view, logger) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if c.Not != nil && Evaluate(c.Not, view, logger) {
		return false
	}

	return true
}

// evaluatePredicate runs a named predicate, recovering from panics.
// A missing or panicking predicate evaluates to false.
func evaluatePredicate(name string, view GameStateView, logger *slog.Logger) (result bool) {
	predicateMu.RLock()
	fn, ok := predicates[name]
	predicateMu.RUnlock()

	if !ok {
		if logger != nil {
			logger.Warn("Unknown predicate in condition", "predicate", name)
		}
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Warn("Predicate panicked during evaluation",
					"predicate", name,
					"panic", r)
			}
			result = false
		}
	}()

	return fn(view)
}
