package state

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/htnguyen/novel-engine/pkg/conditionals"
	"github.com/htnguyen/novel-engine/pkg/story"
)

// ChoiceWorker encapsulates the logic for applying a selected choice to game
// state: effect resolution, flag setting, time advancement, node transition
// and day rollover. Steps execute in a fixed order with no reentrancy; the
// facade guards against overlapping invocations.
type ChoiceWorker struct {
	gs       *GameState
	registry *story.Registry
	logger   *slog.Logger
	now      func() time.Time
	roll     func() float64 // Uniform draw in [0,1) for chance outcomes
}

// Outcome reports what one choice application did, for the facade and the
// presentation layer.
type Outcome struct {
	Applied       bool  // False when the node or choice was stale/unknown (silent no-op)
	RolledOver    bool  // A day transition occurred
	Hospitalized  bool  // The hospitalization predicate fired during rollover
	EndingReached bool  // The story terminated; gs.EndingID is set
	RollSucceeded *bool // Set when the choice carried a chance roll
}

// NewChoiceWorker creates a worker bound to one game state and content registry.
func NewChoiceWorker(gs *GameState, registry *story.Registry, logger *slog.Logger) *ChoiceWorker {
	return &ChoiceWorker{
		gs:       gs,
		registry: registry,
		logger:   logger,
		now:      time.Now,
		roll:     rand.Float64,
	}
}

// WithClock overrides the timestamp source. Returns the worker for chaining.
func (cw *ChoiceWorker) WithClock(now func() time.Time) *ChoiceWorker {
	cw.now = now
	return cw
}

// WithRollSource overrides the uniform draw used for chance outcomes.
// Returns the worker for chaining.
func (cw *ChoiceWorker) WithRollSource(roll func() float64) *ChoiceWorker {
	cw.roll = roll
	return cw
}

// Apply runs the full choice-application sequence:
//
//  1. locate current node and choice (silent no-op when stale)
//  2. apply the time effect, clamping at the day boundary to midnight
//  3. apply remaining stat deltas, with the three-way sleepless semantics
//  4. set flags
//  5. append the history entry
//  6. resolve the chance roll, when present
//  7. resolve the next node, falling back to day rollover on any
//     content-integrity problem
//
// Persistence is the facade's final step, outside the worker.
func (cw *ChoiceWorker) Apply(choiceID string) Outcome {
	var out Outcome

	node := cw.registry.NodeByID(cw.gs.CurrentNodeID)
	if node == nil {
		cw.logger.Debug("Choice applied against missing node, ignoring",
			"node_id", cw.gs.CurrentNodeID,
			"choice_id", choiceID)
		return out
	}
	choice := node.ChoiceByID(choiceID)
	if choice == nil {
		cw.logger.Debug("Choice not found on current node, ignoring",
			"node_id", node.ID,
			"choice_id", choiceID)
		return out
	}
	out.Applied = true

	// Time is partitioned away from the stat deltas and applied first.
	if hours, ok := choice.Effects[EffectTime]; ok {
		cw.gs.Time = AddHours(cw.gs.Time, hours)
	}

	for key, delta := range choice.Effects {
		if key == EffectTime {
			continue
		}
		if !IsStatKey(key) {
			cw.logger.Warn("Unknown effect key in choice, ignoring",
				"node_id", node.ID,
				"choice_id", choice.ID,
				"key", key)
			continue
		}
		if key == StatSleeplessCount {
			cw.applySleepless(delta)
			continue
		}
		cw.gs.Stats = cw.gs.Stats.ApplyDelta(key, delta)
	}

	for _, name := range choice.Flags {
		cw.gs.SetFlag(name)
	}

	cw.gs.AppendHistory(node.ID, choice.ID, cw.now())

	next := choice.NextNode
	if choice.Roll != nil {
		success := cw.roll() < choice.Roll.Chance
		out.RollSucceeded = &success

		branchFlags := choice.Roll.FailFlags
		branchNext := choice.Roll.FailNext
		if success {
			branchFlags = choice.Roll.SuccessFlags
			branchNext = choice.Roll.SuccessNext
		}
		for _, name := range branchFlags {
			cw.gs.SetFlag(name)
		}
		if branchNext != "" {
			next = branchNext
		}
		cw.logger.Info("Chance roll resolved",
			"node_id", node.ID,
			"choice_id", choice.ID,
			"chance", choice.Roll.Chance,
			"success", success)
	}

	cw.resolveNext(next, &out)
	return out
}

// applySleepless implements the three-way sleepless_count interpretation:
// a value of 0 (or below) means "slept" and resets the counter, exactly 1
// means "stayed awake" and increments it, and any other positive value is an
// absolute set. It is deliberately not a plain delta; the hospital
// escalation rule depends on consecutive-night accumulation.
func (cw *ChoiceWorker) applySleepless(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	switch {
	case v <= 0:
		cw.gs.Stats = cw.gs.Stats.SetSleeplessCount(0)
	case v == 1:
		cw.gs.Stats = cw.gs.Stats.ApplyDelta(StatSleeplessCount, 1)
	default:
		cw.gs.Stats = cw.gs.Stats.SetSleeplessCount(v)
	}
}

// resolveNext transitions to the target node or falls back to day rollover.
// A missing target or a target whose visibility condition fails against the
// post-mutation state degrades to rollover with a warning; the engine never
// stays on the stale node.
func (cw *ChoiceWorker) resolveNext(next string, out *Outcome) {
	if next == "" || next == story.NextResolveDay {
		cw.ResolveNextDay(out)
		return
	}

	target := cw.registry.NodeByID(next)
	if target == nil {
		cw.logger.Warn("Next node not found, falling back to day rollover",
			"next_node", next)
		cw.ResolveNextDay(out)
		return
	}
	if !conditionals.Evaluate(target.Condition, cw.gs, cw.logger) {
		cw.logger.Warn("Next node condition false, falling back to day rollover",
			"next_node", next)
		cw.ResolveNextDay(out)
		return
	}

	cw.gs.CurrentNodeID = target.ID
	// A node-declared time pins the story beat, overriding the computed time.
	if target.Time != "" {
		cw.gs.Time = target.Time
	}
}

// ResolveNextDay advances the story to the next day: past the final day it
// evaluates the ending instead; otherwise it checks the hospitalization
// predicate once, routes to the recovery or normal start node, and adopts
// the target node's declared time.
func (cw *ChoiceWorker) ResolveNextDay(out *Outcome) {
	nextDay := cw.gs.Day + 1

	if nextDay > cw.registry.MaxDay() {
		cw.setEnding(out)
		return
	}

	var target *story.Node
	hospitalized := cw.gs.Stats.SleeplessCount >= 2 || cw.gs.Stats.Health <= 0
	if hospitalized {
		target = cw.registry.RecoveryNodeOfDay(nextDay)
		cw.applyHospitalPolicy(nextDay)
		out.Hospitalized = true
	} else {
		target = cw.registry.FirstNodeOfDay(nextDay)
	}

	if target == nil {
		cw.logger.Error("No start node for day, ending story", "day", nextDay)
		cw.setEnding(out)
		return
	}

	cw.gs.Day = nextDay
	cw.gs.CurrentNodeID = target.ID
	if target.Time != "" {
		cw.gs.Time = target.Time
	} else {
		cw.gs.Time = TimeMorning
	}
	out.RolledOver = true
}

// applyHospitalPolicy applies the content-defined hospitalization
// consequences exactly once per day transition and records the
// hospitalized_day flag that ending conditions key on.
func (cw *ChoiceWorker) applyHospitalPolicy(day int) {
	cw.gs.SetFlag(fmt.Sprintf("hospitalized_day%d", day))

	policy := cw.registry.Story().Hospital
	if policy == nil {
		return
	}

	cw.gs.Stats = cw.gs.Stats.SetStat(StatHealth, float64(policy.RecoveryHealth))
	cw.gs.Stats = cw.gs.Stats.ApplyDelta(StatStress, -policy.StressRelief)
	cw.gs.Stats = cw.gs.Stats.ApplyDelta(StatMoney, -policy.Cost)
	cw.gs.Stats = cw.gs.Stats.ApplyDelta(StatKnowledge, -policy.KnowledgePenalty)
	if policy.ResetSleepless {
		cw.gs.Stats = cw.gs.Stats.SetSleeplessCount(0)
	}

	cw.logger.Info("Hospitalization consequences applied",
		"day", day,
		"health", cw.gs.Stats.Health,
		"money", cw.gs.Stats.Money)
}

func (cw *ChoiceWorker) setEnding(out *Outcome) {
	ending := cw.registry.EvaluateEnding(cw.gs)
	cw.gs.EndingID = ending.ID
	out.EndingReached = true
	cw.logger.Info("Story ended", "ending_id", ending.ID, "day", cw.gs.Day)
}
