package engine

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/htnguyen/novel-engine/internal/storage"
	"github.com/htnguyen/novel-engine/pkg/conditionals"
	"github.com/htnguyen/novel-engine/pkg/state"
	"github.com/htnguyen/novel-engine/pkg/story"
)

// Engine is the single state container exposed to the presentation layer.
// It owns the mutable snapshot exclusively; all mutation goes through
// NewGame, ContinueGame, and SelectChoice.
//
// Reentrancy: a user can fire the choice path repeatedly before a transition
// completes (double-click, stale timers). The processing flag makes
// overlapping invocations no-ops; the mutex stays held for the whole
// application so concurrent readers never observe a half-applied snapshot.
type Engine struct {
	mu         sync.Mutex
	processing atomic.Bool

	id       uuid.UUID // Session id; also the save key. Stable across NewGame.
	gs       *state.GameState
	registry *story.Registry
	store    storage.SaveStore
	logger   *slog.Logger

	unlocked    map[string]bool
	unlockQueue []story.Achievement

	now  func() time.Time
	roll func() float64
}

// New creates an engine for one play session. No snapshot exists until
// NewGame or ContinueGame runs.
func New(registry *story.Registry, store storage.SaveStore, logger *slog.Logger) *Engine {
	return &Engine{
		id:       uuid.New(),
		registry: registry,
		store:    store,
		logger:   logger,
		unlocked: make(map[string]bool),
		now:      time.Now,
		roll:     rand.Float64,
	}
}

// WithSessionID pins the session id (and save key). Returns the engine for chaining.
func (e *Engine) WithSessionID(id uuid.UUID) *Engine {
	e.id = id
	return e
}

// WithClock overrides the timestamp source. Returns the engine for chaining.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithRollSource overrides the uniform draw used for chance outcomes.
// Returns the engine for chaining.
func (e *Engine) WithRollSource(roll func() float64) *Engine {
	e.roll = roll
	return e
}

// SessionID returns the engine's session id.
func (e *Engine) SessionID() uuid.UUID {
	return e.id
}

// NewGame resets to the initial snapshot and deletes any persisted save.
// Achievement unlocks are kept; they are monotonic across runs. A reset is
// refused while a choice application is in flight, so the application can
// never re-persist a snapshot the reset just deleted.
func (e *Engine) NewGame(ctx context.Context) error {
	if e.processing.Load() {
		return errApplyInFlight
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.registry.FirstNodeOfDay(1)
	if start == nil {
		return errNoStartNode
	}

	st := e.registry.Story()
	initial := state.DefaultStats()
	for key, value := range st.InitialStats {
		initial = initial.SetStat(key, value)
	}

	startTime := start.Time
	if startTime == "" {
		startTime = st.InitialTime
	}

	gs := state.NewGameState(initial, startTime)
	gs.ID = e.id
	gs.CurrentNodeID = start.ID
	e.gs = gs
	e.unlockQueue = nil

	if err := e.store.DeleteSnapshot(ctx, e.id); err != nil {
		e.logger.Warn("Failed to delete previous save", "error", err)
	}
	if unlocked, err := e.store.LoadUnlocks(ctx, e.id); err == nil {
		for _, id := range unlocked {
			e.unlocked[id] = true
		}
	}

	return nil
}

// ContinueGame attempts to restore the persisted snapshot. It reports
// whether a valid save existed; on any problem the answer is simply false.
// Like NewGame, it is refused while a choice application is in flight.
func (e *Engine) ContinueGame(ctx context.Context) bool {
	if e.processing.Load() {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	gs, err := e.store.LoadSnapshot(ctx, e.id)
	if err != nil {
		e.logger.Error("Failed to load save", "error", err)
		return false
	}
	if gs == nil {
		return false
	}

	gs.ID = e.id
	e.gs = gs

	if unlocked, err := e.store.LoadUnlocks(ctx, e.id); err == nil {
		for _, id := range unlocked {
			e.unlocked[id] = true
		}
	}

	return true
}

// SelectChoice is the sole mutation entry point during play. It applies the
// selected choice through the full resolver sequence and persists the new
// snapshot as the final step. Invocations are ignored while another
// application is in flight, before NewGame, or after an ending.
func (e *Engine) SelectChoice(ctx context.Context, choiceID string) state.Outcome {
	// The flag is taken before the mutex so a reentrant invocation (from a
	// roll source or clock) bails out instead of deadlocking. The mutex then
	// stays held through the whole application, including persistence.
	if !e.processing.CompareAndSwap(false, true) {
		return state.Outcome{}
	}
	defer e.processing.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gs == nil || e.gs.IsEnded() {
		return state.Outcome{}
	}

	worker := state.NewChoiceWorker(e.gs, e.registry, e.logger).
		WithClock(e.now).
		WithRollSource(e.roll)

	out := worker.Apply(choiceID)
	if !out.Applied {
		return out
	}

	if out.EndingReached {
		e.evaluateAchievements(ctx)
	}

	// Persistence is the final step of every successful application.
	if err := e.store.SaveSnapshot(ctx, e.id, e.gs); err != nil {
		e.logger.Error("Failed to persist snapshot", "error", err)
	}

	return out
}

// evaluateAchievements unlocks every newly-matching achievement, queues it
// for the presentation layer, and persists the unlock set immediately.
func (e *Engine) evaluateAchievements(ctx context.Context) {
	newly := e.registry.EvaluateAchievements(e.gs, e.unlocked)
	if len(newly) == 0 {
		return
	}

	for _, a := range newly {
		e.unlocked[a.ID] = true
		e.unlockQueue = append(e.unlockQueue, a)
	}

	ids := make([]string, 0, len(e.unlocked))
	for id := range e.unlocked {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if err := e.store.SaveUnlocks(ctx, e.id, ids); err != nil {
		e.logger.Error("Failed to persist achievement unlocks", "error", err)
	}
}

// CurrentNode returns the node the story is on, or nil before NewGame or
// when the content graph is broken.
func (e *Engine) CurrentNode() *story.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gs == nil {
		return nil
	}
	return e.registry.NodeByID(e.gs.CurrentNodeID)
}

// AvailableChoices returns the current node's choices filtered by their
// conditions against current state.
func (e *Engine) AvailableChoices() []story.Choice {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gs == nil || e.gs.IsEnded() {
		return nil
	}
	node := e.registry.NodeByID(e.gs.CurrentNodeID)
	if node == nil {
		return nil
	}

	available := make([]story.Choice, 0, len(node.Choices))
	for _, c := range node.Choices {
		if conditionals.Evaluate(c.Condition, e.gs, e.logger) {
			available = append(available, c)
		}
	}
	return available
}

// Stats returns a copy of the current stat vector.
func (e *Engine) Stats() state.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gs == nil {
		return state.Stats{}
	}
	return e.gs.Stats
}

// Flags returns a copy of the current flag map.
func (e *Engine) Flags() map[string]bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	flags := make(map[string]bool)
	if e.gs == nil {
		return flags
	}
	for name, v := range e.gs.Flags {
		flags[name] = v
	}
	return flags
}

// Day returns the current in-game day, or 0 before NewGame.
func (e *Engine) Day() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gs == nil {
		return 0
	}
	return e.gs.Day
}

// Time returns the current time-of-day label.
func (e *Engine) Time() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gs == nil {
		return ""
	}
	return e.gs.Time
}

// EndingID returns the reached ending id; non-empty signals game over.
func (e *Engine) EndingID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gs == nil {
		return ""
	}
	return e.gs.EndingID
}

// History returns a copy of the choice history for the recap screen.
func (e *Engine) History() []state.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gs == nil {
		return nil
	}
	return append([]state.HistoryEntry(nil), e.gs.History...)
}

// Snapshot returns the current game state for read-only serialization by
// the transport layer.
func (e *Engine) Snapshot() *state.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gs
}

// PendingUnlocks drains the queue of achievements unlocked since the last
// call, for the presentation layer to display.
func (e *Engine) PendingUnlocks() []story.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	pending := e.unlockQueue
	e.unlockQueue = nil
	return pending
}

// UnlockedAchievements returns every achievement unlocked so far, in
// definition order.
func (e *Engine) UnlockedAchievements() []story.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []story.Achievement
	for _, a := range e.registry.Achievements() {
		if e.unlocked[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

type engineError string

func (e engineError) Error() string { return string(e) }

const (
	errNoStartNode   = engineError("story has no start node for day 1")
	errApplyInFlight = engineError("a choice application is in flight")
)
