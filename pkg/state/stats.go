package state

import "math"

// Stat keys, matching the effect keys used in story content.
const (
	StatKnowledge      = "knowledge"
	StatHealth         = "health"
	StatStress         = "stress"
	StatConsciousness  = "consciousness"
	StatSleeplessCount = "sleepless_count"
	StatMoney          = "money"
)

// EffectTime is the reserved effect key for time advancement, in hours.
// It is partitioned away from stat deltas by the choice worker.
const EffectTime = "time"

// StatKeys lists every valid stat key.
var StatKeys = []string{
	StatKnowledge,
	StatHealth,
	StatStress,
	StatConsciousness,
	StatSleeplessCount,
	StatMoney,
}

// Stats is the player's numeric state vector. The percentage stats are
// clamped to [0,100] on every write; sleepless_count and money are clamped
// to >= 0 with no upper bound.
type Stats struct {
	Knowledge      int `json:"knowledge"`
	Health         int `json:"health"`
	Stress         int `json:"stress"`
	Consciousness  int `json:"consciousness"`
	SleeplessCount int `json:"sleepless_count"`
	Money          int `json:"money"`
}

// DefaultStats returns the starting stat vector used when a story's content
// table does not override individual fields.
func DefaultStats() Stats {
	return Stats{
		Knowledge:      50,
		Health:         70,
		Stress:         0,
		Consciousness:  50,
		SleeplessCount: 0,
		Money:          200000,
	}
}

// Get returns the value of a stat by key, or 0 for an unknown key.
func (s Stats) Get(key string) int {
	switch key {
	case StatKnowledge:
		return s.Knowledge
	case StatHealth:
		return s.Health
	case StatStress:
		return s.Stress
	case StatConsciousness:
		return s.Consciousness
	case StatSleeplessCount:
		return s.SleeplessCount
	case StatMoney:
		return s.Money
	}
	return 0
}

// ApplyDelta returns a copy of the stats with delta added to the given key,
// clamped per the key's range. The receiver is never mutated. A NaN, infinite,
// or unknown-key delta is a no-op rather than corrupting the vector.
func (s Stats) ApplyDelta(key string, delta float64) Stats {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return s
	}

	switch key {
	case StatKnowledge:
		s.Knowledge = clampPercent(float64(s.Knowledge) + delta)
	case StatHealth:
		s.Health = clampPercent(float64(s.Health) + delta)
	case StatStress:
		s.Stress = clampPercent(float64(s.Stress) + delta)
	case StatConsciousness:
		s.Consciousness = clampPercent(float64(s.Consciousness) + delta)
	case StatSleeplessCount:
		s.SleeplessCount = clampFloor(float64(s.SleeplessCount) + delta)
	case StatMoney:
		s.Money = clampFloor(float64(s.Money) + delta)
	}
	return s
}

// SetStat returns a copy with the given key set to an absolute value,
// clamped per the key's range. Unknown keys and non-finite values are no-ops.
func (s Stats) SetStat(key string, value float64) Stats {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return s
	}

	switch key {
	case StatKnowledge:
		s.Knowledge = clampPercent(value)
	case StatHealth:
		s.Health = clampPercent(value)
	case StatStress:
		s.Stress = clampPercent(value)
	case StatConsciousness:
		s.Consciousness = clampPercent(value)
	case StatSleeplessCount:
		s.SleeplessCount = clampFloor(value)
	case StatMoney:
		s.Money = clampFloor(value)
	}
	return s
}

// SetSleeplessCount returns a copy with sleepless_count set to an absolute
// value, clamped to >= 0. Used for the reset and force-set interpretations
// of sleepless effects.
func (s Stats) SetSleeplessCount(value float64) Stats {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return s
	}
	s.SleeplessCount = clampFloor(value)
	return s
}

// IsStatKey reports whether key names a stat field.
func IsStatKey(key string) bool {
	switch key {
	case StatKnowledge, StatHealth, StatStress, StatConsciousness, StatSleeplessCount, StatMoney:
		return true
	}
	return false
}

func clampPercent(v float64) int {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return int(r)
}

func clampFloor(v float64) int {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	return int(r)
}
