package state

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_ApplyDelta_Clamping(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		start Stats
		delta float64
		want  int
	}{
		{"knowledge clamps at 100", StatKnowledge, Stats{Knowledge: 95}, 20, 100},
		{"knowledge clamps at 0", StatKnowledge, Stats{Knowledge: 5}, -20, 0},
		{"health negative delta", StatHealth, Stats{Health: 70}, -30, 40},
		{"stress rounds fractional delta", StatStress, Stats{Stress: 10}, 2.6, 13},
		{"money has no upper bound", StatMoney, Stats{Money: 200000}, 1000000, 1200000},
		{"money clamps at 0", StatMoney, Stats{Money: 10000}, -30000, 0},
		{"sleepless clamps at 0", StatSleeplessCount, Stats{SleeplessCount: 1}, -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start.ApplyDelta(tt.key, tt.delta)
			assert.Equal(t, tt.want, got.Get(tt.key))
		})
	}
}

func TestStats_ApplyDelta_Pure(t *testing.T) {
	start := Stats{Knowledge: 50, Health: 70}
	got := start.ApplyDelta(StatKnowledge, 10)

	assert.Equal(t, 50, start.Knowledge, "input must not be mutated")
	assert.Equal(t, 60, got.Knowledge)
	assert.Equal(t, 70, got.Health, "untouched fields carry over")
}

func TestStats_ApplyDelta_NonFinite(t *testing.T) {
	start := Stats{Knowledge: 50}

	assert.Equal(t, start, start.ApplyDelta(StatKnowledge, math.NaN()))
	assert.Equal(t, start, start.ApplyDelta(StatKnowledge, math.Inf(1)))
	assert.Equal(t, start, start.ApplyDelta(StatKnowledge, math.Inf(-1)))
}

func TestStats_ApplyDelta_UnknownKey(t *testing.T) {
	start := Stats{Knowledge: 50, Money: 100}
	assert.Equal(t, start, start.ApplyDelta("charisma", 10))
}

func TestStats_ApplyDelta_SequenceStaysInRange(t *testing.T) {
	s := DefaultStats()
	deltas := []float64{37, -90, 12.5, 200, -0.4, -300, 55, 55, 55}

	for _, d := range deltas {
		for _, key := range StatKeys {
			s = s.ApplyDelta(key, d)

			for _, k := range []string{StatKnowledge, StatHealth, StatStress, StatConsciousness} {
				v := s.Get(k)
				assert.GreaterOrEqual(t, v, 0)
				assert.LessOrEqual(t, v, 100)
			}
			assert.GreaterOrEqual(t, s.Get(StatMoney), 0)
			assert.GreaterOrEqual(t, s.Get(StatSleeplessCount), 0)
		}
	}
}

func TestStats_SetStat(t *testing.T) {
	s := Stats{}

	s = s.SetStat(StatHealth, 130)
	assert.Equal(t, 100, s.Health)

	s = s.SetStat(StatMoney, 500000)
	assert.Equal(t, 500000, s.Money)

	s = s.SetStat(StatMoney, -1)
	assert.Equal(t, 0, s.Money)
}
