package story

// HospitalPolicy is the content-defined consequence bundle applied when the
// hospitalization predicate fires during day rollover.
type HospitalPolicy struct {
	RecoveryHealth   int     `json:"recovery_health" yaml:"recovery_health"` // Health is set to this baseline
	StressRelief     float64 `json:"stress_relief" yaml:"stress_relief"`     // Subtracted from stress
	Cost             float64 `json:"cost" yaml:"cost"`                       // Subtracted from money
	KnowledgePenalty float64 `json:"knowledge_penalty" yaml:"knowledge_penalty"`
	// ResetSleepless controls whether hospitalization itself resets the
	// sleepless counter, or only an explicit "slept" effect afterwards.
	// Content tables disagree on this, so it is a per-story knob.
	ResetSleepless bool `json:"reset_sleepless" yaml:"reset_sleepless"`
}

// Story is the static, author-provided content table for one game: the node
// graph, the priority-ordered endings, and the achievement definitions.
// The engine treats it as read-only input.
type Story struct {
	Name            string             `json:"name" yaml:"name"`
	Rating          string             `json:"rating,omitempty" yaml:"rating,omitempty"` // Content rating, e.g. "PG13"
	MaxDay          int                `json:"max_day" yaml:"max_day"`
	InitialStats    map[string]float64 `json:"initial_stats,omitempty" yaml:"initial_stats,omitempty"`
	InitialTime     string             `json:"initial_time,omitempty" yaml:"initial_time,omitempty"`
	Nodes           map[string]Node    `json:"nodes" yaml:"nodes"`
	Endings         []Ending           `json:"endings,omitempty" yaml:"endings,omitempty"` // Priority order
	Achievements    []Achievement      `json:"achievements,omitempty" yaml:"achievements,omitempty"`
	DefaultEndingID string             `json:"default_ending_id,omitempty" yaml:"default_ending_id,omitempty"`
	Hospital        *HospitalPolicy    `json:"hospital,omitempty" yaml:"hospital,omitempty"`
}

// normalize injects map keys as node ids so content files don't have to
// repeat them, and fills fallback defaults.
func (s *Story) normalize() {
	for key, node := range s.Nodes {
		if node.ID == "" {
			node.ID = key
			s.Nodes[key] = node
		}
	}
	if s.MaxDay <= 0 {
		s.MaxDay = 1
	}
	if s.DefaultEndingID == "" {
		s.DefaultEndingID = "normal_end"
	}
}
