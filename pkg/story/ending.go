package story

import "github.com/htnguyen/novel-engine/pkg/conditionals"

// Ending is a terminal story state. Endings are stored in priority order;
// the evaluator returns the first one whose condition holds.
type Ending struct {
	ID           string                  `json:"id" yaml:"id"`
	Title        string                  `json:"title" yaml:"title"`
	Description  string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Achievements []string                `json:"achievements,omitempty" yaml:"achievements,omitempty"` // Achievement ids associated with this ending
	Condition    *conditionals.Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Achievement is a non-terminal unlock. Unlike endings, any number can match
// and unlocking is monotonic: once unlocked, never revoked.
type Achievement struct {
	ID          string                  `json:"id" yaml:"id"`
	Name        string                  `json:"name" yaml:"name"`
	Description string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string                  `json:"icon,omitempty" yaml:"icon,omitempty"`
	Condition   *conditionals.Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
}
