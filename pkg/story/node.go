package story

import "github.com/htnguyen/novel-engine/pkg/conditionals"

// NextResolveDay is the reserved next-node token meaning "resolve the next
// day automatically" instead of naming a target node.
const NextResolveDay = "resolve_next_day"

// Node is a single story beat: narrative text plus the choices available
// there. Nodes are defined by content and never mutated at runtime.
type Node struct {
	ID        string                  `json:"id" yaml:"id"`
	Day       int                     `json:"day" yaml:"day"`
	Time      string                  `json:"time,omitempty" yaml:"time,omitempty"` // Canonical time-of-day for this beat
	Title     string                  `json:"title,omitempty" yaml:"title,omitempty"`
	Narration string                  `json:"narration,omitempty" yaml:"narration,omitempty"`
	Choices   []Choice                `json:"choices,omitempty" yaml:"choices,omitempty"`
	Condition *conditionals.Condition `json:"condition,omitempty" yaml:"condition,omitempty"` // Visibility predicate over full state

	// Presentation hints, passed through opaquely to the client.
	BgImage string `json:"bg_image,omitempty" yaml:"bg_image,omitempty"`
	BgMusic string `json:"bg_music,omitempty" yaml:"bg_music,omitempty"`
}

// Choice is a selectable option within a node. Effects are stat deltas keyed
// by stat name, plus the reserved "time" key (hours, fractional allowed).
// A choice with no NextNode terminates the current day.
type Choice struct {
	ID        string                  `json:"id" yaml:"id"`
	Text      string                  `json:"text" yaml:"text"`
	Effects   map[string]float64      `json:"effects,omitempty" yaml:"effects,omitempty"`
	Flags     []string                `json:"flags,omitempty" yaml:"flags,omitempty"` // Flag names set to true when chosen
	NextNode  string                  `json:"next_node,omitempty" yaml:"next_node,omitempty"`
	Condition *conditionals.Condition `json:"condition,omitempty" yaml:"condition,omitempty"` // Selectability predicate
	Roll      *Roll                   `json:"roll,omitempty" yaml:"roll,omitempty"`
}

// Roll is a chance outcome attached to a choice (e.g. guessing blind on the
// exam). A uniform draw against Chance picks the success or failure branch;
// branch flags are set and a branch next-node, when present, overrides the
// choice's NextNode.
type Roll struct {
	Chance       float64  `json:"chance" yaml:"chance"` // Probability of success in [0,1]
	SuccessFlags []string `json:"success_flags,omitempty" yaml:"success_flags,omitempty"`
	FailFlags    []string `json:"fail_flags,omitempty" yaml:"fail_flags,omitempty"`
	SuccessNext  string   `json:"success_next,omitempty" yaml:"success_next,omitempty"`
	FailNext     string   `json:"fail_next,omitempty" yaml:"fail_next,omitempty"`
}

// ChoiceByID returns the node's choice with the given id, or nil.
func (n *Node) ChoiceByID(id string) *Choice {
	for i := range n.Choices {
		if n.Choices[i].ID == id {
			return &n.Choices[i]
		}
	}
	return nil
}
