package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htnguyen/novel-engine/pkg/story"
	"github.com/htnguyen/novel-engine/pkg/textfilter"
)

func newTestValidator() *StoryValidator {
	return &StoryValidator{filter: textfilter.New()}
}

func validatorFixture() *story.Story {
	return &story.Story{
		Name:   "Fixture",
		MaxDay: 2,
		Nodes: map[string]story.Node{
			"day1_start": {
				Day: 1,
				Choices: []story.Choice{
					{ID: "sleep", Text: "Sleep", NextNode: story.NextResolveDay},
				},
			},
			"day2_start": {
				Day: 2,
				Choices: []story.Choice{
					{ID: "wake", Text: "Wake up", NextNode: story.NextResolveDay},
				},
			},
		},
		Endings: []story.Ending{{ID: "normal_end", Title: "The End"}},
	}
}

func TestValidateStory_CleanFixture(t *testing.T) {
	v := newTestValidator()
	v.validateStory(validatorFixture())
	assert.Empty(t, v.errors)
}

func TestValidateStory_HospitalPolicyRequiresRecoveryNodes(t *testing.T) {
	s := validatorFixture()
	s.Hospital = &story.HospitalPolicy{RecoveryHealth: 30}

	v := newTestValidator()
	v.validateStory(s)
	require.Len(t, v.errors, 1)
	assert.Contains(t, v.errors[0], "day2_start_after_hospital")

	s.Nodes["day2_start_after_hospital"] = story.Node{
		Day: 2,
		Choices: []story.Choice{
			{ID: "rest", Text: "Rest", NextNode: "day2_start"},
		},
	}
	v = newTestValidator()
	v.validateStory(s)
	assert.Empty(t, v.errors, "a recovery node per day after the first satisfies the policy")
}

func TestValidateStory_DanglingNextNode(t *testing.T) {
	s := validatorFixture()
	node := s.Nodes["day1_start"]
	node.Choices = append(node.Choices, story.Choice{ID: "ghost", Text: "Go", NextNode: "day1_ghost"})
	s.Nodes["day1_start"] = node

	v := newTestValidator()
	v.validateStory(s)
	require.Len(t, v.errors, 1)
	assert.Contains(t, v.errors[0], "day1_ghost")
}

func TestValidateFile_SampleStory(t *testing.T) {
	v := newTestValidator()
	assert.NoError(t, v.validateFile("../../data/stories/exam_week.json"))
}
