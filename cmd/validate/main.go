package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/htnguyen/novel-engine/pkg/conditionals"
	"github.com/htnguyen/novel-engine/pkg/state"
	"github.com/htnguyen/novel-engine/pkg/story"
	"github.com/htnguyen/novel-engine/pkg/textfilter"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <story.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &StoryValidator{filter: textfilter.New()}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Story file is valid!")
}

type StoryValidator struct {
	errors []string
	filter *textfilter.Filter
}

func (v *StoryValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("story file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidStoryFilename(nameWithoutExt) {
		return fmt.Errorf("story filename '%s' must be lowercase snake_case (e.g., my_story.json, not my-story.json or MyStory.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var s story.Story
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&s); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateStory(&s)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *StoryValidator) validateStory(s *story.Story) {
	if s.Name == "" {
		v.addError("story has no name")
	}
	if s.MaxDay < 1 {
		v.addError("max_day must be at least 1")
	}
	if s.InitialTime != "" && !state.IsValidTime(s.InitialTime) {
		v.addError(fmt.Sprintf("initial_time '%s' is not a valid HH:MM label", s.InitialTime))
	}

	for key := range s.InitialStats {
		if !state.IsStatKey(key) {
			v.addError(fmt.Sprintf("initial_stats has unknown stat key '%s'", key))
		}
	}

	screen := textfilter.ShouldScreen(s.Rating)

	for nodeID, node := range s.Nodes {
		v.validateIDFormat("node ID", nodeID)
		if node.ID != "" && node.ID != nodeID {
			v.addError(fmt.Sprintf("node '%s' declares mismatched id '%s'", nodeID, node.ID))
		}
		v.validateNode(s, &node, nodeID, screen)
	}

	// Every playable day needs a start node, or rollover strands the story.
	// Stories with a hospital policy also need a recovery node per day after
	// the first, so hospitalization never falls back to the plain day start.
	for day := 1; day <= s.MaxDay; day++ {
		if !dayHasNodes(s, day) {
			v.addError(fmt.Sprintf("day %d has no nodes", day))
			continue
		}
		if _, ok := s.Nodes[fmt.Sprintf("day%d_start", day)]; !ok {
			v.addError(fmt.Sprintf("day %d has no 'day%d_start' node", day, day))
		}
		if s.Hospital != nil && day > 1 {
			if _, ok := s.Nodes[fmt.Sprintf("day%d_start_after_hospital", day)]; !ok {
				v.addError(fmt.Sprintf("day %d has no 'day%d_start_after_hospital' node (required by the hospital policy)", day, day))
			}
		}
	}

	v.validateEndings(s, screen)
	v.validateAchievements(s, screen)
}

func (v *StoryValidator) validateNode(s *story.Story, node *story.Node, nodeID string, screen bool) {
	if node.Day < 1 {
		v.addError(fmt.Sprintf("node '%s' has no day", nodeID))
	}
	if node.Day > s.MaxDay {
		v.addError(fmt.Sprintf("node '%s' has day %d beyond max_day %d", nodeID, node.Day, s.MaxDay))
	}
	if node.Time != "" && !state.IsValidTime(node.Time) {
		v.addError(fmt.Sprintf("node '%s' has invalid time '%s'", nodeID, node.Time))
	}
	v.validateCondition(node.Condition, fmt.Sprintf("node '%s' condition", nodeID))

	if screen {
		v.screenText(fmt.Sprintf("node '%s' title", nodeID), node.Title)
		v.screenText(fmt.Sprintf("node '%s' narration", nodeID), node.Narration)
	}

	seen := make(map[string]bool)
	for _, choice := range node.Choices {
		v.validateIDFormat("choice ID", choice.ID)
		if seen[choice.ID] {
			v.addError(fmt.Sprintf("node '%s' has duplicate choice id '%s'", nodeID, choice.ID))
		}
		seen[choice.ID] = true

		v.validateChoice(s, &choice, nodeID, screen)
	}
}

func (v *StoryValidator) validateChoice(s *story.Story, choice *story.Choice, nodeID string, screen bool) {
	context := fmt.Sprintf("choice '%s' in node '%s'", choice.ID, nodeID)

	for key := range choice.Effects {
		if key != state.EffectTime && !state.IsStatKey(key) {
			v.addError(fmt.Sprintf("%s has unknown effect key '%s'", context, key))
		}
	}

	v.validateNextRef(s, choice.NextNode, context)
	v.validateCondition(choice.Condition, context+" condition")

	if choice.Roll != nil {
		if choice.Roll.Chance < 0 || choice.Roll.Chance > 1 {
			v.addError(fmt.Sprintf("%s has roll chance %v outside [0,1]", context, choice.Roll.Chance))
		}
		v.validateNextRef(s, choice.Roll.SuccessNext, context+" roll success")
		v.validateNextRef(s, choice.Roll.FailNext, context+" roll failure")
	}

	if screen {
		v.screenText(context+" text", choice.Text)
	}
}

// validateNextRef checks a next-node reference: empty and the rollover token
// are always fine, anything else must name an existing node.
func (v *StoryValidator) validateNextRef(s *story.Story, next, context string) {
	if next == "" || next == story.NextResolveDay {
		return
	}
	if _, ok := s.Nodes[next]; !ok {
		v.addError(fmt.Sprintf("%s references missing node '%s'", context, next))
	}
}

func (v *StoryValidator) validateEndings(s *story.Story, screen bool) {
	seen := make(map[string]bool)
	defaultID := s.DefaultEndingID
	if defaultID == "" {
		defaultID = "normal_end"
	}

	defaultFound := false
	for _, ending := range s.Endings {
		v.validateIDFormat("ending ID", ending.ID)
		if seen[ending.ID] {
			v.addError(fmt.Sprintf("duplicate ending id '%s'", ending.ID))
		}
		seen[ending.ID] = true
		if ending.ID == defaultID {
			defaultFound = true
		}

		v.validateCondition(ending.Condition, fmt.Sprintf("ending '%s' condition", ending.ID))

		for _, achievementID := range ending.Achievements {
			if !hasAchievement(s, achievementID) {
				v.addError(fmt.Sprintf("ending '%s' references missing achievement '%s'", ending.ID, achievementID))
			}
		}

		if screen {
			v.screenText(fmt.Sprintf("ending '%s' title", ending.ID), ending.Title)
			v.screenText(fmt.Sprintf("ending '%s' description", ending.ID), ending.Description)
		}
	}

	if len(s.Endings) > 0 && !defaultFound {
		v.addError(fmt.Sprintf("default ending '%s' is not defined", defaultID))
	}
}

func (v *StoryValidator) validateAchievements(s *story.Story, screen bool) {
	seen := make(map[string]bool)
	for _, a := range s.Achievements {
		v.validateIDFormat("achievement ID", a.ID)
		if seen[a.ID] {
			v.addError(fmt.Sprintf("duplicate achievement id '%s'", a.ID))
		}
		seen[a.ID] = true

		v.validateCondition(a.Condition, fmt.Sprintf("achievement '%s' condition", a.ID))

		if screen {
			v.screenText(fmt.Sprintf("achievement '%s' name", a.ID), a.Name)
			v.screenText(fmt.Sprintf("achievement '%s' description", a.ID), a.Description)
		}
	}
}

func (v *StoryValidator) validateCondition(c *conditionals.Condition, context string) {
	if c == nil {
		return
	}

	for key := range c.MinStats {
		if !state.IsStatKey(key) {
			v.addError(fmt.Sprintf("%s has unknown stat key '%s' in min_stats", context, key))
		}
	}
	for key := range c.MaxStats {
		if !state.IsStatKey(key) {
			v.addError(fmt.Sprintf("%s has unknown stat key '%s' in max_stats", context, key))
		}
	}
	if c.Time != "" && !state.IsValidTime(c.Time) {
		v.addError(fmt.Sprintf("%s has invalid time '%s'", context, c.Time))
	}
	for name := range c.Flags {
		v.validateIDFormat(context+" flag", name)
	}
	// Named predicates are registered in Go at runtime; file-based content
	// cannot reference them.
	if c.Predicate != "" {
		v.addError(fmt.Sprintf("%s uses predicate '%s'; file-based content must use data clauses", context, c.Predicate))
	}

	for i := range c.AnyOf {
		v.validateCondition(&c.AnyOf[i], fmt.Sprintf("%s any_of[%d]", context, i))
	}
	if c.Not != nil {
		v.validateCondition(c.Not, context+" not")
	}
}

func (v *StoryValidator) screenText(context, text string) {
	if text == "" {
		return
	}
	if words := v.filter.Matches(text); len(words) > 0 {
		v.addError(fmt.Sprintf("%s contains filtered words for this rating: %s", context, strings.Join(words, ", ")))
	}
}

func (v *StoryValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *StoryValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func dayHasNodes(s *story.Story, day int) bool {
	for _, node := range s.Nodes {
		if node.Day == day {
			return true
		}
	}
	return false
}

func hasAchievement(s *story.Story, id string) bool {
	for _, a := range s.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidStoryFilename(name string) bool {
	// Allow 'x.' prefix for experimental stories
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
