package story

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loaderJSON = `{
	"name": "Loader Fixture",
	"max_day": 2,
	"initial_time": "08:00",
	"initial_stats": {"knowledge": 40},
	"nodes": {
		"day1_start": {
			"day": 1,
			"time": "08:00",
			"choices": [
				{"id": "study", "text": "Hit the books", "effects": {"time": 4, "knowledge": 10}, "next_node": "resolve_next_day"}
			]
		},
		"day2_start": {"day": 2, "time": "09:00"}
	},
	"endings": [
		{"id": "best_end", "title": "Top marks", "condition": {"min_stats": {"knowledge": 80}}},
		{"id": "normal_end", "title": "An ordinary week"}
	],
	"hospital": {"recovery_health": 30, "cost": 100000, "reset_sleepless": true}
}`

const loaderYAML = `name: Loader Fixture YAML
max_day: 1
nodes:
  day1_start:
    day: 1
    time: "08:00"
    choices:
      - id: rest
        text: Take it easy
        effects:
          health: 5
          sleepless_count: 0
`

func writeLoaderFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_JSON(t *testing.T) {
	s, err := LoadFile(writeLoaderFile(t, "story.json", loaderJSON))
	require.NoError(t, err)

	assert.Equal(t, "Loader Fixture", s.Name)
	assert.Equal(t, 2, s.MaxDay)
	assert.Equal(t, 40.0, s.InitialStats["knowledge"])

	node, ok := s.Nodes["day1_start"]
	require.True(t, ok)
	assert.Equal(t, "day1_start", node.ID, "map key injected as id")
	require.Len(t, node.Choices, 1)
	assert.Equal(t, NextResolveDay, node.Choices[0].NextNode)
	assert.Equal(t, 4.0, node.Choices[0].Effects["time"])

	require.Len(t, s.Endings, 2)
	require.NotNil(t, s.Endings[0].Condition)
	assert.Equal(t, 80, s.Endings[0].Condition.MinStats["knowledge"])

	require.NotNil(t, s.Hospital)
	assert.Equal(t, 30, s.Hospital.RecoveryHealth)
	assert.True(t, s.Hospital.ResetSleepless)
}

func TestLoadFile_YAML(t *testing.T) {
	s, err := LoadFile(writeLoaderFile(t, "story.yaml", loaderYAML))
	require.NoError(t, err)

	assert.Equal(t, "Loader Fixture YAML", s.Name)
	node := s.Nodes["day1_start"]
	require.Len(t, node.Choices, 1)
	assert.Equal(t, 5.0, node.Choices[0].Effects["health"])
	assert.Equal(t, "normal_end", s.DefaultEndingID, "normalize fills the default ending")
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorContains(t, err, "story not found")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := LoadFile(writeLoaderFile(t, "bad.json", "{not json"))
		assert.ErrorContains(t, err, "unmarshal")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadFile(writeLoaderFile(t, "story.toml", "name = 'x'"))
		assert.ErrorContains(t, err, "unsupported")
	})
}

func TestListStories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(loaderJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(loaderYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	stories, err := ListStories(dir)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Loader Fixture":      "a.json",
		"Loader Fixture YAML": "b.yaml",
	}, stories)
}
