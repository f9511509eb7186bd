package story

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a story content table from a JSON or YAML file.
func LoadFile(path string) (*Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("story not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}

	var s Story
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal story YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal story JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported story file extension: %s", filepath.Ext(path))
	}

	s.normalize()
	return &s, nil
}

// ListStories walks a directory and returns a map of story names to
// filenames, skipping files that fail to parse.
func ListStories(dir string) (map[string]string, error) {
	stories := make(map[string]string)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".json", ".yaml", ".yml":
		default:
			return nil
		}

		s, err := LoadFile(path)
		if err != nil {
			return nil
		}
		stories[s.Name] = filepath.Base(path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk stories directory: %w", err)
	}

	return stories, nil
}
