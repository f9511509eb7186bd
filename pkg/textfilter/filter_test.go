package textfilter

import (
	"testing"
)

func TestFilter_Clean(t *testing.T) {
	filter := New()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple replacement",
			input:    "What the hell is going on?",
			expected: "What the heck is going on?",
		},
		{
			name:     "multiple words",
			input:    "This is damn crap!",
			expected: "This is dang crud!",
		},
		{
			name:     "case preservation - uppercase",
			input:    "DAMN that's annoying!",
			expected: "DANG that's annoying!",
		},
		{
			name:     "case preservation - title case",
			input:    "Hell no, that's not right",
			expected: "Heck no, that's not right",
		},
		{
			name:     "word boundaries - partial matches untouched",
			input:    "I love classical music",
			expected: "I love classical music", // "ass" in "classical" must not be replaced
		},
		{
			name:     "no profanity",
			input:    "This is a perfectly clean sentence.",
			expected: "This is a perfectly clean sentence.",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "profanity with punctuation",
			input:    "What the hell?! That's damn crazy.",
			expected: "What the heck?! That's dang crazy.",
		},
		{
			name:     "mixed case",
			input:    "HeLl yeah, that's DaMn good!",
			expected: "HeCk yeah, that's DaNg good!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.Clean(tt.input)
			if result != tt.expected {
				t.Errorf("Clean() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestFilter_Contains(t *testing.T) {
	filter := New()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"contains mild profanity", "What the hell is this?", true},
		{"contains multiple words", "This damn crap is annoying", true},
		{"no profanity", "This is a clean sentence", false},
		{"partial word does not trigger", "I love classical music", false},
		{"case insensitive detection", "HELL no!", true},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.Contains(tt.input)
			if result != tt.expected {
				t.Errorf("Contains() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestFilter_Matches(t *testing.T) {
	filter := New()

	matches := filter.Matches("What the hell?! That's damn crazy, damn it.")
	if len(matches) != 2 {
		t.Fatalf("Matches() returned %d words, want 2: %v", len(matches), matches)
	}
	if matches[0] != "damn" || matches[1] != "hell" {
		t.Errorf("Matches() = %v, want [damn hell]", matches)
	}

	if got := filter.Matches("perfectly clean"); len(got) != 0 {
		t.Errorf("Matches() on clean text = %v, want none", got)
	}
}

func TestShouldScreen(t *testing.T) {
	tests := []struct {
		name     string
		rating   string
		expected bool
	}{
		{"G rating screens", "G", true},
		{"PG rating screens", "PG", true},
		{"PG13 rating screens", "PG13", true},
		{"PG-13 rating screens", "PG-13", true},
		{"R rating does not screen", "R", false},
		{"lowercase ratings work", "pg", true},
		{"rating with whitespace", " PG13 ", true},
		{"unknown rating does not screen", "NC-17", false},
		{"empty rating does not screen", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ShouldScreen(tt.rating)
			if result != tt.expected {
				t.Errorf("ShouldScreen() = %v, want %v for rating %q", result, tt.expected, tt.rating)
			}
		})
	}
}
