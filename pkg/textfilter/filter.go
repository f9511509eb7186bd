package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Common US English swear words that should be kept out of G/PG/PG13 story
// content. Narration and choice text are screened against this list by the
// content validator.
var swearWords = []string{
	"fuck", "shit", "damn", "hell", "ass", "bitch", "bastard", "crap",
	"piss", "cock", "dick", "pussy", "tits", "boobs", "whore", "slut",
	"fag", "retard", "nigger", "nigga", "spic", "chink", "kike",
	"motherfucker", "goddamn", "jesus christ", "christ", "asshole",
	"dumbass", "jackass", "smartass", "badass", "bullshit", "horseshit",
	"dipshit", "shithead", "dickhead", "prick", "douche", "douchebag",
}

// replacements maps swear words to family-friendly alternatives used when
// cleaning text instead of rejecting it.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"cock":         "[censored]",
	"dick":         "jerk",
	"pussy":        "[censored]",
	"tits":         "[censored]",
	"boobs":        "[censored]",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"fag":          "[censored]",
	"retard":       "[censored]",
	"nigger":       "[censored]",
	"nigga":        "[censored]",
	"spic":         "[censored]",
	"chink":        "[censored]",
	"kike":         "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"jesus christ": "jeez",
	"christ":       "crikey",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"smartass":     "smarty",
	"badass":       "tough",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"dipshit":      "dummy",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"douche":       "jerk",
	"douchebag":    "jerk",
}

// Filter screens story text for profanity.
type Filter struct {
	regexes map[string]*regexp.Regexp
}

// New creates a filter with all patterns pre-compiled.
func New() *Filter {
	f := &Filter{
		regexes: make(map[string]*regexp.Regexp),
	}

	for _, word := range swearWords {
		pattern := `\b` + regexp.QuoteMeta(word) + `\b`
		f.regexes[word] = regexp.MustCompile(`(?i)` + pattern)
	}

	return f
}

// Matches returns the distinct filtered words found in the text, lowercase
// and sorted, for validator reporting.
func (f *Filter) Matches(text string) []string {
	var found []string
	for _, word := range swearWords {
		if f.regexes[word].MatchString(text) {
			found = append(found, word)
		}
	}
	sort.Strings(found)
	return found
}

// Contains reports whether the text contains any filtered word.
func (f *Filter) Contains(text string) bool {
	for _, word := range swearWords {
		if f.regexes[word].MatchString(text) {
			return true
		}
	}
	return false
}

// Clean replaces every filtered word with its family-friendly alternative,
// preserving the case pattern of the original.
func (f *Filter) Clean(text string) string {
	result := text
	for _, word := range swearWords {
		replacement, ok := replacements[word]
		if !ok {
			continue
		}
		result = f.regexes[word].ReplaceAllStringFunc(result, func(match string) string {
			return preserveCase(match, replacement)
		})
	}
	return result
}

// preserveCase applies the case pattern of the original word to the replacement
func preserveCase(original, replacement string) string {
	if len(original) == 0 {
		return replacement
	}

	// All uppercase
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}

	// All lowercase
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	// Title case (first letter uppercase, rest lowercase)
	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case - preserve the pattern character by character
	result := make([]rune, 0, len(replacement))
	originalRunes := []rune(original)

	for i, r := range []rune(replacement) {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result = append(result, unicode.ToUpper(r))
		} else {
			result = append(result, unicode.ToLower(r))
		}
	}

	return string(result)
}

// ShouldScreen reports whether a story's content rating requires profanity
// screening.
func ShouldScreen(rating string) bool {
	rating = strings.ToUpper(strings.TrimSpace(rating))
	switch rating {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}
