// Package textfilter softens NPC replies for family-friendly personas.
package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Censored replaces words that have no gentle equivalent.
const Censored = "[censored]"

// DefaultReplacements maps common profanity to softer words.
var DefaultReplacements = map[string]string{
	"fuck":         "fudge",
	"motherfucker": "mother-trucker",
	"shit":         "shoot",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"damn":         "dang",
	"goddamn":      "gosh-dang",
	"hell":         "heck",
	"ass":          "butt",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"dick":         "jerk",
	"prick":        "jerk",
	"whore":        Censored,
	"slut":         Censored,
	"retard":       Censored,
}

// Filter rewrites whole-word matches of a fixed word list.
type Filter struct {
	pattern      *regexp.Regexp
	replacements map[string]string
}

// New builds a filter from a word to replacement map. Words match
// case-insensitively on word boundaries; longer words win over their
// prefixes.
func New(replacements map[string]string) *Filter {
	f := &Filter{replacements: make(map[string]string, len(replacements))}
	words := make([]string, 0, len(replacements))
	for w, r := range replacements {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		f.replacements[w] = r
		words = append(words, regexp.QuoteMeta(w))
	}
	if len(words) == 0 {
		return f
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	f.pattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`)
	return f
}

// Default returns a filter over DefaultReplacements.
func Default() *Filter {
	return New(DefaultReplacements)
}

// Apply replaces every listed word in text, keeping the original's case.
func (f *Filter) Apply(text string) string {
	if f == nil || f.pattern == nil || text == "" {
		return text
	}
	return f.pattern.ReplaceAllStringFunc(text, func(match string) string {
		r, ok := f.replacements[strings.ToLower(match)]
		if !ok {
			return match
		}
		return matchCase(match, r)
	})
}

// Contains reports whether text has any listed word.
func (f *Filter) Contains(text string) bool {
	if f == nil || f.pattern == nil {
		return false
	}
	return f.pattern.MatchString(text)
}

// ShouldFilter reports whether a persona with rating gets filtered replies.
func ShouldFilter(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}

func matchCase(original, replacement string) string {
	if replacement == Censored {
		return replacement
	}
	switch {
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return strings.ToLower(replacement)
	}

	title := cases.Title(language.English)
	if title.String(strings.ToLower(original)) == original {
		return title.String(replacement)
	}

	orig := []rune(original)
	out := []rune(replacement)
	for i, r := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(r)
		} else {
			out[i] = unicode.ToLower(r)
		}
	}
	return string(out)
}
