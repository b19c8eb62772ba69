package reply

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// imageLinkRegex matches [label](http://url) or ![label](https://url).
// Only the scheme needs case-insensitivity; the rest of the pattern has no letters.
var imageLinkRegex = regexp.MustCompile(`!?\[[^\]]*\]\(((?i:https?)://[^\s)]+)\)`)

// Extraction is the result of looking for an image link in a reply.
type Extraction struct {
	URL       string // empty when no link was found
	Remainder string
}

// HasImage reports whether a link was found.
func (e Extraction) HasImage() bool {
	return e.URL != ""
}

// ExtractImageLink finds the first markdown link in text. The remainder is
// text with that link removed and trimmed; with no link it is text unchanged.
func ExtractImageLink(text string) Extraction {
	loc := imageLinkRegex.FindStringSubmatchIndex(text)
	if loc == nil {
		return Extraction{Remainder: text}
	}
	return Extraction{
		URL:       text[loc[2]:loc[3]],
		Remainder: strings.TrimSpace(text[:loc[0]] + text[loc[1]:]),
	}
}

// Summarize keeps the first limit runes of text, marking truncation with "...".
func Summarize(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}
