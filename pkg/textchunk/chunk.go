// Package textchunk splits NPC replies into dialogue-box sized pieces.
package textchunk

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxLength is the number of runes that fit one dialogue box.
const DefaultMaxLength = 180

// Split breaks text into display units of at most maxLength runes, packing
// whole sentences greedily. A sentence longer than maxLength is kept whole
// as its own unit. The result is never empty; empty text yields [""].
func Split(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if text == "" {
		return []string{""}
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return []string{text}
	}

	var (
		chunks []string
		buf    strings.Builder
		bufLen int
	)
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			chunks = append(chunks, s)
		}
		buf.Reset()
		bufLen = 0
	}

	for _, sentence := range Sentences(text) {
		n := utf8.RuneCountInString(sentence)
		if bufLen > 0 && bufLen+n+1 > maxLength {
			flush()
		}
		if bufLen > 0 {
			buf.WriteByte(' ')
			bufLen++
		}
		buf.WriteString(sentence)
		bufLen += n
	}
	flush()

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// Sentences splits text after every '.', '!' or '?' that is followed by
// whitespace. The whitespace run between sentences is dropped; empty
// pieces are skipped.
func Sentences(text string) []string {
	var out []string
	start := 0
	prevEnd := false
	for i, r := range text {
		if prevEnd && unicode.IsSpace(r) {
			if s := text[start:i]; s != "" {
				out = append(out, s)
			}
			start = skipSpace(text, i)
			prevEnd = false
			continue
		}
		if i < start {
			continue
		}
		prevEnd = r == '.' || r == '!' || r == '?'
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}
