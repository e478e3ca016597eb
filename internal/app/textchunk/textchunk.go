// Package textchunk splits long transcripts into bounded chunks along
// paragraph boundaries.
package textchunk

import (
	"strings"
	"unicode/utf8"
)

const (
	// LLMChunkChars is the default budget of one normalization request.
	LLMChunkChars = 80000

	// StorageChunkChars is the target size of a stored retrieval chunk.
	StorageChunkChars = 1000

	paragraphSeparator = "\n\n"
)

// Split cuts text into chunks of fewer than maxChars characters where possible.
// Paragraphs (separated by a blank line) are kept whole and packed greedily;
// a paragraph longer than maxChars is word-wrapped on its own, and a single
// word longer than maxChars is never broken. Empty chunks are never returned.
// Wrapping collapses all whitespace, so a wrapped speaker paragraph keeps its
// "SPEAKER_00:" label only as the first word of its first line.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = LLMChunkChars
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, paragraphSeparator))
		}
		current = nil
		currentLen = 0
	}

	for _, paragraph := range strings.Split(text, paragraphSeparator) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		n := utf8.RuneCountInString(paragraph)

		switch {
		case n > maxChars:
			flush()
			chunks = append(chunks, Wrap(paragraph, maxChars)...)
		case currentLen+n < maxChars:
			current = append(current, paragraph)
			currentLen += n
		default:
			flush()
			current = []string{paragraph}
			currentLen = n
		}
	}
	flush()

	return chunks
}

// Wrap breaks text into lines of at most width characters at whitespace.
// Runs of whitespace collapse to one space. Words longer than width are
// kept intact on their own line.
func Wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	lineLen := 0

	for _, word := range strings.Fields(text) {
		n := utf8.RuneCountInString(word)
		if lineLen > 0 && lineLen+1+n > width {
			lines = append(lines, line.String())
			line.Reset()
			lineLen = 0
		}
		if lineLen > 0 {
			line.WriteByte(' ')
			lineLen++
		}
		line.WriteString(word)
		lineLen += n
	}
	if lineLen > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// StorageSegments splits normalized text into retrieval-sized chunks.
func StorageSegments(text string) []string {
	return Split(text, StorageChunkChars)
}

// Join reassembles chunks with the paragraph separator.
func Join(chunks []string) string {
	return strings.Join(chunks, paragraphSeparator)
}
