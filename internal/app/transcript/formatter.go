package transcript

import (
	"regexp"
	"strings"
)

// Segment is one timed utterance returned by a diarizing transcriber.
type Segment struct {
	Speaker string
	Start   float64
	End     float64
	Text    string
}

var defaultFillers = map[string][]string{
	"en": {"uh", "um", "ah", "so", "you know"},
	"fr": {"euh", "hum", "ben", "bah", "genre"},
}

var whitespace = regexp.MustCompile(`\s+`)

// DefaultFillers returns the filler words removed for lang. Unknown
// languages get the English list.
func DefaultFillers(lang string) []string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	fillers, ok := defaultFillers[lang]
	if !ok {
		fillers = defaultFillers["en"]
	}
	return append([]string(nil), fillers...)
}

// Formatter cleans filler words and groups speaker turns.
type Formatter struct {
	fillers []*regexp.Regexp
}

// NewFormatter builds a formatter for the given filler words. Each filler is
// matched as a whole word, ignoring case.
func NewFormatter(fillers ...string) *Formatter {
	f := &Formatter{}
	for _, word := range fillers {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		// RE2's \b is ASCII-only, so word edges are spelled out with Unicode classes.
		f.fillers = append(f.fillers, regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_])`+regexp.QuoteMeta(word)+`([^\p{L}\p{N}_]|$)`))
	}
	return f
}

// NewFormatterForLanguage uses DefaultFillers(lang).
func NewFormatterForLanguage(lang string) *Formatter {
	return NewFormatter(DefaultFillers(lang)...)
}

// Clean removes fillers, collapses runs of whitespace and trims.
func (f *Formatter) Clean(text string) string {
	for _, re := range f.fillers {
		// A match consumes its trailing delimiter, so adjacent fillers need
		// another pass.
		for {
			next := re.ReplaceAllString(text, "${1}${2}")
			if next == text {
				break
			}
			text = next
		}
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Format renders segments as speaker paragraphs:
//
//	SPEAKER_00:
//	first turn text
//
//	SPEAKER_01:
//	reply
//
// Consecutive segments of one speaker are merged with single spaces.
// Segments that are empty after cleaning are dropped without ending the
// current paragraph.
func (f *Formatter) Format(segments []Segment) string {
	var paragraphs []string
	var speaker string
	var buf []string

	flush := func() {
		if len(buf) > 0 {
			paragraphs = append(paragraphs, speaker+":\n"+strings.Join(buf, " ")+"\n")
		}
	}

	for _, seg := range segments {
		text := f.Clean(seg.Text)
		if text == "" {
			continue
		}
		if len(buf) > 0 && seg.Speaker != speaker {
			flush()
			buf = nil
		}
		speaker = seg.Speaker
		buf = append(buf, text)
	}
	flush()

	return strings.TrimSuffix(strings.Join(paragraphs, "\n"), "\n")
}

// Plain joins cleaned segment texts without speaker labels.
func (f *Formatter) Plain(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := f.Clean(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
