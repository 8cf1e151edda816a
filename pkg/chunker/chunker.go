package chunker

import (
	"regexp"
	"strings"
)

// DefaultMaxChars is the default upper bound on chunk length.
const DefaultMaxChars = 800

// Sentence-like spans: anything up to terminal punctuation followed by
// whitespace or end of input.
var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+(?:\s+|$)`)

// Chunk splits text into bounded-size, sentence-respecting pieces.
// Sentences accumulate into a buffer that is flushed whenever adding
// the next sentence would exceed maxChars; a single sentence longer
// than maxChars is hard-split into maxChars-length substrings. The
// function is pure and deterministic, so re-ingesting the same text
// always yields the same chunks.
func Chunk(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := sentenceRe.FindAllString(text, -1)
	if sentences == nil {
		// No terminal punctuation: treat the whole text as one sentence.
		sentences = []string{text}
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence) > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	var final []string
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if len(c) <= maxChars {
			final = append(final, c)
			continue
		}
		for i := 0; i < len(c); i += maxChars {
			end := i + maxChars
			if end > len(c) {
				end = len(c)
			}
			piece := strings.TrimSpace(c[i:end])
			if piece != "" {
				final = append(final, piece)
			}
		}
	}

	return final
}
