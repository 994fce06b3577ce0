// Package chunker splits document text into bounded, sentence-respecting
// pieces suitable for embedding. Splitting is a pure function: same input,
// same chunk sequence.
package chunker

import "strings"

// DefaultChunkSize bounds chunk length in bytes. Large texts are split to
// stay within embedding token limits and to improve retrieval relevance.
const DefaultChunkSize = 1000

// Split breaks text into chunks of at most maxChunkSize bytes, never cutting
// inside a sentence. Sentences end at a run of '.', '!' or '?' followed by
// whitespace. Sentences are accumulated greedily; a buffer is flushed when
// the next sentence would push it over the limit. A single sentence longer
// than maxChunkSize is emitted whole rather than truncated.
//
// Each chunk is trimmed of surrounding whitespace and empty chunks are
// dropped, so joining chunks in order reproduces the input up to the
// whitespace trimmed at chunk boundaries.
func Split(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}
	if len(text) <= maxChunkSize {
		return []string{text}
	}

	sentences := splitSentences(text)

	var chunks []string
	var current string
	for _, sentence := range sentences {
		if len(current)+len(sentence) > maxChunkSize && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			current = sentence
		} else {
			current += sentence
		}
	}
	if trimmed := strings.TrimSpace(current); trimmed != "" {
		chunks = append(chunks, trimmed)
	}

	out := chunks[:0]
	for _, c := range chunks {
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// splitSentences cuts text after each terminator run that is followed by
// whitespace. The trailing whitespace stays attached to the sentence it
// follows, so concatenating the pieces yields the input unchanged.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		j := i
		for j+1 < len(text) && isTerminator(text[j+1]) {
			j++
		}
		if j+1 < len(text) && isSpace(text[j+1]) {
			k := j + 1
			for k < len(text) && isSpace(text[k]) {
				k++
			}
			sentences = append(sentences, text[start:k])
			start = k
			i = k - 1
		} else {
			i = j
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

func isTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
