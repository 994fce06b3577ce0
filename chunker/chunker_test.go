package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextUnchanged(t *testing.T) {
	text := "short text"
	chunks := Split(text, 1000)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitShortCircuitExactBoundary(t *testing.T) {
	text := strings.Repeat("a", 100)
	chunks := Split(text, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitRespectsSentenceBoundaries(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence here. Fourth sentence here."
	chunks := Split(text, 45)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 45, "chunk %q exceeds the size bound", c)
		assert.Equal(t, strings.TrimSpace(c), c, "chunk %q is not trimmed", c)
	}
	assert.Equal(t, "First sentence here. Second sentence here.", chunks[0])
}

func TestSplitRoundTrip(t *testing.T) {
	text := "One sentence. Another one! A question? Yet more text here. " +
		strings.Repeat("Filler sentence with several words in it. ", 40) +
		"Final sentence without terminator"
	chunks := Split(text, 120)

	// Joining chunks reproduces the input up to whitespace trimmed at
	// chunk boundaries.
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c)
	}
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(strings.Fields(b.String()), " "))
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 60)
	first := Split(text, 300)
	second := Split(text, 300)
	assert.Equal(t, first, second)
}

func TestSplitOversizedSentenceKeptWhole(t *testing.T) {
	long := "word " + strings.Repeat("verylongsentencewithoutanyterminators", 10)
	text := "Short lead-in. " + long + ". Tail sentence."
	chunks := Split(text, 50)

	found := false
	for _, c := range chunks {
		if strings.Contains(c, "verylongsentence") {
			found = true
			assert.Greater(t, len(c), 50)
			assert.NotContains(t, c, "Tail")
		}
	}
	assert.True(t, found, "oversized sentence must be emitted as its own chunk")
}

func TestSplitOrdinalOrderMatchesSource(t *testing.T) {
	text := "Alpha first. Beta second. Gamma third. Delta fourth. Epsilon fifth. Zeta sixth."
	chunks := Split(text, 30)

	joined := strings.Join(chunks, " ")
	prev := -1
	for _, word := range []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta"} {
		idx := strings.Index(joined, word)
		require.Greater(t, idx, prev, "%s out of order", word)
		prev = idx
	}
}

func TestSplitDegenerateInput(t *testing.T) {
	chunks := Split(strings.Repeat(". ", 600), 100)
	for _, c := range chunks {
		assert.NotEmpty(t, c)
	}
}

func TestSplitMultipleTerminators(t *testing.T) {
	text := "Really?! " + strings.Repeat("Are you sure?! I am... Completely. ", 40)
	chunks := Split(text, 80)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 80)
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   \n\t"))
	assert.Equal(t, 3, WordCount("three  little words"))
	assert.Equal(t, 2, WordCount("  padded words  "))
}
