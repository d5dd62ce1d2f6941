package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Empty(t *testing.T) {
	assert.Nil(t, Split("", DefaultOptions()))
}

func TestSplit_SingleChunk(t *testing.T) {
	chunks := Split("short text", DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 10, chunks[0].End)
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("some line of text\n", 300)
	opts := DefaultOptions()

	first := Split(text, opts)
	second := Split(text, opts)
	require.Equal(t, first, second)
}

func TestSplit_OverlapAndBounds(t *testing.T) {
	// 2500 runes with no separator: expect pure windowing with step 800.
	text := strings.Repeat("a", 1000) + strings.Repeat("b", 1000) + strings.Repeat("c", 500)
	chunks := Split(text, DefaultOptions())

	require.GreaterOrEqual(t, len(chunks), 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), 1000)
	}
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Content)
		cur := []rune(chunks[i].Content)
		require.GreaterOrEqual(t, len(cur), 200)
		assert.Equal(t, string(prev[len(prev)-200:]), string(cur[:200]),
			"chunk %d must start with the previous chunk's last 200 runes", i)
	}

	// Every rune of the input is covered.
	last := chunks[len(chunks)-1]
	assert.Equal(t, len([]rune(text)), last.End)
}

func TestSplit_PrefersSeparator(t *testing.T) {
	// A newline at rune 900 falls past the overlap region, so the first
	// chunk should end there instead of at the hard 1000-rune limit.
	text := strings.Repeat("x", 899) + "\n" + strings.Repeat("y", 1200)
	chunks := Split(text, DefaultOptions())

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 900, chunks[0].End)
	assert.True(t, strings.HasSuffix(chunks[0].Content, "\n"))
	assert.Equal(t, 700, chunks[1].Start)
}

func TestSplit_SeparatorInsideOverlapIgnored(t *testing.T) {
	// The only newline sits inside the overlap region; cutting there would
	// make no forward progress, so the chunk is cut at the size limit.
	text := strings.Repeat("x", 100) + "\n" + strings.Repeat("y", 2000)
	chunks := Split(text, Options{ChunkSize: 1000, ChunkOverlap: 200, Separator: "\n"})

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 1000, chunks[0].End)
}

func TestSplit_IndicesSequential(t *testing.T) {
	text := strings.Repeat("line\n", 2000)
	chunks := Split(text, DefaultOptions())
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestSplit_ClampsBadOptions(t *testing.T) {
	text := strings.Repeat("z", 50)
	chunks := Split(text, Options{ChunkSize: 10, ChunkOverlap: 100})
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), 10)
	}
}
