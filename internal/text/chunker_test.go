package text_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"clarifile/internal/text"
)

func TestChunk_Empty(t *testing.T) {
	assert.Nil(t, text.Chunk("", 100, 10))
	assert.Nil(t, text.Chunk("   \n\t ", 100, 10))
}

func TestChunk_SmallInput(t *testing.T) {
	chunks := text.Chunk("  short text  ", 100, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestChunk_WindowInvariants(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		size    int
		overlap int
	}{
		{"no overlap", 500, 100, 0},
		{"typical overlap", 2600, 1200, 200},
		{"heavy overlap", 300, 50, 40},
		{"overlap equals size minus one", 120, 10, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("abcdefghij", tt.length/10)
			chunks := text.Chunk(input, tt.size, tt.overlap)
			require.NotEmpty(t, chunks)

			step := tt.size - tt.overlap
			if step < 1 {
				step = 1
			}
			for i, c := range chunks {
				assert.LessOrEqual(t, len([]rune(c)), tt.size, "chunk %d exceeds size", i)
				assert.NotEmpty(t, strings.TrimSpace(c), "chunk %d is blank", i)
			}
			// Consecutive windows start step runes apart, so among full-size
			// chunks the tail of one equals the head of the next.
			for i := 0; i+1 < len(chunks); i++ {
				if len(chunks[i]) == tt.size && len(chunks[i+1]) == tt.size {
					assert.Equal(t, chunks[i][step:], chunks[i+1][:tt.size-step])
				}
			}
		})
	}
}

func TestChunk_HelloWorldExample(t *testing.T) {
	// ~2600 chars with size 1200 / overlap 200 gives exactly three windows
	// starting at 0, 1000 and 2000.
	input := strings.Repeat("Hello world. ", 200)
	chunks := text.Chunk(input, 1200, 200)
	require.Len(t, chunks, 3)

	// Chunks 0 and 1 share a 200-char region of the original text.
	runes := []rune(input)
	shared := strings.TrimSpace(string(runes[1000:1200]))
	assert.True(t, strings.HasSuffix(chunks[0], shared))
	assert.True(t, strings.HasPrefix(chunks[1], shared))
}

func TestChunk_StepClampedToOne(t *testing.T) {
	// overlap >= size degenerates to a step of one rune
	chunks := text.Chunk("abcde", 2, 5)
	assert.Equal(t, []string{"ab", "bc", "cd", "de", "e"}, chunks)
}
