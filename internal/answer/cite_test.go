package answer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clarifile/internal/answer"
	"clarifile/internal/retrieval"
)

func TestLabelSources(t *testing.T) {
	used := []retrieval.Result{
		{Source: "guide.pdf", Chunk: 2},
		{Source: "notes.txt", Chunk: 0},
		{Source: "guide.pdf", Chunk: 5},
		{Source: "spec.html", Chunk: 1},
	}

	labels := answer.LabelSources(used)

	assert.Equal(t, map[string]int{
		"guide.pdf": 1,
		"notes.txt": 2,
		"spec.html": 3,
	}, labels)
}

func TestLabelSources_Empty(t *testing.T) {
	assert.Empty(t, answer.LabelSources(nil))
}

func TestRenderCitations(t *testing.T) {
	used := []retrieval.Result{
		{Source: "guide.pdf", Chunk: 2},
		{Source: "notes.txt", Chunk: 0},
		{Source: "guide.pdf", Chunk: 5},
	}

	got, err := answer.RenderCitations("Cats purr when content.", used)
	require.NoError(t, err)

	want := "Cats purr when content.\n\nSources:\n[1] guide.pdf (chunk 2)\n[2] notes.txt (chunk 0)\n"
	assert.Equal(t, want, got)
}

func TestRenderCitations_NoUsedChunks(t *testing.T) {
	got, err := answer.RenderCitations("I don't know.", []retrieval.Result{})
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", got)
}

func TestRenderCitations_EmptyAnswer(t *testing.T) {
	_, err := answer.RenderCitations("   ", []retrieval.Result{{Source: "a.pdf"}})
	assert.ErrorIs(t, err, answer.ErrEmptyAnswerText)
}

func TestRenderCitations_NilUsed(t *testing.T) {
	_, err := answer.RenderCitations("fine answer", nil)
	assert.ErrorIs(t, err, answer.ErrNilUsed)
}
