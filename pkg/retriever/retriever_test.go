package retriever_test

import (
	"fmt"
	"testing"

	"github.com/asknotes/asknotes/internal/models"
	"github.com/asknotes/asknotes/pkg/retriever"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeChunks(texts ...string) []models.Chunk {
	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{
			FileName:   "notes.txt",
			PageNumber: 1,
			ChunkIndex: i,
			Text:       text,
		}
	}
	return chunks
}

func TestRetrieve_EmptyStore(t *testing.T) {
	r := retriever.NewWithConfig(retriever.RetrieverConfig{})

	result := r.Retrieve("anything", nil)

	assert.True(t, result.InsufficientContext)
	assert.Empty(t, result.TopChunks)
}

func TestRetrieve_KeywordHit(t *testing.T) {
	r := retriever.NewWithConfig(retriever.RetrieverConfig{})
	chunks := []models.Chunk{{
		FileName:   "a.txt",
		PageNumber: 1,
		ChunkIndex: 0,
		Text:       "Mitosis is cell division producing two identical daughter cells.",
	}}

	result := r.Retrieve("What is mitosis?", chunks)

	assert.False(t, result.InsufficientContext)
	require.Len(t, result.TopChunks, 1)
	assert.Greater(t, result.TopChunks[0].Score, 0)
	assert.Equal(t, "a.txt", result.TopChunks[0].FileName)
}

func TestRetrieve_KeywordMiss_Strict(t *testing.T) {
	r := retriever.NewWithConfig(retriever.RetrieverConfig{Fallback: retriever.FallbackStrict})
	chunks := makeChunks("Photosynthesis converts light into chemical energy.")

	result := r.Retrieve("What is mitosis?", chunks)

	assert.True(t, result.InsufficientContext)
	assert.Empty(t, result.TopChunks)
}

func TestRetrieve_KeywordMiss_Lenient(t *testing.T) {
	r := retriever.NewWithConfig(retriever.RetrieverConfig{Fallback: retriever.FallbackLenient, TopK: 2})
	chunks := makeChunks(
		"First chunk about photosynthesis.",
		"Second chunk about respiration.",
		"Third chunk about osmosis.",
	)

	result := r.Retrieve("What is mitosis?", chunks)

	assert.False(t, result.InsufficientContext)
	require.Len(t, result.TopChunks, 2)
	// Document order, zero scores.
	assert.Equal(t, 0, result.TopChunks[0].ChunkIndex)
	assert.Equal(t, 1, result.TopChunks[1].ChunkIndex)
	assert.Equal(t, 0, result.TopChunks[0].Score)
}

func TestRetrieve_NoKeywords_Strict(t *testing.T) {
	r := retriever.NewWithConfig(retriever.RetrieverConfig{})
	chunks := makeChunks("Some chunk content here.")

	// Entirely stopwords and short tokens.
	result := r.Retrieve("what is it", chunks)

	assert.True(t, result.InsufficientContext)
}

func TestRetrieve_TopKBound(t *testing.T) {
	r := retriever.NewWithConfig(retriever.RetrieverConfig{})

	var texts []string
	for i := 0; i < 20; i++ {
		texts = append(texts, fmt.Sprintf("Mitosis notes part %d.", i))
	}

	result := r.Retrieve("What is mitosis?", makeChunks(texts...))

	assert.False(t, result.InsufficientContext)
	assert.LessOrEqual(t, len(result.TopChunks), 6)
}

func TestRetrieve_ScoringMonotonicity(t *testing.T) {
	r := retriever.NewWithConfig(retriever.RetrieverConfig{})
	chunks := makeChunks(
		"mitosis appears once here",
		"mitosis and mitosis appear twice here",
	)

	result := r.Retrieve("explain mitosis", chunks)

	require.Len(t, result.TopChunks, 2)
	// The two-occurrence chunk sorts first with a strictly higher score.
	assert.Equal(t, 1, result.TopChunks[0].ChunkIndex)
	assert.Greater(t, result.TopChunks[0].Score, result.TopChunks[1].Score)
}

func TestRetrieve_TiesKeepInsertionOrder(t *testing.T) {
	r := retriever.NewWithConfig(retriever.RetrieverConfig{})
	chunks := makeChunks(
		"mitosis described first",
		"mitosis described second",
		"mitosis described third",
	)

	result := r.Retrieve("mitosis", chunks)

	require.Len(t, result.TopChunks, 3)
	assert.Equal(t, 0, result.TopChunks[0].ChunkIndex)
	assert.Equal(t, 1, result.TopChunks[1].ChunkIndex)
	assert.Equal(t, 2, result.TopChunks[2].ChunkIndex)
}

func TestRetrieve_SubstringBonus(t *testing.T) {
	r := retriever.NewWithConfig(retriever.RetrieverConfig{})
	// "photo" never appears as a whole word, only as a substring.
	chunks := makeChunks("Photosynthesis converts light into energy.")

	result := r.Retrieve("photo", chunks)

	assert.False(t, result.InsufficientContext)
	require.Len(t, result.TopChunks, 1)
	assert.Equal(t, 2, result.TopChunks[0].Score)
}
