package retriever_test

import (
	"testing"

	"github.com/asknotes/asknotes/pkg/retriever"
	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords_StopwordExclusion(t *testing.T) {
	keywords := retriever.ExtractKeywords("What is the theory of relativity")

	assert.Contains(t, keywords, "theory")
	assert.Contains(t, keywords, "relativity")
	for _, stop := range []string{"what", "is", "the", "of"} {
		assert.NotContains(t, keywords, stop)
	}
}

func TestExtractKeywords_Empty(t *testing.T) {
	assert.Empty(t, retriever.ExtractKeywords(""))
	assert.Empty(t, retriever.ExtractKeywords("the of and is"))
}

func TestExtractKeywords_Lowercases(t *testing.T) {
	keywords := retriever.ExtractKeywords("MITOSIS and Photosynthesis")
	assert.Equal(t, []string{"mitosis", "photosynthesis"}, keywords)
}

func TestExtractKeywords_ShortTokensDropped(t *testing.T) {
	keywords := retriever.ExtractKeywords("ph of h2 in cells")
	// Tokens of length <= 2 are dropped regardless of content.
	assert.Equal(t, []string{"cells"}, keywords)
}

func TestExtractKeywords_PreservesOrderAndDuplicates(t *testing.T) {
	keywords := retriever.ExtractKeywords("cells divide cells merge")
	assert.Equal(t, []string{"cells", "divide", "cells", "merge"}, keywords)
}
