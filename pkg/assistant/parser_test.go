package assistant_test

import (
	"testing"

	"github.com/asknotes/asknotes/internal/models"
	"github.com/asknotes/asknotes/pkg/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer_RawJSON(t *testing.T) {
	answer, err := assistant.ParseAnswer(`{"answer":"x","confidence":"High"}`)

	require.NoError(t, err)
	assert.Equal(t, "x", answer.Answer)
	assert.Equal(t, "High", answer.Confidence)
}

func TestParseAnswer_FencedJSON(t *testing.T) {
	answer, err := assistant.ParseAnswer("```json\n{\"answer\":\"x\"}\n```")

	require.NoError(t, err)
	assert.Equal(t, "x", answer.Answer)
}

func TestParseAnswer_UntaggedFence(t *testing.T) {
	answer, err := assistant.ParseAnswer("```\n{\"answer\":\"x\"}\n```")

	require.NoError(t, err)
	assert.Equal(t, "x", answer.Answer)
}

func TestParseAnswer_EmbeddedJSON(t *testing.T) {
	answer, err := assistant.ParseAnswer(`Sure! {"answer":"x"} thanks`)

	require.NoError(t, err)
	assert.Equal(t, "x", answer.Answer)
}

func TestParseAnswer_BareSentinel(t *testing.T) {
	answer, err := assistant.ParseAnswer("  NOT_FOUND\n")

	require.NoError(t, err)
	assert.True(t, answer.NotFound())
}

func TestParseAnswer_SentinelInJSON(t *testing.T) {
	answer, err := assistant.ParseAnswer(`{"answer":"NOT_FOUND"}`)

	require.NoError(t, err)
	assert.True(t, answer.NotFound())
}

func TestParseAnswer_HardFailure(t *testing.T) {
	_, err := assistant.ParseAnswer("no json here")

	var formatErr *assistant.ResponseFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "no json here", formatErr.Raw)
}

func TestParseInto_Citations(t *testing.T) {
	raw := `{"answer":"Mitosis is cell division.","confidence":"High","citations":[{"fileName":"a.txt","pageNumber":1,"chunkIndex":0,"excerpt":"Mitosis is"}],"evidenceSnippets":["Mitosis is cell division"]}`

	var answer models.StructuredAnswer
	require.NoError(t, assistant.ParseInto(raw, &answer))

	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "a.txt", answer.Citations[0].FileName)
	assert.Equal(t, 1, answer.Citations[0].PageNumber)
	assert.Len(t, answer.EvidenceSnippets, 1)
}

func TestParseInto_MalformedJSONIsNotSwallowed(t *testing.T) {
	var v map[string]interface{}
	err := assistant.ParseInto(`{"answer": "unterminated`, &v)

	var formatErr *assistant.ResponseFormatError
	assert.ErrorAs(t, err, &formatErr)
}
