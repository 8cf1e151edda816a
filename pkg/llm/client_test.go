package llm_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/asknotes/asknotes/internal/models"
	"github.com/asknotes/asknotes/internal/types"
	"github.com/asknotes/asknotes/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel scripts GenerateContent responses for one backend.
type fakeModel struct {
	responses []fakeResponse
	calls     int
	lastOpts  llms.CallOptions
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.lastOpts = llms.CallOptions{}
	for _, opt := range options {
		opt(&f.lastOpts)
	}
	if f.calls >= len(f.responses) {
		return nil, fmt.Errorf("unexpected call %d", f.calls)
	}
	r := f.responses[f.calls]
	f.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: r.text}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := f.GenerateContent(ctx, nil, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func testConfig() llm.ClientConfig {
	return llm.ClientConfig{
		Models:    []string{"primary"},
		RateLimit: 1000,
		Retry: llm.RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
		},
	}
}

func TestGenerate_Success(t *testing.T) {
	backend := &fakeModel{responses: []fakeResponse{{text: "hello"}}}
	client, err := llm.NewWithBackends(testConfig(), []llms.Model{backend})
	require.NoError(t, err)

	got, err := client.Generate(context.Background(), "system", "user", types.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, 1, backend.calls)
}

func TestGenerate_RetriesAfterRateLimit(t *testing.T) {
	backend := &fakeModel{responses: []fakeResponse{
		{err: fmt.Errorf("API error: 429 too many requests")},
		{text: "recovered"},
	}}
	client, err := llm.NewWithBackends(testConfig(), []llms.Model{backend})
	require.NoError(t, err)

	got, err := client.Generate(context.Background(), "system", "user", types.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, backend.calls)
}

func TestGenerate_FailsOverToNextModel(t *testing.T) {
	primary := &fakeModel{responses: []fakeResponse{
		{err: fmt.Errorf("quota exceeded")},
	}}
	fallback := &fakeModel{responses: []fakeResponse{
		{text: "from fallback"},
	}}

	config := testConfig()
	config.Models = []string{"primary", "fallback"}
	client, err := llm.NewWithBackends(config, []llms.Model{primary, fallback})
	require.NoError(t, err)

	got, err := client.Generate(context.Background(), "system", "user", types.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "from fallback", got)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestGenerate_RateLimitedAfterExhaustion(t *testing.T) {
	backend := &fakeModel{responses: []fakeResponse{
		{err: fmt.Errorf("rate limit exceeded")},
		{err: fmt.Errorf("rate limit exceeded")},
		{err: fmt.Errorf("rate limit exceeded")},
	}}
	client, err := llm.NewWithBackends(testConfig(), []llms.Model{backend})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "system", "user", types.GenerateOptions{})

	assert.ErrorIs(t, err, llm.ErrRateLimited)
	assert.Equal(t, 3, backend.calls)
}

func TestGenerate_UnavailableAfterExhaustion(t *testing.T) {
	backend := &fakeModel{responses: []fakeResponse{
		{err: fmt.Errorf("connection refused")},
		{err: fmt.Errorf("connection refused")},
		{err: fmt.Errorf("connection refused")},
	}}
	client, err := llm.NewWithBackends(testConfig(), []llms.Model{backend})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "system", "user", types.GenerateOptions{})

	assert.ErrorIs(t, err, llm.ErrUnavailable)
	assert.NotErrorIs(t, err, llm.ErrRateLimited)
}

func TestGenerateChat_CarriesHistory(t *testing.T) {
	backend := &fakeModel{responses: []fakeResponse{{text: "answer"}}}
	client, err := llm.NewWithBackends(testConfig(), []llms.Model{backend})
	require.NoError(t, err)

	history := []models.Turn{
		{Role: models.RoleUser, Content: "first question"},
		{Role: models.RoleAssistant, Content: "first answer"},
	}

	got, err := client.GenerateChat(context.Background(), "system", history, "next question", types.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "answer", got)
}

func TestGenerate_TemperatureZeroIsHonored(t *testing.T) {
	backend := &fakeModel{responses: []fakeResponse{{text: "a"}, {text: "b"}}}
	client, err := llm.NewWithBackends(testConfig(), []llms.Model{backend})
	require.NoError(t, err)

	// Unset falls back to the configured default.
	_, err = client.Generate(context.Background(), "system", "user", types.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.7, backend.lastOpts.Temperature)

	// An explicit zero is a request for zero, not for the default.
	_, err = client.Generate(context.Background(), "system", "user", types.GenerateOptions{Temperature: types.Temperature(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, backend.lastOpts.Temperature)
}

func TestNewWithConfig_Defaults(t *testing.T) {
	client, err := llm.NewWithConfig(llm.ClientConfig{})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
