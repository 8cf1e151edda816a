package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/asknotes/asknotes/internal/models"
	"github.com/asknotes/asknotes/internal/types"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/time/rate"
)

const ocrPrompt = "Extract all text, notes, and meaningful content from this page exactly as written. If it's a diagram, describe its key points."

// RetryPolicy is the single retry configuration applied uniformly to
// every model call.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      float64
}

// ClientConfig represents the configuration for a model client.
type ClientConfig struct {
	BaseURL     string
	Models      []string // ordered: first is primary, rest are fallbacks
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RateLimit   float64 // calls per second
	Retry       RetryPolicy
}

// Client talks to the external generation model. It is injected into
// the prompt layer explicitly; there is no package-level singleton.
type Client struct {
	config   ClientConfig
	backends []llms.Model
	limiter  *rate.Limiter
}

// NewWithConfig creates a Client with one backend per configured model
// identifier.
func NewWithConfig(config ClientConfig) (*Client, error) {
	applyClientDefaults(&config)

	backends := make([]llms.Model, 0, len(config.Models))
	for _, model := range config.Models {
		backend, err := ollama.New(
			ollama.WithModel(model),
			ollama.WithServerURL(config.BaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize model %s: %w", model, err)
		}
		backends = append(backends, backend)
	}

	return newClient(config, backends), nil
}

// NewWithBackends creates a Client over caller-supplied backends, one
// per entry in config.Models. Used by tests to inject fakes.
func NewWithBackends(config ClientConfig, backends []llms.Model) (*Client, error) {
	applyClientDefaults(&config)
	if len(backends) == 0 {
		return nil, fmt.Errorf("at least one backend is required")
	}
	return newClient(config, backends), nil
}

func newClient(config ClientConfig, backends []llms.Model) *Client {
	return &Client{
		config:   config,
		backends: backends,
		limiter:  rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

func applyClientDefaults(config *ClientConfig) {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if len(config.Models) == 0 {
		config.Models = []string{"mistral"}
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.Timeout == 0 {
		config.Timeout = 2 * time.Minute
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}
	if config.Retry.MaxAttempts == 0 {
		config.Retry.MaxAttempts = 3
	}
	if config.Retry.BaseDelay == 0 {
		config.Retry.BaseDelay = 500 * time.Millisecond
	}
}

// Generate performs a single prompt-in, text-out call.
func (c *Client) Generate(ctx context.Context, system, user string, opts types.GenerateOptions) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, user),
	}
	return c.generate(ctx, content, opts)
}

// GenerateChat performs a call carrying prior conversation turns.
func (c *Client) GenerateChat(ctx context.Context, system string, history []models.Turn, message string, opts types.GenerateOptions) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
	}
	for _, turn := range history {
		role := schema.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, turn.Content))
	}
	content = append(content, llms.TextParts(schema.ChatMessageTypeHuman, message))
	return c.generate(ctx, content, opts)
}

// OCRImage extracts text from a rendered page image through the model.
func (c *Client) OCRImage(ctx context.Context, pngData []byte) (string, error) {
	content := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(ocrPrompt),
				llms.BinaryPart("image/png", pngData),
			},
		},
	}
	return c.generate(ctx, content, types.GenerateOptions{Temperature: types.Temperature(0.1)})
}

// generate runs the retry/failover loop: bounded attempts with
// exponential backoff, advancing to the next configured model after a
// rate-limit signal.
func (c *Client) generate(ctx context.Context, content []llms.MessageContent, opts types.GenerateOptions) (string, error) {
	callOpts := c.callOptions(opts)

	backend := 0
	var lastErr error

	for attempt := 0; attempt < c.config.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, attempt); err != nil {
				return "", err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		resp, err := c.backends[backend].GenerateContent(callCtx, content, callOpts...)
		cancel()

		if err == nil {
			if len(resp.Choices) == 0 || resp.Choices[0] == nil {
				lastErr = fmt.Errorf("empty response from model")
				continue
			}
			return resp.Choices[0].Content, nil
		}

		lastErr = classify(err)
		if errors.Is(lastErr, ErrRateLimited) && backend+1 < len(c.backends) {
			backend++
		}
	}

	if errors.Is(lastErr, ErrRateLimited) {
		return "", lastErr
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) callOptions(opts types.GenerateOptions) []llms.CallOption {
	temperature := c.config.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxTokens
	}

	callOpts := []llms.CallOption{
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	}
	if opts.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}
	return callOpts
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.config.Retry.BaseDelay << uint(attempt-1)
	if c.config.Retry.Jitter > 0 {
		delay += time.Duration(rand.Float64() * c.config.Retry.Jitter * float64(delay))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
