package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for invalid values. An empty slice
// means the configuration is usable.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if len(c.LLM.Models) == 0 {
		errors = append(errors, ValidationError{
			Field:   "llm.models",
			Message: "at least one model is required",
		})
	}
	for i, model := range c.LLM.Models {
		if strings.TrimSpace(model) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("llm.models[%d]", i),
				Message: "model name cannot be blank",
			})
		}
	}
	if c.LLM.MaxTokens < 0 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "must not be negative",
		})
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "must be between 0 and 2",
		})
	}
	if c.LLM.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "llm.rate_limit",
			Message: "must not be negative",
		})
	}
	if c.LLM.Retry.MaxAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "llm.retry.max_attempts",
			Message: "must be at least 1",
		})
	}
	if c.LLM.Retry.Jitter < 0 || c.LLM.Retry.Jitter > 1 {
		errors = append(errors, ValidationError{
			Field:   "llm.retry.jitter",
			Message: "must be between 0 and 1",
		})
	}

	if c.Chunker.MaxChars < 1 {
		errors = append(errors, ValidationError{
			Field:   "chunker.max_chars",
			Message: "must be at least 1",
		})
	}

	if c.Retrieval.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.top_k",
			Message: "must be at least 1",
		})
	}
	if c.Retrieval.MinKeywordLen < 0 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.min_keyword_len",
			Message: "must not be negative",
		})
	}
	switch c.Retrieval.Fallback {
	case "strict", "lenient":
	default:
		errors = append(errors, ValidationError{
			Field:   "retrieval.fallback",
			Message: "must be strict or lenient",
		})
	}

	if c.Chat.HistoryWindow < 0 {
		errors = append(errors, ValidationError{
			Field:   "chat.history_window",
			Message: "must not be negative",
		})
	}

	if c.Study.MCQCount < 0 {
		errors = append(errors, ValidationError{
			Field:   "study.mcq_count",
			Message: "must not be negative",
		})
	}
	if c.Study.ShortAnswerCount < 0 {
		errors = append(errors, ValidationError{
			Field:   "study.short_answer_count",
			Message: "must not be negative",
		})
	}
	if c.Exam.MCQCount < 0 {
		errors = append(errors, ValidationError{
			Field:   "exam.mcq_count",
			Message: "must not be negative",
		})
	}
	if c.Exam.EssayCount < 0 {
		errors = append(errors, ValidationError{
			Field:   "exam.essay_count",
			Message: "must not be negative",
		})
	}

	return errors
}
