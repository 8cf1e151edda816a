package assistant

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/asknotes/asknotes/internal/models"
)

// ResponseFormatError reports that model output could not be parsed by
// any strategy. It signals a contract violation by the model, distinct
// from a grounding failure, and must never be coerced to a default.
type ResponseFormatError struct {
	Raw string
}

func (e *ResponseFormatError) Error() string {
	return "could not parse model response as JSON"
}

var (
	fenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	objRe   = regexp.MustCompile(`\{[\s\S]*\}`)
)

// ParseInto decodes raw model output into v, trying in order: the
// trimmed text as-is, the interior of a fenced code block, and the
// first {...} span. Hosted models wrap JSON in markdown fences
// inconsistently despite instructions, so all three tiers are load
// bearing.
func ParseInto(raw string, v interface{}) error {
	trimmed := strings.TrimSpace(raw)

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), v); err == nil {
			return nil
		}
	}
	if m := objRe.FindString(trimmed); m != "" {
		if err := json.Unmarshal([]byte(m), v); err == nil {
			return nil
		}
	}
	return &ResponseFormatError{Raw: raw}
}

// ParseAnswer decodes a grounded Q&A response. A bare NOT_FOUND
// sentinel is accepted alongside the JSON shape.
func ParseAnswer(raw string) (models.StructuredAnswer, error) {
	if strings.TrimSpace(raw) == models.AnswerNotFound {
		return models.StructuredAnswer{Answer: models.AnswerNotFound}, nil
	}

	var answer models.StructuredAnswer
	if err := ParseInto(raw, &answer); err != nil {
		return models.StructuredAnswer{}, err
	}
	return answer, nil
}
