package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRateLimited marks a rate/quota signal from the model API. It is
// recoverable: callers may retry, back off, or fail over to another
// model identifier.
var ErrRateLimited = errors.New("model rate limited")

// ErrUnavailable marks a transport or service failure that survived
// all configured retries.
var ErrUnavailable = errors.New("model unavailable")

var rateLimitMarkers = []string{
	"429",
	"rate limit",
	"ratelimit",
	"too many requests",
	"quota",
	"resource exhausted",
}

// classify maps a backend error onto the taxonomy so callers can use
// errors.Is instead of string matching.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	return err
}
