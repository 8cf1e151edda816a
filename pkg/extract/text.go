package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/asknotes/asknotes/internal/types"
)

// TextExtractor reads plain-text notes. The whole file becomes page 1.
type TextExtractor struct{}

func (TextExtractor) Extract(ctx context.Context, path string) ([]types.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, ErrExtractionEmpty
	}

	return []types.Page{{Number: 1, Text: text}}, nil
}
