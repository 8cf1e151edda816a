package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/asknotes/asknotes/internal/types"
)

// HTMLExtractor reads notes saved as web pages. Like the plain-text
// path it yields a single page numbered 1.
type HTMLExtractor struct{}

func (HTMLExtractor) Extract(ctx context.Context, path string) ([]types.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	text := extractMainContent(doc)
	if text == "" {
		return nil, ErrExtractionEmpty
	}

	return []types.Page{{Number: 1, Text: text}}, nil
}

func extractMainContent(doc *goquery.Document) string {
	// Try to find a main content area before falling back to body
	selectors := []string{
		"main",
		"article",
		".content",
		"#content",
		".notes",
		"#notes",
	}

	var content string
	for _, selector := range selectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			content = selected.Text()
			break
		}
	}

	if content == "" {
		content = doc.Find("body").Text()
	}

	return strings.TrimSpace(collapseWhitespace(content))
}
