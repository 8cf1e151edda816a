package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/asknotes/asknotes/internal/types"
)

// ErrExtractionEmpty reports that no text could be obtained for a
// document. The file must not be added to the chunk store.
var ErrExtractionEmpty = errors.New("no text content extracted")

// ErrUnsupportedType reports a file extension no extractor handles.
var ErrUnsupportedType = errors.New("unsupported file type")

// OCRFunc turns a rendered page image (PNG bytes) into text. It is the
// fallback path for scanned PDFs without a text layer.
type OCRFunc func(ctx context.Context, png []byte) (string, error)

// ForFile picks the extractor matching the file extension. The ocr
// function may be nil, in which case image-only PDF pages are skipped.
func ForFile(path string, ocr OCRFunc) (types.Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewPDFExtractor(ocr), nil
	case ".txt", ".md":
		return TextExtractor{}, nil
	case ".html", ".htm":
		return HTMLExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}
}

// collapseWhitespace folds all whitespace runs into single spaces.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
