package extract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/asknotes/asknotes/internal/types"
	"github.com/gen2brain/go-fitz"
)

// PDFExtractor reads the PDF text layer page by page. Pages with no
// text layer are rendered to an image and, when an OCR function is
// configured, sent through it; OCR failures on individual pages are
// skipped rather than failing the document.
type PDFExtractor struct {
	ocr OCRFunc
}

func NewPDFExtractor(ocr OCRFunc) *PDFExtractor {
	return &PDFExtractor{ocr: ocr}
}

func (p *PDFExtractor) Extract(ctx context.Context, path string) ([]types.Page, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var pages []types.Page
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := doc.Text(i)
		if err == nil && strings.TrimSpace(text) != "" {
			pages = append(pages, types.Page{
				Number: i + 1,
				Text:   collapseWhitespace(text),
			})
			continue
		}

		ocrText, err := p.ocrPage(ctx, doc, i)
		if err != nil {
			continue
		}
		if strings.TrimSpace(ocrText) != "" {
			pages = append(pages, types.Page{
				Number: i + 1,
				Text:   collapseWhitespace(ocrText),
			})
		}
	}

	if len(pages) == 0 {
		return nil, ErrExtractionEmpty
	}
	return pages, nil
}

func (p *PDFExtractor) ocrPage(ctx context.Context, doc *fitz.Document, page int) (string, error) {
	if p.ocr == nil {
		return "", fmt.Errorf("no OCR fallback configured")
	}

	img, err := doc.Image(page)
	if err != nil {
		return "", fmt.Errorf("failed to render page %d: %w", page+1, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode page %d: %w", page+1, err)
	}

	return p.ocr(ctx, buf.Bytes())
}
