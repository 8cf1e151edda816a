package types

import (
	"context"

	"github.com/asknotes/asknotes/internal/models"
)

// Core interfaces

// ChunkStore owns the chunk collection for all ingested files. It is
// read-only during retrieval; chunks are added and removed whole files
// at a time.
type ChunkStore interface {
	AddChunks(ctx context.Context, fileID string, chunks []models.Chunk) error
	RemoveChunksForFile(ctx context.Context, fileID string) error
	ListChunks(ctx context.Context, fileIDs ...string) ([]models.Chunk, error)
	Close()
}

// Generator is the boundary to the external text-generation model:
// prompt in, text out.
type Generator interface {
	Generate(ctx context.Context, system, user string, opts GenerateOptions) (string, error)
	GenerateChat(ctx context.Context, system string, history []models.Turn, message string, opts GenerateOptions) (string, error)
}

// GenerateOptions tune a single model call. Zero values fall back to
// the client's configured defaults; Temperature is a pointer so an
// explicit 0 is distinct from unset.
type GenerateOptions struct {
	Temperature *float64
	MaxTokens   int
	JSONMode    bool
}

// Temperature builds the pointer form used in GenerateOptions.
func Temperature(v float64) *float64 {
	return &v
}

// Page is the raw extracted text of one document page. Page-less
// sources report a single page numbered 1.
type Page struct {
	Number int
	Text   string
}

// Extractor produces raw page text from a source document.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]Page, error)
}
