package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/asknotes/asknotes/internal/models"
	"github.com/asknotes/asknotes/internal/types"
	"github.com/asknotes/asknotes/pkg/chunker"
	"github.com/asknotes/asknotes/pkg/extract"
	"github.com/google/uuid"
)

type IngesterConfig struct {
	MaxChunkChars int
}

// Ingester runs the extraction, chunking and storage pipeline for
// uploaded notes.
type Ingester struct {
	config IngesterConfig
	store  types.ChunkStore
	ocr    extract.OCRFunc
}

// FileResult summarizes one ingested file.
type FileResult struct {
	FileID     string `json:"fileId"`
	FileName   string `json:"fileName"`
	ChunkCount int    `json:"totalChunks"`
	TotalChars int    `json:"totalChars"`
}

func NewWithConfig(config IngesterConfig, store types.ChunkStore, ocr extract.OCRFunc) Ingester {
	if config.MaxChunkChars == 0 {
		config.MaxChunkChars = chunker.DefaultMaxChars
	}
	return Ingester{
		config: config,
		store:  store,
		ocr:    ocr,
	}
}

// IngestFile extracts, chunks and stores one file. Chunk indexes are
// assigned from a single per-file counter, continued across pages, so
// they are gapless and strictly increasing within the file.
func (ing *Ingester) IngestFile(ctx context.Context, path string) (FileResult, error) {
	return ing.IngestFileAs(ctx, path, filepath.Base(path))
}

// IngestFileAs ingests the file at path but records name as the source
// document name on every stored chunk. Citations point back to that
// name, so callers reading from a spool file (an HTTP upload, say)
// must pass the original filename here, not the spool path.
func (ing *Ingester) IngestFileAs(ctx context.Context, path, name string) (FileResult, error) {
	extractor, err := extract.ForFile(path, ing.ocr)
	if err != nil {
		return FileResult{}, err
	}

	pages, err := extractor.Extract(ctx, path)
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to extract %s: %w", name, err)
	}

	fileName := name
	fileID := uuid.NewString()

	var chunks []models.Chunk
	totalChars := 0
	index := 0
	for _, page := range pages {
		totalChars += len(page.Text)
		for _, text := range chunker.Chunk(page.Text, ing.config.MaxChunkChars) {
			chunks = append(chunks, models.Chunk{
				FileName:   fileName,
				PageNumber: page.Number,
				ChunkIndex: index,
				Text:       text,
			})
			index++
		}
	}

	if len(chunks) == 0 {
		return FileResult{}, fmt.Errorf("failed to extract %s: %w", fileName, extract.ErrExtractionEmpty)
	}

	if err := ing.store.AddChunks(ctx, fileID, chunks); err != nil {
		return FileResult{}, fmt.Errorf("failed to store chunks for %s: %w", fileName, err)
	}

	return FileResult{
		FileID:     fileID,
		FileName:   fileName,
		ChunkCount: len(chunks),
		TotalChars: totalChars,
	}, nil
}

// IngestFiles processes files concurrently, one goroutine per file.
// Index assignment stays sequential within each file because every
// file has its own counter. onDone, if set, is invoked once per file
// from the file's goroutine.
func (ing *Ingester) IngestFiles(ctx context.Context, paths []string, onDone func(FileResult, error)) {
	var wg sync.WaitGroup
	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			result, err := ing.IngestFile(ctx, path)
			if onDone != nil {
				onDone(result, err)
			}
		}(path)
	}
	wg.Wait()
}
