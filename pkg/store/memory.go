package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/asknotes/asknotes/internal/models"
)

// MemoryStore keeps chunks in process memory. Listing preserves file
// insertion order, and chunk order within a file, so retrieval ties
// break deterministically.
type MemoryStore struct {
	mu      sync.RWMutex
	fileIDs []string
	chunks  map[string][]models.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks: make(map[string][]models.Chunk),
	}
}

func (s *MemoryStore) AddChunks(ctx context.Context, fileID string, chunks []models.Chunk) error {
	if fileID == "" {
		return fmt.Errorf("file ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chunks[fileID]; !exists {
		s.fileIDs = append(s.fileIDs, fileID)
	}
	s.chunks[fileID] = append(s.chunks[fileID], chunks...)
	return nil
}

func (s *MemoryStore) RemoveChunksForFile(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.chunks, fileID)
	for i, id := range s.fileIDs {
		if id == fileID {
			s.fileIDs = append(s.fileIDs[:i], s.fileIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) ListChunks(ctx context.Context, fileIDs ...string) ([]models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := fileIDs
	if len(ids) == 0 {
		ids = s.fileIDs
	}

	var all []models.Chunk
	for _, id := range ids {
		all = append(all, s.chunks[id]...)
	}
	return all, nil
}

func (s *MemoryStore) Close() {}
