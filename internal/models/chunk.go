package models

// Chunk is the atomic retrievable unit of ingested notes. Chunks are
// created once during ingestion and never mutated afterwards.
type Chunk struct {
	FileName   string `json:"fileName"`
	PageNumber int    `json:"pageNumber"`
	ChunkIndex int    `json:"chunkIndex"`
	Text       string `json:"text"`
}

// ScoredChunk is a Chunk with a per-query relevance score. Scores are
// transient; they exist only for the duration of one retrieval call.
type ScoredChunk struct {
	Chunk
	Score int `json:"score"`
}
