package domain

import "time"

// ChunkEmbedding is a vectorized transcript chunk stored in pgvector.
// Chunks are append-only within a video's partition; video_id is the
// partition key and is never queried across videos.
type ChunkEmbedding struct {
	ID         string    `json:"id"          db:"id"`
	VideoID    string    `json:"video_id"    db:"video_id"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Content    string    `json:"content"     db:"content"`
	Vector     []float32 `json:"-"           db:"vector"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// SimilarChunk is returned by semantic search, including similarity score.
type SimilarChunk struct {
	ChunkEmbedding
	Similarity float64 `json:"similarity"`
}
