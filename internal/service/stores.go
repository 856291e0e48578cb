package service

import (
	"context"

	"github.com/talktuber/talktuber/internal/domain"
)

// VideoStore persists per-video processing markers.
type VideoStore interface {
	// GetVideo returns the processing record for a video, or nil when none exists.
	GetVideo(ctx context.Context, videoID string) (*domain.Video, error)

	// MarkProcessing records that a pipeline run has started.
	MarkProcessing(ctx context.Context, videoID string) error

	// MarkProcessed writes the completion marker after all chunks are stored.
	MarkProcessed(ctx context.Context, videoID, languageCode string, translated bool, chunkCount int) error

	// MarkFailed records a failed pipeline run.
	MarkFailed(ctx context.Context, videoID string) error
}

// VectorIndex is a vector store partitioned by video_id.
type VectorIndex interface {
	// StoreBatch persists chunk embeddings into their video's partition.
	StoreBatch(ctx context.Context, embeddings []domain.ChunkEmbedding) error

	// SearchSimilar returns the top chunks by cosine similarity within one
	// video's partition, most similar first.
	SearchSimilar(ctx context.Context, videoID string, queryVector []float32, limit int) ([]domain.SimilarChunk, error)

	// CountByVideo returns the number of chunks stored for a video.
	CountByVideo(ctx context.Context, videoID string) (int, error)

	// DeleteByVideo removes a video's partition entirely.
	DeleteByVideo(ctx context.Context, videoID string) error
}

// videoProcessed reports whether a video's index is complete: the completion
// marker must say processed AND the partition must be non-empty. Either
// signal alone can survive a crashed run; only both together count.
func videoProcessed(ctx context.Context, videos VideoStore, index VectorIndex, videoID string) (bool, error) {
	v, err := videos.GetVideo(ctx, videoID)
	if err != nil {
		return false, err
	}
	if v == nil || v.Status != domain.VideoStatusProcessed {
		return false, nil
	}

	count, err := index.CountByVideo(ctx, videoID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
