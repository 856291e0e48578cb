package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talktuber/talktuber/internal/domain"
	"github.com/talktuber/talktuber/internal/port"
)

// Indexer embeds transcript chunks and persists them into a video's
// partition. Indexing is idempotent: an already-processed video is never
// re-embedded, and a per-video lock keeps concurrent process calls for the
// same video from both paying for embedding work.
type Indexer struct {
	ai     port.AIProvider
	videos VideoStore
	index  VectorIndex

	locks sync.Map // video_id -> *sync.Mutex
}

// NewIndexer creates an indexer over the given stores.
func NewIndexer(ai port.AIProvider, videos VideoStore, index VectorIndex) *Indexer {
	return &Indexer{ai: ai, videos: videos, index: index}
}

// Processed reports whether the video's index is complete.
func (i *Indexer) Processed(ctx context.Context, videoID string) (bool, error) {
	return videoProcessed(ctx, i.videos, i.index, videoID)
}

// Index embeds chunks and writes them under the video's partition, then
// writes the completion marker. It returns already=true (and does no
// external work) when the video is processed. Any failure rolls the partial
// partition back, so an incomplete partition is never observable as
// processed.
func (i *Indexer) Index(ctx context.Context, videoID string, chunks []string, languageCode string, translated bool) (already bool, err error) {
	lock := i.lockFor(videoID)
	lock.Lock()
	defer lock.Unlock()

	processed, err := i.Processed(ctx, videoID)
	if err != nil {
		return false, fmt.Errorf("index: %w", err)
	}
	if processed {
		return true, nil
	}

	if len(chunks) == 0 {
		return false, fmt.Errorf("index: no chunks for video %s", videoID)
	}

	if err := i.videos.MarkProcessing(ctx, videoID); err != nil {
		return false, fmt.Errorf("index: %w", err)
	}

	vectors, err := i.ai.EmbedBatch(ctx, chunks)
	if err != nil {
		i.rollback(ctx, videoID)
		return false, fmt.Errorf("index: embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		i.rollback(ctx, videoID)
		return false, fmt.Errorf("index: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	embeddings := make([]domain.ChunkEmbedding, len(chunks))
	for idx, chunk := range chunks {
		embeddings[idx] = domain.ChunkEmbedding{
			VideoID:    videoID,
			ChunkIndex: idx,
			Content:    chunk,
			Vector:     vectors[idx],
		}
	}

	if err := i.index.StoreBatch(ctx, embeddings); err != nil {
		i.rollback(ctx, videoID)
		return false, fmt.Errorf("index: store chunks: %w", err)
	}

	// The completion marker goes last: a crash before this point leaves the
	// video observably unprocessed.
	if err := i.videos.MarkProcessed(ctx, videoID, languageCode, translated, len(chunks)); err != nil {
		i.rollback(ctx, videoID)
		return false, fmt.Errorf("index: mark processed: %w", err)
	}

	slog.Info("video indexed", "video_id", videoID, "chunks", len(chunks), "language", languageCode, "translated", translated)
	return false, nil
}

// rollback removes a partial partition and records the failure.
func (i *Indexer) rollback(ctx context.Context, videoID string) {
	if err := i.index.DeleteByVideo(ctx, videoID); err != nil {
		slog.Error("rollback: delete partial partition failed", "video_id", videoID, "error", err)
	}
	if err := i.videos.MarkFailed(ctx, videoID); err != nil {
		slog.Error("rollback: mark failed", "video_id", videoID, "error", err)
	}
}

func (i *Indexer) lockFor(videoID string) *sync.Mutex {
	l, _ := i.locks.LoadOrStore(videoID, &sync.Mutex{})
	return l.(*sync.Mutex)
}
