package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/talktuber/talktuber/internal/domain"
)

// VectorStore handles pgvector-specific operations for transcript chunks.
// Every query is scoped to a single video_id partition; partitions are never
// merged or searched cross-video.
type VectorStore struct {
	store     *PostgresStore
	dimension int
}

// NewVectorStore creates a vector store backed by the given Postgres store.
func NewVectorStore(store *PostgresStore, dimension int) *VectorStore {
	return &VectorStore{store: store, dimension: dimension}
}

// StoreBatch persists a video's chunk embeddings in one transaction.
func (v *VectorStore) StoreBatch(ctx context.Context, embeddings []domain.ChunkEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (video_id, chunk_index, content, vector)
		 VALUES ($1, $2, $3, $4::vector)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range embeddings {
		vectorStr := vectorToString(e.Vector)
		if _, err := stmt.ExecContext(ctx, e.VideoID, e.ChunkIndex, e.Content, vectorStr); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}

	return tx.Commit()
}

// SearchSimilar performs a cosine similarity search within one video's partition.
func (v *VectorStore) SearchSimilar(ctx context.Context, videoID string, queryVector []float32, limit int) ([]domain.SimilarChunk, error) {
	vectorStr := vectorToString(queryVector)
	query := `SELECT c.id, c.video_id, c.chunk_index, c.content, c.created_at,
	                 1 - (c.vector <=> $1::vector) AS similarity
	          FROM chunks c
	          WHERE c.video_id = $2
	          ORDER BY c.vector <=> $1::vector
	          LIMIT $3`

	rows, err := v.store.db.QueryContext(ctx, query, vectorStr, videoID, limit)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	defer rows.Close()

	var results []domain.SimilarChunk
	for rows.Next() {
		var sc domain.SimilarChunk
		if err := rows.Scan(
			&sc.ID, &sc.VideoID, &sc.ChunkIndex, &sc.Content, &sc.CreatedAt, &sc.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scan similar: %w", err)
		}
		results = append(results, sc)
	}
	return results, rows.Err()
}

// CountByVideo returns the number of chunks stored for a video.
func (v *VectorStore) CountByVideo(ctx context.Context, videoID string) (int, error) {
	var count int
	err := v.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE video_id = $1`, videoID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// DeleteByVideo removes all chunks for a video. Used to roll back a
// partition left incomplete by an indexing failure.
func (v *VectorStore) DeleteByVideo(ctx context.Context, videoID string) error {
	if _, err := v.store.db.ExecContext(ctx, `DELETE FROM chunks WHERE video_id = $1`, videoID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// vectorToString converts a float32 slice to pgvector string format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
