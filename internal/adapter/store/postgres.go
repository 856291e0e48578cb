package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/talktuber/talktuber/internal/domain"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// EnsureSchema creates the tables and the pgvector extension if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context, dimension int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS videos (
			video_id      TEXT PRIMARY KEY,
			language_code TEXT NOT NULL DEFAULT '',
			translated    BOOLEAN NOT NULL DEFAULT FALSE,
			chunk_count   INTEGER NOT NULL DEFAULT 0,
			status        TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			video_id    TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			content     TEXT NOT NULL,
			vector      vector(%d) NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, dimension),
		`CREATE INDEX IF NOT EXISTS chunks_video_id_idx ON chunks (video_id)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			request_id  TEXT NOT NULL,
			action      TEXT NOT NULL,
			resource    TEXT NOT NULL,
			resource_id TEXT NOT NULL,
			details     TEXT NOT NULL DEFAULT '',
			ip          TEXT NOT NULL DEFAULT '',
			user_agent  TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// --- Videos ---

// GetVideo returns the processing record for a video, or nil when none exists.
func (s *PostgresStore) GetVideo(ctx context.Context, videoID string) (*domain.Video, error) {
	query := `SELECT video_id, language_code, translated, chunk_count, status, created_at, updated_at
	          FROM videos WHERE video_id = $1`

	var v domain.Video
	err := s.db.QueryRowContext(ctx, query, videoID).Scan(
		&v.VideoID, &v.LanguageCode, &v.Translated, &v.ChunkCount,
		&v.Status, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return &v, nil
}

// MarkProcessing records that a video's pipeline run has started.
func (s *PostgresStore) MarkProcessing(ctx context.Context, videoID string) error {
	query := `INSERT INTO videos (video_id, status)
	          VALUES ($1, $2)
	          ON CONFLICT (video_id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, videoID, domain.VideoStatusProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return nil
}

// MarkProcessed writes the completion marker. It runs only after every chunk
// of the video has been embedded and stored, so a "processed" row is the
// atomic signal that the partition is complete.
func (s *PostgresStore) MarkProcessed(ctx context.Context, videoID, languageCode string, translated bool, chunkCount int) error {
	query := `UPDATE videos
	          SET status = $2, language_code = $3, translated = $4, chunk_count = $5, updated_at = NOW()
	          WHERE video_id = $1`

	if _, err := s.db.ExecContext(ctx, query, videoID, domain.VideoStatusProcessed, languageCode, translated, chunkCount); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// MarkFailed records a failed pipeline run.
func (s *PostgresStore) MarkFailed(ctx context.Context, videoID string) error {
	query := `UPDATE videos SET status = $2, updated_at = NOW() WHERE video_id = $1`

	if _, err := s.db.ExecContext(ctx, query, videoID, domain.VideoStatusFailed); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// --- Audit ---

// WriteAudit persists one audit record.
func (s *PostgresStore) WriteAudit(requestID, action, resource, resourceID, details, ip, userAgent string) error {
	query := `INSERT INTO audit_logs (request_id, action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := s.db.Exec(query, requestID, action, resource, resourceID, details, ip, userAgent); err != nil {
		return fmt.Errorf("write audit: %w", err)
	}
	return nil
}
