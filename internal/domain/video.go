package domain

import "time"

// Video is the per-video processing record. A row with status "processed" is
// the atomic completion marker: it is written only after every chunk of the
// video has been embedded and stored.
type Video struct {
	VideoID      string    `json:"video_id"      db:"video_id"`
	LanguageCode string    `json:"language_code" db:"language_code"`
	Translated   bool      `json:"translated"    db:"translated"`
	ChunkCount   int       `json:"chunk_count"   db:"chunk_count"`
	Status       string    `json:"status"        db:"status"` // processing, processed, failed
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"    db:"updated_at"`
}

// VideoStatus constants.
const (
	VideoStatusProcessing = "processing"
	VideoStatusProcessed  = "processed"
	VideoStatusFailed     = "failed"
)

// ProcessingResult is the outcome contract of a process-video call.
// It is computed per call and never persisted.
type ProcessingResult struct {
	VideoID string `json:"video_id"`
	Status  string `json:"status"` // processed, already_processed, failed
}

// ProcessingResult statuses.
const (
	ProcessStatusProcessed        = "processed"
	ProcessStatusAlreadyProcessed = "already_processed"
	ProcessStatusFailed           = "failed"
)
