package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talktuber/talktuber/internal/domain"
)

// Pipeline ties the processing steps together: acquire transcript, translate
// when needed, chunk, index. Each call runs to completion synchronously.
type Pipeline struct {
	transcripts *TranscriptService
	translator  *Translator
	chunker     *Chunker
	indexer     *Indexer
}

// NewPipeline wires the processing pipeline.
func NewPipeline(transcripts *TranscriptService, translator *Translator, chunker *Chunker, indexer *Indexer) *Pipeline {
	return &Pipeline{
		transcripts: transcripts,
		translator:  translator,
		chunker:     chunker,
		indexer:     indexer,
	}
}

// Processed reports whether a video's index is complete.
func (p *Pipeline) Processed(ctx context.Context, videoID string) (bool, error) {
	return p.indexer.Processed(ctx, videoID)
}

// Process runs the full transcript-to-index pipeline for one video. The
// second call for the same video reports already_processed without touching
// the transcript, translation, or embedding services again.
func (p *Pipeline) Process(ctx context.Context, videoID string) (domain.ProcessingResult, error) {
	result := domain.ProcessingResult{VideoID: videoID}

	// Cheap early check so a reprocess request pays for nothing.
	processed, err := p.indexer.Processed(ctx, videoID)
	if err != nil {
		result.Status = domain.ProcessStatusFailed
		return result, fmt.Errorf("process video: %w", err)
	}
	if processed {
		result.Status = domain.ProcessStatusAlreadyProcessed
		return result, nil
	}

	transcript, err := p.transcripts.Acquire(ctx, videoID)
	if err != nil {
		result.Status = domain.ProcessStatusFailed
		return result, fmt.Errorf("process video: %w", err)
	}

	text := transcript.Text
	translated := false
	if !transcript.IsEnglish() {
		slog.Info("translating transcript", "video_id", videoID, "language", transcript.LanguageCode)
		text, err = p.translator.Translate(ctx, text, transcript.LanguageCode)
		if err != nil {
			result.Status = domain.ProcessStatusFailed
			return result, fmt.Errorf("process video: %w", err)
		}
		translated = true
	}

	chunks := p.chunker.Chunk(text)
	if len(chunks) == 0 {
		result.Status = domain.ProcessStatusFailed
		return result, fmt.Errorf("process video %s: transcript produced no chunks", videoID)
	}

	already, err := p.indexer.Index(ctx, videoID, chunks, transcript.LanguageCode, translated)
	if err != nil {
		result.Status = domain.ProcessStatusFailed
		return result, err
	}
	if already {
		result.Status = domain.ProcessStatusAlreadyProcessed
		return result, nil
	}

	result.Status = domain.ProcessStatusProcessed
	return result, nil
}

// LanguageInfo exposes the acquirer's track listing for the HTTP layer.
func (p *Pipeline) LanguageInfo(ctx context.Context, videoID string) ([]domain.TranscriptTrack, error) {
	return p.transcripts.LanguageInfo(ctx, videoID)
}
