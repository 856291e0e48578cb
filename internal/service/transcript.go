package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talktuber/talktuber/internal/domain"
	"github.com/talktuber/talktuber/internal/port"
)

// TranscriptService acquires caption text for a video, preferring English
// and falling back to the first track the provider enumerates.
type TranscriptService struct {
	source port.TranscriptSource
}

// NewTranscriptService creates a transcript acquirer over a caption source.
func NewTranscriptService(source port.TranscriptSource) *TranscriptService {
	return &TranscriptService{source: source}
}

// Acquire fetches the transcript to feed the pipeline. When no English track
// exists the first enumerated track is used, its language recorded so the
// caller knows translation is needed. A video with no caption tracks at all
// is terminal: port.ErrTranscriptUnavailable.
func (s *TranscriptService) Acquire(ctx context.Context, videoID string) (*domain.TranscriptResult, error) {
	tracks, err := s.source.ListTracks(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("acquire transcript: %w", err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("acquire transcript: %w", port.ErrTranscriptUnavailable)
	}

	track := tracks[0]
	for _, t := range tracks {
		if domain.IsEnglishCode(t.LanguageCode) {
			track = t
			break
		}
	}

	if !domain.IsEnglishCode(track.LanguageCode) {
		slog.Info("no English captions, falling back",
			"video_id", videoID,
			"language", track.LanguageCode,
		)
	}

	transcript, err := s.source.Fetch(ctx, videoID, track)
	if err != nil {
		return nil, fmt.Errorf("acquire transcript: %w", err)
	}

	return &domain.TranscriptResult{
		VideoID:      videoID,
		Text:         transcript.Text(),
		LanguageCode: transcript.LanguageCode,
		IsGenerated:  transcript.IsGenerated,
	}, nil
}

// LanguageInfo lists the caption tracks offered for a video.
// port.ErrTranscriptUnavailable when there are none.
func (s *TranscriptService) LanguageInfo(ctx context.Context, videoID string) ([]domain.TranscriptTrack, error) {
	tracks, err := s.source.ListTracks(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("language info: %w", err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("language info: %w", port.ErrTranscriptUnavailable)
	}
	return tracks, nil
}
