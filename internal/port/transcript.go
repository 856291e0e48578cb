package port

import (
	"context"

	"github.com/talktuber/talktuber/internal/domain"
)

// TranscriptSource abstracts the external caption provider.
type TranscriptSource interface {
	// ListTracks enumerates the caption tracks offered for a video, in the
	// provider's order. An empty list means the video has no captions;
	// administratively disabled captions are reported as
	// ErrTranscriptUnavailable.
	ListTracks(ctx context.Context, videoID string) ([]domain.TranscriptTrack, error)

	// Fetch downloads one caption track.
	Fetch(ctx context.Context, videoID string, track domain.TranscriptTrack) (*domain.Transcript, error)
}
