package port

import "errors"

// Sentinel errors used across ports. Handlers rely on these staying
// distinguishable: a missing transcript, an unprocessed video and a rejected
// credential each produce a different caller-facing message.
var (
	ErrTranscriptUnavailable = errors.New("no transcript available for this video")
	ErrVideoNotProcessed     = errors.New("video has not been processed yet")
	ErrInvalidCredentials    = errors.New("invalid or expired API credentials")
)
