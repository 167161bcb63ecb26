package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned for an output format outside the supported set
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidVideoID is returned when no video ID can be extracted from the input
	ErrInvalidVideoID = errors.New("invalid YouTube URL or video ID")

	// ErrTranscriptUnavailable covers every way a fetch can fail to produce cues
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrIOFailure is returned when writing to a file or the clipboard fails
	ErrIOFailure = errors.New("output failed")
)

// Specific fetch failures. All of them match ErrTranscriptUnavailable.
var (
	ErrTooManyRequests     = unavailable("too many requests, YouTube is asking for a captcha")
	ErrVideoUnavailable    = unavailable("video unavailable")
	ErrTranscriptsDisabled = unavailable("transcripts are disabled for this video")
	ErrNoTranscriptFound   = unavailable("no transcript found")
)

// fetchError is a fetch failure that also matches ErrTranscriptUnavailable
type fetchError struct {
	msg string
}

func unavailable(msg string) error {
	return &fetchError{msg: msg}
}

func (e *fetchError) Error() string {
	return e.msg
}

func (e *fetchError) Is(target error) bool {
	return target == ErrTranscriptUnavailable
}

// fetchFailed wraps a low level fetch error so it matches ErrTranscriptUnavailable
func fetchFailed(videoID string, err error) error {
	if errors.Is(err, ErrTranscriptUnavailable) {
		return fmt.Errorf("fetching transcript for %s: %w", videoID, err)
	}
	return fmt.Errorf("fetching transcript for %s: %w: %w", videoID, ErrTranscriptUnavailable, err)
}
