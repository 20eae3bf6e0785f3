package extract

import "fmt"

// ResolveError represents a playlist resolution error.
type ResolveError struct {
	Message  string
	Original error
}

func (e *ResolveError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Playlist resolution error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Playlist resolution error: %s", e.Message)
}

func (e *ResolveError) Unwrap() error {
	return e.Original
}

// TranscodeError represents a download/transcode error for a single track.
type TranscodeError struct {
	Message  string
	Original error
}

func (e *TranscodeError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Transcode error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Transcode error: %s", e.Message)
}

func (e *TranscodeError) Unwrap() error {
	return e.Original
}
