package download

import "fmt"

// ArtifactNotFoundError reports a transcode call that returned without an
// error yet left no artifact behind. This is a distinct failure mode from a
// failed transcode.
type ArtifactNotFoundError struct {
	Path string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("downloaded file not found: %s", e.Path)
}

// ThumbnailError represents a thumbnail fetch failure. It is reported on
// the wire, never returned up the call stack: audio download proceeds
// without a thumbnail.
type ThumbnailError struct {
	Message  string
	Original error
}

func (e *ThumbnailError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Original)
	}
	return e.Message
}

func (e *ThumbnailError) Unwrap() error {
	return e.Original
}
