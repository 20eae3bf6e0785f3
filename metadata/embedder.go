package metadata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Embedder embeds tags into audio files.
type Embedder struct{}

// NewEmbedder creates a new embedder.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// Embed writes song tags into the artifact at filePath. Formats without a
// tagging backend are skipped silently; the artifact is already complete
// without tags.
func (e *Embedder) Embed(ctx context.Context, filePath string, song *Song) error {
	if err := ctx.Err(); err != nil {
		return &MetadataError{Message: "context cancelled", Original: err}
	}

	if _, err := os.Stat(filePath); err != nil {
		return &MetadataError{
			Message:  fmt.Sprintf("file not found: %s", filePath),
			Original: err,
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	switch ext {
	case "mp3":
		return e.embedMP3(filePath, song)
	case "flac":
		return e.embedFLAC(ctx, filePath, song)
	case "m4a":
		return e.embedM4A(ctx, filePath, song)
	case "ogg", "opus":
		return e.embedVorbis(ctx, filePath, song)
	default:
		// aac and wav artifacts carry no tagging container.
		return nil
	}
}
