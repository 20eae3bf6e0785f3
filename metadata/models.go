// Package metadata embeds tags into downloaded artifacts. Embedding is
// best-effort: a tagging failure never fails the track it belongs to.
package metadata

// Song holds the tag values for one artifact.
type Song struct {
	Title           string
	Artist          string
	DurationSeconds *int
	SourceURL       string

	// CoverPath is a local image file (the fetched thumbnail) embedded
	// as front cover art when present.
	CoverPath string
}
