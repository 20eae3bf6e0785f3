// Package playlist defines the normalized playlist/track model and the
// resolver that builds it from raw extraction metadata.
package playlist

// Track is one audio item within a playlist. ID is the stable correlation
// key for thumbnails, progress, and outcomes; titles may collide or change
// and are never used for correlation.
type Track struct {
	ID              string
	Title           string
	DurationSeconds *int

	// SourceURL is reconstructed canonically from the id, never taken
	// verbatim from raw metadata.
	SourceURL string

	ThumbnailURL string

	// Uploader is carried for tagging only; it never appears on the
	// wire.
	Uploader string

	// ThumbnailLocalPath is set after a successful fetch, relative to
	// the download root. It is the only mutation a Track sees after
	// resolution.
	ThumbnailLocalPath string
}

// Playlist is an ordered collection of tracks. Order is source-reported and
// preserved through download.
type Playlist struct {
	ID     string
	Title  string
	Owner  string
	Tracks []Track
}

// Outcome statuses for a downloaded track.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// DownloadOutcome is the terminal per-track result. FilePath is relative to
// the download root.
type DownloadOutcome struct {
	TrackID         string
	Status          string
	FilePath        string
	ThumbnailPath   string
	Title           string
	DurationSeconds *int
	Error           string
}
