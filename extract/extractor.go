// Package extract wraps the external extraction/transcode service. The
// orchestration layer only talks to the Extractor interface; the concrete
// implementation shells out to yt-dlp.
package extract

import "context"

// ProgressStatus is the state reported by a progress update.
type ProgressStatus string

const (
	ProgressDownloading ProgressStatus = "downloading"
	ProgressFinished    ProgressStatus = "finished"
)

// ProgressUpdate is one raw progress callback from the service. TotalBytes
// may be zero with only an estimate available, or both may be zero when the
// remote does not report a size at all.
type ProgressUpdate struct {
	Status             ProgressStatus
	DownloadedBytes    int64
	TotalBytes         int64
	TotalBytesEstimate int64
	Speed              float64
	ETA                int
}

// ProgressHook receives progress updates synchronously while a download is
// in flight. The hook must not block for long; the service does not return
// control until the whole transfer and transcode completes.
type ProgressHook func(ProgressUpdate)

// RawThumbnail is one entry of a thumbnails list.
type RawThumbnail struct {
	URL string
}

// RawEntry is the unnormalized per-track metadata from a full playlist
// extraction.
type RawEntry struct {
	ID         string
	Title      string
	Duration   *int
	Uploader   string
	Thumbnail  string
	Thumbnails []RawThumbnail
}

// RawPlaylist is the unnormalized playlist metadata.
type RawPlaylist struct {
	ID       string
	Title    string
	Uploader string
	Entries  []RawEntry
}

// TrackResult is what the service reports about a finished track. Its title
// is authoritative for locating the artifact: the service may normalize the
// title differently than the pre-sanitized prediction.
type TrackResult struct {
	ID       string
	Title    string
	Duration *int
}

// DownloadRequest describes one extraction+transcode invocation.
type DownloadRequest struct {
	URL            string
	OutputTemplate string
	Codec          string
	Quality        string
}

// Extractor is the external extraction/transcode collaborator.
type Extractor interface {
	// ResolvePlaylist performs one full (non-flat) extraction of the
	// playlist URL. Flat listings are not enough: thumbnail URLs and
	// accurate titles are only present with full extraction.
	ResolvePlaylist(ctx context.Context, url string) (*RawPlaylist, error)

	// DownloadTrack downloads the best audio for a track URL and
	// transcodes it to the requested codec/quality, streaming progress
	// through hook. It blocks until transfer and transcode complete.
	DownloadTrack(ctx context.Context, req DownloadRequest, hook ProgressHook) (*TrackResult, error)
}
