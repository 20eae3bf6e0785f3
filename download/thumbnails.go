package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"playlistdl/config"
	"playlistdl/logging"
	"playlistdl/paths"
	"playlistdl/protocol"
)

// ThumbnailFetcher retrieves track thumbnails into a deterministic cache
// directory under the download root. The destination path doubles as the
// idempotency cache: it survives across runs for the lifetime of the root.
type ThumbnailFetcher struct {
	client       *http.Client
	downloadDir  string
	thumbnailDir string
	reporter     *protocol.Reporter
	logger       *logging.Logger
}

// NewThumbnailFetcher creates a thumbnail fetcher.
func NewThumbnailFetcher(settings *config.Settings, reporter *protocol.Reporter, logger *logging.Logger) *ThumbnailFetcher {
	return &ThumbnailFetcher{
		client: &http.Client{
			Timeout: time.Duration(settings.HTTPTimeoutSeconds) * time.Second,
		},
		downloadDir:  settings.DownloadDirectory,
		thumbnailDir: settings.ThumbnailDirectory(),
		reporter:     reporter,
		logger:       logger,
	}
}

// Fetch downloads the thumbnail for a track and returns its path relative
// to the download root, or "" on any failure. Failures are reported on the
// wire and are never fatal to the track.
func (f *ThumbnailFetcher) Fetch(ctx context.Context, trackID, thumbnailURL string) string {
	if thumbnailURL == "" {
		f.report(trackID, &ThumbnailError{Message: "no thumbnail URL provided"})
		return ""
	}

	dest := filepath.Join(f.thumbnailDir, paths.SanitizeID(trackID)+".jpg")
	if _, err := os.Stat(dest); err == nil {
		return f.relPath(dest)
	}

	if err := os.MkdirAll(f.thumbnailDir, 0755); err != nil {
		f.report(trackID, &ThumbnailError{Message: "failed to create thumbnail directory", Original: err})
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbnailURL, nil)
	if err != nil {
		f.report(trackID, &ThumbnailError{Message: "invalid thumbnail URL", Original: err})
		return ""
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.report(trackID, &ThumbnailError{Message: "failed to download thumbnail", Original: err})
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.report(trackID, &ThumbnailError{
			Message: fmt.Sprintf("failed to download thumbnail: status code %d", resp.StatusCode),
		})
		return ""
	}

	out, err := os.Create(dest)
	if err != nil {
		f.report(trackID, &ThumbnailError{Message: "failed to create thumbnail file", Original: err})
		return ""
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(dest)
		f.report(trackID, &ThumbnailError{Message: "failed to write thumbnail", Original: err})
		return ""
	}
	out.Close()

	return f.relPath(dest)
}

func (f *ThumbnailFetcher) report(trackID string, err *ThumbnailError) {
	f.logger.TrackWarn("thumbnail", trackID, "thumbnail fetch failed", err)
	f.reporter.Error(protocol.ErrorPayload{
		TrackID:        trackID,
		ThumbnailError: err.Error(),
	})
}

func (f *ThumbnailFetcher) relPath(dest string) string {
	rel, err := filepath.Rel(f.downloadDir, dest)
	if err != nil {
		return dest
	}
	return rel
}
