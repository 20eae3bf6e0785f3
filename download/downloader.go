// Package download contains the per-track downloader and the orchestrating
// service for one playlist run.
package download

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"playlistdl/config"
	"playlistdl/extract"
	"playlistdl/logging"
	"playlistdl/metadata"
	"playlistdl/paths"
	"playlistdl/playlist"
	"playlistdl/protocol"
)

// TrackDownloader downloads one track: thumbnail, extraction+transcode
// invocation with progress relay, artifact location, and tagging. Every
// collaborator failure is converted into a failed outcome; nothing
// propagates out of DownloadTrack.
type TrackDownloader struct {
	settings   *config.Settings
	extractor  extract.Extractor
	thumbnails *ThumbnailFetcher
	embedder   *metadata.Embedder
	reporter   *protocol.Reporter
	logger     *logging.Logger
}

// NewTrackDownloader creates a track downloader.
func NewTrackDownloader(settings *config.Settings, extractor extract.Extractor, thumbnails *ThumbnailFetcher, embedder *metadata.Embedder, reporter *protocol.Reporter, logger *logging.Logger) *TrackDownloader {
	return &TrackDownloader{
		settings:   settings,
		extractor:  extractor,
		thumbnails: thumbnails,
		embedder:   embedder,
		reporter:   reporter,
		logger:     logger,
	}
}

// DownloadTrack processes a single track into playlistDir and emits exactly
// one track_status event before returning the matching outcome.
func (d *TrackDownloader) DownloadTrack(ctx context.Context, track playlist.Track, playlistDir string) playlist.DownloadOutcome {
	d.logger.TrackInfo("download", track.ID, "starting track download")

	thumbnailPath := d.thumbnails.Fetch(ctx, track.ID, track.ThumbnailURL)
	track.ThumbnailLocalPath = thumbnailPath

	req := extract.DownloadRequest{
		URL:            track.SourceURL,
		OutputTemplate: filepath.Join(playlistDir, "%(title)s.%(ext)s"),
		Codec:          d.settings.PreferredCodec,
		Quality:        d.settings.PreferredQuality,
	}

	result, err := d.extractor.DownloadTrack(ctx, req, func(update extract.ProgressUpdate) {
		d.relayProgress(track.ID, update)
	})
	if err != nil {
		d.logger.TrackError("download", track.ID, "transcode invocation failed", err)
		return d.fail(track.ID, err.Error())
	}

	// The service's reported title wins over the resolution-time title;
	// the service may normalize it differently.
	title := track.Title
	duration := track.DurationSeconds
	if result != nil {
		if result.Title != "" {
			title = result.Title
		}
		if result.Duration != nil {
			duration = result.Duration
		}
	}

	artifactPath, err := d.locateArtifact(playlistDir, title)
	if err != nil {
		d.logger.TrackError("download", track.ID, "artifact not found after transcode", err)
		return d.fail(track.ID, err.Error())
	}

	d.embedTags(ctx, track, artifactPath, title, duration)

	relPath, relErr := filepath.Rel(d.settings.DownloadDirectory, artifactPath)
	if relErr != nil {
		relPath = artifactPath
	}

	outcome := playlist.DownloadOutcome{
		TrackID:         track.ID,
		Status:          playlist.OutcomeSuccess,
		FilePath:        relPath,
		ThumbnailPath:   track.ThumbnailLocalPath,
		Title:           title,
		DurationSeconds: duration,
	}
	d.reporter.TrackStatus(protocol.TrackStatusPayload{
		TrackID:       outcome.TrackID,
		Status:        protocol.StatusSuccess,
		FilePath:      outcome.FilePath,
		ThumbnailPath: outcome.ThumbnailPath,
		Title:         outcome.Title,
		Duration:      outcome.DurationSeconds,
	})
	d.logger.TrackInfo("download", track.ID, "track downloaded to "+relPath)
	return outcome
}

// fail emits a failed track_status and returns the matching outcome.
func (d *TrackDownloader) fail(trackID, message string) playlist.DownloadOutcome {
	d.reporter.TrackStatus(protocol.TrackStatusPayload{
		TrackID: trackID,
		Status:  protocol.StatusFailed,
		Error:   message,
	})
	return playlist.DownloadOutcome{
		TrackID: trackID,
		Status:  playlist.OutcomeFailed,
		Error:   message,
	}
}

// relayProgress translates a raw service callback into wire events.
// Percent is withheld entirely when no total is known rather than emitting
// a misleading value.
func (d *TrackDownloader) relayProgress(trackID string, update extract.ProgressUpdate) {
	switch update.Status {
	case extract.ProgressFinished:
		d.reporter.TrackComplete(trackID)
	case extract.ProgressDownloading:
		total := update.TotalBytes
		if total <= 0 {
			total = update.TotalBytesEstimate
		}
		if total <= 0 {
			return
		}
		d.reporter.Progress(protocol.ProgressPayload{
			TrackID:    trackID,
			Progress:   float64(update.DownloadedBytes) / float64(total) * 100,
			Downloaded: update.DownloadedBytes,
			Total:      total,
			Speed:      update.Speed,
			ETA:        update.ETA,
		})
	}
}

// locateArtifact finds the transcoded file. The candidate built from the
// reported title is checked first; if the service normalized the name
// differently, the newest file with the codec extension wins.
func (d *TrackDownloader) locateArtifact(playlistDir, title string) (string, error) {
	ext := "." + d.settings.PreferredCodec
	candidate := filepath.Join(playlistDir, paths.SanitizeFilename(title)+ext)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	var newest string
	var newestMod time.Time
	entries, err := os.ReadDir(playlistDir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if newest == "" || info.ModTime().After(newestMod) {
				newest = filepath.Join(playlistDir, entry.Name())
				newestMod = info.ModTime()
			}
		}
	}
	if newest != "" {
		return newest, nil
	}
	return "", &ArtifactNotFoundError{Path: candidate}
}

// embedTags best-effort tags the artifact; failures are logged only.
func (d *TrackDownloader) embedTags(ctx context.Context, track playlist.Track, artifactPath, title string, duration *int) {
	song := &metadata.Song{
		Title:           title,
		Artist:          track.Uploader,
		DurationSeconds: duration,
		SourceURL:       track.SourceURL,
	}
	if track.ThumbnailLocalPath != "" {
		song.CoverPath = filepath.Join(d.settings.DownloadDirectory, track.ThumbnailLocalPath)
	}
	if err := d.embedder.Embed(ctx, artifactPath, song); err != nil {
		d.logger.TrackWarn("embed", track.ID, "tag embedding failed", err)
	}
}
