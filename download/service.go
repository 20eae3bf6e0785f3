package download

import (
	"context"
	"errors"
	"path/filepath"

	"playlistdl/config"
	"playlistdl/extract"
	"playlistdl/logging"
	"playlistdl/metadata"
	"playlistdl/paths"
	"playlistdl/playlist"
	"playlistdl/protocol"
)

// Service orchestrates one playlist run: provision directories, resolve the
// playlist, then download each track strictly sequentially in playlist
// order. One extraction+transcode invocation is in flight at a time; the
// bottleneck is the external service, not orchestration.
type Service struct {
	settings   *config.Settings
	resolver   *playlist.Resolver
	downloader *TrackDownloader
	reporter   *protocol.Reporter
	logger     *logging.Logger
}

// NewService wires the run from its collaborators.
func NewService(settings *config.Settings, extractor extract.Extractor, reporter *protocol.Reporter, logger *logging.Logger) *Service {
	thumbnails := NewThumbnailFetcher(settings, reporter, logger)
	downloader := NewTrackDownloader(settings, extractor, thumbnails, metadata.NewEmbedder(), reporter, logger)
	return &Service{
		settings:   settings,
		resolver:   playlist.NewResolver(extractor, reporter, logger),
		downloader: downloader,
		reporter:   reporter,
		logger:     logger,
	}
}

// Run executes the playlist end-to-end. It returns an error only for
// terminal failures (directory permissions, playlist resolution,
// cancellation); per-track failures are reported on the wire and never halt
// the sequence.
func (s *Service) Run(ctx context.Context) error {
	if err := paths.EnsureWritable(s.settings.DownloadDirectory); err != nil {
		s.failTerminal(err)
		return err
	}

	resolved, err := s.resolver.Resolve(ctx, s.settings.PlaylistURL)
	if err != nil {
		// The resolver already emitted the error event.
		return err
	}

	playlistDir := filepath.Join(s.settings.DownloadDirectory, resolved.Title)
	if err := paths.EnsureWritable(playlistDir); err != nil {
		s.failTerminal(err)
		return err
	}

	succeeded := 0
	for _, track := range resolved.Tracks {
		if err := ctx.Err(); err != nil {
			s.failTerminal(err)
			return err
		}
		outcome := s.downloader.DownloadTrack(ctx, track, playlistDir)
		if outcome.Status == playlist.OutcomeSuccess {
			succeeded++
		}
	}

	s.logger.Infof("run", "playlist complete: %d/%d tracks succeeded", succeeded, len(resolved.Tracks))
	return nil
}

// failTerminal emits the single terminal error event for an aborted run.
func (s *Service) failTerminal(err error) {
	kind := protocol.ErrorTypeGeneral
	var permErr *paths.PermissionError
	if errors.As(err, &permErr) {
		kind = protocol.ErrorTypePermission
	}
	s.logger.Error("run", "terminal failure", err)
	s.reporter.Error(protocol.ErrorPayload{Type: kind, Message: err.Error()})
}
