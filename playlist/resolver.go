package playlist

import (
	"context"

	"playlistdl/extract"
	"playlistdl/logging"
	"playlistdl/paths"
	"playlistdl/protocol"
)

// Fallback strings for missing source metadata. Absence degrades to fixed
// literals rather than propagating.
const (
	FallbackPlaylistTitle = "Untitled Playlist"
	FallbackTrackTitle    = "Unknown Title"
	FallbackUploader      = "Unknown"
)

// Resolver turns a playlist URL into the normalized model with exactly one
// extraction call, announcing the result (or the failure) on the wire.
type Resolver struct {
	extractor extract.Extractor
	reporter  *protocol.Reporter
	logger    *logging.Logger
}

// NewResolver creates a resolver.
func NewResolver(extractor extract.Extractor, reporter *protocol.Reporter, logger *logging.Logger) *Resolver {
	return &Resolver{extractor: extractor, reporter: reporter, logger: logger}
}

// Resolve extracts and normalizes the playlist. On success it emits the
// playlist_info event; on failure it emits an error event and returns the
// error, which is terminal for the whole run.
func (r *Resolver) Resolve(ctx context.Context, url string) (*Playlist, error) {
	r.logger.Info("resolve", "extracting playlist metadata")

	raw, err := r.extractor.ResolvePlaylist(ctx, url)
	if err != nil {
		r.logger.Error("resolve", "playlist extraction failed", err)
		r.reporter.Error(protocol.ErrorPayload{Message: err.Error()})
		return nil, err
	}

	playlist := normalize(raw)
	r.logger.Infof("resolve", "resolved playlist %s with %d tracks", playlist.ID, len(playlist.Tracks))
	r.reporter.PlaylistInfo(playlist.infoPayload())
	return playlist, nil
}

// normalize converts raw extraction metadata into the internal model.
func normalize(raw *extract.RawPlaylist) *Playlist {
	playlist := &Playlist{
		ID:     raw.ID,
		Title:  paths.SanitizeFilename(orFallback(raw.Title, FallbackPlaylistTitle)),
		Owner:  orFallback(raw.Uploader, FallbackUploader),
		Tracks: make([]Track, 0, len(raw.Entries)),
	}

	for _, entry := range raw.Entries {
		playlist.Tracks = append(playlist.Tracks, Track{
			ID:              entry.ID,
			Title:           paths.SanitizeFilename(orFallback(entry.Title, FallbackTrackTitle)),
			DurationSeconds: entry.Duration,
			SourceURL:       watchURL(entry.ID),
			ThumbnailURL:    thumbnailURL(entry),
			Uploader:        entry.Uploader,
		})
	}

	return playlist
}

// watchURL rebuilds the canonical locator from the entry id. Raw metadata
// URLs may be relative or point at mirrors.
func watchURL(id string) string {
	return "https://youtube.com/watch?v=" + id
}

// thumbnailURL resolves the thumbnail from the direct field or the first
// element of the thumbnails list.
func thumbnailURL(entry extract.RawEntry) string {
	if entry.Thumbnail != "" {
		return entry.Thumbnail
	}
	if len(entry.Thumbnails) > 0 {
		return entry.Thumbnails[0].URL
	}
	return ""
}

func orFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// infoPayload builds the playlist_info wire payload. Thumbnail local paths
// are deliberately absent: thumbnails download per-track.
func (p *Playlist) infoPayload() protocol.PlaylistInfoPayload {
	payload := protocol.PlaylistInfoPayload{
		PlaylistID: p.ID,
		Title:      p.Title,
		Uploader:   p.Owner,
		Tracks:     make([]protocol.TrackInfoPayload, 0, len(p.Tracks)),
	}
	for _, track := range p.Tracks {
		payload.Tracks = append(payload.Tracks, protocol.TrackInfoPayload{
			ID:           track.ID,
			Title:        track.Title,
			Duration:     track.DurationSeconds,
			URL:          track.SourceURL,
			ThumbnailURL: track.ThumbnailURL,
		})
	}
	return payload
}
