package protocol

// Event types on the wire. The consumer splits each line on the first ':'
// and decodes the remainder as JSON, so these names and the payload field
// names below are a frozen compatibility surface.
const (
	EventPlaylistInfo  = "playlist_info"
	EventProgress      = "progress"
	EventTrackComplete = "track_complete"
	EventTrackStatus   = "track_status"
	EventError         = "error"
)

// Track statuses used in track_status payloads.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Error kinds used in the terminal error payloads.
const (
	ErrorTypePermission = "permission_error"
	ErrorTypeGeneral    = "general_error"
)

// TrackInfoPayload is one entry of a playlist_info event.
type TrackInfoPayload struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Duration     *int   `json:"duration"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// PlaylistInfoPayload announces the resolved playlist to the consumer.
type PlaylistInfoPayload struct {
	PlaylistID string             `json:"playlist_id"`
	Title      string             `json:"title"`
	Uploader   string             `json:"uploader"`
	Tracks     []TrackInfoPayload `json:"tracks"`
}

// ProgressPayload is a transient per-track progress update. It is only
// emitted when Total is known and positive.
type ProgressPayload struct {
	TrackID    string  `json:"track_id"`
	Progress   float64 `json:"progress"`
	Downloaded int64   `json:"downloaded"`
	Total      int64   `json:"total"`
	Speed      float64 `json:"speed"`
	ETA        int     `json:"eta"`
}

// TrackCompletePayload signals that the transfer phase of a track finished.
type TrackCompletePayload struct {
	TrackID string `json:"track_id"`
}

// TrackStatusPayload is the terminal per-track outcome. Exactly one is
// emitted for every attempted track.
type TrackStatusPayload struct {
	TrackID       string `json:"track_id"`
	Status        string `json:"status"`
	FilePath      string `json:"file_path,omitempty"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
	Title         string `json:"title,omitempty"`
	Duration      *int   `json:"duration,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ErrorPayload covers every error shape on the wire: thumbnail failures
// carry track_id+thumbnail_error, terminal failures carry type+message,
// track-level relay failures carry track_id+error.
type ErrorPayload struct {
	Type           string `json:"type,omitempty"`
	TrackID        string `json:"track_id,omitempty"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	ThumbnailError string `json:"thumbnail_error,omitempty"`
}
