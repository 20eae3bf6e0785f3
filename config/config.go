package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// supportedCodecs lists the audio codecs yt-dlp's FFmpegExtractAudio
// postprocessor accepts as a target format.
var supportedCodecs = map[string]bool{
	"mp3":  true,
	"m4a":  true,
	"aac":  true,
	"flac": true,
	"opus": true,
	"ogg":  true,
	"wav":  true,
}

// Settings holds the full configuration for one playlist run.
//
// PlaylistURL, PreferredCodec, PreferredQuality, and DownloadDirectory come
// from argv and form the invocation contract with the consuming process.
// The remaining knobs have defaults and may be overridden by an optional
// playlistdl.yaml in the working directory.
type Settings struct {
	PlaylistURL       string `yaml:"-"`
	PreferredCodec    string `yaml:"-"`
	PreferredQuality  string `yaml:"-"`
	DownloadDirectory string `yaml:"-"`

	// YtDlpPath is the yt-dlp binary to invoke.
	YtDlpPath string `yaml:"ytdlp_path"`

	// ThumbnailDirName is the subdirectory of DownloadDirectory where
	// thumbnails are cached.
	ThumbnailDirName string `yaml:"thumbnail_dir"`

	// LogPath is the diagnostic log file. Stdout is reserved for the
	// wire protocol, so logs always go to a file.
	LogPath string `yaml:"log_path"`

	// HTTPTimeoutSeconds bounds each thumbnail request.
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds"`
}

// SetDefaults sets default values for Settings.
func (s *Settings) SetDefaults() {
	if s.PreferredCodec == "" {
		s.PreferredCodec = "mp3"
	}
	if s.PreferredQuality == "" {
		s.PreferredQuality = "192"
	}
	if s.DownloadDirectory == "" {
		s.DownloadDirectory = "./downloads"
	}
	if s.YtDlpPath == "" {
		s.YtDlpPath = "yt-dlp"
	}
	if s.ThumbnailDirName == "" {
		s.ThumbnailDirName = "thumbnails"
	}
	if s.LogPath == "" {
		s.LogPath = filepath.Join(os.TempDir(), "playlistdl", "playlistdl.log")
	}
	if s.HTTPTimeoutSeconds == 0 {
		s.HTTPTimeoutSeconds = 30
	}
}

// Validate validates the settings.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.PlaylistURL) == "" {
		return &ConfigError{Message: "playlist URL must not be empty"}
	}
	codec := strings.ToLower(strings.TrimSpace(s.PreferredCodec))
	if !supportedCodecs[codec] {
		return &ConfigError{
			Message: fmt.Sprintf("unsupported codec: %q", s.PreferredCodec),
		}
	}
	s.PreferredCodec = codec
	if strings.TrimSpace(s.PreferredQuality) == "" {
		return &ConfigError{Message: "preferred quality must not be empty"}
	}
	if strings.TrimSpace(s.DownloadDirectory) == "" {
		return &ConfigError{Message: "download directory must not be empty"}
	}
	return nil
}

// ThumbnailDirectory returns the absolute-or-relative path of the
// thumbnail cache directory under the download root.
func (s *Settings) ThumbnailDirectory() string {
	return filepath.Join(s.DownloadDirectory, s.ThumbnailDirName)
}
