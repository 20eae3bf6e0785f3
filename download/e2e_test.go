//go:build e2e

package download

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"playlistdl/config"
	"playlistdl/extract"
	"playlistdl/logging"
	"playlistdl/protocol"
)

// loadE2EPlaylistURL reads the playlist under test from the environment,
// optionally via a .env file.
func loadE2EPlaylistURL(t *testing.T) string {
	t.Helper()
	_ = godotenv.Load()

	url := os.Getenv("PLAYLISTDL_E2E_URL")
	if url == "" {
		t.Skip("PLAYLISTDL_E2E_URL required for E2E tests")
	}
	return url
}

func TestE2E_PlaylistDownload(t *testing.T) {
	url := loadE2EPlaylistURL(t)

	if err := exec.Command("yt-dlp", "--version").Run(); err != nil {
		t.Skip("yt-dlp not available, skipping E2E tests")
	}

	settings := &config.Settings{}
	settings.SetDefaults()
	settings.PlaylistURL = url
	settings.DownloadDirectory = t.TempDir()
	settings.PreferredCodec = "mp3"
	settings.PreferredQuality = "128"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var buf bytes.Buffer
	service := NewService(settings, extract.NewYtDlp(settings.YtDlpPath, logging.Nop()), protocol.NewReporter(&buf), logging.Nop())
	if err := service.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	events := decodeWire(t, &buf)
	statuses := filterEvents(events, protocol.EventTrackStatus)
	if len(statuses) == 0 {
		t.Fatal("no track_status events emitted")
	}

	sawSuccess := false
	for _, status := range statuses {
		if status.Payload["status"] != protocol.StatusSuccess {
			continue
		}
		sawSuccess = true
		rel, _ := status.Payload["file_path"].(string)
		abs := filepath.Join(settings.DownloadDirectory, rel)
		info, err := os.Stat(abs)
		if err != nil {
			t.Errorf("reported artifact missing: %v", err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("artifact %s is empty", rel)
		}
	}
	if !sawSuccess {
		t.Error("expected at least one successful track")
	}
}
