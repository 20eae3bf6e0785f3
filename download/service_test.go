package download

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"playlistdl/config"
	"playlistdl/extract"
	"playlistdl/logging"
	"playlistdl/protocol"
)

func newTestService(t *testing.T, extractor extract.Extractor, buf *bytes.Buffer) (*Service, *config.Settings) {
	t.Helper()
	settings := &config.Settings{}
	settings.SetDefaults()
	settings.PlaylistURL = "https://youtube.com/playlist?list=PLtest"
	settings.DownloadDirectory = t.TempDir()
	return NewService(settings, extractor, protocol.NewReporter(buf), logging.Nop()), settings
}

func TestService_Run(t *testing.T) {
	extractor := &scriptedExtractor{
		resolveFn: func(ctx context.Context, url string) (*extract.RawPlaylist, error) {
			return &extract.RawPlaylist{
				ID:       "PLtest",
				Title:    "Mix",
				Uploader: "owner",
				Entries: []extract.RawEntry{
					{ID: "v1", Title: "One"},
					{ID: "v2", Title: "Two"},
					{ID: "v3", Title: "Three"},
				},
			}, nil
		},
	}
	var buf bytes.Buffer
	service, settings := newTestService(t, extractor, &buf)

	var order []string
	extractor.downloadFn = func(ctx context.Context, req extract.DownloadRequest, hook extract.ProgressHook) (*extract.TrackResult, error) {
		order = append(order, req.URL)
		if strings.HasSuffix(req.URL, "v2") {
			return nil, &extract.TranscodeError{Message: "blocked in your country"}
		}
		name := "One"
		if strings.HasSuffix(req.URL, "v3") {
			name = "Three"
		}
		dir := filepath.Dir(req.OutputTemplate)
		if err := os.WriteFile(filepath.Join(dir, name+".mp3"), []byte("audio"), 0644); err != nil {
			t.Fatal(err)
		}
		return &extract.TrackResult{Title: name}, nil
	}

	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, per-track failures must not be terminal", err)
	}

	wantOrder := []string{
		"https://youtube.com/watch?v=v1",
		"https://youtube.com/watch?v=v2",
		"https://youtube.com/watch?v=v3",
	}
	if len(order) != len(wantOrder) {
		t.Fatalf("downloads = %v", order)
	}
	for i, url := range wantOrder {
		if order[i] != url {
			t.Errorf("download %d = %q, want %q (playlist order)", i, order[i], url)
		}
	}

	if _, err := os.Stat(filepath.Join(settings.DownloadDirectory, "Mix")); err != nil {
		t.Errorf("playlist directory not provisioned: %v", err)
	}

	events := decodeWire(t, &buf)
	if info := filterEvents(events, protocol.EventPlaylistInfo); len(info) != 1 {
		t.Errorf("playlist_info events = %d, want 1", len(info))
	}

	statuses := filterEvents(events, protocol.EventTrackStatus)
	if len(statuses) != 3 {
		t.Fatalf("track_status events = %d, want one per track", len(statuses))
	}
	byID := map[string]string{}
	for _, s := range statuses {
		byID[s.Payload["track_id"].(string)] = s.Payload["status"].(string)
	}
	if byID["v1"] != protocol.StatusSuccess || byID["v3"] != protocol.StatusSuccess {
		t.Errorf("statuses = %v", byID)
	}
	if byID["v2"] != protocol.StatusFailed {
		t.Errorf("v2 status = %q, want failed", byID["v2"])
	}
}

func TestService_ResolveFailureIsTerminal(t *testing.T) {
	extractor := &scriptedExtractor{
		resolveFn: func(ctx context.Context, url string) (*extract.RawPlaylist, error) {
			return nil, &extract.ResolveError{Message: "playlist does not exist"}
		},
	}
	var buf bytes.Buffer
	service, _ := newTestService(t, extractor, &buf)

	if err := service.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail when resolution fails")
	}

	events := decodeWire(t, &buf)
	errs := filterEvents(events, protocol.EventError)
	if len(errs) != 1 {
		t.Fatalf("error events = %d, want exactly 1", len(errs))
	}
	if got := filterEvents(events, protocol.EventTrackStatus); len(got) != 0 {
		t.Errorf("no tracks should be attempted, got %d statuses", len(got))
	}
}

func TestService_UnwritableRootIsPermissionError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	extractor := &scriptedExtractor{
		resolveFn: func(ctx context.Context, url string) (*extract.RawPlaylist, error) {
			t.Fatal("resolution must not run when the root is unwritable")
			return nil, nil
		},
	}
	var buf bytes.Buffer
	service, settings := newTestService(t, extractor, &buf)

	parent := t.TempDir()
	if err := os.Chmod(parent, 0555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(parent, 0755) })
	settings.DownloadDirectory = filepath.Join(parent, "downloads")

	if err := service.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail for an unwritable root")
	}

	events := decodeWire(t, &buf)
	errs := filterEvents(events, protocol.EventError)
	if len(errs) != 1 {
		t.Fatalf("error events = %d, want 1", len(errs))
	}
	if errs[0].Payload["type"] != protocol.ErrorTypePermission {
		t.Errorf("error type = %v, want %q", errs[0].Payload["type"], protocol.ErrorTypePermission)
	}
}

func TestService_CancelledContext(t *testing.T) {
	extractor := &scriptedExtractor{
		resolveFn: func(ctx context.Context, url string) (*extract.RawPlaylist, error) {
			return &extract.RawPlaylist{
				ID:      "PL",
				Title:   "Mix",
				Entries: []extract.RawEntry{{ID: "v1", Title: "One"}},
			}, nil
		},
	}
	var buf bytes.Buffer
	service, _ := newTestService(t, extractor, &buf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := service.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if got := filterEvents(decodeWire(t, &buf), protocol.EventTrackStatus); len(got) != 0 {
		t.Errorf("no track should start after cancellation, got %d statuses", len(got))
	}
}
