package download

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"playlistdl/config"
	"playlistdl/logging"
	"playlistdl/protocol"
)

func newTestFetcher(t *testing.T, buf *bytes.Buffer) (*ThumbnailFetcher, *config.Settings) {
	t.Helper()
	settings := &config.Settings{}
	settings.SetDefaults()
	settings.DownloadDirectory = t.TempDir()
	return NewThumbnailFetcher(settings, protocol.NewReporter(buf), logging.Nop()), settings
}

func TestThumbnailFetcher_Fetch(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	fetcher, settings := newTestFetcher(t, &buf)

	rel := fetcher.Fetch(context.Background(), "abc123", server.URL)
	want := filepath.Join("thumbnails", "abc123.jpg")
	if rel != want {
		t.Fatalf("Fetch() = %q, want %q", rel, want)
	}

	data, err := os.ReadFile(filepath.Join(settings.DownloadDirectory, rel))
	if err != nil {
		t.Fatalf("reading stored thumbnail: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("stored thumbnail content = %q", data)
	}
	if buf.Len() != 0 {
		t.Errorf("successful fetch should not emit events, got %q", buf.String())
	}

	// second call must be served from disk
	if again := fetcher.Fetch(context.Background(), "abc123", server.URL); again != want {
		t.Errorf("cached Fetch() = %q, want %q", again, want)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestThumbnailFetcher_SanitizesTrackID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	fetcher, settings := newTestFetcher(t, &buf)

	rel := fetcher.Fetch(context.Background(), "../../evil", server.URL)
	if strings.Contains(rel, "..") {
		t.Fatalf("path traversal in result: %q", rel)
	}
	abs := filepath.Join(settings.DownloadDirectory, rel)
	if !strings.HasPrefix(abs, settings.ThumbnailDirectory()) {
		t.Errorf("thumbnail written outside cache dir: %q", abs)
	}
}

func TestThumbnailFetcher_MissingURL(t *testing.T) {
	var buf bytes.Buffer
	fetcher, _ := newTestFetcher(t, &buf)

	if rel := fetcher.Fetch(context.Background(), "v1", ""); rel != "" {
		t.Errorf("Fetch() = %q, want empty", rel)
	}
	line := buf.String()
	if !strings.HasPrefix(line, protocol.EventError+":") {
		t.Fatalf("expected error event, got %q", line)
	}
	if !strings.Contains(line, "thumbnail_error") || !strings.Contains(line, `"track_id":"v1"`) {
		t.Errorf("event missing thumbnail error fields: %q", line)
	}
}

func TestThumbnailFetcher_HTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	var buf bytes.Buffer
	fetcher, settings := newTestFetcher(t, &buf)

	if rel := fetcher.Fetch(context.Background(), "v2", server.URL); rel != "" {
		t.Errorf("Fetch() = %q, want empty on 404", rel)
	}
	if !strings.Contains(buf.String(), "status code 404") {
		t.Errorf("event should name the status code: %q", buf.String())
	}
	if _, err := os.Stat(filepath.Join(settings.ThumbnailDirectory(), "v2.jpg")); !os.IsNotExist(err) {
		t.Error("failed fetch must not leave a file behind")
	}
}
