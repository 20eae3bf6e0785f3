package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

func writeBareMP3(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	// one untagged MPEG frame header plus padding; must be at least the
	// 10 bytes an ID3v2 header probe reads
	frame := append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 12)...)
	if err := os.WriteFile(path, frame, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEmbedder_EmbedMP3(t *testing.T) {
	path := writeBareMP3(t)
	duration := 215

	cover := filepath.Join(t.TempDir(), "cover.jpg")
	if err := os.WriteFile(cover, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}, 0644); err != nil {
		t.Fatal(err)
	}

	song := &Song{
		Title:           "Test Song",
		Artist:          "Test Artist",
		DurationSeconds: &duration,
		SourceURL:       "https://youtube.com/watch?v=abc",
		CoverPath:       cover,
	}
	if err := NewEmbedder().Embed(context.Background(), path, song); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopening tagged file: %v", err)
	}
	defer tag.Close()

	if tag.Title() != "Test Song" {
		t.Errorf("title = %q", tag.Title())
	}
	if tag.Artist() != "Test Artist" {
		t.Errorf("artist = %q", tag.Artist())
	}
	if frames := tag.GetFrames(tag.CommonID("Attached picture")); len(frames) != 1 {
		t.Errorf("attached pictures = %d, want 1", len(frames))
	}
}

func TestEmbedder_SkipsUnsupportedFormats(t *testing.T) {
	for _, name := range []string{"song.wav", "song.aac"} {
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := NewEmbedder().Embed(context.Background(), path, &Song{Title: "x"}); err != nil {
			t.Errorf("%s: untaggable formats must be a no-op, got %v", name, err)
		}
	}
}

func TestEmbedder_MissingFile(t *testing.T) {
	err := NewEmbedder().Embed(context.Background(), filepath.Join(t.TempDir(), "absent.mp3"), &Song{Title: "x"})
	if err == nil {
		t.Fatal("expected an error for a missing artifact")
	}
	if _, ok := err.(*MetadataError); !ok {
		t.Errorf("error type = %T, want *MetadataError", err)
	}
}

func TestEmbedder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewEmbedder().Embed(ctx, writeBareMP3(t), &Song{Title: "x"}); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
