package metadata

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Non-mp3 formats are tagged through a generated mutagen script, riding on
// external tooling the same way the transcode step does. python3 with the
// mutagen library is required; its absence surfaces as a MetadataError and
// the artifact stays untagged.

// embedFLAC embeds Vorbis comments and cover art into a FLAC file.
func (e *Embedder) embedFLAC(ctx context.Context, filePath string, song *Song) error {
	return runMutagenScript(ctx, filePath, ".flac_tags", flacScript(filePath, song))
}

// embedVorbis embeds Vorbis comments into OGG and Opus files.
func (e *Embedder) embedVorbis(ctx context.Context, filePath string, song *Song) error {
	return runMutagenScript(ctx, filePath, ".vorbis_tags", vorbisScript(filePath, song))
}

// embedM4A embeds MP4 atoms into an m4a file.
func (e *Embedder) embedM4A(ctx context.Context, filePath string, song *Song) error {
	return runMutagenScript(ctx, filePath, ".m4a_tags", m4aScript(filePath, song))
}

func flacScript(filePath string, song *Song) string {
	script := fmt.Sprintf(`#!/usr/bin/env python3
import sys
from mutagen.flac import FLAC, Picture

try:
    audio = FLAC(%q)
    audio.clear()
    audio['TITLE'] = [%q]
`, filePath, song.Title)

	if song.Artist != "" {
		script += fmt.Sprintf("    audio['ARTIST'] = [%q]\n", song.Artist)
	}
	if song.SourceURL != "" {
		script += fmt.Sprintf("    audio['COMMENT'] = [%q]\n", song.SourceURL)
	}
	if song.CoverPath != "" {
		script += fmt.Sprintf(`
    pic = Picture()
    pic.type = 3
    pic.mime = %q
    with open(%q, 'rb') as f:
        pic.data = f.read()
    audio.clear_pictures()
    audio.add_picture(pic)
`, coverMIME(song.CoverPath), song.CoverPath)
	}

	return script + scriptFooter
}

func vorbisScript(filePath string, song *Song) string {
	script := fmt.Sprintf(`#!/usr/bin/env python3
import sys
import base64
from mutagen.oggvorbis import OggVorbis
from mutagen.oggopus import OggOpus
from mutagen.flac import Picture

try:
    try:
        audio = OggVorbis(%q)
    except Exception:
        audio = OggOpus(%q)
    audio.clear()
    audio['TITLE'] = [%q]
`, filePath, filePath, song.Title)

	if song.Artist != "" {
		script += fmt.Sprintf("    audio['ARTIST'] = [%q]\n", song.Artist)
	}
	if song.SourceURL != "" {
		script += fmt.Sprintf("    audio['COMMENT'] = [%q]\n", song.SourceURL)
	}
	if song.CoverPath != "" {
		// Vorbis carries pictures as a base64 FLAC picture block.
		script += fmt.Sprintf(`
    pic = Picture()
    pic.type = 3
    pic.mime = %q
    with open(%q, 'rb') as f:
        pic.data = f.read()
    audio['METADATA_BLOCK_PICTURE'] = [base64.b64encode(pic.write()).decode('ascii')]
`, coverMIME(song.CoverPath), song.CoverPath)
	}

	return script + scriptFooter
}

func m4aScript(filePath string, song *Song) string {
	script := fmt.Sprintf(`#!/usr/bin/env python3
import sys
from mutagen.mp4 import MP4, MP4Cover

try:
    audio = MP4(%q)
    audio.clear()
    audio['\xa9nam'] = [%q]
`, filePath, song.Title)

	if song.Artist != "" {
		script += fmt.Sprintf("    audio['\\xa9ART'] = [%q]\n", song.Artist)
	}
	if song.SourceURL != "" {
		script += fmt.Sprintf("    audio['\\xa9cmt'] = [%q]\n", song.SourceURL)
	}
	if song.CoverPath != "" {
		format := "MP4Cover.FORMAT_JPEG"
		if coverMIME(song.CoverPath) == "image/png" {
			format = "MP4Cover.FORMAT_PNG"
		}
		script += fmt.Sprintf(`
    with open(%q, 'rb') as f:
        audio['covr'] = [MP4Cover(f.read(), imageformat=%s)]
`, song.CoverPath, format)
	}

	return script + scriptFooter
}

const scriptFooter = `
    audio.save()
    sys.exit(0)
except Exception as e:
    print(f"Error: {e}", file=sys.stderr)
    sys.exit(1)
`

// runMutagenScript writes the script next to the artifact and executes it
// with python3.
func runMutagenScript(ctx context.Context, filePath, prefix, script string) error {
	tmpScript := filepath.Join(filepath.Dir(filePath), fmt.Sprintf("%s_%d.py", prefix, time.Now().UnixNano()))
	defer func() { _ = os.Remove(tmpScript) }()

	if err := os.WriteFile(tmpScript, []byte(script), 0755); err != nil {
		return &MetadataError{
			Message:  fmt.Sprintf("failed to create mutagen script for %s", filePath),
			Original: err,
		}
	}

	cmd := exec.CommandContext(ctx, "python3", tmpScript)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return &MetadataError{Message: "context cancelled during tag embedding", Original: ctx.Err()}
		}
		return &MetadataError{
			Message:  fmt.Sprintf("failed to embed tags: %s", string(output)),
			Original: err,
		}
	}
	return nil
}

// coverMIME sniffs the cover image type from its signature. Thumbnails are
// jpeg in practice; png is the only other format sources serve.
func coverMIME(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "image/jpeg"
	}
	defer f.Close()

	header := make([]byte, 4)
	if _, err := io.ReadFull(f, header); err != nil {
		return "image/jpeg"
	}
	if header[0] == 0x89 && header[1] == 0x50 && header[2] == 0x4E && header[3] == 0x47 {
		return "image/png"
	}
	return "image/jpeg"
}
