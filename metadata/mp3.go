package metadata

import (
	"fmt"
	"os"

	"github.com/bogem/id3v2/v2"
)

// embedMP3 writes ID3v2 tags into an mp3 artifact.
func (e *Embedder) embedMP3(filePath string, song *Song) error {
	// Untagged files parse to an empty tag; an error here means the file
	// itself is truncated or unreadable.
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return &MetadataError{
			Message:  fmt.Sprintf("failed to open mp3 file: %s", filePath),
			Original: err,
		}
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(song.Title)
	if song.Artist != "" {
		tag.SetArtist(song.Artist)
	}
	if song.DurationSeconds != nil {
		tag.AddTextFrame(tag.CommonID("TLEN"), id3v2.EncodingUTF8,
			fmt.Sprintf("%d", *song.DurationSeconds*1000))
	}
	if song.SourceURL != "" {
		tag.AddTextFrame(tag.CommonID("WOAS"), id3v2.EncodingUTF8, song.SourceURL)
	}

	if song.CoverPath != "" {
		// Cover art is optional; keep the text tags on failure.
		_ = embedCover(tag, song.CoverPath)
	}

	if err := tag.Save(); err != nil {
		return &MetadataError{Message: "failed to save mp3 tags", Original: err}
	}
	return nil
}

// embedCover attaches a local image file as front cover art.
func embedCover(tag *id3v2.Tag, coverPath string) error {
	coverData, err := os.ReadFile(coverPath)
	if err != nil {
		return fmt.Errorf("failed to read cover file: %w", err)
	}

	mimeType := "image/jpeg"
	if len(coverData) > 4 &&
		coverData[0] == 0x89 && coverData[1] == 0x50 && coverData[2] == 0x4E && coverData[3] == 0x47 {
		mimeType = "image/png"
	}

	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mimeType,
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     coverData,
	})
	return nil
}
