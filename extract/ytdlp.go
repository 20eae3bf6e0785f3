package extract

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"playlistdl/logging"
)

// progressTemplate makes yt-dlp print machine-readable progress lines on
// stdout. The "download:" prefix selects the hook; everything after it is
// the template for one line per callback.
const progressTemplate = "download:" + progressLinePrefix +
	"|%(progress.downloaded_bytes)s|%(progress.total_bytes)s|%(progress.total_bytes_estimate)s|%(progress.speed)s|%(progress.eta)s"

const progressLinePrefix = "PROGRESS"

// YtDlp implements Extractor by shelling out to the yt-dlp binary.
type YtDlp struct {
	binPath string
	logger  *logging.Logger
}

// NewYtDlp creates a yt-dlp backed extractor. binPath defaults to "yt-dlp"
// resolved via PATH.
func NewYtDlp(binPath string, logger *logging.Logger) *YtDlp {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &YtDlp{binPath: binPath, logger: logger}
}

// ResolvePlaylist performs one full extraction of the playlist and parses
// the single-JSON dump into the raw model.
func (y *YtDlp) ResolvePlaylist(ctx context.Context, url string) (*RawPlaylist, error) {
	args := []string{
		"--quiet",
		"--no-warnings",
		"--skip-download",
		"--dump-single-json",
		url,
	}

	cmd := exec.CommandContext(ctx, y.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, &ResolveError{
			Message:  fmt.Sprintf("yt-dlp playlist extraction failed: %s", strings.TrimSpace(stderr.String())),
			Original: err,
		}
	}

	var rawData map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(output), &rawData); err != nil {
		return nil, &ResolveError{
			Message:  "failed to parse yt-dlp playlist output",
			Original: err,
		}
	}

	return parsePlaylist(rawData), nil
}

// DownloadTrack runs one download+transcode invocation, relaying progress
// lines from stdout while the process is in flight.
func (y *YtDlp) DownloadTrack(ctx context.Context, req DownloadRequest, hook ProgressHook) (*TrackResult, error) {
	args := []string{
		"--format", "bestaudio/best",
		"--output", req.OutputTemplate,
		"--extract-audio",
		"--audio-format", req.Codec,
		"--audio-quality", req.Quality,
		"--no-warnings",
		"--no-colors",
		"--newline",
		"--progress",
		"--progress-template", progressTemplate,
		"--print-json",
		req.URL,
	}

	cmd := exec.CommandContext(ctx, y.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &TranscodeError{Message: "failed to open yt-dlp stdout", Original: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &TranscodeError{Message: "failed to start yt-dlp", Original: err}
	}

	infoLine, scanErr := scanDownloadOutput(stdout, hook)

	if err := cmd.Wait(); err != nil {
		return nil, &TranscodeError{
			Message:  fmt.Sprintf("yt-dlp download failed: %s", strings.TrimSpace(stderr.String())),
			Original: err,
		}
	}
	if scanErr != nil {
		// The download itself succeeded; only the progress relay and
		// the info dict were truncated.
		y.logger.Warn("download", "yt-dlp output stream truncated", scanErr)
	}

	if hook != nil {
		hook(ProgressUpdate{Status: ProgressFinished})
	}

	result := &TrackResult{}
	if len(infoLine) > 0 {
		var rawData map[string]interface{}
		if err := json.Unmarshal(infoLine, &rawData); err == nil {
			entry := parseEntry(rawData)
			result.ID = entry.ID
			result.Title = entry.Title
			result.Duration = entry.Duration
		}
	}
	return result, nil
}

// scanDownloadOutput consumes yt-dlp's stdout line-wise, relaying progress
// lines through hook and keeping the last info dict emitted by
// --print-json. A read error ends the scan but is reported separately so
// the caller can distinguish it from process failure.
func scanDownloadOutput(r io.Reader, hook ProgressHook) ([]byte, error) {
	// Info dumps for long videos run well past the default scanner limit.
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var infoLine []byte
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, progressLinePrefix+"|"):
			if update, ok := parseProgressLine(line); ok && hook != nil {
				hook(update)
			}
		case strings.HasPrefix(line, "{"):
			infoLine = []byte(line)
		}
	}
	return infoLine, scanner.Err()
}

// parseProgressLine parses one PROGRESS|downloaded|total|estimate|speed|eta
// line. yt-dlp prints "NA" for values it does not know.
func parseProgressLine(line string) (ProgressUpdate, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 6 {
		return ProgressUpdate{}, false
	}

	return ProgressUpdate{
		Status:             ProgressDownloading,
		DownloadedBytes:    parseByteCount(parts[1]),
		TotalBytes:         parseByteCount(parts[2]),
		TotalBytesEstimate: parseByteCount(parts[3]),
		Speed:              parseRate(parts[4]),
		ETA:                int(parseByteCount(parts[5])),
	}, true
}

// parseByteCount parses an integer-valued field that yt-dlp may render as
// an int, a float, or "NA"/"None".
func parseByteCount(s string) int64 {
	f := parseRate(s)
	if f < 0 {
		return 0
	}
	return int64(f)
}

func parseRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "NA" || s == "None" || s == "null" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// parsePlaylist extracts the raw playlist model from a yt-dlp info dict.
func parsePlaylist(rawData map[string]interface{}) *RawPlaylist {
	playlist := &RawPlaylist{}

	if id, ok := rawData["id"].(string); ok {
		playlist.ID = id
	}
	if title, ok := rawData["title"].(string); ok {
		playlist.Title = title
	}
	if uploader, ok := rawData["uploader"].(string); ok {
		playlist.Uploader = uploader
	} else if channel, ok := rawData["channel"].(string); ok {
		playlist.Uploader = channel
	}

	if entries, ok := rawData["entries"].([]interface{}); ok {
		playlist.Entries = make([]RawEntry, 0, len(entries))
		for _, entry := range entries {
			// Deleted or private videos come through as null.
			entryMap, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			playlist.Entries = append(playlist.Entries, parseEntry(entryMap))
		}
	}

	return playlist
}

// parseEntry extracts one raw track entry from a yt-dlp info dict.
func parseEntry(rawData map[string]interface{}) RawEntry {
	entry := RawEntry{}

	if id, ok := rawData["id"].(string); ok {
		entry.ID = id
	}
	if title, ok := rawData["title"].(string); ok {
		entry.Title = title
	}
	if duration, ok := rawData["duration"].(float64); ok {
		d := int(duration)
		entry.Duration = &d
	}
	if uploader, ok := rawData["uploader"].(string); ok {
		entry.Uploader = uploader
	} else if channel, ok := rawData["channel"].(string); ok {
		entry.Uploader = channel
	}
	if thumbnail, ok := rawData["thumbnail"].(string); ok {
		entry.Thumbnail = thumbnail
	}
	if thumbnails, ok := rawData["thumbnails"].([]interface{}); ok {
		entry.Thumbnails = make([]RawThumbnail, 0, len(thumbnails))
		for _, thumb := range thumbnails {
			thumbMap, ok := thumb.(map[string]interface{})
			if !ok {
				continue
			}
			if url, ok := thumbMap["url"].(string); ok {
				entry.Thumbnails = append(entry.Thumbnails, RawThumbnail{URL: url})
			}
		}
	}

	return entry
}
