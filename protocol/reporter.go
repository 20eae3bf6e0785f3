// Package protocol implements the line-oriented status protocol consumed
// by the UI layer: one `<eventType>:<json>` record per line on stdout.
package protocol

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Reporter is the single sink every component uses to emit status. Each
// emission is one self-contained line, written under a mutex so records
// never interleave even if emissions ever happen concurrently.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewReporter creates a reporter writing to w, normally os.Stdout.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// emit writes one `<eventType>:<json>` line. A marshal failure degrades to
// an error record instead of corrupting the stream.
func (r *Reporter) emit(eventType string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		fallback, _ := json.Marshal(ErrorPayload{Error: err.Error()})
		_, _ = fmt.Fprintf(r.w, "%s:%s\n", EventError, fallback)
		return
	}
	_, _ = fmt.Fprintf(r.w, "%s:%s\n", eventType, data)
}

// PlaylistInfo emits the resolved playlist.
func (r *Reporter) PlaylistInfo(p PlaylistInfoPayload) {
	r.emit(EventPlaylistInfo, p)
}

// Progress emits a transient progress update.
func (r *Reporter) Progress(p ProgressPayload) {
	r.emit(EventProgress, p)
}

// TrackComplete emits the end-of-transfer marker for a track.
func (r *Reporter) TrackComplete(trackID string) {
	r.emit(EventTrackComplete, TrackCompletePayload{TrackID: trackID})
}

// TrackStatus emits the terminal outcome for a track.
func (r *Reporter) TrackStatus(p TrackStatusPayload) {
	r.emit(EventTrackStatus, p)
}

// Error emits an error record.
func (r *Reporter) Error(p ErrorPayload) {
	r.emit(EventError, p)
}
