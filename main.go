// playlistdl resolves a remote playlist and bulk-downloads its tracks as
// transcoded audio, emitting a line-oriented `<eventType>:<json>` status
// protocol on stdout for a consuming process.
//
// Usage:
//
//	playlistdl <url> <preferredCodec> <preferredQuality> <downloadDirectory>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"playlistdl/config"
	"playlistdl/download"
	"playlistdl/extract"
	"playlistdl/logging"
	"playlistdl/protocol"
)

// overlayPath is the optional per-directory settings overlay.
const overlayPath = "playlistdl.yaml"

func main() {
	if len(os.Args) != 5 {
		// Consumers parse stdout line-wise; signal the usage error on
		// the protocol channel before exiting.
		fmt.Println("error:invalid_arguments")
		fmt.Fprintln(os.Stderr, "usage: playlistdl <url> <preferredCodec> <preferredQuality> <downloadDirectory>")
		os.Exit(1)
	}

	settings := &config.Settings{
		PlaylistURL:       os.Args[1],
		PreferredCodec:    os.Args[2],
		PreferredQuality:  os.Args[3],
		DownloadDirectory: os.Args[4],
	}
	settings.SetDefaults()

	reporter := protocol.NewReporter(os.Stdout)

	if err := config.ApplyOverlay(settings, overlayPath); err != nil {
		reporter.Error(protocol.ErrorPayload{Type: protocol.ErrorTypeGeneral, Message: err.Error()})
		os.Exit(1)
	}
	if err := settings.Validate(); err != nil {
		reporter.Error(protocol.ErrorPayload{Type: protocol.ErrorTypeGeneral, Message: err.Error()})
		os.Exit(1)
	}

	runID := uuid.New().String()
	logger, err := logging.NewLogger(settings.LogPath, runID)
	if err != nil {
		// Diagnostics are best-effort; the wire protocol must still
		// flow when the log file cannot be opened.
		logger = logging.Nop()
	}
	defer logger.Close()
	logger.Infof("run", "starting run for %s", settings.PlaylistURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extractor := extract.NewYtDlp(settings.YtDlpPath, logger)
	service := download.NewService(settings, extractor, reporter, logger)

	if err := service.Run(ctx); err != nil {
		os.Exit(1)
	}
}
