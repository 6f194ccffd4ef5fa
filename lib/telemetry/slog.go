package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default text logger. Debug mode also turns on
// the per-request HTTP exchange dumps in restyutil.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
