package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger: JSON in production, text in
// development. Handlers receive it by injection; no package-level
// default is mutated.
func New(development bool) *slog.Logger {
	if development {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
