package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
)

// New returns the process logger: JSON in release mode, text otherwise.
func New(ginMode string) *slog.Logger {
	return NewWithWriter(os.Stdout, ginMode)
}

func NewWithWriter(w io.Writer, ginMode string) *slog.Logger {
	if ginMode == gin.ReleaseMode {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Discard returns a logger that drops everything; used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
