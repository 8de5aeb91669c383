package sl

import (
	"io"
	"log/slog"
)

// New создаёт логгер для окружения env: текстовый с уровнем Debug для local,
// JSON с уровнем Info для остальных.
func New(env string, w io.Writer) *slog.Logger {
	if env == "local" {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
