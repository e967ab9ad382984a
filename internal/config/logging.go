package config

import (
    "io"
    "log/slog"
    "strings"
)

// NewLogger builds the process logger: JSON in production, text elsewhere.
func NewLogger(c Config, w io.Writer) *slog.Logger {
    var level slog.Level
    switch strings.ToLower(c.LogLevel) {
    case "debug":
        level = slog.LevelDebug
    case "warn":
        level = slog.LevelWarn
    case "error":
        level = slog.LevelError
    default:
        level = slog.LevelInfo
    }
    opts := &slog.HandlerOptions{Level: level}
    if c.Production() {
        return slog.New(slog.NewJSONHandler(w, opts))
    }
    return slog.New(slog.NewTextHandler(w, opts))
}
