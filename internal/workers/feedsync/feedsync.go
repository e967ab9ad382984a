package feedsync

import (
    "context"
    "log/slog"
    "time"
)

// Importer loads a threat feed file into the store.
type Importer interface {
    Import(ctx context.Context, path string) (int, error)
}

// Run reloads the feed at path every interval until ctx is done. A failed
// reload is logged and the previous data stays in place.
func Run(ctx context.Context, importer Importer, path string, interval time.Duration) {
    if interval <= 0 || path == "" { return }
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if _, err := importer.Import(ctx, path); err != nil {
                slog.Warn("threat feed reload failed", "path", path, "error", err)
            }
        }
    }
}
