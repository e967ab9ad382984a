package storage

import (
    "context"
    "fmt"

    "linkguard/internal/adapters/memory"
    pg "linkguard/internal/adapters/postgres"
    "linkguard/internal/adapters/sqlite"
    "linkguard/internal/config"
    "linkguard/internal/ports"
)

// Store is everything the services need from a backend.
type Store interface {
    ports.ScanRepository
    ports.ThreatRepository
    Migrate(ctx context.Context) error
    Close() error
}

var (
    _ Store = (*pg.DB)(nil)
    _ Store = (*sqlite.DB)(nil)
    _ Store = (*memory.Store)(nil)
)

// Open connects to the configured backend. It does not migrate.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
    switch cfg.Driver {
    case "postgres":
        db, err := pg.Connect(ctx, cfg.URL, cfg.MaxConns)
        if err != nil {
            return nil, fmt.Errorf("postgres connect: %w", err)
        }
        return db, nil
    case "sqlite":
        db, err := sqlite.Open(cfg.URL)
        if err != nil {
            return nil, err
        }
        return db, nil
    case "memory":
        return memory.NewStore(), nil
    default:
        return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
    }
}
