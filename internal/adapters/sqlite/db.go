package sqlite

import (
    "context"
    "database/sql"
    "embed"
    "fmt"
    "io/fs"
    "strings"

    "github.com/pressly/goose/v3"
    _ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type DB struct {
    *sql.DB
}

// Open opens the database file at path. Timestamps are written in SQLite's
// own format so DATE() and ORDER BY work on them.
func Open(path string) (*DB, error) {
    dsn := path
    if strings.Contains(dsn, "?") {
        dsn += "&_time_format=sqlite"
    } else {
        dsn += "?_time_format=sqlite"
    }
    sqlDB, err := sql.Open("sqlite", dsn)
    if err != nil {
        return nil, fmt.Errorf("opening database: %w", err)
    }

    sqlDB.SetMaxOpenConns(1)

    if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
        sqlDB.Close()
        return nil, fmt.Errorf("setting WAL mode: %w", err)
    }
    if _, err := sqlDB.Exec("PRAGMA busy_timeout=5000"); err != nil {
        sqlDB.Close()
        return nil, fmt.Errorf("setting busy timeout: %w", err)
    }
    return &DB{sqlDB}, nil
}

// Migrate applies the embedded goose migrations.
func (db *DB) Migrate(ctx context.Context) error {
    fsys, err := fs.Sub(migrations, "migrations")
    if err != nil {
        return err
    }
    provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, fsys)
    if err != nil {
        return fmt.Errorf("goose provider: %w", err)
    }
    if _, err := provider.Up(ctx); err != nil {
        return fmt.Errorf("running migrations: %w", err)
    }
    return nil
}
