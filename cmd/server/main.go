package main

import (
    "context"
    "errors"
    "flag"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/go-chi/chi/v5"

    httpadapter "linkguard/internal/adapters/http"
    "linkguard/internal/adapters/storage"
    "linkguard/internal/config"
    "linkguard/internal/identity"
    histsvc "linkguard/internal/services/history"
    scansvc "linkguard/internal/services/scanner"
    "linkguard/internal/services/threatintel"
    "linkguard/internal/workers/feedsync"
)

func main() {
    configPath := flag.String("config", os.Getenv("LINKGUARD_CONFIG"), "path to YAML config file")
    flag.Parse()

    cfg, err := config.Load(*configPath)
    if err != nil {
        slog.Error("invalid configuration", "error", err)
        os.Exit(1)
    }
    slog.SetDefault(config.NewLogger(cfg, os.Stderr))

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    store, err := storage.Open(ctx, cfg.Database)
    if err != nil {
        slog.Error("db connect error", "driver", cfg.Database.Driver, "error", err)
        os.Exit(1)
    }
    defer store.Close()

    if err := store.Migrate(ctx); err != nil {
        slog.Error("migrations failed", "error", err)
        os.Exit(1)
    }

    threats := threatintel.New(store)
    if cfg.Threats.FeedPath != "" {
        if _, err := threats.Import(ctx, cfg.Threats.FeedPath); err != nil {
            slog.Warn("initial threat feed load failed", "path", cfg.Threats.FeedPath, "error", err)
        }
        go feedsync.Run(ctx, threats, cfg.Threats.FeedPath, cfg.Threats.RefreshInterval)
    }

    var auth identity.Authenticator = identity.HeaderAuthenticator{}
    if cfg.Auth.Mode == "users_service" {
        auth = identity.NewUsersService(cfg.Auth.UsersServiceURL, cfg.Auth.UsersServiceKey)
    } else if cfg.Production() {
        slog.Warn("header authentication enabled in production")
    }

    hub := httpadapter.NewHub()
    scanner := scansvc.New(scansvc.NewScorer(store), store, hub)
    history := histsvc.New(store)

    srv := httpadapter.New(scanner, history, auth, hub)
    srv.AllowOrigins(cfg.AllowedOrigins...)
    r := chi.NewRouter()
    r.Mount("/", srv.Routes())

    server := &http.Server{
        Addr:              cfg.ListenAddr,
        Handler:           r,
        ReadHeaderTimeout: 10 * time.Second,
    }

    errCh := make(chan error, 1)
    go func() { errCh <- server.ListenAndServe() }()
    slog.Info("listening", "addr", cfg.ListenAddr, "env", cfg.Env, "driver", cfg.Database.Driver)

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
    select {
    case sig := <-sigCh:
        slog.Info("shutting down", "signal", sig.String())
        cancel()
        shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
        defer done()
        if err := server.Shutdown(shutdownCtx); err != nil {
            slog.Error("shutdown error", "error", err)
        }
    case err := <-errCh:
        if !errors.Is(err, http.ErrServerClosed) {
            slog.Error("server error", "error", err)
            os.Exit(1)
        }
    }
}
