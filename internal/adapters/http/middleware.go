package httpadapter

import (
    "errors"
    "log/slog"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5/middleware"

    "linkguard/internal/identity"
)

func requestLogger(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
        next.ServeHTTP(ww, r)
        slog.Info("request",
            "method", r.Method,
            "path", r.URL.Path,
            "status", ww.Status(),
            "bytes", ww.BytesWritten(),
            "duration", time.Since(start),
            "request_id", middleware.GetReqID(r.Context()),
        )
    })
}

// authenticate resolves the caller through the configured identity provider
// and rejects anonymous requests.
func (s *Server) authenticate(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        user, err := s.auth.Authenticate(r.Context(), r)
        if errors.Is(err, identity.ErrUnauthenticated) {
            writeError(w, http.StatusUnauthorized, "unauthorized")
            return
        }
        if err != nil {
            slog.Error("identity provider error", "error", err)
            writeError(w, http.StatusBadGateway, "identity provider unavailable")
            return
        }
        next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), user)))
    })
}

func limitBody(n int64) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            r.Body = http.MaxBytesReader(w, r.Body, n)
            next.ServeHTTP(w, r)
        })
    }
}
