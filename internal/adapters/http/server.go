package httpadapter

import (
    "encoding/json"
    "errors"
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"

    "linkguard/internal/domain"
    "linkguard/internal/identity"
    "linkguard/internal/ports"
    scansvc "linkguard/internal/services/scanner"
)

const maxBodyBytes = 4 << 10

type Server struct {
    scanner ports.Scanner
    history ports.History
    auth    identity.Authenticator
    hub     *Hub

    originPatterns []string
}

func New(scanner ports.Scanner, history ports.History, auth identity.Authenticator, hub *Hub) *Server {
    return &Server{scanner: scanner, history: history, auth: auth, hub: hub}
}

// AllowOrigins sets the host patterns accepted for websocket upgrades from
// other origins.
func (s *Server) AllowOrigins(patterns ...string) { s.originPatterns = patterns }

func (s *Server) Routes() chi.Router {
    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    r.Use(middleware.RealIP)
    r.Use(requestLogger)
    r.Use(middleware.Recoverer)

    r.Get("/healthz", s.getHealthz)
    r.Route("/api", func(r chi.Router) {
        r.Use(s.authenticate)
        r.Get("/users/me", s.getMe)
        r.With(limitBody(maxBodyBytes)).Post("/scan-link", s.postScanLink)
        r.Get("/scan-history", s.getScanHistory)
        r.Get("/scan-stats", s.getScanStats)
        r.Get("/scan-summary", s.getScanSummary)
        r.Get("/scan-feed", s.handleScanFeed)
    })
    return r
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
    writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
    user, _ := identity.UserFrom(r.Context())
    writeJSON(w, http.StatusOK, user)
}

type scanLinkRequest struct {
    URL string `json:"url"`
}

type verdict struct {
    Status      domain.Status   `json:"status"`
    ScanDetails json.RawMessage `json:"scanDetails"`
}

// scanFailure is returned with a 500 when the scan could not be recorded.
// Verdict carries the computed result when scoring itself succeeded.
type scanFailure struct {
    URL         string             `json:"url"`
    Status      domain.Status      `json:"status"`
    ScanDetails domain.ScanDetails `json:"scanDetails"`
    ScannedAt   time.Time          `json:"scannedAt"`
    Verdict     *verdict           `json:"verdict,omitempty"`
}

func (s *Server) postScanLink(w http.ResponseWriter, r *http.Request) {
    user, _ := identity.UserFrom(r.Context())

    var req scanLinkRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        var tooLarge *http.MaxBytesError
        if errors.As(err, &tooLarge) {
            writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
            return
        }
        writeError(w, http.StatusBadRequest, "invalid JSON")
        return
    }
    if strings.TrimSpace(req.URL) == "" {
        writeError(w, http.StatusBadRequest, "url is required")
        return
    }

    rec, err := s.scanner.Scan(r.Context(), user.ID, req.URL)
    if err != nil {
        slog.Error("scan link failed", "user", user.ID, "url", req.URL, "error", err)
        resp := scanFailure{
            URL:         scansvc.NormalizeURL(req.URL),
            Status:      domain.StatusError,
            ScanDetails: scansvc.FailureDetails(err),
            ScannedAt:   time.Now().UTC(),
        }
        if errors.Is(err, scansvc.ErrStorage) {
            resp.URL = rec.URL
            resp.Verdict = &verdict{Status: rec.Status, ScanDetails: rec.ScanDetails}
        }
        writeJSON(w, http.StatusInternalServerError, resp)
        return
    }
    writeJSON(w, http.StatusOK, rec)
}

func (s *Server) getScanHistory(w http.ResponseWriter, r *http.Request) {
    user, _ := identity.UserFrom(r.Context())
    recs, err := s.history.Recent(r.Context(), user.ID)
    if err != nil {
        slog.Error("scan history failed", "user", user.ID, "error", err)
        writeError(w, http.StatusInternalServerError, "failed to load scan history")
        return
    }
    writeJSON(w, http.StatusOK, recs)
}

func (s *Server) getScanStats(w http.ResponseWriter, r *http.Request) {
    user, _ := identity.UserFrom(r.Context())
    stats, err := s.history.Stats(r.Context(), user.ID)
    if err != nil {
        slog.Error("scan stats failed", "user", user.ID, "error", err)
        writeError(w, http.StatusInternalServerError, "failed to load scan stats")
        return
    }
    writeJSON(w, http.StatusOK, stats)
}

func (s *Server) getScanSummary(w http.ResponseWriter, r *http.Request) {
    user, _ := identity.UserFrom(r.Context())
    sum, err := s.history.Summary(r.Context(), user.ID)
    if err != nil {
        slog.Error("scan summary failed", "user", user.ID, "error", err)
        writeError(w, http.StatusInternalServerError, "failed to load scan summary")
        return
    }
    writeJSON(w, http.StatusOK, sum)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    if err := json.NewEncoder(w).Encode(v); err != nil {
        slog.Debug("write response", "error", err)
    }
}

func writeError(w http.ResponseWriter, status int, msg string) {
    writeJSON(w, status, map[string]string{"error": msg})
}
