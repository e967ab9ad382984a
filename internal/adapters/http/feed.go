package httpadapter

import (
    "context"
    "encoding/json"
    "log/slog"
    "net/http"
    "sync"
    "time"

    "github.com/coder/websocket"

    "linkguard/internal/domain"
    "linkguard/internal/identity"
)

const (
    feedWriteTimeout = 5 * time.Second
    feedBuffer       = 16
)

// subscriber is one websocket client. Publish only ever does a non-blocking
// send on its channel; the feed handler owns the connection writes.
type subscriber struct {
    send chan []byte
}

// Hub fans new scan records out to the owning user's websocket clients.
type Hub struct {
    mu      sync.RWMutex
    clients map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
    return &Hub{clients: make(map[string]map[*subscriber]struct{})}
}

func (h *Hub) Subscribe(userID string) *subscriber {
    sub := &subscriber{send: make(chan []byte, feedBuffer)}
    h.mu.Lock()
    defer h.mu.Unlock()
    if h.clients[userID] == nil {
        h.clients[userID] = make(map[*subscriber]struct{})
    }
    h.clients[userID][sub] = struct{}{}
    return sub
}

func (h *Hub) Unsubscribe(userID string, sub *subscriber) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if subs, ok := h.clients[userID]; ok {
        delete(subs, sub)
        if len(subs) == 0 {
            delete(h.clients, userID)
        }
    }
}

func (h *Hub) Subscribers(userID string) int {
    h.mu.RLock()
    defer h.mu.RUnlock()
    return len(h.clients[userID])
}

// Publish implements ports.Notifier. Only rec.UserID's connections see it.
// It never blocks: a client whose buffer is full misses the record.
func (h *Hub) Publish(rec domain.ScanRecord) {
    h.mu.RLock()
    defer h.mu.RUnlock()
    subs := h.clients[rec.UserID]
    if len(subs) == 0 {
        return
    }

    data, err := json.Marshal(rec)
    if err != nil {
        return
    }
    for sub := range subs {
        select {
        case sub.send <- data:
        default:
            slog.Warn("scan feed client lagging, dropping record", "user", rec.UserID, "id", rec.ID)
        }
    }
}

func (s *Server) handleScanFeed(w http.ResponseWriter, r *http.Request) {
    user, _ := identity.UserFrom(r.Context())
    conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
        OriginPatterns: s.originPatterns,
    })
    if err != nil {
        slog.Error("ws accept error", "error", err)
        return
    }
    defer conn.CloseNow()

    sub := s.hub.Subscribe(user.ID)
    defer s.hub.Unsubscribe(user.ID, sub)

    // The feed is server-push only; CloseRead cancels ctx once the client goes away.
    ctx := conn.CloseRead(r.Context())
    for {
        select {
        case <-ctx.Done():
            return
        case data := <-sub.send:
            if err := writeFeed(ctx, conn, data); err != nil {
                slog.Debug("ws write error", "user", user.ID, "error", err)
                return
            }
        }
    }
}

func writeFeed(ctx context.Context, conn *websocket.Conn, data []byte) error {
    ctx, cancel := context.WithTimeout(ctx, feedWriteTimeout)
    defer cancel()
    return conn.Write(ctx, websocket.MessageText, data)
}
