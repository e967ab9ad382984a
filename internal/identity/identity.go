package identity

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "linkguard/internal/domain"
)

const (
    SessionCookie = "session_token"
    UserHeader    = "X-User-ID"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator resolves the user behind a request.
type Authenticator interface {
    Authenticate(ctx context.Context, r *http.Request) (domain.User, error)
}

// HeaderAuthenticator trusts the X-User-ID header. Development only.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(_ context.Context, r *http.Request) (domain.User, error) {
    id := strings.TrimSpace(r.Header.Get(UserHeader))
    if id == "" {
        return domain.User{}, ErrUnauthenticated
    }
    return domain.User{ID: id}, nil
}

// UsersService validates session tokens against the external identity
// provider, which owns sessions and OAuth.
type UsersService struct {
    BaseURL string
    APIKey  string
    Client  *http.Client
}

func NewUsersService(baseURL, apiKey string) *UsersService {
    return &UsersService{
        BaseURL: strings.TrimRight(baseURL, "/"),
        APIKey:  apiKey,
        Client:  &http.Client{Timeout: 5 * time.Second},
    }
}

func (u *UsersService) Authenticate(ctx context.Context, r *http.Request) (domain.User, error) {
    token := sessionToken(r)
    if token == "" {
        return domain.User{}, ErrUnauthenticated
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.BaseURL+"/users/me", nil)
    if err != nil {
        return domain.User{}, err
    }
    req.Header.Set("Authorization", "Bearer "+token)
    req.Header.Set("x-api-key", u.APIKey)

    resp, err := u.Client.Do(req)
    if err != nil {
        return domain.User{}, fmt.Errorf("users service: %w", err)
    }
    defer resp.Body.Close()

    switch {
    case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
        return domain.User{}, ErrUnauthenticated
    case resp.StatusCode != http.StatusOK:
        return domain.User{}, fmt.Errorf("users service: unexpected status %d", resp.StatusCode)
    }

    var user domain.User
    if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
        return domain.User{}, fmt.Errorf("users service: decode: %w", err)
    }
    if user.ID == "" {
        return domain.User{}, ErrUnauthenticated
    }
    return user, nil
}

func sessionToken(r *http.Request) string {
    if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
        return c.Value
    }
    if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
    }
    return ""
}

type ctxKey struct{}

func WithUser(ctx context.Context, u domain.User) context.Context {
    return context.WithValue(ctx, ctxKey{}, u)
}

func UserFrom(ctx context.Context) (domain.User, bool) {
    u, ok := ctx.Value(ctxKey{}).(domain.User)
    return u, ok
}
