package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/rahulverma/medibill-gateway/pkg/config"
	pkgerrors "github.com/rahulverma/medibill-gateway/pkg/errors"
	redisclient "github.com/rahulverma/medibill-gateway/pkg/redis"
)

var ErrNoSession = errors.New("no active session")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager is the single owner of the upstream bearer token lifecycle: stored
// at login, read when forwarding calls, cleared at logout or on an upstream
// 401. Handlers never touch token storage directly.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// TokenProvider is the read-only surface used by middleware and the upstream
// client wiring.
type TokenProvider interface {
	Token(ctx context.Context, sessionID string) (string, error)
	IsAuthenticated(ctx context.Context, sessionID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Start stores the upstream bearer token for the session identifier.
func (m *Manager) Start(ctx context.Context, sessionID, token string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}
	return m.store.Set(ctx, m.keyer.SessionKey(sessionID), token, m.ttl)
}

// Token returns the stored upstream bearer token for the session.
func (m *Manager) Token(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrNoSession
	}
	token, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", ErrNoSession
		}
		return "", err
	}
	return token, nil
}

// IsAuthenticated reports whether the session still holds a token.
func (m *Manager) IsAuthenticated(ctx context.Context, sessionID string) (bool, error) {
	_, err := m.Token(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Clear drops the session. Called at logout and whenever the upstream rejects
// the token with a 401.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// ClearIfUnauthorized ends the session when the given error means the
// upstream rejected its token. The original error is always returned so the
// caller's response is unchanged.
func (m *Manager) ClearIfUnauthorized(ctx context.Context, sessionID string, err error) error {
	if err == nil || m == nil {
		return err
	}
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeUnauthorized {
		if sessionID != "" {
			_ = m.Clear(ctx, sessionID)
		}
	}
	return err
}
