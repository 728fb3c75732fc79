package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotweb/internal/shared"
)

// CookieName is the name of the session cookie.
const CookieName = "spotweb_session"

// Manager ties a [Store] to signed HTTP cookies.
type Manager struct {
	store  Store
	signer *Signer
	ttl    time.Duration
	logger *log.Logger
}

// NewManager creates a Manager issuing sessions valid for ttl.
func NewManager(store Store, signer *Signer, ttl time.Duration, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	signer.SetMaxAge(ttl)
	return &Manager{store: store, signer: signer, ttl: ttl, logger: logger}
}

// Login stores a new authenticated session and sets its cookie on w.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request) (*Session, error) {
	s := New(m.ttl)
	if err := m.store.Save(r.Context(), s); err != nil {
		return nil, err
	}

	value, err := m.signer.Sign(s.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Current returns the authenticated session carried by r.
//
// Missing, forged, unknown and unauthenticated sessions all yield [shared.ErrNotAuthenticated];
// expired ones yield [shared.ErrSessionExpired].
func (m *Manager) Current(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, shared.ErrNotAuthenticated
	}

	id, ok := m.signer.Verify(cookie.Value)
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}

	s, err := m.store.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotAuthenticated) && !errors.Is(err, shared.ErrSessionExpired) {
			m.logger.Warn("session lookup failed", "err", err)
			return nil, shared.ErrNotAuthenticated
		}
		return nil, err
	}
	if !s.Authenticated {
		return nil, shared.ErrNotAuthenticated
	}
	return s, nil
}

// Authenticated reports whether r carries a valid authenticated session.
func (m *Manager) Authenticated(r *http.Request) bool {
	_, err := m.Current(r)
	return err == nil
}

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// NewStore picks the session backend from cfg: Redis when a host is configured, otherwise memory.
// A Redis connection failure falls back to memory with a warning.
func NewStore(ctx context.Context, cfg shared.SessionConfig, logger *log.Logger) Store {
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	if cfg.RedisHost != "" {
		store, err := NewRedisStore(ctx, cfg)
		if err != nil {
			logger.Warn("redis unavailable, falling back to in-memory sessions", "host", cfg.RedisHost, "err", err)
			return NewMemoryStore(logger, CleanupInterval)
		}
		logger.Info("using redis session store", "host", cfg.RedisHost, "port", cfg.RedisPort)
		return store
	}

	logger.Info("using in-memory session store")
	return NewMemoryStore(logger, CleanupInterval)
}
