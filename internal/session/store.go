// package session keeps track of browsers that presented the access token
package session

import (
	"context"
	"time"

	"github.com/desertthunder/spotweb/internal/shared"
)

// Session is the server-side state behind a session cookie.
type Session struct {
	ID            string    `json:"id"`
	Authenticated bool      `json:"authenticated"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// New creates an authenticated session valid for ttl.
func New(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:            shared.GenerateID(),
		Authenticated: true,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store persists sessions by ID.
//
// Get returns [shared.ErrNotAuthenticated] for unknown IDs and [shared.ErrSessionExpired] for expired ones.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
