package session

import (
	"errors"
	"time"

	"github.com/gorilla/securecookie"
)

// hashKeyLength is the size of the generated HMAC key when no secret is configured.
const hashKeyLength = 64

// Signer encodes session IDs into tamper-proof, timestamped cookie values.
type Signer struct {
	codec *securecookie.SecureCookie
}

// NewSigner uses secret as the cookie HMAC key. An empty secret yields a random key,
// which invalidates all cookies on restart.
func NewSigner(secret string) (*Signer, error) {
	key := []byte(secret)
	if secret == "" {
		if key = securecookie.GenerateRandomKey(hashKeyLength); key == nil {
			return nil, errors.New("failed to generate cookie signing key")
		}
	}

	codec := securecookie.New(key, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &Signer{codec: codec}, nil
}

// SetMaxAge bounds how old a cookie value may be before Verify rejects it.
func (s *Signer) SetMaxAge(d time.Duration) {
	s.codec.MaxAge(int(d.Seconds()))
}

// Sign returns the cookie value for id.
func (s *Signer) Sign(id string) (string, error) {
	return s.codec.Encode(CookieName, id)
}

// Verify checks a cookie value and returns the session ID it carries.
func (s *Signer) Verify(value string) (string, bool) {
	var id string
	if err := s.codec.Decode(CookieName, value, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}
