package web

import "crypto/subtle"

// Gate checks the single shared access token.
type Gate struct {
	token []byte
}

// NewGate creates a Gate for token. An empty token admits nobody.
func NewGate(token string) *Gate {
	return &Gate{token: []byte(token)}
}

// Allow reports whether candidate equals the configured token, in constant time.
func (g *Gate) Allow(candidate string) bool {
	if len(g.token) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), g.token) == 1
}
