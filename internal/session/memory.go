package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotweb/internal/shared"
)

// CleanupInterval is how often in-process stores sweep expired sessions.
const CleanupInterval = time.Minute

// MemoryStore is an in-process [Store]. Sessions are lost on restart.
type MemoryStore struct {
	sessions sync.Map
	logger   *log.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewMemoryStore creates a MemoryStore that sweeps expired sessions every interval.
func NewMemoryStore(logger *log.Logger, interval time.Duration) *MemoryStore {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	if interval <= 0 {
		interval = CleanupInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	st := &MemoryStore{logger: logger, cancel: cancel}

	st.wg.Add(1)
	go st.cleanupLoop(ctx, interval)
	return st
}

func (st *MemoryStore) Save(ctx context.Context, s *Session) error {
	cp := *s
	st.sessions.Store(s.ID, &cp)
	return nil
}

func (st *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	val, ok := st.sessions.Load(id)
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}
	s := val.(*Session)
	if s.IsExpired() {
		st.sessions.Delete(id)
		return nil, shared.ErrSessionExpired
	}
	cp := *s
	return &cp, nil
}

func (st *MemoryStore) Delete(ctx context.Context, id string) error {
	st.sessions.Delete(id)
	return nil
}

// Close stops the cleanup loop.
func (st *MemoryStore) Close() error {
	st.cancel()
	st.wg.Wait()
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (st *MemoryStore) Len() int {
	n := 0
	st.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (st *MemoryStore) cleanupLoop(ctx context.Context, interval time.Duration) {
	defer st.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.sweep()
		}
	}
}

func (st *MemoryStore) sweep() {
	removed := 0
	st.sessions.Range(func(key, value any) bool {
		if value.(*Session).IsExpired() {
			st.sessions.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		st.logger.Debug("expired sessions removed", "count", removed)
	}
}
