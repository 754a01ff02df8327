package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"inspectpozo/core-go/internal/metrics"
)

type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

// SessionStore maps opaque bearer tokens to user ids.
type SessionStore interface {
	Create(userID int64) (Session, error)
	Lookup(token string) (int64, bool)
	Revoke(token string) bool
}

// MemoryStore keeps sessions in process memory. Entries expire after the
// configured TTL; Run evicts them on an interval.
type MemoryStore struct {
	log     zerolog.Logger
	ttl     time.Duration
	metrics *metrics.Metrics
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryStore(log zerolog.Logger, ttl time.Duration, m *metrics.Metrics) *MemoryStore {
	return &MemoryStore{
		log:      log,
		ttl:      ttl,
		metrics:  m,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

func (s *MemoryStore) Create(userID int64) (Session, error) {
	tok, err := uuid.NewRandom()
	if err != nil {
		return Session{}, fmt.Errorf("generate session token: %w", err)
	}

	sess := Session{
		Token:     tok.String(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetSessionsActive(n)
	return sess, nil
}

// Lookup returns the user behind token. Expired sessions are dropped on sight.
func (s *MemoryStore) Lookup(token string) (int64, bool) {
	if token == "" {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, false
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		s.metrics.SetSessionsActive(len(s.sessions))
		return 0, false
	}
	return sess.UserID, true
}

func (s *MemoryStore) Revoke(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return false
	}
	delete(s.sessions, token)
	s.metrics.SetSessionsActive(len(s.sessions))
	return true
}

// Sweep removes every session expired at now and reports how many went.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for tok, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, tok)
			removed++
		}
	}
	s.metrics.SetSessionsActive(len(s.sessions))
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.log.Debug().Int("removed", n).Msg("expired sessions swept")
			}
		}
	}
}
