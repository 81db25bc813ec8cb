package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sumire/triage/internal/domain"
	"github.com/sumire/triage/internal/logger"
	"github.com/sumire/triage/internal/triage"
)

// Session is one isolated triage workflow.
type Session struct {
	ID         uuid.UUID
	Controller *triage.Controller
	ExpiresAt  time.Time
}

// ControllerFactory builds the controller backing a new session.
type ControllerFactory func() *triage.Controller

// SessionService keeps the live sessions of the server in memory.
type SessionService struct {
	tokens        *TokenService
	newController ControllerFactory
	now           func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewSessionService creates an empty SessionService.
func NewSessionService(tokens *TokenService, newController ControllerFactory) *SessionService {
	return &SessionService{
		tokens:        tokens,
		newController: newController,
		now:           time.Now,
		sessions:      make(map[uuid.UUID]*Session),
	}
}

// Create starts a session and returns it with its bearer token.
func (s *SessionService) Create(ctx context.Context) (*Session, string, error) {
	id := uuid.New()

	token, exp, err := s.tokens.Issue(id)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}

	sess := &Session{ID: id, Controller: s.newController(), ExpiresAt: exp}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	logger.Info(ctx, "session created", "session_id", id, "expires_at", exp)
	return sess, token, nil
}

// Authenticate resolves a bearer token to its live session.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*Session, error) {
	id, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get returns the live session with the given id.
func (s *SessionService) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || !s.now().Before(sess.ExpiresAt) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return sess, nil
}

// Delete ends a session. In-flight calls complete into the dropped
// controller and are discarded.
func (s *SessionService) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	logger.Info(ctx, "session deleted", "session_id", id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *SessionService) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Debug(ctx, "expired sessions swept", "count", n)
			}
		}
	}
}
