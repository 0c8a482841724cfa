package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/clementg/consoleback/internal/model"
)

// SessionStore holds the single shared authentication context. It is only
// ever overwritten by a completed login flow; expiry keeps the stale
// artifacts around so the state transition is visible, not silent.
type SessionStore struct {
	path string

	mu      sync.Mutex
	session model.Session
}

// OpenSession loads the saved session, defaulting to Unauthenticated when no
// file exists.
func OpenSession(path string) (*SessionStore, error) {
	s := &SessionStore{
		path:    path,
		session: model.Session{State: model.SessionUnauthenticated},
	}

	var saved model.Session
	found, err := readFile(path, &saved)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	if found {
		if saved.State == "" {
			saved.State = model.SessionUnauthenticated
		}
		s.session = saved
	}
	return s, nil
}

// Get returns a copy of the current session.
func (s *SessionStore) Get() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.session
	out.Cookies = append([]model.Cookie(nil), s.session.Cookies...)
	return out
}

// State returns the current session state.
func (s *SessionStore) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.State
}

// Set overwrites the session with freshly captured artifacts and marks it
// Valid.
func (s *SessionStore) Set(cookies []model.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.session = model.Session{
		State:      model.SessionValid,
		Cookies:    append([]model.Cookie(nil), cookies...),
		CapturedAt: &now,
	}
	return writeFileAtomic(s.path, s.session)
}

// Expire transitions a Valid session to Expired. Expiring an already
// expired or absent session is a no-op so concurrent failure reports only
// record the transition once.
func (s *SessionStore) Expire() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.State != model.SessionValid {
		return false, nil
	}
	s.session.State = model.SessionExpired
	return true, writeFileAtomic(s.path, s.session)
}

// Clear discards saved artifacts ahead of a fresh login flow.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = model.Session{State: model.SessionUnauthenticated}
	return writeFileAtomic(s.path, s.session)
}
