// Package session holds the authenticated user's token and profile.
//
// A Session is created once per process with Open, injected into the
// components that need it, and torn down with Close. Only the authentication
// flows and the gateway's auth-failure handler change it; everything else reads.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// Keys under which the session is persisted.
const (
	TokenKey   = "token"
	ProfileKey = "user"
)

// Profile identifies the signed-in user.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is the process-wide authentication state. It is safe for concurrent
// use; the gateway reads the token from request goroutines.
type Session struct {
	store Store

	mu      sync.RWMutex
	token   string
	profile *Profile
}

// Open hydrates a Session from store. A profile that cannot be decoded is
// treated as no session and removed.
func Open(store Store) (*Session, error) {
	if store == nil {
		return nil, errors.New("session: store cannot be nil")
	}
	s := &Session{store: store}

	token, _, err := store.Get(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("session: load token: %w", err)
	}
	raw, ok, err := store.Get(ProfileKey)
	if err != nil {
		return nil, fmt.Errorf("session: load profile: %w", err)
	}
	if ok && token != "" {
		var p Profile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			log.Warn().Err(err).Msg("discarding unreadable stored profile")
			if err := s.Clear(); err != nil {
				return nil, err
			}
			return s, nil
		}
		s.token = token
		s.profile = &p
	}
	return s, nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Profile returns the signed-in user's profile.
func (s *Session) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return Profile{}, false
	}
	return *s.profile, true
}

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool {
	_, ok := s.Profile()
	return ok
}

// Establish records a new signed-in session and persists it.
func (s *Session) Establish(token string, p Profile) error {
	if token == "" {
		return errors.New("session: token cannot be empty")
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(TokenKey, token); err != nil {
		return err
	}
	if err := s.store.Set(ProfileKey, string(b)); err != nil {
		_ = s.store.Remove(TokenKey)
		return err
	}
	s.token = token
	s.profile = &p
	return nil
}

// Clear signs the user out. The in-memory session is always cleared, even if
// the store fails to remove a key.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.profile = nil
	return errors.Join(s.store.Remove(TokenKey), s.store.Remove(ProfileKey))
}

// Close releases the underlying store if it holds resources.
func (s *Session) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
