package auth

import (
	"encoding/json"
	"sync"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/shared"
)

const (
	tokenKey = "session_token"
	userKey  = "user"
)

// Store keeps the visitor's session token and cached user in the cookie
// session. The two keys are written and removed together.
type Store struct {
	mu   sync.Mutex
	sess *shared.Session
}

// NewStore wraps sess.
func NewStore(sess *shared.Session) *Store {
	return &Store{sess: sess}
}

// Token returns the stored token or "". It makes Store an api.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Get(tokenKey)
}

// User returns the cached user, or nil when absent or unreadable.
func (s *Store) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := s.sess.Get(userKey)
	if raw == "" {
		return nil
	}
	var user api.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	return &user
}

// Set overwrites token and user. A nil user leaves only the token stored.
func (s *Store) Set(token string, user *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.sess.Set(tokenKey, token)
		s.sess.DeleteMany(userKey)
		return nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	s.sess.SetMany(map[string]string{tokenKey: token, userKey: string(raw)})
	return nil
}

// Clear removes token and user. It is idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.DeleteMany(tokenKey, userKey)
}
