package state

import (
	"sync"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"
)

// SessionStore holds the bearer token (stored as a plain string) and the signed-in user.
type SessionStore struct {
	mu     sync.RWMutex
	kv     interfaces.KVStoreInterface
	logger providers.Logger
	token  string
	user   *models.User
}

func newSessionStore(kv interfaces.KVStoreInterface, logger providers.Logger) *SessionStore {
	return &SessionStore{kv: kv, logger: logger}
}

func (s *SessionStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, _, err := s.kv.Get(KeyToken)
	if err != nil {
		return err
	}
	var user models.User
	found, err := readJSON(s.kv, KeyUser, &user, s.logger)
	if err != nil {
		return err
	}
	s.token = token
	s.user = nil
	if found {
		s.user = &user
	}
	return nil
}

func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *SessionStore) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *SessionStore) SetSession(token string, user models.User) error {
	v, err := encode(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.SetMany(map[string]string{KeyToken: token, KeyUser: v}); err != nil {
		return err
	}
	s.token = token
	s.user = &user
	return nil
}

// ClearToken drops the token but keeps the user, as an expired session does.
func (s *SessionStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(KeyToken); err != nil {
		return err
	}
	s.token = ""
	return nil
}

// Clear signs out completely.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(KeyToken, KeyUser); err != nil {
		return err
	}
	s.token = ""
	s.user = nil
	return nil
}
