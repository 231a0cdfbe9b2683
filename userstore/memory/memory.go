// Package memory provides an in-process UserStore for tests and single-node
// deployments. Accounts are lost on restart.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/authgate-dev/authgate"
)

// Store keeps accounts in a mutex-guarded map keyed by lowercased email.
type Store struct {
	mu    sync.RWMutex
	users map[string]authgate.User
}

var _ authgate.UserStore = (*Store)(nil)

func New() *Store {
	return &Store{users: make(map[string]authgate.User)}
}

func (s *Store) FindByEmail(_ context.Context, email string) (authgate.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[normalize(email)]
	if !ok {
		return authgate.User{}, authgate.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[normalize(email)]
	return ok, nil
}

func (s *Store) Save(_ context.Context, user authgate.User) (authgate.User, error) {
	key := normalize(user.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key]; ok {
		return authgate.User{}, authgate.ErrAccountExists
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.users[key] = user
	return user, nil
}

// Len reports the number of stored accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
