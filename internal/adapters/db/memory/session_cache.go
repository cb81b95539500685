// Package memory holds an in-process SessionCache used where Redis is not wanted,
// mainly in tests.
package memory

import (
	"context"
	"sync"

	customErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
)

type SessionCache struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewSessionCache() *SessionCache {
	return &SessionCache{users: make(map[string]model.User)}
}

func (s *SessionCache) Get(_ context.Context, userID string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return model.User{}, customErrors.ErrSessionNotFound
	}
	return clone(u), nil
}

func (s *SessionCache) Set(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// hash is dropped the same way the JSON snapshot drops it
	user.PasswordHash = ""
	s.users[user.ID.String()] = clone(user)
	return nil
}

func (s *SessionCache) Del(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, userID)
	return nil
}

func (s *SessionCache) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func clone(u model.User) model.User {
	if u.Courses != nil {
		u.Courses = append([]model.CourseRef(nil), u.Courses...)
	}
	return u
}
