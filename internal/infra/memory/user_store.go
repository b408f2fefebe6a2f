package memory

import (
	"context"
	"sync"

	"mcq-assessment-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserRepository.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore(users ...domain.User) *UserStore {
	s := &UserStore{users: make(map[string]domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *UserStore) Get(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	u.Certificates = append([]string(nil), u.Certificates...)
	return u, nil
}

func (s *UserStore) AddPoints(_ context.Context, id string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TotalPoints += points
	s.users[id] = u
	return nil
}

func (s *UserStore) AppendCertificate(_ context.Context, id, certificateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Certificates = append(u.Certificates, certificateID)
	s.users[id] = u
	return nil
}
