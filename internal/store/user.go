package store

import (
	"github.com/efreitasn/marketcore/internal/domain"
)

// UserStore is an in-memory registry of users keyed by principal. It also
// remembers registration order so full listings are deterministic.
//
// UserStore is not safe for concurrent use; the engine serialises access.
type UserStore struct {
	users map[domain.Principal]*domain.User
	order []domain.Principal
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[domain.Principal]*domain.User),
	}
}

// Create adds a user to the store. It returns domain.ErrAlreadyRegistered if
// the principal already has a record.
func (s *UserStore) Create(u *domain.User) error {
	if _, exists := s.users[u.Principal]; exists {
		return domain.ErrAlreadyRegistered
	}
	s.users[u.Principal] = u
	s.order = append(s.order, u.Principal)
	return nil
}

// Get retrieves a user by principal. It returns domain.ErrUserNotFound if the
// principal has not registered. The returned pointer is the stored record.
func (s *UserStore) Get(p domain.Principal) (*domain.User, error) {
	u, ok := s.users[p]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// Exists returns true if the principal has registered.
func (s *UserStore) Exists(p domain.Principal) bool {
	_, ok := s.users[p]
	return ok
}

// All returns copies of every user in registration order.
func (s *UserStore) All() []domain.User {
	result := make([]domain.User, 0, len(s.order))
	for _, p := range s.order {
		result = append(result, s.users[p].Clone())
	}
	return result
}

// Len returns the number of registered users.
func (s *UserStore) Len() int {
	return len(s.order)
}
