package engine

import (
	"github.com/efreitasn/marketcore/internal/domain"
)

// Register creates a profile for caller with empty back-reference lists.
// A principal can register only once.
func (m *Marketplace) Register(caller domain.Principal, name, surname, email string, role domain.Role) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := &domain.User{
		Principal:  caller,
		Name:       name,
		Surname:    surname,
		Email:      email,
		Role:       role,
		ListingIDs: []uint64{},
		OrderIDs:   []uint64{},
	}
	if err := m.users.Create(u); err != nil {
		return domain.User{}, err
	}
	m.commit()
	return u.Clone(), nil
}

// AddRole widens the caller's role and returns the resulting role.
func (m *Marketplace) AddRole(caller domain.Principal, role domain.Role) (domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.users.Get(caller)
	if err != nil {
		return "", err
	}
	if err := u.AddRole(role); err != nil {
		return "", err
	}
	m.commit()
	return u.Role, nil
}

// IsSeller reports whether caller may sell.
func (m *Marketplace) IsSeller(caller domain.Principal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.users.Get(caller)
	if err != nil {
		return false, err
	}
	return u.Role.CanSell(), nil
}

// IsBuyer reports whether caller may buy.
func (m *Marketplace) IsBuyer(caller domain.Principal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.users.Get(caller)
	if err != nil {
		return false, err
	}
	return u.Role.CanBuy(), nil
}

// User returns a copy of caller's profile.
func (m *Marketplace) User(caller domain.Principal) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.users.Get(caller)
	if err != nil {
		return domain.User{}, err
	}
	return u.Clone(), nil
}

// seller resolves caller and checks the selling capability. Callers hold m.mu.
func (m *Marketplace) seller(caller domain.Principal) (*domain.User, error) {
	u, err := m.users.Get(caller)
	if err != nil {
		return nil, err
	}
	if !u.Role.CanSell() {
		return nil, domain.ErrNotSeller
	}
	return u, nil
}

// buyer resolves caller and checks the buying capability. Callers hold m.mu.
func (m *Marketplace) buyer(caller domain.Principal) (*domain.User, error) {
	u, err := m.users.Get(caller)
	if err != nil {
		return nil, err
	}
	if !u.Role.CanBuy() {
		return nil, domain.ErrNotBuyer
	}
	return u, nil
}
