package service

import (
	"github.com/efreitasn/marketcore/internal/domain"
)

// RegisterRequest represents the input for user registration.
type RegisterRequest struct {
	Caller  domain.Principal
	Name    string
	Surname string
	Email   string
	Role    string
}

// Roles reports the capabilities of a user.
type Roles struct {
	Role     domain.Role
	IsSeller bool
	IsBuyer  bool
}

// Register validates the request and creates the caller's profile.
func (s *MarketService) Register(req RegisterRequest) (domain.User, error) {
	u, err := s.register(req)
	s.observe("register", req.Caller, err)
	return u, err
}

func (s *MarketService) register(req RegisterRequest) (domain.User, error) {
	for _, f := range []struct{ field, value string }{
		{"name", req.Name},
		{"surname", req.Surname},
		{"email", req.Email},
	} {
		if err := checkLength(f.field, f.value); err != nil {
			return domain.User{}, err
		}
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return domain.User{}, err
	}
	return s.market.Register(req.Caller, req.Name, req.Surname, req.Email, role)
}

// AddRole widens the caller's role and returns the resulting role.
func (s *MarketService) AddRole(caller domain.Principal, role string) (domain.Role, error) {
	r, err := domain.ParseRole(role)
	if err == nil {
		r, err = s.market.AddRole(caller, r)
	}
	s.observe("add_role", caller, err)
	return r, err
}

// Roles returns the caller's role and capabilities.
func (s *MarketService) Roles(caller domain.Principal) (Roles, error) {
	u, err := s.market.User(caller)
	if err != nil {
		return Roles{}, err
	}
	return Roles{Role: u.Role, IsSeller: u.Role.CanSell(), IsBuyer: u.Role.CanBuy()}, nil
}

// Me returns the caller's profile.
func (s *MarketService) Me(caller domain.Principal) (domain.User, error) {
	return s.market.User(caller)
}
