package domain

import "fmt"

// Principal is the platform-supplied identifier of whoever invokes an
// operation. The core never authenticates it, it only compares values.
type Principal string

// Role is the set of capabilities a user holds on the marketplace.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleBoth   Role = "both"
)

// ParseRole converts an API string into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleBuyer, RoleSeller, RoleBoth:
		return r, nil
	}
	return "", &ValidationError{
		Message: fmt.Sprintf("unknown role %q, must be one of: buyer, seller, both", s),
	}
}

// CanSell reports whether the role includes selling.
func (r Role) CanSell() bool {
	return r == RoleSeller || r == RoleBoth
}

// CanBuy reports whether the role includes buying.
func (r Role) CanBuy() bool {
	return r == RoleBuyer || r == RoleBoth
}

// User is a registered participant. ListingIDs and OrderIDs are
// back-references into the listing and order arenas; they hold ids only.
type User struct {
	Principal  Principal
	Name       string
	Surname    string
	Email      string
	Role       Role
	ListingIDs []uint64
	OrderIDs   []uint64
}

// AddRole widens the user's role. Re-adding a held role, or adding anything
// while already RoleBoth, fails with ErrRoleAlreadyHeld. Buyer plus seller (in
// either order) becomes RoleBoth; any other request overwrites the role.
func (u *User) AddRole(r Role) error {
	if u.Role == r || u.Role == RoleBoth {
		return ErrRoleAlreadyHeld
	}
	switch {
	case u.Role == RoleBuyer && r == RoleSeller, u.Role == RoleSeller && r == RoleBuyer:
		u.Role = RoleBoth
	default:
		u.Role = r
	}
	return nil
}

// Clone returns a deep copy, so snapshots handed to callers never alias the
// registry's back-reference slices.
func (u *User) Clone() User {
	c := *u
	c.ListingIDs = make([]uint64, len(u.ListingIDs))
	copy(c.ListingIDs, u.ListingIDs)
	c.OrderIDs = make([]uint64, len(u.OrderIDs))
	copy(c.OrderIDs, u.OrderIDs)
	return c
}
