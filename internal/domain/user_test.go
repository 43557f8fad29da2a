package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"buyer", RoleBuyer, false},
		{"seller", RoleSeller, false},
		{"both", RoleBoth, false},
		{"Buyer", "", true},
		{"", "", true},
		{"admin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("ParseRole(%q) error = %v, want ValidationError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRole(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRole_Capabilities(t *testing.T) {
	tests := []struct {
		role    Role
		canBuy  bool
		canSell bool
	}{
		{RoleBuyer, true, false},
		{RoleSeller, false, true},
		{RoleBoth, true, true},
	}
	for _, tt := range tests {
		if got := tt.role.CanBuy(); got != tt.canBuy {
			t.Errorf("%s.CanBuy() = %v, want %v", tt.role, got, tt.canBuy)
		}
		if got := tt.role.CanSell(); got != tt.canSell {
			t.Errorf("%s.CanSell() = %v, want %v", tt.role, got, tt.canSell)
		}
	}
}

func TestUser_AddRole(t *testing.T) {
	tests := []struct {
		name    string
		current Role
		add     Role
		want    Role
		wantErr error
	}{
		{"buyer adds seller", RoleBuyer, RoleSeller, RoleBoth, nil},
		{"seller adds buyer", RoleSeller, RoleBuyer, RoleBoth, nil},
		{"buyer adds both", RoleBuyer, RoleBoth, RoleBoth, nil},
		{"seller adds both", RoleSeller, RoleBoth, RoleBoth, nil},
		{"buyer adds buyer", RoleBuyer, RoleBuyer, RoleBuyer, ErrRoleAlreadyHeld},
		{"seller adds seller", RoleSeller, RoleSeller, RoleSeller, ErrRoleAlreadyHeld},
		{"both adds buyer", RoleBoth, RoleBuyer, RoleBoth, ErrRoleAlreadyHeld},
		{"both adds seller", RoleBoth, RoleSeller, RoleBoth, ErrRoleAlreadyHeld},
		{"both adds both", RoleBoth, RoleBoth, RoleBoth, ErrRoleAlreadyHeld},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.current}
			err := u.AddRole(tt.add)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddRole(%s) error = %v, want %v", tt.add, err, tt.wantErr)
			}
			if u.Role != tt.want {
				t.Errorf("role after AddRole(%s) = %s, want %s", tt.add, u.Role, tt.want)
			}
		})
	}
}

func TestUser_CloneDoesNotAlias(t *testing.T) {
	u := &User{Principal: "alice", ListingIDs: []uint64{1}, OrderIDs: []uint64{2}}
	c := u.Clone()
	c.ListingIDs[0] = 99
	c.OrderIDs = append(c.OrderIDs, 3)

	if u.ListingIDs[0] != 1 {
		t.Errorf("original ListingIDs mutated through clone: %v", u.ListingIDs)
	}
	if len(u.OrderIDs) != 1 {
		t.Errorf("original OrderIDs grew through clone: %v", u.OrderIDs)
	}
}
