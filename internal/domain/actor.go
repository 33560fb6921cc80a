package domain

import (
	"errors"
	"time"
)

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

var validRoles = map[Role]struct{}{
	RoleFarmer: {},
	RoleVendor: {},
	RoleAdmin:  {},
}

func ToRole(s string) (Role, error) {
	role := Role(s)
	if _, ok := validRoles[role]; ok {
		return role, nil
	}

	return "", errors.New("invalid role")
}

// Actor is the authenticated caller as asserted by the upstream gateway.
// CompanyID is set only for vendor accounts that belong to a company.
type Actor struct {
	UserID    int64
	Role      Role
	CompanyID *int64
}

// User is the account row referenced by orders. Identity issuance lives
// outside this core; only phone (SMS target) and company grouping matter
// here.
type User struct {
	ID        int64
	Role      Role
	Phone     string
	Name      string
	CompanyID *int64
	CreatedAt time.Time
}
