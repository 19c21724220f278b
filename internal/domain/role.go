package domain

import (
	"fmt"
	"strings"
)

// Role enumerates the capability tiers of an identity.
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleStaff, RoleAdmin}

// ParseRole converts raw input into a Role. An empty string yields RoleUser.
func ParseRole(raw string) (Role, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return RoleUser, nil
	}
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// In reports whether r is a member of the given role set.
func (r Role) In(set ...Role) bool {
	for _, candidate := range set {
		if r == candidate {
			return true
		}
	}
	return false
}

// OwnershipScoped reports whether r only sees records it created.
func (r Role) OwnershipScoped() bool {
	return r == RoleUser
}

func (r Role) String() string {
	return string(r)
}
