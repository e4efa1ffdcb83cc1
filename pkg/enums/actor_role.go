package enums

import (
	"fmt"
	"strings"
)

// ActorRole is the opaque role string supplied by the identity layer.
// Comparisons are case-insensitive.
type ActorRole string

const (
	ActorRoleAdmin      ActorRole = "admin"
	ActorRoleSuperAdmin ActorRole = "super_admin"
	ActorRoleAgent      ActorRole = "agent"
	ActorRoleCustomer   ActorRole = "customer"
)

var validActorRoles = []ActorRole{
	ActorRoleAdmin,
	ActorRoleSuperAdmin,
	ActorRoleAgent,
	ActorRoleCustomer,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if strings.EqualFold(string(candidate), string(r)) {
			return true
		}
	}
	return false
}

// IsElevated reports whether the role may perform administrative ledger operations.
func (r ActorRole) IsElevated() bool {
	return strings.EqualFold(string(r), string(ActorRoleAdmin)) ||
		strings.EqualFold(string(r), string(ActorRoleSuperAdmin))
}

// IsAgent reports whether the role is a field agent.
func (r ActorRole) IsAgent() bool {
	return strings.EqualFold(string(r), string(ActorRoleAgent))
}

// ParseActorRole normalizes raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if strings.EqualFold(string(candidate), value) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
