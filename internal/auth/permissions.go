package auth

import (
	"fmt"
	"sort"
)

// Permission is a named capability. Permission identifiers are exact,
// case-sensitive strings shared as a contract between route handlers and
// the evaluator's configuration.
type Permission string

// Permission constants.
const (
	PermAccountsManage      Permission = "accounts:manage"
	PermBookingsAll         Permission = "bookings:all"
	PermBookingsOwn         Permission = "bookings:own"
	PermYachtListingsManage Permission = "yacht_listings:manage"
	PermStayListingsManage  Permission = "stay_listings:manage"
	PermReferralsRead       Permission = "referrals:read"
	PermReferralsManage     Permission = "referrals:manage"
	PermPartnersManage      Permission = "partners:manage"
)

// DefaultPermissionTable returns the built-in permission-to-role mapping.
// Deployments may replace it wholesale via configuration; the evaluator
// treats the table as opaque injected data.
func DefaultPermissionTable() map[Permission][]Role {
	return map[Permission][]Role{
		PermAccountsManage:      {RoleHQ, RoleAdmin},
		PermBookingsAll:         {RoleHQ, RoleAdmin},
		PermBookingsOwn:         {RoleHQ, RoleAdmin, RoleTravelAgent, RoleTraveler},
		PermYachtListingsManage: {RoleHQ, RoleAdmin, RoleYachtBroker},
		PermStayListingsManage:  {RoleHQ, RoleAdmin, RolePartnerOwner},
		PermReferralsRead:       {RoleHQ, RoleAdmin, RoleTravelAgent},
		PermReferralsManage:     {RoleHQ},
		PermPartnersManage:      {RoleHQ, RoleAdmin},
	}
}

// PermissionTableFromConfig converts a raw configuration mapping into a
// permission table, normalising role names and rejecting unknown ones so
// misconfiguration fails at startup.
func PermissionTableFromConfig(raw map[string][]string) (map[Permission][]Role, error) {
	table := make(map[Permission][]Role, len(raw))
	for perm, roles := range raw {
		list := make([]Role, 0, len(roles))
		for _, r := range roles {
			role, ok := NormalizeRole(r)
			if !ok {
				return nil, fmt.Errorf("permission %q references unknown role %q", perm, r)
			}
			list = append(list, role)
		}
		table[Permission(perm)] = list
	}
	return table, nil
}

// Evaluator decides whether a role set grants a named permission.
// It is immutable after construction and safe for concurrent use.
type Evaluator struct {
	grants map[Permission]map[Role]struct{}
}

// NewEvaluator builds an evaluator from a permission-to-role table.
// Unknown roles or empty permission names in the table are rejected so
// configuration mistakes surface at startup, not as silent denials.
func NewEvaluator(table map[Permission][]Role) (*Evaluator, error) {
	grants := make(map[Permission]map[Role]struct{}, len(table))
	for perm, roles := range table {
		if perm == "" {
			return nil, fmt.Errorf("permission table contains an empty permission name")
		}
		set := make(map[Role]struct{}, len(roles))
		for _, role := range roles {
			if !IsValidRole(role) {
				return nil, fmt.Errorf("permission %q grants unknown role %q", perm, role)
			}
			set[role] = struct{}{}
		}
		grants[perm] = set
	}
	return &Evaluator{grants: grants}, nil
}

// PermissionsOf returns all permissions granted to a role, sorted.
// Returns nil for roles the table never mentions.
func (e *Evaluator) PermissionsOf(role Role) []Permission {
	var perms []Permission
	for perm, roles := range e.grants {
		if _, ok := roles[role]; ok {
			perms = append(perms, perm)
		}
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// HasPermission reports whether the effective role set grants perm.
//
// When override is non-empty it REPLACES the real roles for this
// evaluation — the cleanest semantics for "act as role X" preview.
// Otherwise the effective set is the normalised union of roles, with
// unrecognised entries dropped rather than guessed.
func (e *Evaluator) HasPermission(perm Permission, roles []string, override Role) bool {
	granted, ok := e.grants[perm]
	if !ok {
		return false
	}

	if override != "" {
		_, ok := granted[override]
		return ok
	}

	for _, raw := range roles {
		role, ok := NormalizeRole(raw)
		if !ok {
			continue
		}
		if _, ok := granted[role]; ok {
			return true
		}
	}
	return false
}
