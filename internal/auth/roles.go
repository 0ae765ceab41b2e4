package auth

import "strings"

// Role is an authorisation tier drawn from a closed set.
type Role string

const (
	// RoleHQ is the Atlas Voyages operations team. Full platform control,
	// including permissions no other role holds (referral programme
	// management is deliberately HQ-only).
	RoleHQ Role = "hq"

	// RoleAdmin is a platform administrator: account and listing management,
	// all bookings, but not HQ-only operations.
	RoleAdmin Role = "admin"

	// RoleTravelAgent books travel on behalf of clients and reads referrals.
	RoleTravelAgent Role = "travel_agent"

	// RoleYachtBroker manages yacht charter listings they represent.
	RoleYachtBroker Role = "yacht_broker"

	// RolePartnerOwner manages stay listings for a property partner.
	RolePartnerOwner Role = "partner_owner"

	// RoleTraveler is an end customer. Own bookings only.
	RoleTraveler Role = "traveler"
)

// ValidRoles is the closed set of roles accounts may hold.
var ValidRoles = []Role{RoleHQ, RoleAdmin, RoleTravelAgent, RoleYachtBroker, RolePartnerOwner, RoleTraveler}

// roleAliases maps raw input to canonical roles. The table is closed:
// anything absent normalises to no role, never to a guessed default.
var roleAliases = map[string]Role{
	"hq":            RoleHQ,
	"headquarters":  RoleHQ,
	"admin":         RoleAdmin,
	"administrator": RoleAdmin,
	"travel_agent":  RoleTravelAgent,
	"travel-agent":  RoleTravelAgent,
	"travel agent":  RoleTravelAgent,
	"agent":         RoleTravelAgent,
	"yacht_broker":  RoleYachtBroker,
	"yacht-broker":  RoleYachtBroker,
	"yacht broker":  RoleYachtBroker,
	"broker":        RoleYachtBroker,
	"partner_owner": RolePartnerOwner,
	"partner-owner": RolePartnerOwner,
	"partner owner": RolePartnerOwner,
	"partner":       RolePartnerOwner,
	"traveler":      RoleTraveler,
	"traveller":     RoleTraveler,
}

// NormalizeRole maps raw input to a canonical role. It trims, case-folds,
// and resolves through the alias table. Unrecognised input yields ok=false:
// deny by default.
func NormalizeRole(raw string) (Role, bool) {
	role, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]
	return role, ok
}

// IsValidRole reports whether r is one of the canonical roles.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}
