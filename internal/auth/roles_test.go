package auth

import "testing"

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"hq", RoleHQ, true},
		{"HQ", RoleHQ, true},
		{"headquarters", RoleHQ, true},
		{"admin", RoleAdmin, true},
		{"Administrator", RoleAdmin, true},
		{"travel_agent", RoleTravelAgent, true},
		{"travel-agent", RoleTravelAgent, true},
		{"Travel Agent", RoleTravelAgent, true},
		{"agent", RoleTravelAgent, true},
		{"yacht_broker", RoleYachtBroker, true},
		{"Yacht Broker", RoleYachtBroker, true},
		{"broker", RoleYachtBroker, true},
		{"partner_owner", RolePartnerOwner, true},
		{"partner-owner", RolePartnerOwner, true},
		{"partner", RolePartnerOwner, true},
		{"traveler", RoleTraveler, true},
		{"traveller", RoleTraveler, true},
		{"  traveler  ", RoleTraveler, true},
		{"TRAVELER", RoleTraveler, true},

		// Unknown input yields no role, never a guessed default
		{"", "", false},
		{"superuser", "", false},
		{"root", "", false},
		{"travel__agent", "", false},
		{"hq;drop table accounts", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := NormalizeRole(tc.input)
			if ok != tc.ok {
				t.Fatalf("NormalizeRole(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("NormalizeRole(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, r := range ValidRoles {
		if !IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = false, want true", r)
		}
	}
	if IsValidRole(Role("agent")) {
		t.Error("aliases are not canonical roles")
	}
	if IsValidRole(Role("")) {
		t.Error("empty role must not be valid")
	}
}
