// Package auth holds the client's view of who is logged in: the role
// enum, the session value (token plus user summary) and the durable
// session store. Token issuance and verification are the server's job;
// absence of a session simply means logged out.
package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles the hotel API issues. Using a
// real enum (rather than comparing raw strings at each call site) makes
// every dispatch exhaustive and typo-proof.
type Role int

const (
	RoleGuest Role = iota
	RoleReceptionist
	RoleManager
	RoleAdmin
)

// ParseRole maps the server's role string onto the enum.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GUEST":
		return RoleGuest, nil
	case "RECEPTIONIST":
		return RoleReceptionist, nil
	case "MANAGER":
		return RoleManager, nil
	case "ADMIN":
		return RoleAdmin, nil
	default:
		return RoleGuest, fmt.Errorf("unknown role: %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "GUEST"
	case RoleReceptionist:
		return "RECEPTIONIST"
	case RoleManager:
		return "MANAGER"
	case RoleAdmin:
		return "ADMIN"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Dashboard identifies the landing surface shown to a role after login.
type Dashboard int

const (
	DashboardGuest Dashboard = iota
	DashboardReceptionist
	DashboardManager
	DashboardAdmin
)

// Dashboard returns the landing dashboard for the role. The switch is
// exhaustive over the enum; a manager can never land on the admin or
// receptionist dashboard.
func (r Role) Dashboard() Dashboard {
	switch r {
	case RoleReceptionist:
		return DashboardReceptionist
	case RoleManager:
		return DashboardManager
	case RoleAdmin:
		return DashboardAdmin
	case RoleGuest:
		return DashboardGuest
	}
	return DashboardGuest
}

// Staff reports whether the role is hotel staff (assigned to a hotel).
func (r Role) Staff() bool {
	return r == RoleReceptionist || r == RoleManager
}
