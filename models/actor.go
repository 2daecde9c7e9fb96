package models

import "strings"

// Role of an authenticated actor
type Role string

// Roles
const (
	RoleUser   Role = "USER"
	RoleSatgas Role = "SATGAS"
	RoleRektor Role = "REKTOR"
)

// ParseRole matches a role name case-insensitively
func ParseRole(v string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(v)))
	switch r {
	case RoleUser, RoleSatgas, RoleRektor:
		return r, true
	}
	return "", false
}

// Actor is the identity performing an operation
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Authenticated reports whether the actor carries an identity
func (a Actor) Authenticated() bool {
	return a.ID != ""
}

// HandlesCases reports whether the actor belongs to the case handling team
func (a Actor) HandlesCases() bool {
	return a.Authenticated() && (a.Role == RoleSatgas || a.Role == RoleRektor)
}
