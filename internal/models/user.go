package models

import "time"

// Role is the canonical privilege level of an account. The identity record
// stores a raw role string; ParseRole maps it here.
type Role string

const (
	RoleSuperAdmin Role = "superAdmin"
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
)

// ParseRole maps a raw role string from an identity record to a canonical
// Role. Anything unrecognized, including the empty string, resolves to
// Employee so that a bad or missing record never grants elevated privilege.
func ParseRole(raw string) Role {
	switch raw {
	case string(RoleSuperAdmin):
		return RoleSuperAdmin
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleEmployee
	}
}

// User is the authoritative identity record, one per account.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	DisplayName  string
	Role         string // raw role string as stored
	Phone        string
	Address      string
	Department   *string
	CreatedBy    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is the resolved, role-annotated representation of the current
// authenticated user. Derived from an identity plus a role resolution;
// never written back to the identity record.
type Session struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	Department  string `json:"department,omitempty"`
}
