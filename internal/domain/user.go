package domain

import "time"

// Role enumerates the fixed user categories. The set is closed; permission
// resolution fails closed for anything outside it.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleSupport   Role = "support"
	RoleIT        Role = "it"
	RoleManager   Role = "manager"
	RoleAdmin     Role = "admin"
	RoleClient    Role = "client"
)

// ValidRole reports whether role is one of the known categories.
func ValidRole(role Role) bool {
	switch role {
	case RoleDeveloper, RoleSupport, RoleIT, RoleManager, RoleAdmin, RoleClient:
		return true
	}
	return false
}

// User is the domain model for every account in the system.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          Role
	Active        bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
