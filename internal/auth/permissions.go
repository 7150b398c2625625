package auth

import "github.com/ticketflow/backend/internal/domain"

// Permission is a verb:resource capability gating an operation.
type Permission string

const (
	PermReadTickets    Permission = "read:tickets"
	PermWriteTickets   Permission = "write:tickets"
	PermAssignTickets  Permission = "assign:tickets"
	PermReadUsers      Permission = "read:users"
	PermWriteUsers     Permission = "write:users"
	PermReadProjects   Permission = "read:projects"
	PermWriteProjects  Permission = "write:projects"
	PermReadWorkflows  Permission = "read:workflows"
	PermWriteWorkflows Permission = "write:workflows"
	PermReadReports    Permission = "read:reports"
	PermReadDashboard  Permission = "read:dashboard"
)

// PermissionSet is a resolved capability set for a role.
type PermissionSet map[Permission]struct{}

// Has reports whether the set contains p.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

func permSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// rolePermissions is the fixed role table. Admin is handled as an explicit
// bypass in Require rather than a wildcard entry; its set here enumerates
// everything so introspection endpoints stay truthful. The client role's
// own-tickets-only restriction is enforced by the authorization gate, not
// by this table.
var rolePermissions = map[domain.Role]PermissionSet{
	domain.RoleAdmin: permSet(
		PermReadTickets, PermWriteTickets, PermAssignTickets,
		PermReadUsers, PermWriteUsers,
		PermReadProjects, PermWriteProjects,
		PermReadWorkflows, PermWriteWorkflows,
		PermReadReports, PermReadDashboard,
	),
	domain.RoleManager: permSet(
		PermReadTickets, PermWriteTickets, PermAssignTickets,
		PermReadUsers, PermWriteUsers,
		PermReadReports, PermReadDashboard,
		PermReadProjects, PermWriteProjects,
		PermReadWorkflows, PermWriteWorkflows,
	),
	domain.RoleDeveloper: permSet(
		PermReadTickets, PermWriteTickets,
		PermReadProjects,
		PermReadDashboard,
	),
	domain.RoleSupport: permSet(
		PermReadTickets, PermWriteTickets, PermAssignTickets,
		PermReadDashboard,
	),
	domain.RoleIT: permSet(
		PermReadTickets, PermWriteTickets, PermAssignTickets,
		PermReadUsers, PermWriteUsers,
		PermReadProjects, PermWriteProjects,
		PermReadWorkflows, PermWriteWorkflows,
		PermReadReports, PermReadDashboard,
	),
	domain.RoleClient: permSet(
		PermReadTickets, PermWriteTickets,
		PermReadDashboard,
	),
}

// PermissionsForRole resolves the capability set for a role. Unknown roles
// yield an empty set.
func PermissionsForRole(role domain.Role) PermissionSet {
	perms, ok := rolePermissions[role]
	if !ok {
		return PermissionSet{}
	}
	return perms
}
