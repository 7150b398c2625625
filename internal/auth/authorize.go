package auth

import (
	"fmt"

	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/pkg/util"
)

// Principal is the authenticated caller, constructed once per request by the
// middleware and passed explicitly to every check.
type Principal struct {
	UserID      string
	Role        domain.Role
	Permissions PermissionSet
}

// NewPrincipal resolves the permission set for the user's role.
func NewPrincipal(user *domain.User) *Principal {
	return &Principal{
		UserID:      user.ID,
		Role:        user.Role,
		Permissions: PermissionsForRole(user.Role),
	}
}

// Require checks that the caller holds the permission. Admin bypasses the
// table; everyone else needs an explicit entry.
func Require(p *Principal, perm Permission) error {
	if p == nil {
		return util.NewUnauthorized(util.CodeMissingToken, "authentication required")
	}
	if p.Role == domain.RoleAdmin {
		return nil
	}
	if p.Permissions.Has(perm) {
		return nil
	}
	return util.NewForbidden(fmt.Sprintf("permission denied: %s", perm), map[string]any{
		"required_permission": string(perm),
		"user_role":           string(p.Role),
	})
}

// CanAccessTicket applies the per-ticket ownership rule. Evaluated fresh on
// every request since the assignee set can change between requests.
//
//   - client: reporter only
//   - developer, support: reporter or current assignee
//   - manager, admin, it: unrestricted
func CanAccessTicket(p *Principal, ticket *domain.Ticket) error {
	if p == nil {
		return util.NewUnauthorized(util.CodeMissingToken, "authentication required")
	}
	switch p.Role {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleIT:
		return nil
	case domain.RoleClient:
		if ticket.ReporterID == p.UserID {
			return nil
		}
		return util.NewForbidden("can only access own tickets", map[string]any{
			"user_role": string(p.Role),
		})
	case domain.RoleDeveloper, domain.RoleSupport:
		if ticket.ReporterID == p.UserID || ticket.HasAssignee(p.UserID) {
			return nil
		}
		return util.NewForbidden("can only access reported or assigned tickets", map[string]any{
			"user_role": string(p.Role),
		})
	}
	return util.NewForbidden("unknown role", map[string]any{"user_role": string(p.Role)})
}

// TicketScope narrows a list query to the tickets the caller may see. List
// queries silently filter rather than erroring.
type TicketScope struct {
	// ReporterID restricts results to tickets reported by this user.
	ReporterID string
	// AccessUserID restricts results to tickets reported by or assigned to
	// this user.
	AccessUserID string
}

// ScopeForPrincipal derives the list pre-filter matching CanAccessTicket.
func ScopeForPrincipal(p *Principal) TicketScope {
	if p == nil {
		return TicketScope{}
	}
	switch p.Role {
	case domain.RoleClient:
		return TicketScope{ReporterID: p.UserID}
	case domain.RoleDeveloper, domain.RoleSupport:
		return TicketScope{AccessUserID: p.UserID}
	}
	return TicketScope{}
}
