package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/repository"
	"github.com/ticketflow/backend/pkg/util"
)

const principalKey = "auth_principal"

// Middleware validates bearer tokens and loads the principal. The role used
// for authorization is read from the user record, not the token, so role
// changes take effect on the next request.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewMiddleware constructs the middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes. Missing and invalid
// credentials keep distinct reasons for client diagnostics.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return util.NewUnauthorized(util.CodeMissingToken, "authorization header missing or invalid")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return util.NewUnauthorized(util.CodeMissingToken, "authorization header missing or invalid")
	}

	claims, err := m.tokens.ParseAccessToken(parts[1])
	if err != nil {
		return util.NewUnauthorized(util.CodeInvalidToken, "token validation failed")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewUnauthorized(util.CodeInvalidToken, "user not found")
		}
		return util.MapError(err)
	}
	if !user.Active {
		return util.NewUnauthorized(util.CodeInvalidToken, "account inactive")
	}

	c.Locals(principalKey, NewPrincipal(user))
	return c.Next()
}

// RequirePermission builds a route-level guard for a single permission.
func RequirePermission(perm Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return util.NewUnauthorized(util.CodeMissingToken, "authentication required")
		}
		if err := Require(principal, perm); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireRole builds a guard admitting only the listed roles. Admin always
// passes.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return util.NewUnauthorized(util.CodeMissingToken, "authentication required")
		}
		if principal.Role == domain.RoleAdmin {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return util.NewForbidden("role not authorized", map[string]any{
				"user_role": string(principal.Role),
			})
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
