package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/activity-report-api/internal/models"
	"github.com/noah-isme/activity-report-api/internal/utils"
)

// Auth role groups used by WithAuth.
const (
	AuthRoleAny     = "any"
	AuthRoleStaff   = "staff"
	AuthRoleStudent = "student"
)

var authRoleGroups = map[string]func(role string) bool{
	AuthRoleAny:     func(string) bool { return true },
	AuthRoleStudent: func(role string) bool { return role == models.RoleUser },
	AuthRoleStaff: func(role string) bool {
		return models.IsAdminClass(role) || role == models.RoleTeacher
	},
}

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth guards a single handler. Role is either a group (any, staff, student) or an
// exact role name; any role other than "any" implies RequireUser.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := models.NormalizeRole(opts.Role)
	if role == "" {
		role = AuthRoleAny
	}

	admits, ok := authRoleGroups[role]
	if !ok {
		admits = func(current string) bool { return current == role }
	}
	requireUser := opts.RequireUser || role != AuthRoleAny

	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(LocalUserID).(string)
		if requireUser && userID == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		if !admits(callerRole(c)) {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}
		return handler(c)
	}
}

func callerRole(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalUserRole).(string)
	return models.NormalizeRole(role)
}
