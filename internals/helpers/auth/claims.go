// internals/helpers/auth/claims.go
package helperAuth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shiftboard_backend/internals/constants"
)

// Locals keys written by the auth middleware.
const (
	LocUserID       = "user_id"
	LocUserName     = "user_name"
	LocRole         = "role"
	LocDepartmentID = "department_id"
	LocFacilityID   = "facility_id"
	LocWorkspaceID  = "workspace_id"
)

func localUUID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	raw, _ := c.Locals(key).(string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s not found in token", key)
	}
	return uuid.Parse(raw)
}

// GetUserIDFromToken returns the acting user's id (audit fields created_by /
// assigned_by). The middleware guarantees the value when the route is guarded.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, LocUserID)
}

func GetRole(c *fiber.Ctx) string {
	role, _ := c.Locals(LocRole).(string)
	return role
}

func GetDepartmentIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, LocDepartmentID)
}

func GetFacilityIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, LocFacilityID)
}

func GetWorkspaceIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, LocWorkspaceID)
}

// IsSupervisor: department head and above.
func IsSupervisor(c *fiber.Ctx) bool {
	role := GetRole(c)
	for _, r := range constants.SupervisorRoles {
		if role == r {
			return true
		}
	}
	return false
}
