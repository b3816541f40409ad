// internals/middlewares/auth/role_middleware.go
package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	helper "shiftboard_backend/internals/helpers"
	helperAuth "shiftboard_backend/internals/helpers/auth"
)

// RequireRoles rejects the request unless the token role is in the allow list.
func RequireRoles(allowed ...string) fiber.Handler {
	allowSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowSet[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		if _, ok := allowSet[helperAuth.GetRole(c)]; !ok {
			return helper.JsonError(c, http.StatusForbidden, "Access denied for this role")
		}
		return c.Next()
	}
}
