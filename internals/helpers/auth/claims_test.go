package helperAuth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"shiftboard_backend/internals/constants"
)

func TestIsSupervisor(t *testing.T) {
	app := fiber.New()
	app.Get("/check", func(c *fiber.Ctx) error {
		c.Locals(LocRole, c.Get("X-Role"))
		if IsSupervisor(c) {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.SendStatus(fiber.StatusForbidden)
	})

	cases := []struct {
		role string
		want int
	}{
		{constants.RoleStaff, fiber.StatusForbidden},
		{constants.RoleDepartmentHead, fiber.StatusOK},
		{constants.RoleFacilityAdmin, fiber.StatusOK},
		{constants.RoleWorkspaceOwner, fiber.StatusOK},
		{"", fiber.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(fiber.MethodGet, "/check", nil)
		req.Header.Set("X-Role", tc.role)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("role %q: %v", tc.role, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Errorf("role %q: status = %d, want %d", tc.role, resp.StatusCode, tc.want)
		}
	}
}
