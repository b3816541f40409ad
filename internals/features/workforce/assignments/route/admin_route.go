// internals/features/workforce/assignments/route/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	assignmentCtl "shiftboard_backend/internals/features/workforce/assignments/controller"
)

// AssignmentAdminRoutes mounts the supervisor-only assignment surface.
func AssignmentAdminRoutes(api fiber.Router, ctl *assignmentCtl.AssignmentController) {
	api.Post("/assignments", ctl.Assign)
	api.Delete("/assignments/:id", ctl.Unassign)
	api.Get("/shifts/:id/eligible", ctl.EligibleStaff)
}
