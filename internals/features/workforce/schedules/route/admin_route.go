// internals/features/workforce/schedules/route/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	scheduleCtl "shiftboard_backend/internals/features/workforce/schedules/controller"
)

// ScheduleAdminRoutes mounts the supervisor-only schedule surface. The caller
// has already applied auth and role guards on the group.
func ScheduleAdminRoutes(api fiber.Router, ctl *scheduleCtl.ScheduleController) {
	api.Post("/schedules", ctl.Create)
	api.Get("/schedules", ctl.List)
	api.Get("/schedules/:id", ctl.GetByID)
	api.Patch("/schedules/:id", ctl.Patch)
	api.Put("/schedules/:id/shifts", ctl.ReplaceShifts)
	api.Post("/schedules/:id/publish", ctl.Publish)
	api.Delete("/schedules/:id", ctl.Delete)
}
