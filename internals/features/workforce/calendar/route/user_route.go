// internals/features/workforce/calendar/route/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	calendarCtl "shiftboard_backend/internals/features/workforce/calendar/controller"
)

// CalendarUserRoutes mounts the read-only calendar surface available to every
// authenticated member, staff included.
func CalendarUserRoutes(api fiber.Router, ctl *calendarCtl.CalendarController) {
	api.Get("/calendar", ctl.DailyStaffing)
	api.Get("/calendar/export", ctl.ExportXLSX)
	api.Get("/shifts/:id/summary", ctl.ShiftDaySummary)
	api.Get("/me/assignments.ics", ctl.MyAssignmentsICS)
}
