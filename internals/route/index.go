// internals/route/index.go
package route

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftboard_backend/internals/cache"
	"shiftboard_backend/internals/constants"
	"shiftboard_backend/internals/features/leave"
	"shiftboard_backend/internals/features/org"
	assignmentCtl "shiftboard_backend/internals/features/workforce/assignments/controller"
	assignmentRepo "shiftboard_backend/internals/features/workforce/assignments/repository"
	assignmentRoute "shiftboard_backend/internals/features/workforce/assignments/route"
	assignmentSvc "shiftboard_backend/internals/features/workforce/assignments/service"
	calendarCtl "shiftboard_backend/internals/features/workforce/calendar/controller"
	calendarRoute "shiftboard_backend/internals/features/workforce/calendar/route"
	calendarSvc "shiftboard_backend/internals/features/workforce/calendar/service"
	scheduleCtl "shiftboard_backend/internals/features/workforce/schedules/controller"
	scheduleRepo "shiftboard_backend/internals/features/workforce/schedules/repository"
	scheduleRoute "shiftboard_backend/internals/features/workforce/schedules/route"
	scheduleSvc "shiftboard_backend/internals/features/workforce/schedules/service"
	authMiddleware "shiftboard_backend/internals/middlewares/auth"
)

var startTime = time.Now()

// SetupRoutes wires repositories, services and controllers and mounts the
// HTTP surface:
//
//	/api/a  supervisor surface (JWT + role guard)
//	/api/u  member surface (JWT)
//	/health liveness, unauthenticated
func SetupRoutes(app *fiber.App, db *gorm.DB, staffing cache.StaffingCache, logger *zap.Logger) {
	validate := validator.New()

	// ===================== REPOSITORIES =====================
	schedules := scheduleRepo.NewScheduleRepo(db)
	shifts := scheduleRepo.NewShiftRepo(db)
	assignments := assignmentRepo.NewAssignmentRepo(db)
	roster := org.NewRosterProvider(db)
	oracle := leave.NewVacationOracle(db)

	// ===================== SERVICES =====================
	scheduleService := scheduleSvc.NewScheduleService(schedules, shifts, assignments, logger)
	assignmentService := assignmentSvc.NewAssignmentService(shifts, schedules, assignments, oracle, staffing, logger)
	eligibilityService := assignmentSvc.NewEligibilityService(shifts, assignments, roster, oracle, logger)
	calendarService := calendarSvc.NewCalendarService(schedules, shifts, assignments, roster, staffing, logger)
	exportService := calendarSvc.NewExportService(calendarService, schedules, shifts, assignments, logger)

	// ===================== CONTROLLERS =====================
	schedCtl := scheduleCtl.NewScheduleController(scheduleService, validate)
	assignCtl := assignmentCtl.NewAssignmentController(assignmentService, eligibilityService, validate)
	calCtl := calendarCtl.NewCalendarController(calendarService, exportService, validate)

	// ===================== GROUPS =====================
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(),
		authMiddleware.RequireRoles(constants.SupervisorRoles...),
	)
	scheduleRoute.ScheduleAdminRoutes(admin, schedCtl)
	assignmentRoute.AssignmentAdminRoutes(admin, assignCtl)

	user := app.Group("/api/u", authMiddleware.AuthJWT())
	calendarRoute.CalendarUserRoutes(user, calCtl)

	// ===================== HEALTH =====================
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"uptime": time.Since(startTime).Round(time.Second).String(),
		})
	})
}
