// internals/features/workforce/calendar/controller/calendar_controller.go
package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	dto "shiftboard_backend/internals/features/workforce/calendar/dto"
	service "shiftboard_backend/internals/features/workforce/calendar/service"
	helper "shiftboard_backend/internals/helpers"
	helperAuth "shiftboard_backend/internals/helpers/auth"
)

// windows longer than this are rejected to keep projection queries bounded
const maxCalendarWindowDays = 92

/* ============================================
   Controller
============================================ */

type CalendarController struct {
	Calendar  service.CalendarService
	Exports   service.ExportService
	Validator *validator.Validate
}

func NewCalendarController(calendar service.CalendarService, exports service.ExportService, v *validator.Validate) *CalendarController {
	if v == nil {
		v = validator.New()
	}
	return &CalendarController{Calendar: calendar, Exports: exports, Validator: v}
}

func (ctl *CalendarController) parseWindow(c *fiber.Ctx) (time.Time, time.Time, error) {
	var q dto.CalendarQuery
	if err := c.QueryParser(&q); err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := ctl.Validator.Struct(&q); err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	from, err := time.ParseInLocation(dto.DateLayout, q.From, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Invalid from date")
	}
	to, err := time.ParseInLocation(dto.DateLayout, q.To, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Invalid to date")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "to must not be before from")
	}
	if int(to.Sub(from).Hours()/24) > maxCalendarWindowDays {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Window too large, maximum 92 days")
	}
	return from, to, nil
}

/* ============================================
   DAILY STAFFING
   GET /api/u/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD
============================================ */

func (ctl *CalendarController) DailyStaffing(c *fiber.Ctx) error {
	from, to, err := ctl.parseWindow(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	departmentID, err := helperAuth.GetDepartmentIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Department context not found")
	}

	staffing, err := ctl.Calendar.DailyStaffing(c.Context(), departmentID, from, to)
	if err != nil {
		return helper.WritePGError(c, err)
	}
	return helper.JsonOK(c, "OK", staffing)
}

/* ============================================
   SHIFT DAY SUMMARY
   GET /api/u/shifts/:id/summary?date=YYYY-MM-DD
============================================ */

func (ctl *CalendarController) ShiftDaySummary(c *fiber.Ctx) error {
	shiftID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid shift id")
	}
	date, err := time.ParseInLocation(dto.DateLayout, c.Query("date"), time.UTC)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	summary, err := ctl.Calendar.ShiftDaySummary(c.Context(), shiftID, date)
	if err != nil {
		if errors.Is(err, service.ErrShiftNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Shift not found")
		}
		return helper.WritePGError(c, err)
	}
	return helper.JsonOK(c, "OK", summary)
}

/* ============================================
   XLSX EXPORT
   GET /api/u/calendar/export?from=YYYY-MM-DD&to=YYYY-MM-DD
============================================ */

func (ctl *CalendarController) ExportXLSX(c *fiber.Ctx) error {
	from, to, err := ctl.parseWindow(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	departmentID, err := helperAuth.GetDepartmentIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Department context not found")
	}

	buf, filename, err := ctl.Exports.ExportXLSX(c.Context(), departmentID, from, to)
	if err != nil {
		return helper.WritePGError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.SendStream(buf)
}

/* ============================================
   PERSONAL ICS FEED
   GET /api/u/me/assignments.ics?from=YYYY-MM-DD&to=YYYY-MM-DD
============================================ */

func (ctl *CalendarController) MyAssignmentsICS(c *fiber.Ctx) error {
	from, to, err := ctl.parseWindow(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "User context not found")
	}

	buf, filename, err := ctl.Exports.StaffICS(c.Context(), userID, from, to)
	if err != nil {
		return helper.WritePGError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.SendStream(buf)
}
