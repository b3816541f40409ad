// internals/features/workforce/assignments/controller/assignment_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	dto "shiftboard_backend/internals/features/workforce/assignments/dto"
	service "shiftboard_backend/internals/features/workforce/assignments/service"
	helper "shiftboard_backend/internals/helpers"
	helperAuth "shiftboard_backend/internals/helpers/auth"
	pkgerrors "shiftboard_backend/internals/pkg/errors"
)

/* ============================================
   Controller
============================================ */

type AssignmentController struct {
	Assignments service.AssignmentService
	Eligibility service.EligibilityService
	Validator   *validator.Validate
}

func NewAssignmentController(
	assignments service.AssignmentService,
	eligibility service.EligibilityService,
	v *validator.Validate,
) *AssignmentController {
	if v == nil {
		v = validator.New()
	}
	return &AssignmentController{
		Assignments: assignments,
		Eligibility: eligibility,
		Validator:   v,
	}
}

// writeAssignmentErr maps service errors onto the response envelope.
func writeAssignmentErr(c *fiber.Ctx, err error) error {
	switch {
	case pkgerrors.IsValidation(err):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrShiftNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Shift not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Assignment not found")
	case errors.Is(err, pkgerrors.ErrCapacityExceeded):
		return helper.JsonError(c, fiber.StatusConflict, "Shift is already fully staffed for this date")
	case errors.Is(err, pkgerrors.ErrDuplicateAssignment):
		return helper.JsonError(c, fiber.StatusConflict, "Staff member is already assigned to this shift and date")
	case errors.Is(err, service.ErrVacationConflict):
		return helper.JsonError(c, fiber.StatusConflict, "Staff member has approved or pending leave on this date")
	case errors.Is(err, service.ErrDateOutOfRange):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Date falls outside the schedule date range")
	case errors.Is(err, service.ErrScheduleArchived):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Schedule is archived and read-only")
	case errors.Is(err, pkgerrors.ErrUpstreamUnavailable):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Upstream availability data is unreachable, try again shortly")
	default:
		return helper.WritePGError(c, err)
	}
}

/* ============================================
   ASSIGN
   POST /api/a/assignments
============================================ */

func (ctl *AssignmentController) Assign(c *fiber.Ctx) error {
	var req dto.CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.JsonValidatorError(c, err)
	}

	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "User context not found")
	}

	resp, err := ctl.Assignments.Assign(c.Context(), &req, userID)
	if err != nil {
		return writeAssignmentErr(c, err)
	}
	return helper.JsonCreated(c, "Staff assigned", resp)
}

/* ============================================
   UNASSIGN
   DELETE /api/a/assignments/:id
============================================ */

func (ctl *AssignmentController) Unassign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id")
	}

	if err := ctl.Assignments.Unassign(c.Context(), id); err != nil {
		return writeAssignmentErr(c, err)
	}
	return helper.JsonDeleted(c, "Assignment removed", fiber.Map{"shift_assignment_id": id})
}

/* ============================================
   ELIGIBLE STAFF
   GET /api/a/shifts/:id/eligible?date=YYYY-MM-DD
============================================ */

func (ctl *AssignmentController) EligibleStaff(c *fiber.Ctx) error {
	shiftID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid shift id")
	}

	var q dto.EligibleStaffQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := ctl.Validator.Struct(&q); err != nil {
		return helper.JsonValidatorError(c, err)
	}
	date, err := dto.ParseDate(q.Date)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	departmentID, err := helperAuth.GetDepartmentIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Department context not found")
	}

	staff, err := ctl.Eligibility.EligibleStaff(c.Context(), shiftID, date, departmentID)
	if err != nil {
		return writeAssignmentErr(c, err)
	}
	return helper.JsonOK(c, "OK", staff)
}
