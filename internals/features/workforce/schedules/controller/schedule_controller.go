// internals/features/workforce/schedules/controller/schedule_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shiftboard_backend/internals/constants"
	dto "shiftboard_backend/internals/features/workforce/schedules/dto"
	service "shiftboard_backend/internals/features/workforce/schedules/service"
	helper "shiftboard_backend/internals/helpers"
	helperAuth "shiftboard_backend/internals/helpers/auth"
	pkgerrors "shiftboard_backend/internals/pkg/errors"
)

/* ============================================
   Controller
============================================ */

type ScheduleController struct {
	Service   service.ScheduleService
	Validator *validator.Validate
}

func NewScheduleController(svc service.ScheduleService, v *validator.Validate) *ScheduleController {
	if v == nil {
		v = validator.New()
	}
	return &ScheduleController{Service: svc, Validator: v}
}

/* ============================================
   RESP/ERR helpers
============================================ */

func bindAndValidate[T any](c *fiber.Ctx, v *validator.Validate, dst *T) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}
	if v != nil {
		if err := v.Struct(dst); err != nil {
			return err
		}
	}
	return nil
}

// writeBindErr: body-parse failures keep their fiber status, validator
// failures get the field-level envelope.
func writeBindErr(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	return helper.JsonValidatorError(c, err)
}

func scopeFromToken(c *fiber.Ctx) (service.Scope, error) {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return service.Scope{}, fiber.NewError(fiber.StatusUnauthorized, "User context not found")
	}
	departmentID, err := helperAuth.GetDepartmentIDFromToken(c)
	if err != nil {
		return service.Scope{}, fiber.NewError(fiber.StatusUnauthorized, "Department context not found")
	}
	facilityID, err := helperAuth.GetFacilityIDFromToken(c)
	if err != nil {
		return service.Scope{}, fiber.NewError(fiber.StatusUnauthorized, "Facility context not found")
	}
	workspaceID, _ := helperAuth.GetWorkspaceIDFromToken(c)
	return service.Scope{
		DepartmentID: departmentID,
		FacilityID:   facilityID,
		WorkspaceID:  workspaceID,
		UserID:       userID,
	}, nil
}

// writeScheduleErr maps service errors onto the response envelope.
func writeScheduleErr(c *fiber.Ctx, err error) error {
	switch {
	case pkgerrors.IsValidation(err):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrScheduleNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Schedule not found")
	case errors.Is(err, pkgerrors.ErrDuplicateName):
		return helper.JsonError(c, fiber.StatusConflict, "A schedule with this name already exists in the department")
	case errors.Is(err, service.ErrScheduleNotDraft):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Only draft schedules can be modified")
	case errors.Is(err, service.ErrSchedulePublished):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Schedule is already published")
	case errors.Is(err, service.ErrScheduleArchived):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Schedule is archived")
	default:
		return helper.WritePGError(c, err)
	}
}

/* ============================================
   CREATE
   POST /api/a/schedules
============================================ */

func (ctl *ScheduleController) Create(c *fiber.Ctx) error {
	var req dto.CreateScheduleRequest
	if err := bindAndValidate(c, ctl.Validator, &req); err != nil {
		return writeBindErr(c, err)
	}

	scope, err := scopeFromToken(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	resp, err := ctl.Service.Create(c.Context(), &req, scope)
	if err != nil {
		return writeScheduleErr(c, err)
	}
	return helper.JsonCreated(c, "Schedule created", resp)
}

/* ============================================
   GET BY ID
   GET /api/a/schedules/:id
============================================ */

func (ctl *ScheduleController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid schedule id")
	}

	scope, serr := scopeFromToken(c)
	if serr != nil {
		fe := serr.(*fiber.Error)
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	resp, err := ctl.Service.Get(c.Context(), id, scope)
	if err != nil {
		return writeScheduleErr(c, err)
	}
	return helper.JsonOK(c, "OK", resp)
}

/* ============================================
   LIST
   GET /api/a/schedules?status=&page=&per_page=
============================================ */

func (ctl *ScheduleController) List(c *fiber.Ctx) error {
	var q dto.ListScheduleQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := ctl.Validator.Struct(&q); err != nil {
		return helper.JsonValidatorError(c, err)
	}

	scope, serr := scopeFromToken(c)
	if serr != nil {
		fe := serr.(*fiber.Error)
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	paging := helper.ResolvePaging(c, 20, 100)
	items, total, err := ctl.Service.List(c.Context(), scope, q.Status, paging.Limit, paging.Offset)
	if err != nil {
		return writeScheduleErr(c, err)
	}

	pagination := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "OK", items, &pagination)
}

/* ============================================
   PATCH
   PATCH /api/a/schedules/:id
============================================ */

func (ctl *ScheduleController) Patch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid schedule id")
	}

	var req dto.UpdateScheduleRequest
	if berr := bindAndValidate(c, ctl.Validator, &req); berr != nil {
		return writeBindErr(c, berr)
	}

	scope, serr := scopeFromToken(c)
	if serr != nil {
		fe := serr.(*fiber.Error)
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	resp, err := ctl.Service.Patch(c.Context(), id, &req, scope)
	if err != nil {
		return writeScheduleErr(c, err)
	}
	return helper.JsonUpdated(c, "Schedule updated", resp)
}

/* ============================================
   REPLACE SHIFTS
   PUT /api/a/schedules/:id/shifts
============================================ */

func (ctl *ScheduleController) ReplaceShifts(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid schedule id")
	}

	var req dto.ReplaceShiftsRequest
	if berr := bindAndValidate(c, ctl.Validator, &req); berr != nil {
		return writeBindErr(c, berr)
	}

	scope, serr := scopeFromToken(c)
	if serr != nil {
		fe := serr.(*fiber.Error)
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	resp, err := ctl.Service.ReplaceShifts(c.Context(), id, &req, scope)
	if err != nil {
		return writeScheduleErr(c, err)
	}
	return helper.JsonUpdated(c, "Shifts replaced", resp)
}

/* ============================================
   PUBLISH
   POST /api/a/schedules/:id/publish
============================================ */

func (ctl *ScheduleController) Publish(c *fiber.Ctx) error {
	// === supervisor only ===
	if !helperAuth.IsSupervisor(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorSupervisor("publishing schedules"))
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid schedule id")
	}

	scope, serr := scopeFromToken(c)
	if serr != nil {
		fe := serr.(*fiber.Error)
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	resp, err := ctl.Service.Publish(c.Context(), id, scope)
	if err != nil {
		return writeScheduleErr(c, err)
	}
	return helper.JsonUpdated(c, "Schedule published", resp)
}

/* ============================================
   DELETE
   DELETE /api/a/schedules/:id
============================================ */

func (ctl *ScheduleController) Delete(c *fiber.Ctx) error {
	// === supervisor only ===
	if !helperAuth.IsSupervisor(c) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorSupervisor("deleting schedules"))
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid schedule id")
	}

	scope, serr := scopeFromToken(c)
	if serr != nil {
		fe := serr.(*fiber.Error)
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	if err := ctl.Service.Delete(c.Context(), id, scope); err != nil {
		return writeScheduleErr(c, err)
	}
	return helper.JsonDeleted(c, "Schedule deleted", fiber.Map{"schedule_id": id})
}
