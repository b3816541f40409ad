// internals/features/workforce/assignments/dto/assignment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	m "shiftboard_backend/internals/features/workforce/assignments/model"
)

const DateLayout = "2006-01-02"

// ParseDate reads a calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

/* =========================================================
   1) REQUEST DTO
   ========================================================= */

type CreateAssignmentRequest struct {
	ShiftID uuid.UUID `json:"shift_assignment_shift_id" validate:"required"`
	StaffID uuid.UUID `json:"shift_assignment_staff_id" validate:"required"`
	Date    string    `json:"shift_assignment_date"     validate:"required,datetime=2006-01-02"`
}

type EligibleStaffQuery struct {
	Date string `query:"date" validate:"required,datetime=2006-01-02"`
}

/* =========================================================
   2) RESPONSE DTO
   ========================================================= */

type AssignmentResponse struct {
	AssignmentID uuid.UUID `json:"shift_assignment_id"`
	ShiftID      uuid.UUID `json:"shift_assignment_shift_id"`
	StaffID      uuid.UUID `json:"shift_assignment_staff_id"`
	Date         string    `json:"shift_assignment_date"`
	AssignedBy   uuid.UUID `json:"shift_assignment_assigned_by"`
	CreatedAt    time.Time `json:"shift_assignment_created_at"`
}

func FromModel(a *m.ShiftAssignmentModel) AssignmentResponse {
	return AssignmentResponse{
		AssignmentID: a.ShiftAssignmentID,
		ShiftID:      a.ShiftAssignmentShiftID,
		StaffID:      a.ShiftAssignmentStaffID,
		Date:         a.ShiftAssignmentDate.Format(DateLayout),
		AssignedBy:   a.ShiftAssignmentAssignedBy,
		CreatedAt:    a.ShiftAssignmentCreatedAt,
	}
}

type EligibleStaffResponse struct {
	StaffID uuid.UUID `json:"staff_id"`
	Name    string    `json:"name"`
	Role    string    `json:"role"`
}
